package validation

import "sort"

func FilterBySeverity(issues []Issue, severity Severity) []Issue {
	out := []Issue{}
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func FilterByCategory(issues []Issue, category Category) []Issue {
	out := []Issue{}
	for _, issue := range issues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}

type Group struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Issues   []Issue  `json:"issues"`
}

// GroupByCategory buckets issues per category, ordered by category name.
// Issue order inside a bucket is preserved.
func GroupByCategory(issues []Issue) []Group {
	index := make(map[Category]int)
	groups := []Group{}
	for _, issue := range issues {
		i, ok := index[issue.Category]
		if !ok {
			i = len(groups)
			index[issue.Category] = i
			groups = append(groups, Group{Category: issue.Category, Severity: SeverityOf(issue.Category)})
		}
		groups[i].Issues = append(groups[i].Issues, issue)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Category < groups[j].Category
	})
	return groups
}

type Summary struct {
	Total      int              `json:"total"`
	Errors     int              `json:"errors"`
	Warnings   int              `json:"warnings"`
	ByCategory map[Category]int `json:"by_category"`
}

func Summarize(issues []Issue) Summary {
	s := Summary{Total: len(issues), ByCategory: make(map[Category]int)}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		}
		s.ByCategory[issue.Category]++
	}
	return s
}

// Cursor walks an ordered issue list. Navigation wraps at both ends and
// never moves on an empty list.
type Cursor struct {
	issues []Issue
	pos    int
}

func NewCursor(issues []Issue) *Cursor {
	return &Cursor{issues: issues, pos: -1}
}

// Current returns the issue under the cursor, if any.
func (c *Cursor) Current() (Issue, bool) {
	if c.pos < 0 || c.pos >= len(c.issues) {
		return Issue{}, false
	}
	return c.issues[c.pos], true
}

func (c *Cursor) Next() (Issue, bool) {
	if len(c.issues) == 0 {
		return Issue{}, false
	}
	c.pos = (c.pos + 1) % len(c.issues)
	return c.issues[c.pos], true
}

func (c *Cursor) Previous() (Issue, bool) {
	if len(c.issues) == 0 {
		return Issue{}, false
	}
	if c.pos <= 0 {
		c.pos = len(c.issues) - 1
	} else {
		c.pos--
	}
	return c.issues[c.pos], true
}

// Sync swaps in a freshly derived list. The cursor stays on the same issue
// id when it still exists; otherwise it keeps its position, clamped to the
// new list.
func (c *Cursor) Sync(issues []Issue) {
	current, ok := c.Current()
	c.issues = issues
	if !ok {
		c.pos = -1
		return
	}
	for i, issue := range issues {
		if issue.ID == current.ID {
			c.pos = i
			return
		}
	}
	if c.pos >= len(issues) {
		c.pos = len(issues) - 1
	}
}
