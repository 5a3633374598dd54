// Package history keeps a bounded linear undo/redo log of whole-state
// snapshots.
package history

// DefaultLimit is the number of undo steps kept when no limit is configured.
const DefaultLimit = 50

// Manager owns the present state and the past/future snapshot stacks. It is
// not safe for concurrent use; callers serialize access.
type Manager[T any] struct {
	past    []T
	present T
	future  []T
	limit   int
	clone   func(T) T
}

// New creates a manager around an initial state. clone must return a deep
// copy; limit <= 0 selects DefaultLimit.
func New[T any](initial T, clone func(T) T, limit int) *Manager[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager[T]{present: initial, clone: clone, limit: limit}
}

// Present returns the live state. Callers must not mutate it outside Dispatch.
func (m *Manager[T]) Present() T {
	return m.present
}

// Dispatch applies mutation to a copy of the present state and commits the
// copy only when mutation succeeds, so a failed mutation leaves everything
// untouched. Tracked commits push the prior state onto the undo stack and
// drop the redo stack.
func (m *Manager[T]) Dispatch(mutation func(T) error, track bool) error {
	next := m.clone(m.present)
	if err := mutation(next); err != nil {
		return err
	}
	if track {
		m.past = append(m.past, m.present)
		if len(m.past) > m.limit {
			m.past = append(m.past[:0:0], m.past[len(m.past)-m.limit:]...)
		}
		m.future = nil
	}
	m.present = next
	return nil
}

// Undo restores the most recent past state. It reports false when there is
// nothing to undo.
func (m *Manager[T]) Undo() bool {
	if len(m.past) == 0 {
		return false
	}
	last := len(m.past) - 1
	m.future = append(m.future, m.present)
	m.present = m.past[last]
	m.past = m.past[:last]
	return true
}

func (m *Manager[T]) Redo() bool {
	if len(m.future) == 0 {
		return false
	}
	last := len(m.future) - 1
	m.past = append(m.past, m.present)
	m.present = m.future[last]
	m.future = m.future[:last]
	return true
}

// ReplaceState installs a new present and clears both stacks. It is a
// history boundary and cannot be undone.
func (m *Manager[T]) ReplaceState(state T) {
	m.present = state
	m.past = nil
	m.future = nil
}

func (m *Manager[T]) CanUndo() bool { return len(m.past) > 0 }
func (m *Manager[T]) CanRedo() bool { return len(m.future) > 0 }

func (m *Manager[T]) UndoDepth() int { return len(m.past) }
func (m *Manager[T]) RedoDepth() int { return len(m.future) }

func (m *Manager[T]) Limit() int { return m.limit }
