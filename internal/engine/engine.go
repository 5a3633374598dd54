// Package engine is the single serialized entry point to a harness
// workspace. Every action runs under one lock, goes through the undo history
// and bumps the state version that keys the derived caches.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mohae/deepcopy"
	"go.uber.org/zap"

	"github.com/wirescope/core/internal/history"
	"github.com/wirescope/core/internal/models"
	"github.com/wirescope/core/internal/observability/metrics"
	"github.com/wirescope/core/internal/parser"
	"github.com/wirescope/core/internal/routing"
	"github.com/wirescope/core/internal/sample"
	"github.com/wirescope/core/internal/store"
	"github.com/wirescope/core/internal/validation"
)

// ErrNilAction is returned when Dispatch receives no action.
var ErrNilAction = errors.New("engine: nil action")

// Change is published to subscribers after every committed state change.
type Change struct {
	Version uint64
	Action  string
	Tracked bool
}

// Subscriber observes committed changes. It runs after the engine lock is
// released and must not block.
type Subscriber func(Change)

type Engine struct {
	mu      sync.Mutex
	history *history.Manager[*models.Document]
	version uint64
	cache   derived

	logger      *zap.Logger
	newID       func() string
	subscribers []Subscriber
}

// derived holds per-version computations over the present document.
type derived struct {
	version uint64
	graph   *routing.GraphIndex
	issues  []validation.Issue
}

type Option func(*engineOptions)

type engineOptions struct {
	logger       *zap.Logger
	historyLimit int
	newID        func() string
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithHistoryLimit caps the undo stack; non-positive values use the default.
func WithHistoryLimit(limit int) Option {
	return func(o *engineOptions) { o.historyLimit = limit }
}

// WithIDGenerator replaces uuid generation for new entities.
func WithIDGenerator(fn func() string) Option {
	return func(o *engineOptions) { o.newID = fn }
}

// New starts an engine on doc, or on an empty workspace when doc is nil.
func New(doc *models.Document, opts ...Option) *Engine {
	o := engineOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	doc = install(doc)

	e := &Engine{
		history: history.New(doc, (*models.Document).Clone, o.historyLimit),
		logger:  o.logger,
		newID:   o.newID,
		version: 1,
	}
	e.publishGauges()
	return e
}

// Subscribe registers fn for committed changes.
func (e *Engine) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.mu.Unlock()
}

// Dispatch applies one action atomically: either the whole action commits
// or the state is left exactly as it was.
func (e *Engine) Dispatch(action Action) (any, error) {
	if action == nil {
		return nil, ErrNilAction
	}
	start := time.Now()
	name := action.Name()

	e.mu.Lock()
	var result any
	err := e.history.Dispatch(func(doc *models.Document) error {
		s := store.Open(doc)
		if e.newID != nil {
			s.WithIDGenerator(e.newID)
		}
		var applyErr error
		result, applyErr = action.Apply(s)
		return applyErr
	}, action.Tracked())

	var change Change
	if err == nil {
		e.version++
		change = Change{Version: e.version, Action: name, Tracked: action.Tracked()}
		e.publishGauges()
	}
	subscribers := e.subscribers
	e.mu.Unlock()

	if err != nil {
		metrics.ObserveDispatch(name, metrics.ResultRejected, time.Since(start))
		e.logger.Info("action rejected", zap.String("action", name), zap.Error(err))
		return nil, err
	}

	metrics.ObserveDispatch(name, metrics.ResultSuccess, time.Since(start))
	e.logger.Debug("action applied",
		zap.String("action", name),
		zap.Bool("tracked", change.Tracked),
		zap.Uint64("version", change.Version),
	)
	notify(subscribers, change)
	return deepcopy.Copy(result), nil
}

// DispatchEnvelope decodes an envelope with the default registry and
// dispatches it.
func (e *Engine) DispatchEnvelope(env Envelope) (any, error) {
	action, err := DefaultRegistry().Decode(env)
	if err != nil {
		return nil, err
	}
	return e.Dispatch(action)
}

// Undo reports false when there was nothing to undo.
func (e *Engine) Undo() bool {
	return e.step("undo", e.history.Undo)
}

func (e *Engine) Redo() bool {
	return e.step("redo", e.history.Redo)
}

func (e *Engine) step(name string, fn func() bool) bool {
	e.mu.Lock()
	moved := fn()
	var change Change
	if moved {
		e.version++
		change = Change{Version: e.version, Action: name}
		e.publishGauges()
	}
	subscribers := e.subscribers
	e.mu.Unlock()

	if moved {
		e.logger.Debug("history step", zap.String("action", name), zap.Uint64("version", change.Version))
		notify(subscribers, change)
	}
	return moved
}

// ReplaceState installs a copy of doc as the whole workspace and clears the
// history.
func (e *Engine) ReplaceState(doc *models.Document) {
	doc = install(doc)

	e.mu.Lock()
	e.history.ReplaceState(doc)
	e.version++
	change := Change{Version: e.version, Action: "state.replace"}
	e.publishGauges()
	subscribers := e.subscribers
	e.mu.Unlock()

	e.logger.Info("state replaced",
		zap.Int("networks", len(doc.Networks)),
		zap.Uint64("version", change.Version),
	)
	notify(subscribers, change)
}

// Import parses an exported document and replaces the state with it.
func (e *Engine) Import(data []byte) error {
	doc, err := parser.ParseDocument(data)
	if err != nil {
		return err
	}
	e.ReplaceState(doc)
	return nil
}

// Export returns the present document as JSON.
func (e *Engine) Export(pretty bool) ([]byte, error) {
	doc := e.Document()
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// LoadSample replaces the state with the bundled sample workspace.
func (e *Engine) LoadSample() error {
	doc, err := sample.Document()
	if err != nil {
		return fmt.Errorf("engine: load sample: %w", err)
	}
	e.ReplaceState(doc)
	return nil
}

// Reset replaces the state with an empty workspace.
func (e *Engine) Reset() {
	e.ReplaceState(models.NewDocument())
}

// install copies doc and normalizes the copy, so the engine never shares a
// document with its caller and readers never have to normalize.
func install(doc *models.Document) *models.Document {
	if doc == nil {
		return models.NewDocument()
	}
	doc = doc.Clone()
	doc.Normalize()
	return doc
}

func notify(subscribers []Subscriber, change Change) {
	for _, fn := range subscribers {
		fn(change)
	}
}

// publishGauges must be called with e.mu held.
func (e *Engine) publishGauges() {
	metrics.SetHistoryDepth(e.history.UndoDepth(), e.history.RedoDepth())
	metrics.SetStateVersion(e.version)
}

// derivedLocked returns the caches for the present version, rebuilding them
// when stale. Must be called with e.mu held.
func (e *Engine) derivedLocked() *derived {
	if e.cache.version == e.version && e.cache.issues != nil {
		return &e.cache
	}
	doc := e.history.Present()
	graph := &routing.GraphIndex{NodeIDs: []string{}, EdgesByNodeID: map[string][]routing.Edge{}}
	if scope := doc.ActiveScope(); scope != nil {
		graph = routing.BuildScopeGraph(scope)
	}
	issues := validation.Validate(doc, graph)

	e.cache = derived{version: e.version, graph: graph, issues: issues}
	summary := validation.Summarize(issues)
	metrics.SetValidationIssues(summary.Errors, summary.Warnings)
	return &e.cache
}
