// Package manager keeps a layout current as its inputs change.
//
// A [Manager] owns the element descriptors, the viewport and the most recent
// [layout.Result]. Hosts forward their change events to it (new descriptors,
// a viewport resize, a scroll) and read placements back by element identity.
// Subscribers are told about every new result so they can apply transforms.
//
// Triggers are not coalesced: every Resize, Scroll or Refresh call runs a
// full pass. Hosts that receive bursts of events should debounce upstream,
// for example with [github.com/matzehuels/panelpush/pkg/notify.Debouncer].
package manager

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
	"github.com/matzehuels/panelpush/pkg/observability"
)

// Trigger names passed to hooks and logs.
const (
	TriggerElements = "elements"
	TriggerResize   = "resize"
	TriggerScroll   = "scroll"
	TriggerRefresh  = "refresh"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	layout []layout.Option
	logger *log.Logger
	hooks  observability.ManagerHooks
}

// WithGap sets the clearance used for every pass.
func WithGap(gap float64) Option {
	return func(o *options) { o.layout = append(o.layout, layout.WithGap(gap)) }
}

// WithTransition sets the transition duration reported in placements.
func WithTransition(d time.Duration) Option {
	return func(o *options) { o.layout = append(o.layout, layout.WithTransition(d)) }
}

// WithLogger sets the logger for pass diagnostics. Passes are logged at
// debug level.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithHooks overrides the globally registered manager hooks.
func WithHooks(h observability.ManagerHooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// Manager recomputes placements when descriptors, the viewport or the
// measured rectangles change. It is safe for concurrent use. Subscribers see
// results in pass order; a result overtaken by a newer pass before delivery
// is dropped.
type Manager[K comparable] struct {
	rects layout.RectProvider[K]
	opts  options

	mu     sync.Mutex
	elems  []layout.Element[K]
	vp     geom.Viewport
	result layout.Result[K]
	passes int

	subMu  sync.Mutex
	subs   map[int]func(layout.Result[K])
	nextID int

	// deliverMu serializes callbacks; delivered is the last pass sent.
	deliverMu sync.Mutex
	delivered int
}

// New returns a Manager reading natural rectangles from rects. No pass runs
// until the first trigger.
func New[K comparable](rects layout.RectProvider[K], vp geom.Viewport, opts ...Option) *Manager[K] {
	o := options{hooks: observability.Manager()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[K]{
		rects:  rects,
		opts:   o,
		vp:     vp,
		result: layout.Result[K]{Placements: map[K]layout.Placement{}},
		subs:   make(map[int]func(layout.Result[K])),
	}
}

// SetElements replaces the descriptor list. A pass runs only when the list
// differs from the previous one; the return value reports whether it did.
func (m *Manager[K]) SetElements(elems []layout.Element[K]) bool {
	m.mu.Lock()
	if m.passes > 0 && slices.Equal(m.elems, elems) {
		m.mu.Unlock()
		m.opts.hooks.OnSkip(TriggerElements)
		return false
	}
	m.elems = slices.Clone(elems)
	seq, res := m.runLocked(TriggerElements)
	m.mu.Unlock()

	m.notify(seq, res)
	return true
}

// Resize records a new viewport and runs a pass.
func (m *Manager[K]) Resize(vp geom.Viewport) {
	m.mu.Lock()
	m.vp = vp
	seq, res := m.runLocked(TriggerResize)
	m.mu.Unlock()

	m.notify(seq, res)
}

// Scroll runs a pass with freshly measured rectangles.
func (m *Manager[K]) Scroll() { m.trigger(TriggerScroll) }

// Refresh runs a pass after an external dependency changed.
func (m *Manager[K]) Refresh() { m.trigger(TriggerRefresh) }

func (m *Manager[K]) trigger(name string) {
	m.mu.Lock()
	seq, res := m.runLocked(name)
	m.mu.Unlock()

	m.notify(seq, res)
}

// runLocked runs one pass and returns its sequence number. m.mu must be held.
func (m *Manager[K]) runLocked(trigger string) (int, layout.Result[K]) {
	start := time.Now()
	m.result = layout.Resolve(m.elems, m.rects, m.vp, m.opts.layout...)
	m.passes++
	elapsed := time.Since(start)

	m.opts.hooks.OnPass(trigger, m.result.Len(), elapsed)
	if m.opts.logger != nil {
		m.opts.logger.Debug("layout pass",
			"trigger", trigger,
			"elements", len(m.elems),
			"placed", m.result.Len(),
			"viewport", m.vp,
			"took", elapsed)
	}
	return m.passes, m.result
}

// Placement returns the current placement of id.
func (m *Manager[K]) Placement(id K) (layout.Placement, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result.Get(id)
}

// Result returns the most recent result. The returned value must not be
// modified.
func (m *Manager[K]) Result() layout.Result[K] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Viewport returns the current viewport.
func (m *Manager[K]) Viewport() geom.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vp
}

// Passes returns how many passes have run.
func (m *Manager[K]) Passes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes
}

// Subscribe registers fn to receive every new result. Callbacks run on the
// triggering goroutine after the manager's lock is released, one delivery at
// a time. A callback may read placements but must not trigger a pass itself.
// The returned function removes the subscription.
func (m *Manager[K]) Subscribe(fn func(layout.Result[K])) (cancel func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager[K]) notify(seq int, res layout.Result[K]) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	if seq <= m.delivered {
		return
	}
	m.delivered = seq

	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(layout.Result[K]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(res)
	}
}
