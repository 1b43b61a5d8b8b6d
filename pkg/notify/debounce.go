package notify

import (
	"sync"
	"time"

	"github.com/matzehuels/panelpush/pkg/geom"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer runs a function once a burst of calls has gone quiet.
//
// Layout passes are not coalesced by the manager, so hosts that receive a
// stream of resize or scroll events wrap their trigger in a Debouncer.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDebounce
	}
	return &Debouncer{duration: duration}
}

// Debounce schedules fn after the quiet period. A later call replaces the
// pending one and restarts the period.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Immediate cancels any pending call and runs fn now.
func (d *Debouncer) Immediate(fn func()) {
	d.Cancel()
	fn()
}

// ViewportDebouncer coalesces viewport resizes, delivering only the last
// size of a burst.
type ViewportDebouncer struct {
	debouncer *Debouncer

	mu      sync.Mutex
	pending geom.Viewport
	last    geom.Viewport
}

// NewViewportDebouncer creates a resize debouncer.
func NewViewportDebouncer(duration time.Duration) *ViewportDebouncer {
	return &ViewportDebouncer{debouncer: NewDebouncer(duration)}
}

// Resize records vp and calls handler with the most recent viewport once
// resizing has stopped. Resizes back to the last delivered size are still
// delivered.
func (v *ViewportDebouncer) Resize(vp geom.Viewport, handler func(geom.Viewport)) {
	v.mu.Lock()
	v.pending = vp
	v.mu.Unlock()

	v.debouncer.Debounce(func() {
		v.mu.Lock()
		vp := v.pending
		v.last = vp
		v.mu.Unlock()

		handler(vp)
	})
}

// Last returns the last delivered viewport.
func (v *ViewportDebouncer) Last() geom.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Cancel drops any pending resize.
func (v *ViewportDebouncer) Cancel() {
	v.debouncer.Cancel()
}
