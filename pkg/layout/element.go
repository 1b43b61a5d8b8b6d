package layout

import (
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/panelpush/pkg/geom"
)

// DefaultPriority is used for elements with a non-positive priority.
const DefaultPriority = 1

// Element describes one positionable panel. The zero value of every field
// except ID is the common case: visible, movable, priority 1, no anchor.
type Element[K comparable] struct {
	// ID identifies the element in the result. It stands in for whatever
	// handle the host uses (a DOM node, a widget, a file-level name).
	ID K

	// Priority orders resolution. Higher values are placed first and act
	// as obstacles for everything after them. Zero means unset, so 0 and
	// negative values rank and stack exactly like DefaultPriority.
	Priority int

	// Hidden excludes the element from the pass entirely.
	Hidden bool

	// Immovable elements are obstacles but never receive an offset.
	Immovable bool

	// Anchor forces the escape direction. geom.Auto picks by open space.
	Anchor geom.Direction
}

// EffectivePriority returns the priority used for ordering and stacking.
func (e Element[K]) EffectivePriority() int {
	if e.Priority <= 0 {
		return DefaultPriority
	}
	return e.Priority
}

// RectProvider supplies the natural rectangle of an element at resolution
// time. ok is false when the element is not currently measurable.
type RectProvider[K comparable] interface {
	Rect(id K) (r geom.Rect, ok bool)
}

// Rects is a RectProvider backed by a map snapshot.
type Rects[K comparable] map[K]geom.Rect

// Rect implements RectProvider.
func (m Rects[K]) Rect(id K) (geom.Rect, bool) {
	r, ok := m[id]
	return r, ok
}

// RectFunc adapts a function to a RectProvider.
type RectFunc[K comparable] func(id K) (geom.Rect, bool)

// Rect implements RectProvider.
func (f RectFunc[K]) Rect(id K) (geom.Rect, bool) { return f(id) }

// Placement is the resolved position of one element.
type Placement struct {
	// Offset translates the natural rectangle to the displayed one.
	Offset geom.Offset

	// ZIndex stacks higher-priority elements above lower ones.
	ZIndex int

	// Transition is the animation duration hosts should use when moving
	// the element to its new offset.
	Transition time.Duration
}

// Apply returns the displayed rectangle for the given natural rectangle.
func (p Placement) Apply(natural geom.Rect) geom.Rect {
	return natural.Offset(p.Offset)
}

// Transform formats the offset as a CSS translate() value.
func (p Placement) Transform() string {
	return fmt.Sprintf("translate(%spx, %spx)", formatPx(p.Offset.DX), formatPx(p.Offset.DY))
}

func formatPx(v float64) string {
	if v == 0 {
		// avoids "-0"
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Result holds the placements of one resolution pass.
type Result[K comparable] struct {
	// Placements maps every resolved element to its placement. Hidden and
	// unmeasurable elements are absent.
	Placements map[K]Placement

	// Order lists resolved IDs in resolution order (priority descending,
	// input order among equals).
	Order []K
}

// Get returns the placement for id.
func (r Result[K]) Get(id K) (Placement, bool) {
	p, ok := r.Placements[id]
	return p, ok
}

// Len returns the number of resolved elements.
func (r Result[K]) Len() int { return len(r.Order) }
