package layout

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/panelpush/pkg/geom"
)

const (
	// DefaultGap is the clearance kept between elements and from the
	// viewport edges, in viewport units.
	DefaultGap = 16.0

	// DefaultTransition is the animation duration reported in placements.
	DefaultTransition = 300 * time.Millisecond

	// DefaultZStep converts priorities into z-indices.
	DefaultZStep = 10
)

// Option configures a resolution pass.
type Option func(*config)

type config struct {
	gap        float64
	transition time.Duration
	zStep      int
}

// WithGap sets the clearance between elements and the viewport edges.
// Negative values are treated as zero.
func WithGap(gap float64) Option { return func(c *config) { c.gap = max(gap, 0) } }

// WithTransition sets the transition duration reported in each placement.
func WithTransition(d time.Duration) Option { return func(c *config) { c.transition = d } }

// WithZStep sets the multiplier from priority to z-index.
func WithZStep(step int) Option {
	return func(c *config) {
		if step > 0 {
			c.zStep = step
		}
	}
}

func newConfig(opts ...Option) config {
	c := config{gap: DefaultGap, transition: DefaultTransition, zStep: DefaultZStep}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// slot is an element taking part in a pass.
type slot[K comparable] struct {
	el       Element[K]
	priority int
	natural  geom.Rect
	placed   geom.Rect
}

// Resolve computes a placement for every visible, measurable element.
//
// Elements are placed in priority order; each movable element is pushed out
// of every earlier element it overlaps, the pushes are summed, and the sum is
// clamped into the viewport. Elements the provider cannot measure are left
// out, as are repeated IDs after their first occurrence. Resolve is
// deterministic and never fails.
func Resolve[K comparable](elems []Element[K], rects RectProvider[K], vp geom.Viewport, opts ...Option) Result[K] {
	cfg := newConfig(opts...)

	slots := make([]slot[K], 0, len(elems))
	seen := make(map[K]struct{}, len(elems))
	for _, el := range elems {
		if el.Hidden || rects == nil {
			continue
		}
		if _, dup := seen[el.ID]; dup {
			continue
		}
		r, ok := rects.Rect(el.ID)
		if !ok {
			continue
		}
		seen[el.ID] = struct{}{}
		slots = append(slots, slot[K]{el: el, priority: el.EffectivePriority(), natural: r})
	}

	slices.SortStableFunc(slots, func(a, b slot[K]) int {
		return cmp.Compare(b.priority, a.priority)
	})

	res := Result[K]{
		Placements: make(map[K]Placement, len(slots)),
		Order:      make([]K, 0, len(slots)),
	}
	for i := range slots {
		s := &slots[i]

		var off geom.Offset
		if !s.el.Immovable {
			for _, obstacle := range slots[:i] {
				if geom.Overlaps(s.natural, obstacle.placed, cfg.gap) {
					off = off.Add(Displace(s.natural, obstacle.placed, s.el.Anchor, vp, cfg.gap))
				}
			}
			off = Clamp(s.natural, off, vp, cfg.gap)
		}
		s.placed = s.natural.Offset(off)

		res.Placements[s.el.ID] = Placement{
			Offset:     off,
			ZIndex:     s.priority * cfg.zStep,
			Transition: cfg.transition,
		}
		res.Order = append(res.Order, s.el.ID)
	}
	return res
}
