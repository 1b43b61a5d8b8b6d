package geom

import "fmt"

// Rect is an axis-aligned rectangle in viewport coordinates.
// Left <= Right and Top <= Bottom for well-formed rectangles.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// NewRect creates a Rect from its top-left corner and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Offset returns the rectangle moved by o.
func (r Rect) Offset(o Offset) Rect { return r.Translate(o.DX, o.DY) }

// Intersect returns the intersection of two rectangles.
// If they don't overlap, the zero Rect is returned.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		Left:   max(r.Left, other.Left),
		Top:    max(r.Top, other.Top),
		Right:  min(r.Right, other.Right),
		Bottom: min(r.Bottom, other.Bottom),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}

// ContainsRect reports whether other lies fully inside r. Shared edges count
// as inside.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Left >= r.Left && other.Top >= r.Top &&
		other.Right <= r.Right && other.Bottom <= r.Bottom
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.Left, r.Top, r.Width(), r.Height())
}

// Overlaps reports whether a and b are closer than gap, i.e. whether b
// inflated by gap on every edge intersects a. Rectangles exactly gap apart
// do not overlap. A negative gap is treated as zero.
func Overlaps(a, b Rect, gap float64) bool {
	gap = max(gap, 0)
	if a.Left >= b.Right+gap || a.Right+gap <= b.Left {
		return false
	}
	if a.Top >= b.Bottom+gap || a.Bottom+gap <= b.Top {
		return false
	}
	return true
}

// Viewport is the visible area elements are laid out in.
type Viewport struct {
	Width, Height float64
}

// Bounds returns the area of the viewport that stays at least gap away from
// every edge.
func (v Viewport) Bounds(gap float64) Rect {
	return Rect{Left: gap, Top: gap, Right: v.Width - gap, Bottom: v.Height - gap}
}

// Offset is a translation relative to an element's natural position.
type Offset struct {
	DX, DY float64
}

// Add returns the component-wise sum of two offsets.
func (o Offset) Add(other Offset) Offset {
	return Offset{DX: o.DX + other.DX, DY: o.DY + other.DY}
}

// IsZero reports whether the offset leaves the element in place.
func (o Offset) IsZero() bool { return o.DX == 0 && o.DY == 0 }
