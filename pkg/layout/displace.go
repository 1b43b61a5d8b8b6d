package layout

import "github.com/matzehuels/panelpush/pkg/geom"

// Displace returns the offset that moves el clear of obstacle by at least
// gap. It returns a zero offset when the two do not overlap.
//
// With an explicit direction the element always escapes that way, however
// little room there is. With geom.Auto the direction with the most open
// space between el and the viewport edge wins; ties resolve in the order
// right, left, bottom, top.
func Displace(el, obstacle geom.Rect, dir geom.Direction, vp geom.Viewport, gap float64) geom.Offset {
	gap = max(gap, 0)
	if !geom.Overlaps(el, obstacle, gap) {
		return geom.Offset{}
	}
	if dir == geom.Auto {
		dir = roomiest(el, vp)
	}
	return escape(el, obstacle, dir, gap)
}

// escape is the move along dir that leaves exactly gap between el and
// obstacle.
func escape(el, obstacle geom.Rect, dir geom.Direction, gap float64) geom.Offset {
	switch dir {
	case geom.Right:
		return geom.Offset{DX: obstacle.Right + gap - el.Left}
	case geom.Left:
		return geom.Offset{DX: -(el.Right + gap - obstacle.Left)}
	case geom.Bottom:
		return geom.Offset{DY: obstacle.Bottom + gap - el.Top}
	case geom.Top:
		return geom.Offset{DY: -(el.Bottom + gap - obstacle.Top)}
	}
	return geom.Offset{}
}

// roomiest returns the direction with the most space between el and the
// matching viewport edge.
func roomiest(el geom.Rect, vp geom.Viewport) geom.Direction {
	candidates := [...]struct {
		dir   geom.Direction
		space float64
	}{
		{geom.Right, vp.Width - el.Right},
		{geom.Left, el.Left},
		{geom.Bottom, vp.Height - el.Bottom},
		{geom.Top, el.Top},
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.space > best.space {
			best = c
		}
	}
	return best.dir
}

// Clamp corrects off so that natural moved by off lies inside the viewport
// inset by gap. Each edge is checked on its own; when an element is larger
// than the gapped viewport the left and top edges win.
func Clamp(natural geom.Rect, off geom.Offset, vp geom.Viewport, gap float64) geom.Offset {
	b := vp.Bounds(max(gap, 0))

	if natural.Right+off.DX > b.Right {
		off.DX = b.Right - natural.Right
	}
	if natural.Left+off.DX < b.Left {
		off.DX = b.Left - natural.Left
	}
	if natural.Bottom+off.DY > b.Bottom {
		off.DY = b.Bottom - natural.Bottom
	}
	if natural.Top+off.DY < b.Top {
		off.DY = b.Top - natural.Top
	}
	return off
}
