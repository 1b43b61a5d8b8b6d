// Package geom provides the axis-aligned geometry shared by the layout
// resolver and its hosts.
//
// # Coordinates
//
// All values are float64 viewport coordinates with the origin in the top-left
// corner and y growing downwards, the convention of both browser client rects
// and terminal cells. A [Rect] stores its four edges directly
// (Left, Top, Right, Bottom) because the resolver reasons edge by edge.
//
// # Overlap
//
// [Overlaps] is a separating-axis test with a clearance gap: two rectangles
// collide when they are closer than gap on both axes. Rectangles exactly gap
// apart do not overlap.
//
//	a := geom.NewRect(0, 0, 100, 40)
//	b := geom.NewRect(116, 0, 50, 40)
//	geom.Overlaps(a, b, 16) // false: exactly 16 apart
//	geom.Overlaps(a, b, 17) // true
//
// # Directions
//
// [Direction] names the four escape directions plus [Auto]. It implements
// encoding.TextMarshaler so scene files can spell anchors as plain strings.
package geom
