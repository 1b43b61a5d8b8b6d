// Package layout resolves collisions between floating panels by priority.
//
// # Overview
//
// A screen holds a handful of floating elements (a search bar, a detail
// panel, drawers). Each element has a natural rectangle measured by the host,
// an integer priority, and optional flags. [Resolve] computes a translation
// for every visible element so that:
//
//   - higher-priority elements stay where they are,
//   - lower-priority elements are pushed away from them by at least a gap,
//   - every movable element stays inside the viewport, inset by the gap.
//
// The package is pure: it never measures, subscribes to events or applies
// transforms. Rectangles come from a [RectProvider]; the returned [Result]
// is applied by the caller. See the manager subpackage for the wrapper that
// decides when a new pass is needed.
//
// # Algorithm
//
// One pass works on a snapshot:
//
//  1. Drop hidden elements and elements the provider cannot measure.
//  2. Stable-sort by priority, highest first. Equal priorities keep input order.
//  3. Walk the sorted list. Immovable elements get a zero offset. Each movable
//     element compares its natural rectangle with every element placed before
//     it (at that element's final position). For each overlap, [Displace]
//     computes an escape offset; the offsets are summed.
//  4. [Clamp] forces the summed offset back inside the gapped viewport.
//
// Summing pairwise escapes is not an optimal packing. With three or more
// mutually overlapping elements it can push further than needed or leave a
// residual overlap; the behaviour is kept as is and pinned by tests.
//
// # Escape direction
//
// An element with an [Element.Anchor] always escapes that way. Without one,
// [Displace] picks the direction with the most room between the element and
// the viewport edge.
//
// # Options
//
//   - [WithGap]: clearance between elements and viewport edges (default [DefaultGap])
//   - [WithTransition]: transition duration copied into each [Placement]
//   - [WithZStep]: z-index multiplier applied to priorities (default 10)
package layout
