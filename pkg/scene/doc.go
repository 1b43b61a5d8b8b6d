// Package scene reads and writes scene files, the file form of a layout
// problem, and reports, the file form of its solution.
//
// A scene names a viewport, an optional gap and transition, and a list of
// elements. Each element may carry a natural rectangle; elements without one
// are treated as unmeasurable and left out of the layout, just as a hidden
// panel would be.
//
//	name = "city-map"
//	gap = 16
//
//	[viewport]
//	width = 1600
//	height = 900
//
//	[[elements]]
//	id = "search"
//	priority = 10
//	rect = { x = 600, y = 100, width = 300, height = 60 }
//
//	[[elements]]
//	id = "city-detail"
//	priority = 5
//	anchor = "left"
//	rect = { x = 600, y = 140, width = 300, height = 100 }
//
// TOML, YAML and JSON are accepted; the format is chosen by file extension.
// Elements without an id receive a name-based UUID derived from the scene
// name and the element's position, so the same file always yields the same
// identities.
package scene
