// Package pkg provides the core libraries for Panelpush panel layout.
//
// # Overview
//
// Panelpush keeps floating panels (popovers, drawers, toolbars, toasts) from
// covering each other. Panels are placed in priority order; each lower
// priority panel is pushed away from the ones already placed and then kept
// inside the viewport. The pkg directory is organized into these areas:
//
//  1. [geom] - Rectangles, offsets, viewports and push directions
//  2. [layout] - The resolver and the live [layout/manager]
//  3. [scene] - Scene files (TOML, YAML, JSON) and placement reports
//  4. [pipeline] - Orchestration (load → resolve → report) with caching
//  5. [cache], [notify], [observability], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through Panelpush:
//
//	Scene file (TOML/YAML/JSON)
//	         ↓
//	    [scene] package (parse + validate)
//	         ↓
//	    [layout] package (priority sort, displacement, clamping)
//	         ↓
//	    [scene.Report] (offset, z-index, transition per panel)
//	         ↓
//	    JSON/YAML/TOML output, cached by [cache]
//
// Interactive hosts skip the file stages and drive a [layout/manager.Manager]
// directly, feeding it descriptors, viewport sizes and scroll events.
//
// # Quick Start
//
// Resolve a set of panels in code:
//
//	import (
//	    "github.com/matzehuels/panelpush/pkg/geom"
//	    "github.com/matzehuels/panelpush/pkg/layout"
//	)
//
//	elems := []layout.Element[string]{
//	    {ID: "search", Priority: 10, Immovable: true},
//	    {ID: "details", Priority: 5},
//	}
//	rects := layout.Rects[string]{
//	    "search":  geom.NewRect(600, 100, 300, 60),
//	    "details": geom.NewRect(600, 140, 300, 100),
//	}
//	res := layout.Resolve(elems, rects, geom.Viewport{Width: 1600, Height: 900})
//	p, _ := res.Get("details")
//	fmt.Println(p.Transform()) // translate(316px, 0px)
//
// Or resolve a scene file through the cached pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.ResolveFile(ctx, "map.toml", pipeline.Options{})
//
// # Main Packages
//
// [geom] - Axis-aligned rectangles with a gap-aware overlap test, offsets
// and the four push directions.
//
// [layout] - The single-pass resolver. Elements are sorted by priority,
// displaced away from every higher-priority element they overlap, then
// clamped to the viewport. Z-indexes follow priority.
//
// [layout/manager] - Holds descriptors and the viewport, re-runs the
// resolver on change and notifies subscribers.
//
// [scene] - Scene documents, strict decoding, validation and the report
// format written by the CLI.
//
// [pipeline] - Runner that loads, resolves, reports and caches, including
// bounded concurrent resolution of many scenes.
//
// [cache] - File and Redis result caches with retry for transient Redis
// failures.
//
// [notify] - Debouncers and a file watcher for re-resolving on save.
//
// [observability] - Hooks for resolve, manager and cache events.
//
// [errors] - Coded errors and input validation.
package pkg
