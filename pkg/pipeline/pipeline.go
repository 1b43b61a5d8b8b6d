// Package pipeline provides the load → resolve → report pipeline for panelpush.
//
// This package wires scene files, the layout resolver and the result cache
// together so the CLI commands (resolve, watch, preview) share one code path.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: read and validate a scene file
//  2. Resolve: compute placements with [layout.Resolve]
//  3. Report: serialize the placements in the requested format
//
// Reports are cached by scene content hash plus every option that changes
// the outcome, so re-running an unchanged scene skips the resolve stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ResolveFile(ctx, "map.toml", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Encoded)
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panelpush/pkg/cache"
	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
	"github.com/matzehuels/panelpush/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the report encoding used when none is requested.
	DefaultFormat = scene.FormatJSON

	// DefaultConcurrency bounds ResolveFiles when no limit is given.
	DefaultConcurrency = 4
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options overrides scene values and controls caching. Zero values keep
// whatever the scene file says.
type Options struct {
	// Gap overrides the scene's gap when non-nil.
	Gap *float64 `json:"gap,omitempty"`

	// Width and Height override the scene's viewport when non-zero.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Transition overrides the scene's transition when non-nil.
	Transition *time.Duration `json:"transition,omitempty"`

	// ZStep overrides the priority to z-index multiplier when non-zero.
	ZStep int `json:"z_step,omitempty"`

	// Format is the report encoding.
	Format scene.Format `json:"format,omitempty"`

	// Refresh bypasses cached results and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// SetDefaults fills in unset options.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values.
func (o *Options) Validate() error {
	if o.Gap != nil {
		if err := errors.ValidateLength("gap", *o.Gap); err != nil {
			return err
		}
	}
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", o.Width}, {"height", o.Height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) || d.v < 0 {
			return errors.New(errors.ErrCodeInvalidViewport, "%s must be a positive number (got %g)", d.name, d.v)
		}
	}
	if o.Transition != nil && *o.Transition < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "transition cannot be negative (got %s)", *o.Transition)
	}
	if o.ZStep < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "z-step cannot be negative (got %d)", o.ZStep)
	}
	if o.Format != "" {
		if _, err := scene.ParseFormat(string(o.Format)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults validates the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// Settings are the values a resolution actually uses once options have been
// applied to a scene.
type Settings struct {
	Viewport   geom.Viewport
	Gap        float64
	Transition time.Duration
	ZStep      int
}

// Apply merges the options over the scene's own values.
func (o *Options) Apply(sc *scene.Scene) Settings {
	s := Settings{
		Viewport:   sc.Viewport(),
		Gap:        sc.Gap(),
		Transition: sc.Transition(),
		ZStep:      layout.DefaultZStep,
	}
	if o.Gap != nil {
		s.Gap = *o.Gap
	}
	if o.Width > 0 {
		s.Viewport.Width = o.Width
	}
	if o.Height > 0 {
		s.Viewport.Height = o.Height
	}
	if o.Transition != nil {
		s.Transition = *o.Transition
	}
	if o.ZStep > 0 {
		s.ZStep = o.ZStep
	}
	return s
}

// LayoutOptions returns the resolver options for the settings.
func (s Settings) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithGap(s.Gap),
		layout.WithTransition(s.Transition),
		layout.WithZStep(s.ZStep),
	}
}

// KeyOpts returns cache key options for the settings.
func (s Settings) KeyOpts(format scene.Format) cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Gap:        s.Gap,
		Width:      s.Viewport.Width,
		Height:     s.Viewport.Height,
		Transition: s.Transition,
		ZStep:      s.ZStep,
		Format:     string(format),
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the loaded scene.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene document.
	SceneHash string

	// Settings are the values the resolution used.
	Settings Settings

	// Layout holds the placements keyed by element id.
	Layout layout.Result[string]

	// Report is the serializable form of Layout.
	Report scene.Report

	// Encoded is Report in the requested format.
	Encoded []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the report came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements    int
	Placed      int
	Moved       int
	LoadTime    time.Duration
	ResolveTime time.Duration
}
