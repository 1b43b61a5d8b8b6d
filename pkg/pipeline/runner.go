package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/panelpush/pkg/cache"
	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
	"github.com/matzehuels/panelpush/pkg/observability"
	"github.com/matzehuels/panelpush/pkg/scene"
)

// cacheKeyType labels result entries in cache hooks.
const cacheKeyType = "result"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ResolveFile loads the scene at path and resolves it.
func (r *Runner) ResolveFile(ctx context.Context, path string, opts Options) (result *Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, path, 0)
	defer func() {
		placed := 0
		if result != nil {
			placed = result.Stats.Placed
		}
		observability.Resolve().OnResolveComplete(ctx, path, placed, time.Since(start), err)
	}()

	sc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)
	r.Logger.Debug("loaded scene", "path", path, "elements", len(sc.Doc.Elements), "duration", loadTime)

	result, err = r.ResolveScene(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ResolveScene resolves an already loaded scene.
func (r *Runner) ResolveScene(ctx context.Context, sc *scene.Scene, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the name is hashed too since reports carry it
	docData, err := json.Marshal(struct {
		Name string
		Doc  scene.Document
	}{sc.Name(), sc.Doc})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash scene %s", sc.Name())
	}

	settings := opts.Apply(sc)
	if err := errors.ValidateViewport(settings.Viewport.Width, settings.Viewport.Height); err != nil {
		return nil, err
	}

	result := &Result{
		Scene:     sc,
		SceneHash: cache.Hash(docData),
		Settings:  settings,
	}
	result.Stats.Elements = len(sc.Doc.Elements)

	key := r.Keyer.ResultKey(result.SceneHash, settings.KeyOpts(opts.Format))

	resolveStart := time.Now()
	if report, ok := r.cached(ctx, key, opts); ok {
		result.Report = report
		result.Layout = layoutFromReport(report)
		result.CacheHit = true
	} else {
		result.Layout = layout.Resolve(sc.Elements(), sc.Rects(), settings.Viewport, settings.LayoutOptions()...)
		result.Report = scene.NewReport(sc, result.Layout, settings.Viewport, settings.Gap)
		r.store(ctx, key, result.Report)
	}
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.Placed = result.Layout.Len()
	for _, p := range result.Report.Placements {
		if p.Moved() {
			result.Stats.Moved++
		}
	}

	result.Encoded, err = scene.MarshalReport(result.Report, opts.Format)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("resolved scene",
		"scene", sc.Name(),
		"placed", result.Stats.Placed,
		"moved", result.Stats.Moved,
		"cached", result.CacheHit,
		"duration", result.Stats.ResolveTime)
	return result, nil
}

// ResolveFiles resolves several scene files concurrently, at most
// concurrency at a time. Results are in the order of paths. The first error
// cancels the remaining work.
func (r *Runner) ResolveFiles(ctx context.Context, paths []string, opts Options, concurrency int) ([]*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			res, err := r.ResolveFile(gctx, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) cached(ctx context.Context, key string, opts Options) (scene.Report, bool) {
	if opts.Refresh {
		return scene.Report{}, false
	}
	var report scene.Report
	switch err := cache.GetJSON(ctx, r.Cache, key, &report); {
	case err == nil:
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
		return report, true
	case err == cache.ErrCacheMiss:
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	default:
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		r.Logger.Warn("cache read failed", "err", err)
	}
	return scene.Report{}, false
}

func (r *Runner) store(ctx context.Context, key string, report scene.Report) {
	size, err := cache.SetJSON(ctx, r.Cache, key, report, cache.DefaultTTL)
	if err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, size)
}

// layoutFromReport rebuilds placements from a cached report.
func layoutFromReport(report scene.Report) layout.Result[string] {
	res := layout.Result[string]{
		Placements: make(map[string]layout.Placement, len(report.Placements)),
		Order:      make([]string, 0, len(report.Placements)),
	}
	for _, p := range report.Placements {
		res.Placements[p.ID] = layout.Placement{
			Offset:     geom.Offset{DX: p.DX, DY: p.DY},
			ZIndex:     p.ZIndex,
			Transition: time.Duration(p.TransitionMS) * time.Millisecond,
		}
		res.Order = append(res.Order, p.ID)
	}
	return res
}
