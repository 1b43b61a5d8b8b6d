package pipeline

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panelpush/pkg/cache"
	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/geom"
	"github.com/matzehuels/panelpush/pkg/layout"
	"github.com/matzehuels/panelpush/pkg/observability"
	"github.com/matzehuels/panelpush/pkg/scene"
)

func ptr[T any](v T) *T { return &v }

func quietLogger() *log.Logger { return log.NewWithOptions(io.Discard, log.Options{}) }

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, quietLogger())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"overrides", Options{Gap: ptr(8.0), Width: 800, Height: 600, Transition: ptr(time.Second), ZStep: 100, Format: scene.FormatYAML}, false},
		{"zero gap", Options{Gap: ptr(0.0)}, false},

		{"negative gap", Options{Gap: ptr(-1.0)}, true},
		{"negative width", Options{Width: -800}, true},
		{"NaN height", Options{Height: math.NaN()}, true},
		{"negative transition", Options{Transition: ptr(-time.Second)}, true},
		{"negative z-step", Options{ZStep: -1}, true},
		{"unknown format", Options{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, DefaultFormat, o.Format)
	assert.NotNil(t, o.Logger)

	// idempotent
	o.Format = scene.FormatTOML
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, scene.FormatTOML, o.Format)
}

func TestOptionsApply(t *testing.T) {
	sc, err := scene.Load(filepath.Join("testdata", "city.toml"))
	require.NoError(t, err)

	var none Options
	assert.Equal(t, Settings{
		Viewport:   geom.Viewport{Width: 1600, Height: 900},
		Gap:        16,
		Transition: 250 * time.Millisecond,
		ZStep:      layout.DefaultZStep,
	}, none.Apply(sc))

	all := Options{Gap: ptr(0.0), Width: 1000, Transition: ptr(time.Duration(0)), ZStep: 3}
	assert.Equal(t, Settings{
		Viewport:   geom.Viewport{Width: 1000, Height: 900},
		Gap:        0,
		Transition: 0,
		ZStep:      3,
	}, all.Apply(sc))
}

func TestResolveFile(t *testing.T) {
	r := newTestRunner(t)

	res, err := r.ResolveFile(context.Background(), filepath.Join("testdata", "city.toml"), Options{})
	require.NoError(t, err)

	assert.False(t, res.CacheHit)
	assert.Equal(t, "city-map", res.Scene.Name())
	assert.Len(t, res.SceneHash, 64)
	assert.Equal(t, Stats{Elements: 5, Placed: 3, Moved: 2, LoadTime: res.Stats.LoadTime, ResolveTime: res.Stats.ResolveTime}, res.Stats)
	assert.Equal(t, []string{"search", "city-detail", "drawer"}, res.Layout.Order)

	p, ok := res.Layout.Get("city-detail")
	require.True(t, ok)
	assert.Equal(t, geom.Offset{DX: 316}, p.Offset)

	back, err := scene.UnmarshalReport(res.Encoded, scene.FormatJSON)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Report, back); diff != "" {
		t.Errorf("encoded report mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFileOverrides(t *testing.T) {
	r := newTestRunner(t)

	res, err := r.ResolveFile(context.Background(), filepath.Join("testdata", "city.toml"), Options{
		Gap:    ptr(0.0),
		Format: scene.FormatYAML,
	})
	require.NoError(t, err)

	p, _ := res.Layout.Get("city-detail")
	assert.Equal(t, geom.Offset{DX: 300}, p.Offset)
	assert.Equal(t, 0.0, res.Report.Gap)

	back, err := scene.UnmarshalReport(res.Encoded, scene.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, res.Report.Placements, back.Placements)
}

func TestResolveFileViewportOverride(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	path := filepath.Join("testdata", "city.toml")
	opts := Options{Width: 800, Height: 600}

	res, err := r.ResolveFile(ctx, path, opts)
	require.NoError(t, err)
	assert.Equal(t, geom.Viewport{Width: 800, Height: 600}, res.Settings.Viewport)
	assert.Equal(t, scene.Size{Width: 800, Height: 600}, res.Report.Viewport)

	back, err := scene.UnmarshalReport(res.Encoded, scene.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, scene.Size{Width: 800, Height: 600}, back.Viewport)

	cached, err := r.ResolveFile(ctx, path, opts)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	assert.Equal(t, scene.Size{Width: 800, Height: 600}, cached.Report.Viewport)
}

type cacheCounter struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (c *cacheCounter) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *cacheCounter) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
}

func (c *cacheCounter) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set++
}

func TestResolveFileCaching(t *testing.T) {
	counter := &cacheCounter{}
	observability.SetCacheHooks(counter)
	t.Cleanup(observability.Reset)

	r := newTestRunner(t)
	ctx := context.Background()
	path := filepath.Join("testdata", "city.toml")

	first, err := r.ResolveFile(ctx, path, Options{})
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	second, err := r.ResolveFile(ctx, path, Options{})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	if diff := cmp.Diff(first.Report, second.Report); diff != "" {
		t.Errorf("cached report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Layout, second.Layout); diff != "" {
		t.Errorf("cached layout mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, first.Encoded, second.Encoded)

	refreshed, err := r.ResolveFile(ctx, path, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheHit)

	narrow, err := r.ResolveFile(ctx, path, Options{Width: 1000})
	require.NoError(t, err)
	assert.False(t, narrow.CacheHit, "different viewport is a different key")

	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 2, counter.misses)
	assert.Equal(t, 3, counter.set)
}

func TestResolveSceneNullCache(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	sc := scene.New(scene.Document{
		Viewport: scene.Size{Width: 800, Height: 600},
		Elements: []scene.Element{
			{ID: "a", Priority: 2, Rect: &scene.Box{X: 100, Y: 100, Width: 200, Height: 100}},
			{ID: "b", Rect: &scene.Box{X: 150, Y: 150, Width: 200, Height: 100}},
		},
	})

	for range 2 {
		res, err := r.ResolveScene(context.Background(), sc, Options{})
		require.NoError(t, err)
		assert.False(t, res.CacheHit)
		assert.Equal(t, 2, res.Stats.Placed)
	}
}

func TestResolveSceneErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	sc := scene.New(scene.Document{Viewport: scene.Size{Width: 800, Height: 600}})

	_, err := r.ResolveScene(context.Background(), sc, Options{Gap: ptr(-1.0)})
	assert.Error(t, err)

	noViewport := scene.New(scene.Document{})
	_, err = r.ResolveScene(context.Background(), noViewport, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidViewport), "err = %v", err)

	// an override can supply a missing viewport
	_, err = r.ResolveScene(context.Background(), noViewport, Options{Width: 800, Height: 600})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ResolveScene(ctx, sc, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveFileMissing(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.ResolveFile(context.Background(), filepath.Join("testdata", "missing.toml"), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "err = %v", err)
}

func TestResolveFiles(t *testing.T) {
	r := newTestRunner(t)
	paths := []string{
		filepath.Join("testdata", "sidebar.yaml"),
		filepath.Join("testdata", "city.toml"),
	}

	results, err := r.ResolveFiles(context.Background(), paths, Options{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "sidebar", results[0].Scene.Name())
	assert.Equal(t, "city-map", results[1].Scene.Name())

	p, ok := results[0].Layout.Get("filters")
	require.True(t, ok)
	assert.Equal(t, geom.Offset{DY: 48 + 8 - 32}, p.Offset)
	assert.Equal(t, 1, results[0].Stats.Moved)
}

func TestResolveFilesStopsOnError(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	paths := []string{
		filepath.Join("testdata", "city.toml"),
		filepath.Join("testdata", "missing.yaml"),
	}

	_, err := r.ResolveFiles(context.Background(), paths, Options{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
