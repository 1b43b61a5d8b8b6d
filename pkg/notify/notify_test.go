package notify

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matzehuels/panelpush/pkg/geom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	done := make(chan struct{})
	for range 10 {
		d.Debounce(func() {
			calls.Add(1)
			close(done)
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce(func() { calls.Add(1) })
	d.Cancel()
	d.Cancel()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncerImmediate(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce(func() { calls.Add(10) })
	d.Immediate(func() { calls.Add(1) })

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerDefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultDebounce, NewDebouncer(0).duration)
	assert.Equal(t, DefaultDebounce, NewDebouncer(-time.Second).duration)
}

func TestViewportDebouncerDeliversLast(t *testing.T) {
	v := NewViewportDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var got []geom.Viewport
	done := make(chan struct{}, 1)
	handler := func(vp geom.Viewport) {
		mu.Lock()
		got = append(got, vp)
		mu.Unlock()
		done <- struct{}{}
	}

	for w := 800.0; w <= 1600; w += 200 {
		v.Resize(geom.Viewport{Width: w, Height: 900}, handler)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("resize never delivered")
	}
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []geom.Viewport{{Width: 1600, Height: 900}}, got)
	assert.Equal(t, geom.Viewport{Width: 1600, Height: 900}, v.Last())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func waitEvent(t *testing.T, w *FileWatcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	writeFile(t, path, "gap = 16\n")

	w, err := NewFileWatcher(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()), "second Start is a no-op")

	// a burst of saves is delivered once
	for i := range 5 {
		writeFile(t, path, "gap = "+string(rune('0'+i))+"\n")
	}
	ev := waitEvent(t, w)
	assert.Equal(t, w.Path(), ev.Path)
	assert.Contains(t, []string{"write", "create"}, ev.Op)

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected second event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFileWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	writeFile(t, path, "")

	w, err := NewFileWatcher(path, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, filepath.Join(dir, "other.toml"), "gap = 1\n")

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestFileWatcherSeesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeFile(t, path, "gap: 1\n")

	w, err := NewFileWatcher(path, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))

	tmp := filepath.Join(dir, ".scene.yaml.swp")
	writeFile(t, tmp, "gap: 2\n")
	require.NoError(t, os.Rename(tmp, path))

	waitEvent(t, w)
}

func TestFileWatcherStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")

	w, err := NewFileWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()

	_, ok := <-w.Events()
	assert.False(t, ok, "events channel should be closed")
	assert.Error(t, w.Start(context.Background()))
}

func TestFileWatcherStopWithoutStart(t *testing.T) {
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "scene.toml"))
	require.NoError(t, err)
	w.Stop()

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestFileWatcherContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")

	w, err := NewFileWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(time.Second):
		t.Fatal("event loop did not exit on cancel")
	}
	w.Stop()
}

func TestFileWatcherMissingDir(t *testing.T) {
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing", "scene.toml"))
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}
