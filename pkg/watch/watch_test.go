package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TouchController/E1epack/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

type runner struct {
	calls atomic.Int32
	fired chan struct{}
}

func newRunner() *runner {
	return &runner{fired: make(chan struct{}, 16)}
}

func (r *runner) rebuild(fail bool) func(context.Context) error {
	return func(context.Context) error {
		r.calls.Add(1)
		r.fired <- struct{}{}
		if fail {
			return errors.New("broken build")
		}
		return nil
	}
}

func (r *runner) expect(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(waitFor):
		t.Fatal("rebuild was not triggered")
	}
}

func (r *runner) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-r.fired:
		t.Fatal("unexpected rebuild")
	case <-time.After(d):
	}
}

func start(t *testing.T, w *watch.Watcher, rebuild func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, rebuild) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("watcher did not stop")
		}
	})

	select {
	case <-w.Ready():
	case <-time.After(waitFor):
		t.Fatal("watcher never became ready")
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	r := newRunner()
	w := watch.New(dir, 20*time.Millisecond)
	start(t, w, r.rebuild(false))
	r.expect(t) // initial build

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.toml"), []byte("id = \"a\""), 0644))
	r.expect(t)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	r := newRunner()
	w := watch.New(dir, 20*time.Millisecond)
	start(t, w, r.rebuild(false))
	r.expect(t)

	nested := filepath.Join(dir, "a", "data")
	require.NoError(t, os.MkdirAll(nested, 0755))
	r.expect(t)

	// give the watcher time to register the new directories
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(nested, "x.mcfunction"), []byte("say x"), 0644))
	r.expect(t)
}

func TestWatcher_IgnoresOutputDirs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(out, 0755))

	r := newRunner()
	w := watch.New(dir, 20*time.Millisecond, out)
	start(t, w, r.rebuild(false))
	r.expect(t)

	require.NoError(t, os.WriteFile(filepath.Join(out, "a.zip"), []byte("zip"), 0644))
	r.expectNone(t, 200*time.Millisecond)
}

func TestWatcher_KeepsWatchingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	r := newRunner()
	w := watch.New(dir, 20*time.Millisecond)
	start(t, w, r.rebuild(true))
	r.expect(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("1"), 0644))
	r.expect(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("2"), 0644))
	r.expect(t)
	assert.GreaterOrEqual(t, r.calls.Load(), int32(3))
}

func TestWatcher_MissingDir(t *testing.T) {
	w := watch.New(filepath.Join(t.TempDir(), "missing"), 0)
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}
