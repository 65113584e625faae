package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
	"github.com/leeforge/imagekit/media/processor"
	"github.com/leeforge/imagekit/media/storage"
)

func startWatcher(t *testing.T, runner *Runner, cfg WatchConfig) <-chan JobResult {
	t.Helper()
	results := make(chan JobResult, 8)
	cfg.OnResult = func(r JobResult) { results <- r }
	if cfg.Debounce == 0 {
		cfg.Debounce = 40 * time.Millisecond
	}
	w, err := NewWatcher(runner, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(logging.ToContext(context.Background(), logging.NewNop()))
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return results
}

func nextResult(t *testing.T, results <-chan JobResult) JobResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no conversion within 5s")
		return JobResult{}
	}
}

func TestWatcherConvertsNewImages(t *testing.T) {
	in := t.TempDir()
	store := storage.NewMemoryProvider()
	runner := NewRunner(newPipeline(t), store)
	results := startWatcher(t, runner, WatchConfig{
		Dir:     in,
		Targets: []processor.Target{{Format: processor.FormatJPEG}},
	})

	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, ".hidden.png"), []byte("ignored"), 0o644))
	writePNG(t, in, "drop.png", 12, 6)

	r := nextResult(t, results)
	assert.True(t, r.Success)
	assert.Equal(t, filepath.Join(in, "drop.png"), r.InputPath)
	_, ok := store.Bytes("drop.jpg")
	assert.True(t, ok)

	select {
	case extra := <-results:
		t.Fatalf("unexpected conversion of %s", extra.InputPath)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresItsOwnOutputs(t *testing.T) {
	in := t.TempDir()
	provider, err := storage.NewLocalProvider(in)
	require.NoError(t, err)
	runner := NewRunner(newPipeline(t), provider)
	results := startWatcher(t, runner, WatchConfig{
		Dir:     in,
		Targets: []processor.Target{{Format: processor.FormatPNG}},
	})

	writePNG(t, in, "self.png", 8, 8)

	r := nextResult(t, results)
	require.True(t, r.Success)
	require.Len(t, r.Outputs, 1)
	assert.Equal(t, filepath.Join(in, "self-1.png"), r.Outputs[0].Path)

	select {
	case extra := <-results:
		t.Fatalf("converted its own output %s", extra.InputPath)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReportsFailures(t *testing.T) {
	in := t.TempDir()
	runner := NewRunner(newPipeline(t), storage.NewMemoryProvider())
	results := startWatcher(t, runner, WatchConfig{
		Dir:     in,
		Targets: []processor.Target{{Format: processor.FormatPNG}},
	})

	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("not a png"), 0o644))

	r := nextResult(t, results)
	assert.False(t, r.Success)
	assert.True(t, apperrors.IsType(r.Error, apperrors.ErrorTypeDecode))
}

func TestNewWatcherErrors(t *testing.T) {
	runner := NewRunner(newPipeline(t), storage.NewMemoryProvider())
	targets := []processor.Target{{Format: processor.FormatPNG}}

	_, err := NewWatcher(runner, WatchConfig{Dir: t.TempDir()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = NewWatcher(runner, WatchConfig{Dir: filepath.Join(t.TempDir(), "missing"), Targets: targets})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	file := writePNG(t, t.TempDir(), "a.png", 2, 2)
	_, err = NewWatcher(runner, WatchConfig{Dir: file, Targets: targets})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalid))
}

func TestSettledOrdersOldestFirst(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b.png": now.Add(-2 * time.Second),
		"a.png": now.Add(-3 * time.Second),
		"c.png": now,
	}

	assert.Equal(t, []string{"a.png", "b.png"}, settled(pending, now, time.Second))
}
