package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	apperrors "github.com/leeforge/imagekit/errors"
	"github.com/leeforge/imagekit/logging"
	"github.com/leeforge/imagekit/media/processor"
)

// DefaultDebounce is how long a file must stay quiet before it is converted.
const DefaultDebounce = 500 * time.Millisecond

var watchedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true, ".svg": true,
}

// WatchConfig describes what a Watcher does with new files.
type WatchConfig struct {
	Dir       string
	Targets   []processor.Target
	Folder    string
	Overwrite bool
	Debounce  time.Duration
	// OnResult is called after every conversion, from the watch goroutine.
	OnResult func(JobResult)
}

// Watcher converts images as they are created or rewritten in a directory.
// Files are handed to the runner one at a time; events for a path are
// debounced so a file still being copied is converted once.
type Watcher struct {
	runner   *Runner
	cfg      WatchConfig
	fs       *fsnotify.Watcher
	produced map[string]bool
}

// NewWatcher starts watching cfg.Dir. Events are only consumed once Run is
// called.
func NewWatcher(runner *Runner, cfg WatchConfig) (*Watcher, error) {
	if len(cfg.Targets) == 0 {
		return nil, apperrors.NewValidation("watch needs at least one target")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("directory", cfg.Dir)
		}
		return nil, apperrors.Wrap(err, "stat watch directory")
	}
	if !info.IsDir() {
		return nil, apperrors.NewInvalid("dir", cfg.Dir, "is not a directory")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperrors.Wrap(err, "create file watcher")
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, apperrors.Wrap(err, "watch directory").WithDetail("path", cfg.Dir)
	}
	return &Watcher{
		runner:   runner,
		cfg:      cfg,
		fs:       fsw,
		produced: make(map[string]bool),
	}, nil
}

// Run handles events until ctx is done, then releases the watch. A canceled
// context is a normal stop and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	log := logging.WithContext(logging.FromContext(ctx), ctx).With(zap.String("dir", w.cfg.Dir))
	log.Info("watching for images")

	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.cfg.Debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped", zap.Int("pending", len(pending)))
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.wants(ev) {
				pending[ev.Name] = time.Now()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			for _, path := range settled(pending, now, w.cfg.Debounce) {
				delete(pending, path)
				if ctx.Err() != nil {
					break
				}
				w.convert(ctx, log, path)
			}
		}
	}
}

// Close stops the watch without waiting for Run.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) wants(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !watchedExtensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	return !w.produced[absPath(ev.Name)]
}

func (w *Watcher) convert(ctx context.Context, log logging.Logger, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	results, err := w.runner.Run(ctx, []Job{{
		InputPath: path,
		Targets:   w.cfg.Targets,
		Folder:    w.cfg.Folder,
		Overwrite: w.cfg.Overwrite,
	}})
	if len(results) == 0 {
		if err != nil {
			log.Error("watch conversion not started", zap.String("input", path), zap.Error(err))
		}
		return
	}
	result := results[0]
	for _, out := range result.Outputs {
		w.produced[absPath(out.Path)] = true
	}
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(result)
	}
}

// settled returns the pending paths whose last event is older than quiet,
// oldest first.
func settled(pending map[string]time.Time, now time.Time, quiet time.Duration) []string {
	var out []string
	for path, last := range pending {
		if now.Sub(last) >= quiet {
			out = append(out, path)
		}
	}
	sort.Slice(out, func(i, j int) bool { return pending[out[i]].Before(pending[out[j]]) })
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
