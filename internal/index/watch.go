package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// Reloader is anything that can re-read itself from disk. Both Dump and
// Names satisfy it.
type Reloader interface {
	Reload() error
}

// Watcher reloads dump files when they change on disk. Events are
// debounced because dump downloads arrive as bursts of partial writes.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	targets  map[string]Reloader
	logger   *slog.Logger
}

// NewWatcher creates a watcher with the given debounce window. A zero
// debounce defaults to 500ms.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, seqerrors.New(seqerrors.ErrCodeInternal, "cannot create file watcher", err)
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		targets:  make(map[string]Reloader),
		logger:   slog.Default(),
	}, nil
}

// Add registers a file to watch. The parent directory is watched rather
// than the file itself so atomic replace (write to temp, rename over) is
// still observed.
func (w *Watcher) Add(path string, r Reloader) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return seqerrors.New(seqerrors.ErrCodeInternal, "cannot resolve watch path", err)
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		return seqerrors.New(seqerrors.ErrCodeInternal, "cannot watch directory", err)
	}
	w.targets[abs] = r
	return nil
}

// Run processes events until the context is cancelled. Reload failures
// are logged and the previous in-memory contents stay live.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	pending := make(map[string]Reloader)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			r, watched := w.targets[abs]
			if !watched {
				continue
			}
			pending[abs] = r
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			for path, r := range pending {
				if err := r.Reload(); err != nil {
					w.logger.Warn("dump_reload_failed",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				w.logger.Info("dump_reloaded", slog.String("path", path))
			}
			pending = make(map[string]Reloader)
			fire = nil

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}
