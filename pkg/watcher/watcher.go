// Package watcher reports changes to a settings file.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls onChange after a watched file is written, created or renamed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(path string)
	debounce time.Duration
	logger   *log.Logger
}

// New creates a watcher. debounce <= 0 uses DefaultDebounce.
func New(onChange func(path string), debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		watcher:  w,
		onChange: onChange,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
	}, nil
}

// Start watches file until ctx is done. The parent directory is watched so
// that editors which replace the file on save are still seen.
func (w *Watcher) Start(ctx context.Context, file string) error {
	file = filepath.Clean(file)
	if err := w.watcher.Add(filepath.Dir(file)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(file))
	}

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != file {
					continue
				}
				if event.Op&fsnotify.Chmod == fsnotify.Chmod {
					continue
				}

				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(w.debounce, func() {
					w.logger.Debug("settings changed", "path", file)
					w.onChange(file)
				})

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "err", err)
			}
		}
	}()

	return nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
