// Package watch reloads a document from disk when it changes.
package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum time between two reloads.
const DefaultInterval = 500 * time.Millisecond

// Watcher calls a function with the new content of a file whenever it is
// written. Bursts of writes are collapsed into one reload per interval.
type Watcher struct {
	path     string
	onChange func(content string)
	limiter  *rate.Limiter
	logger   *log.Logger
	watcher  *fsnotify.Watcher
	last     []byte
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the minimum time between reloads.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New watches path. The directory is watched rather than the file so
// editors that replace the file on save are still noticed.
func New(path string, onChange func(content string), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watch: nil change handler")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		limiter:  rate.NewLimiter(rate.Every(DefaultInterval), 1),
		logger:   log.Default().WithPrefix("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.last, err = os.ReadFile(abs); err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		_ = w.watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w.logger.Info("watching file", "path", abs)
	return w, nil
}

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug("file event", "file", event.Name, "event", event.Op)
			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			w.drain()
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// drain discards events queued while waiting on the limiter.
func (w *Watcher) drain() {
	for {
		select {
		case _, ok := <-w.watcher.Events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (w *Watcher) reload() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("reload failed", "path", w.path, "error", err)
		return
	}
	if bytes.Equal(content, w.last) {
		return
	}
	w.last = content
	w.onChange(string(content))
}
