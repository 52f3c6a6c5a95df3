package build

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	errs "github.com/nickclare/texman/pkg/errors"
	"github.com/nickclare/texman/pkg/workspace"
)

// DefaultDebounce is the quiet period after the last change before a
// rebuild starts. Editors often write a file several times when saving.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers full rebuilds when files under watched directories change.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger
}

// NewWatcher watches every directory under each root, recursively.
func NewWatcher(roots []string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create file watcher")
	}

	w := &Watcher{fs: fw, debounce: debounce, logger: logger}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// WatchDocument returns a Watcher over everything a build of doc reads:
// the workspace root (marker file), prelude/ and docs/<key>/.
func WatchDocument(doc *workspace.Document, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	ws := doc.Workspace()
	w, err := NewWatcher([]string{ws.PreludeDir(), doc.Dir()}, debounce, logger)
	if err != nil {
		return nil, err
	}
	// The root itself is watched without recursion; docs/ holds other documents.
	if err := w.fs.Add(ws.Root()); err != nil {
		w.Close()
		return nil, errs.Wrap(errs.ErrCodeIO, err, "watch %s", ws.Root())
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.FromFS(err, path, "watch directory")
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return errs.Wrap(errs.ErrCodeIO, err, "watch %s", path)
		}
		return nil
	})
}

// Run blocks until ctx is done, calling onChange once per burst of relevant
// file events. onChange runs on the Run goroutine, so rebuilds never
// overlap; its errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "dir", event.Name, "err", err)
					}
				}
			}
			w.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if err := onChange(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("rebuild failed", "err", errs.UserMessage(err))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// ignored reports whether a change to path must not trigger a rebuild:
// build outputs and editor scratch files.
func ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case base == workspace.OutputName,
		strings.HasPrefix(base, ".texman-"),
		strings.HasPrefix(base, ".#"),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"):
		return true
	}
	return false
}
