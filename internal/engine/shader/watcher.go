package shader

import (
	"context"
	"errors"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher marks library programs dirty when their files change on disk.
// The library recompiles them on the next Reload.
type Watcher struct {
	lib     *Library
	watcher *fsnotify.Watcher
	log     *zap.Logger
}

// NewWatcher watches the library's override directory.
func NewWatcher(lib *Library) (*Watcher, error) {
	if lib.Dir() == "" {
		return nil, errors.New("shader library has no directory to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(lib.Dir()); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{lib: lib, watcher: w, log: lib.log}, nil
}

// Run forwards change events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if w.lib.MarkDirty(event.Name) {
					w.log.Debug("shader source changed", zap.String("file", event.Name))
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("shader watcher error", zap.Error(err))
		}
	}
}

// Close stops watching without Run. Run closes the watcher itself.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
