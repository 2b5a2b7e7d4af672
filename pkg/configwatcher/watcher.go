package configwatcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = time.Second

// Reloader is called once per burst of changes to the watched file.
type Reloader func() error

// WatchFile calls reload after path changes on disk and stays quiet for
// debounce. The parent directory is watched, because editors and atomic
// saves replace the file instead of writing to it. It returns when ctx is
// done.
func WatchFile(ctx context.Context, path string, debounce time.Duration, reload Reloader) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return err
	}

	go run(ctx, watcher, absPath, debounce, reload)
	return nil
}

func run(ctx context.Context, watcher *fsnotify.Watcher, absPath string, debounce time.Duration, reload Reloader) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			if err := reload(); err != nil {
				logger.Log.Error("Failed to reload watched file", zap.String("path", absPath), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("File watcher error", zap.Error(err))
		}
	}
}
