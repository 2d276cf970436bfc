package out

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"dojo/internal/modules/watch/domain"
	watchout "dojo/internal/modules/watch/port/out"
	"dojo/internal/platform/logging"
)

// FSNotifyObserver watches a directory tree. Directories created after Watch
// are added as they appear; ignored directories are never watched.
type FSNotifyObserver struct {
	ignore domain.Ignore
	log    *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewFSNotifyObserver(ignore domain.Ignore, logger *zap.Logger) watchout.Observer {
	return &FSNotifyObserver{ignore: ignore, log: logging.OrNop(logger).Named("observer"), done: make(chan struct{})}
}

func (o *FSNotifyObserver) Watch(ctx context.Context, root string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	o.watcher = watcher
	o.mu.Unlock()
	if err := o.addTree(root, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan string)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-o.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if o.ignore.Match(root, event.Name) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := o.addTree(root, event.Name); err != nil {
							o.log.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
						}
					}
				}
				if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
					continue
				}
				select {
				case out <- event.Name:
				case <-ctx.Done():
					return
				case <-o.done:
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				o.log.Warn("fsnotify", zap.Error(err))
			}
		}
	}()
	return out, nil
}

func (o *FSNotifyObserver) addTree(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && o.ignore.Match(root, path) {
			return filepath.SkipDir
		}
		return o.watcher.Add(path)
	})
}

// Close stops the event goroutine and releases the watcher. It is safe to
// call more than once.
func (o *FSNotifyObserver) Close() error {
	var err error
	o.once.Do(func() {
		close(o.done)
		o.wg.Wait()
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.watcher != nil {
			err = o.watcher.Close()
		}
	})
	return err
}
