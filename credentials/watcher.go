package credentials

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultWatchDebounce = 100 * time.Millisecond

// Watcher reports changes to a credential file made by any process. Bursts of events
// (temp file create, rename) are collapsed into one callback.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches the directory holding path, since atomic replacement swaps the file's inode
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("[NewWatcher] onChange is required")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "[NewWatcher] NewWatcher")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, errors.Wrap(err, "[NewWatcher] Abs")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.Wrap(err, "[NewWatcher] Add")
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		done:     make(chan struct{}),
	}, nil
}

// Run delivers callbacks until ctx is cancelled or Close is called
func (w *Watcher) Run(ctx context.Context) {
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
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", w.path).Msg("credential watcher error")
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
