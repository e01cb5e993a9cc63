package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
)

// debounceWindow collapses editor write bursts into a single change event.
const debounceWindow = 250 * time.Millisecond

// Watcher watches the config directory and signals when the config file
// changes on disk, so long-lived consumers (the tray) can refresh.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// NewWatcher creates a watcher for the given store's backing file.
func NewWatcher(store *Store) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		path:      store.Path(),
		changes:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		log:       logging.Component("config-watcher"),
	}

	return w, nil
}

// Changes returns the channel that receives a signal per config change.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching. The config file is watched through its parent
// directory so atomic rename saves are observed.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.fsWatcher.Close()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleNotify()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

// scheduleNotify debounces rapid successive events into one notification.
func (w *Watcher) scheduleNotify() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(debounceWindow, func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	})
}
