package document

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Watcher reports when a document file is rewritten, so its page count can
// be refreshed.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
	log      *tuilog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path. Rapid successive writes collapse into one event
// debounce after the last of them.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace files by rename, so watch the directory.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		done:     make(chan struct{}),
		log:      tuilog.Log.With("path", abs),
	}, nil
}

// Start returns a channel that receives the document path after each
// settled change. It is closed when ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) <-chan string {
	events := make(chan string, 1)
	go w.loop(ctx, events)
	return events
}

// Stop releases the watcher.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context, events chan<- string) {
	defer close(events)
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
			w.mu.Unlock()

		case <-fire:
			select {
			case events <- w.path:
				w.log.Debug("Watcher: document changed")
			default:
				// an unread event already covers this change
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("Watcher error", "error", err)

		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
