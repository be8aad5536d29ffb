package vault

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rjeczalik/notify"
)

const (
	eventBufferSize        = 64
	defaultDebounceTimeout = 500 * time.Millisecond
)

// FilterCallback returns true if an event for the path should be dropped.
type FilterCallback func(relPath string) bool

// Watcher turns raw filesystem events under the vault into debounced change
// signals. It does not say what changed, only that something did; the
// reconciliation run figures out the rest.
type Watcher struct {
	vault           *Vault
	rawEvents       chan notify.EventInfo
	changes         chan struct{}
	debounceTimeout time.Duration
	filter          FilterCallback
	filterMu        sync.RWMutex
	wg              sync.WaitGroup
}

func NewWatcher(v *Vault) *Watcher {
	return &Watcher{
		vault:           v,
		changes:         make(chan struct{}, 1),
		debounceTimeout: defaultDebounceTimeout,
	}
}

func (w *Watcher) SetDebounceTimeout(d time.Duration) {
	w.debounceTimeout = d
}

// FilterPaths sets a callback to drop events before debouncing.
func (w *Watcher) FilterPaths(cb FilterCallback) {
	w.filterMu.Lock()
	defer w.filterMu.Unlock()
	w.filter = cb
}

// Changes delivers at most one pending signal regardless of how many raw
// events collapsed into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("vault watcher start", "dir", w.vault.Root)

	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)
	if err := notify.Watch(w.vault.Root+"/...", w.rawEvents, notify.All); err != nil {
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.debounceLoop(ctx)
	}()

	return nil
}

func (w *Watcher) Stop() {
	notify.Stop(w.rawEvents)
	w.wg.Wait()
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.rawEvents:
			if !ok {
				return
			}
			if w.shouldDrop(ev.Path()) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounceTimeout)
				timerC = timer.C
			} else {
				timer.Reset(w.debounceTimeout)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.changes <- struct{}{}:
			default:
				// a signal is already pending
			}
		}
	}
}

func (w *Watcher) shouldDrop(absPath string) bool {
	rel, err := w.vault.RelPath(absPath)
	if err != nil {
		return true
	}

	w.filterMu.RLock()
	cb := w.filter
	w.filterMu.RUnlock()

	return cb != nil && cb(rel)
}
