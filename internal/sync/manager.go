package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dim0x69/kisss3/internal/vault"
)

const defaultSyncInterval = 30 * time.Second

// Manager drives the engine: one run immediately on start, then one per
// interval, plus watcher-triggered runs when a watcher is attached. Overlap
// is impossible by construction since the engine rejects concurrent runs.
type Manager struct {
	engine   *Engine
	watcher  *vault.Watcher
	interval time.Duration
	wg       sync.WaitGroup
}

func NewManager(engine *Engine, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &Manager{
		engine:   engine,
		interval: interval,
	}
}

// AttachWatcher makes local filesystem changes trigger a run without waiting
// for the next interval tick.
func (m *Manager) AttachWatcher(w *vault.Watcher) {
	m.watcher = w
}

func (m *Manager) Start(ctx context.Context) error {
	slog.Info("sync manager start", "interval", m.interval)

	// initial run before any timers
	if res := m.engine.RunOnce(ctx); res.Status == RunFailed && !errors.Is(res.Err, context.Canceled) {
		slog.Error("initial sync failed", "error", res.Err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		// a timer, not a ticker, so a slow run does not queue ticks
		timer := time.NewTimer(m.interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				m.run(ctx)
				timer.Reset(m.interval)
			}
		}
	}()

	if m.watcher != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-m.watcher.Changes():
					if !ok {
						return
					}
					m.run(ctx)
				}
			}
		}()
	}

	return nil
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("sync manager stop")
}

func (m *Manager) run(ctx context.Context) {
	res := m.engine.RunOnce(ctx)
	if res.Status == RunFailed && !errors.Is(res.Err, context.Canceled) {
		slog.Error("sync failed", "error", res.Err)
	}
}
