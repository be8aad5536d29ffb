package sync

import (
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Notifier receives engine lifecycle events. It is observability only and
// never influences control flow; implementations must not block.
type Notifier interface {
	PhaseChanged(phase EnginePhase)
	ActionDone(d *Decision, size int64)
	RunFinished(result *RunResult)
}

// LogNotifier reports engine events through slog.
type LogNotifier struct{}

func (LogNotifier) PhaseChanged(phase EnginePhase) {
	slog.Debug("sync phase", "phase", phase)
}

func (LogNotifier) ActionDone(d *Decision, size int64) {
	slog.Info("sync",
		"op", d.Action,
		"path", d.Path,
		"size", humanize.Bytes(uint64(size)),
	)
}

func (LogNotifier) RunFinished(result *RunResult) {
	if result.Status != RunSuccess {
		slog.Error("sync run finished",
			"status", result.Status,
			"error", result.Err,
			"took", result.Duration,
		)
		return
	}
	slog.Info("sync run finished",
		"status", result.Status,
		"downloads", result.Downloads,
		"uploads", result.Uploads,
		"localDeletes", result.LocalDeletes,
		"remoteDeletes", result.RemoteDeletes,
		"conflicts", result.Conflicts,
		"unchanged", result.Unchanged,
		"transferred", humanize.Bytes(uint64(result.BytesTransferred)),
		"took", result.Duration,
	)
}

var _ Notifier = LogNotifier{}
