package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/vault"
)

// EnginePhase is the engine's position in a run.
type EnginePhase string

const (
	PhaseIdle         EnginePhase = "IDLE"
	PhaseSnapshotting EnginePhase = "SNAPSHOTTING"
	PhasePlanning     EnginePhase = "PLANNING"
	PhaseExecuting    EnginePhase = "EXECUTING"
	PhaseCommitting   EnginePhase = "COMMITTING"
	PhaseFailed       EnginePhase = "FAILED"
)

// RunStatus is the outcome of a single RunOnce.
type RunStatus string

const (
	RunSuccess        RunStatus = "SUCCESS"
	RunFailed         RunStatus = "FAILED"
	RunAlreadyRunning RunStatus = "ALREADY_RUNNING"
)

// RunResult summarizes one reconciliation run.
type RunResult struct {
	Status RunStatus
	Err    error

	Downloads        int
	Uploads          int
	LocalDeletes     int
	RemoteDeletes    int
	Conflicts        int
	Unchanged        int
	BytesTransferred int64
	Duration         time.Duration
}

// Engine reconciles the vault against the remote store. A run either fully
// reconciles or fails with the committed baseline untouched; partially
// applied external effects are safe because re-evaluation from the last good
// baseline redoes them idempotently.
type Engine struct {
	vault    *vault.Vault
	remote   blob.Store
	journal  BaselineStore
	filter   *PathFilter
	notifier Notifier

	muSync  sync.Mutex
	muPhase sync.Mutex
	phase   EnginePhase
}

func NewEngine(v *vault.Vault, remote blob.Store, journal BaselineStore, filter *PathFilter, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Engine{
		vault:    v,
		remote:   remote,
		journal:  journal,
		filter:   filter,
		notifier: notifier,
		phase:    PhaseIdle,
	}
}

// Phase returns the engine's current phase.
func (e *Engine) Phase() EnginePhase {
	e.muPhase.Lock()
	defer e.muPhase.Unlock()
	return e.phase
}

func (e *Engine) setPhase(p EnginePhase) {
	e.muPhase.Lock()
	e.phase = p
	e.muPhase.Unlock()
	e.notifier.PhaseChanged(p)
}

// RunOnce performs one full reconciliation. A second call while a run is in
// progress is rejected immediately, without queuing.
func (e *Engine) RunOnce(ctx context.Context) *RunResult {
	if !e.muSync.TryLock() {
		return &RunResult{Status: RunAlreadyRunning, Err: ErrAlreadyRunning}
	}
	defer e.muSync.Unlock()

	tStart := time.Now()

	// SNAPSHOTTING: all three views, same filtered domain. Any collaborator
	// error aborts before anything is decided; a partial snapshot is never
	// used.
	e.setPhase(PhaseSnapshotting)

	committed, err := e.journal.Load()
	if err != nil {
		return e.fail(tStart, fmt.Errorf("%w: load baseline: %w", ErrPersistence, err))
	}

	localView, err := e.vault.Scan(e.filter.IsExcluded)
	if err != nil {
		return e.fail(tStart, fmt.Errorf("%w: scan vault: %w", ErrStoreUnavailable, err))
	}
	for path := range localView {
		if e.filter.IsExcluded(path) {
			delete(localView, path)
		}
	}

	remoteList, err := e.remote.List(ctx)
	if err != nil {
		return e.fail(tStart, fmt.Errorf("%w: list remote: %w", ErrStoreUnavailable, err))
	}
	remoteView := make(map[string]*blob.ObjectInfo, len(remoteList))
	for _, obj := range remoteList {
		if e.filter.IsExcluded(obj.Path) {
			continue
		}
		remoteView[obj.Path] = obj
	}

	baselineView := make(Baseline, len(committed))
	for path, entry := range committed {
		if e.filter.IsExcluded(path) {
			continue
		}
		baselineView[path] = entry
	}

	// PLANNING: pure, fully computed before anything executes.
	e.setPhase(PhasePlanning)
	plan := BuildPlan(localView, remoteView, baselineView)

	if plan.HasChanges() {
		slog.Debug("sync plan",
			"downloads", len(plan.Downloads),
			"uploads", len(plan.Uploads),
			"localDeletes", len(plan.LocalDeletes),
			"remoteDeletes", len(plan.RemoteDeletes),
			"conflicts", len(plan.Conflicts),
			"cleanups", len(plan.Cleanups),
			"unchanged", len(plan.Unchanged),
		)
	}

	// EXECUTING: downloads and uploads are non-destructive and safe to redo,
	// so they run before deletes; conflicts run last since they touch both
	// sides. The working baseline advances after each successful action and
	// is thrown away wholesale on the first failure.
	e.setPhase(PhaseExecuting)
	working := committed.Clone()

	result := &RunResult{Status: RunSuccess, Unchanged: len(plan.Unchanged)}

	for _, d := range plan.Downloads {
		size, err := e.applyDownload(ctx, d, working)
		if err != nil {
			return e.fail(tStart, err)
		}
		result.Downloads++
		result.BytesTransferred += size
	}

	for _, d := range plan.Uploads {
		size, err := e.applyUpload(ctx, d, working)
		if err != nil {
			return e.fail(tStart, err)
		}
		result.Uploads++
		result.BytesTransferred += size
	}

	for _, d := range plan.LocalDeletes {
		if err := e.applyDeleteLocal(d, working); err != nil {
			return e.fail(tStart, err)
		}
		result.LocalDeletes++
	}

	for _, d := range plan.RemoteDeletes {
		if err := e.applyDeleteRemote(ctx, d, working); err != nil {
			return e.fail(tStart, err)
		}
		result.RemoteDeletes++
	}

	for _, d := range plan.Conflicts {
		size, err := e.applyConflict(ctx, d, working)
		if err != nil {
			return e.fail(tStart, err)
		}
		result.Conflicts++
		result.BytesTransferred += size
	}

	// gone from both sides: drop the stale baseline entries, no store I/O
	for _, path := range plan.Cleanups {
		delete(working, path)
	}

	// COMMITTING: persist the working baseline wholesale. One-sided entries
	// are discarded rather than persisted half-formed.
	e.setPhase(PhaseCommitting)
	if err := e.journal.Save(working.Sanitized()); err != nil {
		return e.fail(tStart, fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	// best-effort housekeeping, never escalated to run failure
	if err := e.vault.PruneEmptyDirs(); err != nil {
		slog.Warn("prune empty dirs", "error", err)
	}

	e.setPhase(PhaseIdle)
	result.Duration = time.Since(tStart)
	e.notifier.RunFinished(result)
	return result
}

func (e *Engine) fail(tStart time.Time, err error) *RunResult {
	e.setPhase(PhaseFailed)
	result := &RunResult{
		Status:   RunFailed,
		Err:      err,
		Duration: time.Since(tStart),
	}
	e.notifier.RunFinished(result)

	// the run is over; the engine itself is ready for the next request
	e.setPhase(PhaseIdle)
	return result
}

func (e *Engine) applyDownload(ctx context.Context, d *Decision, working Baseline) (int64, error) {
	data, err := e.remote.Get(ctx, d.RemoteObj.RemoteID)
	if err != nil {
		return 0, fmt.Errorf("%w: download %q: %w", ErrIO, d.Path, err)
	}
	if err := e.vault.Write(d.Path, data, d.RemoteObj.Mtime); err != nil {
		return 0, fmt.Errorf("%w: write %q: %w", ErrIO, d.Path, err)
	}
	written, err := e.vault.Mtime(d.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %q: %w", ErrIO, d.Path, err)
	}

	working.SetSynced(d.Path, written, d.RemoteObj.Mtime)
	e.notifier.ActionDone(d, int64(len(data)))
	return int64(len(data)), nil
}

func (e *Engine) applyUpload(ctx context.Context, d *Decision, working Baseline) (int64, error) {
	data, err := e.vault.Read(d.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %q: %w", ErrIO, d.Path, err)
	}
	res, err := e.remote.Put(ctx, d.Path, data)
	if err != nil {
		return 0, fmt.Errorf("%w: upload %q: %w", ErrIO, d.Path, err)
	}

	working.SetSynced(d.Path, d.LocalFile.Mtime, res.Mtime)
	e.notifier.ActionDone(d, int64(len(data)))
	return int64(len(data)), nil
}

func (e *Engine) applyDeleteLocal(d *Decision, working Baseline) error {
	if err := e.vault.Delete(d.Path); err != nil {
		return fmt.Errorf("%w: delete local %q: %w", ErrIO, d.Path, err)
	}

	working.ClearLocal(d.Path)
	e.notifier.ActionDone(d, 0)
	return nil
}

func (e *Engine) applyDeleteRemote(ctx context.Context, d *Decision, working Baseline) error {
	if err := e.remote.Delete(ctx, d.Path); err != nil {
		return fmt.Errorf("%w: delete remote %q: %w", ErrIO, d.Path, err)
	}

	working.ClearRemote(d.Path)
	e.notifier.ActionDone(d, 0)
	return nil
}

// applyConflict preserves both versions: the remote copy is saved under an
// alternate name (stamped with the remote mtime) on both sides, then the
// local copy is uploaded over the original path so it wins going forward.
func (e *Engine) applyConflict(ctx context.Context, d *Decision, working Baseline) (int64, error) {
	remoteData, err := e.remote.Get(ctx, d.RemoteObj.RemoteID)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch conflicting %q: %w", ErrIO, d.Path, err)
	}

	altPath := conflictAltPath(d.Path, d.RemoteObj.Mtime)
	if err := e.vault.Write(altPath, remoteData, d.RemoteObj.Mtime); err != nil {
		return 0, fmt.Errorf("%w: write conflict copy %q: %w", ErrIO, altPath, err)
	}
	altRes, err := e.remote.Put(ctx, altPath, remoteData)
	if err != nil {
		return 0, fmt.Errorf("%w: upload conflict copy %q: %w", ErrIO, altPath, err)
	}
	altWritten, err := e.vault.Mtime(altPath)
	if err != nil {
		return 0, fmt.Errorf("%w: stat conflict copy %q: %w", ErrIO, altPath, err)
	}
	working.SetSynced(altPath, altWritten, altRes.Mtime)

	localData, err := e.vault.Read(d.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %q: %w", ErrIO, d.Path, err)
	}
	res, err := e.remote.Put(ctx, d.Path, localData)
	if err != nil {
		return 0, fmt.Errorf("%w: upload %q: %w", ErrIO, d.Path, err)
	}
	working.SetSynced(d.Path, d.LocalFile.Mtime, res.Mtime)

	e.notifier.ActionDone(d, int64(len(remoteData)+len(localData)))
	return int64(len(remoteData) + len(localData)), nil
}
