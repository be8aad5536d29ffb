package sync

import (
	"sort"

	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/vault"
)

// Plan is the fully computed execution plan of a run: one decision per path
// in the union of the three views, partitioned into the ordered execution
// phases. Nothing in the plan depends on execution order.
type Plan struct {
	Decisions []*Decision

	Downloads     []*Decision
	Uploads       []*Decision
	LocalDeletes  []*Decision
	RemoteDeletes []*Decision
	Conflicts     []*Decision

	// Unchanged paths need no action; Cleanups are paths gone from both
	// sides whose baseline entry can be dropped without touching either
	// store.
	Unchanged []string
	Cleanups  []string
}

// BuildPlan classifies and decides every path in the union of the local,
// remote and baseline views. The maps must already share the same filtered
// domain. Paths are processed in sorted order so the plan is deterministic
// for identical inputs.
func BuildPlan(local map[string]*vault.FileInfo, remote map[string]*blob.ObjectInfo, baseline Baseline) *Plan {
	union := make(map[string]struct{}, len(local)+len(remote)+len(baseline))
	for path := range local {
		union[path] = struct{}{}
	}
	for path := range remote {
		union[path] = struct{}{}
	}
	for path := range baseline {
		union[path] = struct{}{}
	}

	paths := make([]string, 0, len(union))
	for path := range union {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	plan := &Plan{}
	for _, path := range paths {
		localFile := local[path]
		remoteObj := remote[path]
		entry := baseline[path]

		var localObserved, remoteObserved *int64
		var localMtime, remoteMtime int64
		if localFile != nil {
			localMtime = localFile.Mtime
			localObserved = &localMtime
		}
		if remoteObj != nil {
			remoteMtime = remoteObj.Mtime
			remoteObserved = &remoteMtime
		}

		var baseLocal, baseRemote *int64
		if entry != nil {
			baseLocal = entry.LocalMtime
			baseRemote = entry.RemoteMtime
		}

		localStatus := Classify(localObserved, baseLocal)
		remoteStatus := Classify(remoteObserved, baseRemote)

		d := &Decision{
			Path:      path,
			Local:     localStatus,
			Remote:    remoteStatus,
			Action:    Decide(localStatus, remoteStatus, localMtime, remoteMtime),
			LocalFile: localFile,
			RemoteObj: remoteObj,
		}
		plan.Decisions = append(plan.Decisions, d)

		switch d.Action {
		case ActionDownload:
			plan.Downloads = append(plan.Downloads, d)
		case ActionUpload:
			plan.Uploads = append(plan.Uploads, d)
		case ActionDeleteLocal:
			plan.LocalDeletes = append(plan.LocalDeletes, d)
		case ActionDeleteRemote:
			plan.RemoteDeletes = append(plan.RemoteDeletes, d)
		case ActionConflict:
			plan.Conflicts = append(plan.Conflicts, d)
		case ActionDoNothing:
			if localStatus == StatusDeleted && remoteStatus == StatusDeleted {
				plan.Cleanups = append(plan.Cleanups, path)
			} else {
				plan.Unchanged = append(plan.Unchanged, path)
			}
		}
	}

	return plan
}

// HasChanges reports whether anything in the plan touches either store or
// the baseline.
func (p *Plan) HasChanges() bool {
	return len(p.Downloads) > 0 ||
		len(p.Uploads) > 0 ||
		len(p.LocalDeletes) > 0 ||
		len(p.RemoteDeletes) > 0 ||
		len(p.Conflicts) > 0 ||
		len(p.Cleanups) > 0
}
