package sync

import (
	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/vault"
)

// Decision is the engine's verdict for a single path, together with the
// observations that back it.
type Decision struct {
	Path   string
	Local  FileStatus
	Remote FileStatus
	Action SyncAction

	// Side observations; nil when the side was not observed this run.
	LocalFile *vault.FileInfo
	RemoteObj *blob.ObjectInfo
}

// Decide maps a pair of per-side statuses to the action that reconciles them.
// The mtimes are only consulted for the both-changed tie-break and must be
// the observed values of this run.
//
// The deletion-vs-change check must run before the generic both-changed
// tie-break: a DELETED status has no observed mtime to compare, and a change
// on the other side beats the deletion unconditionally.
func Decide(local, remote FileStatus, localMtime, remoteMtime int64) SyncAction {
	switch {
	case local == StatusUnchanged && remote == StatusUnchanged:
		return ActionDoNothing

	case remote == StatusUnchanged:
		// only the local side changed
		if local == StatusDeleted {
			return ActionDeleteRemote
		}
		return ActionUpload

	case local == StatusUnchanged:
		// only the remote side changed
		if remote == StatusDeleted {
			return ActionDeleteLocal
		}
		return ActionDownload

	case local == StatusDeleted && remote == StatusDeleted:
		return ActionDoNothing

	case local == StatusDeleted:
		// remote created or modified beats the local deletion
		return ActionDownload

	case remote == StatusDeleted:
		// local created or modified beats the remote deletion
		return ActionUpload

	default:
		// both sides created or modified: newest mtime wins
		if localMtime > remoteMtime {
			return ActionUpload
		}
		if remoteMtime > localMtime {
			return ActionDownload
		}
		return ActionConflict
	}
}
