package sync

// SyncAction is the engine's verdict for one path.
type SyncAction string

const (
	ActionUpload       SyncAction = "UPLOAD"
	ActionDownload     SyncAction = "DOWNLOAD"
	ActionDeleteLocal  SyncAction = "DELETE_LOCAL"
	ActionDeleteRemote SyncAction = "DELETE_REMOTE"
	ActionConflict     SyncAction = "CONFLICT"
	ActionDoNothing    SyncAction = "DO_NOTHING"
)
