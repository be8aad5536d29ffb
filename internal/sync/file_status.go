package sync

// FileStatus is one side's change status for a path, relative to the baseline.
type FileStatus string

const (
	StatusCreated   FileStatus = "CREATED"
	StatusModified  FileStatus = "MODIFIED"
	StatusDeleted   FileStatus = "DELETED"
	StatusUnchanged FileStatus = "UNCHANGED"
)

// Classify compares one side's observation against the baseline's stored
// mtime for that side. Both values are unix milliseconds; nil means absent.
// Comparison is exact, no tolerance.
//
// A path that is neither observed nor known to the baseline on this side
// classifies as UNCHANGED, so a single-sided path decides purely on the
// other side's status.
func Classify(observed, baseline *int64) FileStatus {
	switch {
	case observed != nil && baseline == nil:
		return StatusCreated
	case observed != nil && *baseline < *observed:
		return StatusModified
	case observed != nil:
		return StatusUnchanged
	case baseline != nil:
		return StatusDeleted
	default:
		return StatusUnchanged
	}
}
