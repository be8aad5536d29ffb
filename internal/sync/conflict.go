package sync

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// conflictMarker tags the alternate file that preserves the losing version of
// a conflict. Plain dot-suffix for command-line friendliness.
const conflictMarker = ".sync-conflict"

// conflictTimeFormat stamps the alternate filename with the remote version's
// mtime (YYYYMMDDHHMMSS) so rotated conflicts sort lexicographically by time.
const conflictTimeFormat = "20060102150405"

// conflictAltPath derives the alternate path that receives the remote version
// of a conflicted file: marker and timestamp are inserted before the
// extension.
//
//	notes/a.md -> notes/a.sync-conflict.20250823094500.md
func conflictAltPath(relPath string, remoteMtime int64) string {
	ext := path.Ext(relPath)
	base := strings.TrimSuffix(relPath, ext)
	stamp := time.UnixMilli(remoteMtime).UTC().Format(conflictTimeFormat)
	return fmt.Sprintf("%s%s.%s%s", base, conflictMarker, stamp, ext)
}

// IsConflictPath reports whether a path names a preserved conflict copy.
func IsConflictPath(relPath string) bool {
	return strings.Contains(path.Base(relPath), conflictMarker)
}
