package vault

import (
	"path/filepath"
	"strings"
)

// NormPath converts a filesystem-relative path to the canonical vault form:
// forward slashes, no leading "./".
func NormPath(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
