package sync

import (
	"bufio"
	"log/slog"
	"os"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/dim0x69/kisss3/internal/utils"
)

// reservedMarker excludes hidden/system paths from sync. Any path with a
// segment starting with this character never participates.
const reservedMarker = '.'

var defaultIgnoreLines = []string{
	"*.tmp",
	"*.swp",
	"Thumbs.db",
	"desktop.ini",
}

// PathFilter decides whether a path participates in sync. It must be applied
// identically to the local, remote and baseline views; filtering one side but
// not another would manufacture spurious created/deleted statuses.
type PathFilter struct {
	ignore *gitignore.GitIgnore
}

func NewPathFilter() *PathFilter {
	return &PathFilter{}
}

// LoadIgnoreFile compiles the default ignore rules plus any user rules from
// the given gitignore-style file, if it exists.
func (f *PathFilter) LoadIgnoreFile(path string) {
	lines := make([]string, 0, len(defaultIgnoreLines))
	lines = append(lines, defaultIgnoreLines...)

	if utils.FileExists(path) {
		file, err := os.Open(path)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", path, "error", err)
		} else {
			defer file.Close()
			rules := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line != "" && !strings.HasPrefix(line, "#") {
					lines = append(lines, line)
					rules++
				}
			}
			if err := scanner.Err(); err != nil {
				slog.Warn("error reading ignore file", "path", path, "error", err)
			} else {
				slog.Info("loaded ignore file", "path", path, "rules", rules)
			}
		}
	}

	f.ignore = gitignore.CompileIgnoreLines(lines...)
}

// IsExcluded reports whether the path is kept out of sync. Pure, no I/O.
func (f *PathFilter) IsExcluded(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment != "" && segment[0] == reservedMarker {
			return true
		}
	}
	if f.ignore != nil && f.ignore.MatchesPath(path) {
		return true
	}
	return false
}
