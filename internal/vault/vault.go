package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/dim0x69/kisss3/internal/utils"
)

const (
	metadataDir = ".kisss3"
	lockFile    = "kisss3.lock"
	journalFile = "journal.db"
	ignoreFile  = ".kisss3ignore"
)

var (
	ErrVaultLocked = errors.New("vault locked by another process")
)

// FileInfo is a single local sighting of a file, vault-relative.
type FileInfo struct {
	Path  string
	Size  int64
	Mtime int64
}

// Vault is the local file-tree collaborator. All paths passed in and out are
// vault-relative with forward slashes; the vault owns the mapping to the
// filesystem.
type Vault struct {
	Root        string
	MetadataDir string

	flock *flock.Flock
}

func New(rootDir string) (*Vault, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path %q: %w", rootDir, err)
	}

	metaDir := filepath.Join(root, metadataDir)
	return &Vault{
		Root:        root,
		MetadataDir: metaDir,
		flock:       flock.New(filepath.Join(metaDir, lockFile)),
	}, nil
}

// Setup creates the vault directories and takes the process lock.
func (v *Vault) Setup() error {
	if err := utils.EnsureDir(v.Root); err != nil {
		return fmt.Errorf("create vault root %q: %w", v.Root, err)
	}
	if err := utils.EnsureDir(v.MetadataDir); err != nil {
		return fmt.Errorf("create metadata dir %q: %w", v.MetadataDir, err)
	}
	return v.Lock()
}

func (v *Vault) Lock() error {
	locked, err := v.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock vault: %w", err)
	}
	if !locked {
		return ErrVaultLocked
	}
	return nil
}

func (v *Vault) Unlock() error {
	if !v.flock.Locked() {
		return nil
	}
	if err := v.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock vault: %w", err)
	}
	return os.Remove(v.flock.Path())
}

// JournalPath is where the sync baseline lives. It sits under the metadata
// dir, whose dot-prefixed name keeps it out of the synced file set.
func (v *Vault) JournalPath() string {
	return filepath.Join(v.MetadataDir, journalFile)
}

// IgnorePath is the user ignore-rules file at the vault root.
func (v *Vault) IgnorePath() string {
	return filepath.Join(v.Root, ignoreFile)
}

// AbsPath maps a vault-relative path to its absolute filesystem path.
func (v *Vault) AbsPath(relPath string) string {
	return filepath.Join(v.Root, filepath.FromSlash(relPath))
}

// RelPath maps an absolute filesystem path back to canonical vault form.
func (v *Vault) RelPath(absPath string) (string, error) {
	rel, err := filepath.Rel(v.Root, absPath)
	if err != nil {
		return "", fmt.Errorf("rel path %q: %w", absPath, err)
	}
	return NormPath(rel), nil
}

// Scan walks the vault and returns the current local file set. skipDir is
// consulted for every directory (vault-relative); matching subtrees are not
// descended into. Pass the same predicate used to filter the remote and
// baseline views so all three stay on the same domain.
func (v *Vault) Scan(skipDir func(relPath string) bool) (map[string]*FileInfo, error) {
	state := make(map[string]*FileInfo)

	err := filepath.WalkDir(v.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk %q: %w", path, walkErr)
		}

		relPath, err := filepath.Rel(v.Root, path)
		if err != nil {
			return fmt.Errorf("rel path %q: %w", path, err)
		}
		relPath = NormPath(relPath)

		if d.IsDir() {
			if path == v.Root {
				return nil
			}
			if path == v.MetadataDir {
				return fs.SkipDir
			}
			if skipDir != nil && skipDir(relPath) {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("vault scan stat failed", "path", path, "error", err)
			return nil
		}

		state[relPath] = &FileInfo{
			Path:  relPath,
			Size:  info.Size(),
			Mtime: info.ModTime().UnixMilli(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault scan: %w", err)
	}

	return state, nil
}

func (v *Vault) Read(relPath string) ([]byte, error) {
	data, err := os.ReadFile(v.AbsPath(relPath))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", relPath, err)
	}
	return data, nil
}

// Write creates or overwrites a file and stamps it with the given mtime
// (unix milliseconds). Parent directories are created as needed.
func (v *Vault) Write(relPath string, data []byte, mtime int64) error {
	absPath := v.AbsPath(relPath)
	if err := utils.EnsureParent(absPath); err != nil {
		return fmt.Errorf("ensure parent of %q: %w", relPath, err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", relPath, err)
	}
	ts := time.UnixMilli(mtime)
	if err := os.Chtimes(absPath, ts, ts); err != nil {
		return fmt.Errorf("set mtime of %q: %w", relPath, err)
	}
	return nil
}

// Mtime returns the current mtime of a file in unix milliseconds.
func (v *Vault) Mtime(relPath string) (int64, error) {
	info, err := os.Stat(v.AbsPath(relPath))
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", relPath, err)
	}
	return info.ModTime().UnixMilli(), nil
}

func (v *Vault) Delete(relPath string) error {
	if err := os.Remove(v.AbsPath(relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %q: %w", relPath, err)
	}
	return nil
}

// PruneEmptyDirs removes directories left empty by deletions, deepest first.
// The vault root and the metadata dir are never removed.
func (v *Vault) PruneEmptyDirs() error {
	var dirs []string

	err := filepath.WalkDir(v.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || path == v.Root {
			return nil
		}
		if path == v.MetadataDir {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("prune walk: %w", err)
	}

	// deepest first so emptied parents get removed in the same pass
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				slog.Debug("prune dir failed", "dir", dir, "error", err)
			}
		}
	}
	return nil
}
