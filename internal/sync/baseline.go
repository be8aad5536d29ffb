package sync

// BaselineEntry is the last known mtime of a path on each side, in unix
// milliseconds, as of the previous successful commit. A nil side means the
// path was not known on that side.
type BaselineEntry struct {
	LocalMtime  *int64
	RemoteMtime *int64
}

// WellFormed reports whether the entry may be persisted: either both sides
// are known or the entry is empty (and gets dropped instead). A one-sided
// entry would be misread as "unchanged" on the missing side after a partial
// failure.
func (e *BaselineEntry) WellFormed() bool {
	return (e.LocalMtime != nil) == (e.RemoteMtime != nil)
}

func (e *BaselineEntry) Empty() bool {
	return e.LocalMtime == nil && e.RemoteMtime == nil
}

func (e *BaselineEntry) clone() *BaselineEntry {
	c := &BaselineEntry{}
	if e.LocalMtime != nil {
		v := *e.LocalMtime
		c.LocalMtime = &v
	}
	if e.RemoteMtime != nil {
		v := *e.RemoteMtime
		c.RemoteMtime = &v
	}
	return c
}

// Baseline maps path to its last-synced record. It is the engine's only
// persisted artifact: loaded once per run, mutated in memory as actions
// succeed, committed wholesale at the end of a successful run.
type Baseline map[string]*BaselineEntry

func (b Baseline) Clone() Baseline {
	c := make(Baseline, len(b))
	for path, entry := range b {
		c[path] = entry.clone()
	}
	return c
}

// SetSynced records a path as fully synced on both sides.
func (b Baseline) SetSynced(path string, localMtime, remoteMtime int64) {
	b[path] = &BaselineEntry{LocalMtime: &localMtime, RemoteMtime: &remoteMtime}
}

// ClearLocal forgets the local side of a path; the entry is dropped once both
// sides are gone.
func (b Baseline) ClearLocal(path string) {
	entry, ok := b[path]
	if !ok {
		return
	}
	entry.LocalMtime = nil
	if entry.Empty() {
		delete(b, path)
	}
}

// ClearRemote forgets the remote side of a path; the entry is dropped once
// both sides are gone.
func (b Baseline) ClearRemote(path string) {
	entry, ok := b[path]
	if !ok {
		return
	}
	entry.RemoteMtime = nil
	if entry.Empty() {
		delete(b, path)
	}
}

// Sanitized returns a copy fit for persistence: empty and one-sided entries
// are discarded, never written half-formed.
func (b Baseline) Sanitized() Baseline {
	c := make(Baseline, len(b))
	for path, entry := range b {
		if entry.Empty() || !entry.WellFormed() {
			continue
		}
		c[path] = entry.clone()
	}
	return c
}
