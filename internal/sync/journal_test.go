package sync

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dim0x69/kisss3/internal/db"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, j.Open())
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalLoadEmpty(t *testing.T) {
	j := openTestJournal(t)

	b, err := j.Load()
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestJournalSaveLoadRoundtrip(t *testing.T) {
	j := openTestJournal(t)

	b := make(Baseline)
	b.SetSynced("a.md", 100, 200)
	b.SetSynced("notes/b.md", 300, 400)
	require.NoError(t, j.Save(b))

	got, err := j.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), *got["a.md"].LocalMtime)
	assert.Equal(t, int64(200), *got["a.md"].RemoteMtime)
	assert.Equal(t, int64(300), *got["notes/b.md"].LocalMtime)
}

func TestJournalSaveIsWholeDocumentReplace(t *testing.T) {
	j := openTestJournal(t)

	b1 := make(Baseline)
	b1.SetSynced("old.md", 1, 1)
	require.NoError(t, j.Save(b1))

	b2 := make(Baseline)
	b2.SetSynced("new.md", 2, 2)
	require.NoError(t, j.Save(b2))

	got, err := j.Load()
	require.NoError(t, err)
	assert.NotContains(t, got, "old.md")
	assert.Contains(t, got, "new.md")
}

func TestJournalRefusesOneSidedEntries(t *testing.T) {
	j := openTestJournal(t)

	mtime := int64(100)
	b := Baseline{"half.md": {LocalMtime: &mtime}}
	assert.Error(t, j.Save(b))
}

func TestJournalReopenKeepsState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	j := NewJournal(dbPath)
	require.NoError(t, j.Open())
	b := make(Baseline)
	b.SetSynced("a.md", 100, 200)
	require.NoError(t, j.Save(b))
	require.NoError(t, j.Close())

	j2 := NewJournal(dbPath)
	require.NoError(t, j2.Open())
	defer j2.Close()

	got, err := j2.Load()
	require.NoError(t, err)
	assert.Contains(t, got, "a.md")
}

func TestJournalMigratesLegacySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	// lay down a version-1 journal with RFC3339 text timestamps
	conn, err := db.NewSqliteDB(db.WithPath(dbPath), db.WithMaxOpenConns(1))
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE sync_state (
		path TEXT PRIMARY KEY,
		local_mtime TEXT NOT NULL,
		remote_mtime TEXT NOT NULL
	)`)
	require.NoError(t, err)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = conn.Exec("INSERT INTO sync_state VALUES (?, ?, ?)",
		"a.md", ts.Format(time.RFC3339), ts.Format(time.RFC3339))
	require.NoError(t, err)
	_, err = conn.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	j := NewJournal(dbPath)
	require.NoError(t, j.Open())
	defer j.Close()

	got, err := j.Load()
	require.NoError(t, err)
	require.Contains(t, got, "a.md")
	assert.Equal(t, ts.UnixMilli(), *got["a.md"].LocalMtime)
	assert.Equal(t, ts.UnixMilli(), *got["a.md"].RemoteMtime)
}

func TestJournalRejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	conn, err := db.NewSqliteDB(db.WithPath(dbPath), db.WithMaxOpenConns(1))
	require.NoError(t, err)
	_, err = conn.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	j := NewJournal(dbPath)
	assert.Error(t, j.Open())
}
