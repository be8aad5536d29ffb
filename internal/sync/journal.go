package sync

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dim0x69/kisss3/internal/db"
)

// BaselineStore is the baseline persistence collaborator. Save is a
// whole-document replace, not a merge.
type BaselineStore interface {
	Load() (Baseline, error)
	Save(Baseline) error
}

// schemaVersion is the current journal layout, tracked in PRAGMA
// user_version. Version 1 stored timestamps as RFC3339 text and is migrated
// on open.
const schemaVersion = 2

const schema = `
CREATE TABLE IF NOT EXISTS baseline (
    path TEXT PRIMARY KEY,
    local_mtime INTEGER NOT NULL,
    remote_mtime INTEGER NOT NULL
);
`

type baselineRow struct {
	Path        string `db:"path"`
	LocalMtime  int64  `db:"local_mtime"`
	RemoteMtime int64  `db:"remote_mtime"`
}

// Journal persists the baseline in SQLite. One journal per vault, living
// under the vault's metadata dir.
type Journal struct {
	db     *sqlx.DB
	dbPath string
}

func NewJournal(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

// Open connects to the database and brings the schema up to date.
func (j *Journal) Open() error {
	if j.db != nil {
		return fmt.Errorf("journal already open")
	}

	conn, err := db.NewSqliteDB(db.WithPath(j.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return fmt.Errorf("migrate journal: %w", err)
	}

	j.db = conn
	return nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Load reads the whole committed baseline. A fresh journal yields an empty
// baseline.
func (j *Journal) Load() (Baseline, error) {
	var rows []baselineRow
	if err := j.db.Select(&rows, "SELECT path, local_mtime, remote_mtime FROM baseline"); err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}

	baseline := make(Baseline, len(rows))
	for _, row := range rows {
		baseline.SetSynced(row.Path, row.LocalMtime, row.RemoteMtime)
	}
	return baseline, nil
}

// Save replaces the committed baseline wholesale in one transaction. Entries
// that are not well-formed are refused rather than persisted half-formed.
func (j *Journal) Save(baseline Baseline) error {
	tx, err := j.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM baseline"); err != nil {
		return fmt.Errorf("clear baseline: %w", err)
	}

	for path, entry := range baseline {
		if entry.Empty() {
			continue
		}
		if !entry.WellFormed() {
			return fmt.Errorf("refusing to persist one-sided entry for %q", path)
		}
		row := baselineRow{
			Path:        path,
			LocalMtime:  *entry.LocalMtime,
			RemoteMtime: *entry.RemoteMtime,
		}
		if _, err := tx.NamedExec(
			`INSERT INTO baseline (path, local_mtime, remote_mtime)
			 VALUES (:path, :local_mtime, :remote_mtime)`, row); err != nil {
			return fmt.Errorf("insert entry for %q: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.Debug("journal saved", "entries", len(baseline))
	return nil
}

// migrate brings the schema to the current version. All format evolution
// lives here, outside the reconciliation core.
func migrate(conn *sqlx.DB) error {
	var version int
	if err := conn.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	switch version {
	case 0:
		// fresh database
		if _, err := conn.Exec(schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	case 1:
		if err := migrateV1(conn); err != nil {
			return err
		}
	case schemaVersion:
		return nil
	default:
		return fmt.Errorf("journal schema version %d is newer than supported %d", version, schemaVersion)
	}

	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateV1 converts the legacy layout (RFC3339 text timestamps in a
// sync_state table) into the current integer-millisecond baseline table.
func migrateV1(conn *sqlx.DB) error {
	type legacyRow struct {
		Path        string `db:"path"`
		LocalMtime  string `db:"local_mtime"`
		RemoteMtime string `db:"remote_mtime"`
	}

	var rows []legacyRow
	if err := conn.Select(&rows, "SELECT path, local_mtime, remote_mtime FROM sync_state"); err != nil {
		return fmt.Errorf("read legacy state: %w", err)
	}

	tx, err := conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	migrated := 0
	for _, row := range rows {
		localTS, err1 := time.Parse(time.RFC3339, row.LocalMtime)
		remoteTS, err2 := time.Parse(time.RFC3339, row.RemoteMtime)
		if err1 != nil || err2 != nil {
			slog.Warn("dropping unparsable legacy entry", "path", row.Path)
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO baseline (path, local_mtime, remote_mtime) VALUES (?, ?, ?)",
			row.Path, localTS.UnixMilli(), remoteTS.UnixMilli()); err != nil {
			return fmt.Errorf("migrate entry for %q: %w", row.Path, err)
		}
		migrated++
	}

	if _, err := tx.Exec("DROP TABLE sync_state"); err != nil {
		return fmt.Errorf("drop legacy table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	slog.Info("migrated legacy journal", "entries", migrated)
	return nil
}

var _ BaselineStore = (*Journal)(nil)
