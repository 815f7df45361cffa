package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/relkit/relkit/internal/domain"

	// sqlite driver registration
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// sqliteHistoryRepository implements HistoryRepository on a local SQLite file.
type sqliteHistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository ensures the data directory exists, opens the SQLite
// database and creates the schema if it does not exist.
func NewHistoryRepository(dbPath string) (HistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteHistoryRepository{db: db}, nil
}

// applyMigrations applies the embedded schema SQL and performs lightweight
// post-creation migrations (adding new columns when needed).
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return ensureReleaseColumns(db)
}

// ensureReleaseColumns checks for optional columns and adds them when missing.
func ensureReleaseColumns(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(releases)")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !cols["status"] {
		if _, err := db.Exec("ALTER TABLE releases ADD COLUMN status TEXT NOT NULL DEFAULT 'published'"); err != nil {
			return err
		}
	}
	return nil
}

// Record stores the outcome of a release run.
func (r *sqliteHistoryRepository) Record(ctx context.Context, release *domain.Release) error {
	var prev, version string
	if release.PreviousVersion != nil {
		prev = release.PreviousVersion.String()
	}
	if release.Version != nil {
		version = release.Version.String()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO releases
		(run_id, previous_version, version, level, tag, total_commits, patch_marked, minor_marked, major_marked, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		release.RunID, prev, version, string(release.Level), release.TagName,
		release.Changes.Total, release.Changes.PatchMarked, release.Changes.MinorMarked,
		release.Changes.MajorMarked, string(release.Status))
	if err != nil {
		return fmt.Errorf("insert release: %w", err)
	}
	return nil
}

// List returns the most recent ledger entries, newest first.
func (r *sqliteHistoryRepository) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, run_id, previous_version, version, level, tag,
		total_commits, patch_marked, minor_marked, major_marked, status, created_at
		FROM releases ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var prev, version, tag sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.RunID, &prev, &version, &e.Level, &tag,
			&e.TotalCommits, &e.PatchMarked, &e.MinorMarked, &e.MajorMarked, &e.Status, &createdAt); err != nil {
			return nil, err
		}
		e.PreviousVersion = prev.String
		e.Version = version.String
		e.TagName = tag.String
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the underlying database.
func (r *sqliteHistoryRepository) Close() error {
	return r.db.Close()
}
