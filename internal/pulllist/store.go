package pulllist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"comicgrabr/internal/config"
)

// Store manages pull-list persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the pull-list database. A missing database
// starts empty. An unreadable or version-mismatched database is moved aside
// and recreated empty rather than failing the run; the pull list carries no
// history, so the next import fully repopulates it.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	store, err := open(dbPath)
	if err == nil {
		return store, nil
	}

	// Corrupt or incompatible database: preserve it for inspection and start over.
	backup := dbPath + ".corrupt-" + time.Now().Format("20060102-150405")
	if renameErr := os.Rename(dbPath, backup); renameErr != nil {
		return nil, fmt.Errorf("open pull list db: %w", err)
	}
	store, retryErr := open(dbPath)
	if retryErr != nil {
		return nil, fmt.Errorf("recreate pull list db: %w", retryErr)
	}
	return store, nil
}

func open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns every persisted release in deterministic order.
func (s *Store) Load(ctx context.Context) ([]Release, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT series_title, issue_number, release_date, publisher
         FROM releases
         ORDER BY release_date, series_title, issue_number`,
	)
	if err != nil {
		return nil, fmt.Errorf("load releases: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var rel Release
		var date string
		if err := rows.Scan(&rel.SeriesTitle, &rel.IssueNumber, &date, &rel.Publisher); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		parsed, err := ParseDate(date)
		if err != nil {
			return nil, err
		}
		rel.ReleaseDate = parsed
		releases = append(releases, rel)
	}
	return releases, rows.Err()
}

// Replace atomically swaps the persisted contents for the provided releases.
// Either the full merged result is committed or the prior contents remain
// untouched; consumers never observe a partially written store.
func (s *Store) Replace(ctx context.Context, releases []Release) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM releases"); err != nil {
		return fmt.Errorf("clear releases: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO releases (series_title, issue_number, release_date, publisher)
         VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rel := range releases {
		if _, err := stmt.ExecContext(ctx,
			rel.SeriesTitle,
			rel.IssueNumber,
			rel.ReleaseDate.Format(DateFormat),
			rel.Publisher,
		); err != nil {
			return fmt.Errorf("insert release %s: %w", rel.DisplayTitle(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Count returns the number of persisted releases.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM releases").Scan(&count); err != nil {
		return 0, fmt.Errorf("count releases: %w", err)
	}
	return count, nil
}
