package pulllist

import (
	"context"
	"errors"
	"fmt"
)

// schemaVersion is the current schema version. Bump this when the schema
// changes; a mismatched database is moved aside and recreated empty, since the
// pull list is a forward-looking worklist the next import fully repopulates.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS releases (
    series_title TEXT NOT NULL,
    issue_number TEXT NOT NULL DEFAULT '',
    release_date TEXT NOT NULL,
    publisher TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (series_title, issue_number, release_date)
);

CREATE INDEX IF NOT EXISTS idx_releases_date ON releases(release_date);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// errSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var errSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", errSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}
