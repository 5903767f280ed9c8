package testsupport

import (
	"context"
	"testing"
	"time"

	"comicgrabr/internal/config"
	"comicgrabr/internal/pulllist"
)

// MustOpenStore opens a pulllist.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *pulllist.Store {
	t.Helper()

	store, err := pulllist.Open(cfg)
	if err != nil {
		t.Fatalf("pulllist.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Release builds a release on the given calendar date for tests.
func Release(series, issue, date string) pulllist.Release {
	parsed, err := time.Parse(pulllist.DateFormat, date)
	if err != nil {
		panic(err)
	}
	return pulllist.Release{SeriesTitle: series, IssueNumber: issue, ReleaseDate: parsed}
}

// SeedReleases replaces the store contents with the provided releases.
func SeedReleases(t testing.TB, store *pulllist.Store, releases ...pulllist.Release) {
	t.Helper()

	if err := store.Replace(context.Background(), releases); err != nil {
		t.Fatalf("store.Replace: %v", err)
	}
}
