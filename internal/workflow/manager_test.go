package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"comicgrabr/internal/downloader"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services"
	"comicgrabr/internal/testsupport"
)

// today is a Wednesday so the daily selector has releases to pick up.
var today = time.Date(2026, time.August, 26, 9, 30, 0, 0, time.UTC)

type stubImporter struct {
	releases []pulllist.Release
	err      error
}

func (s stubImporter) Import(context.Context) ([]pulllist.Release, error) {
	return s.releases, s.err
}

type recordingSearch struct {
	queries  []string
	enqueued []string
	findErr  error
}

func (r *recordingSearch) Find(_ context.Context, query string) ([]downloader.Candidate, error) {
	r.queries = append(r.queries, query)
	if r.findErr != nil {
		return nil, r.findErr
	}
	return []downloader.Candidate{{Label: query + ".cbz", Handle: query}}, nil
}

func (r *recordingSearch) Enqueue(_ context.Context, candidate downloader.Candidate) error {
	r.enqueued = append(r.enqueued, candidate.Label)
	return nil
}

type recordingNotifier struct {
	events []string
}

func (r *recordingNotifier) record(event string) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) NotifyRunStarted(_ context.Context, mode string) error {
	return r.record("started:" + mode)
}
func (r *recordingNotifier) NotifyImportCompleted(_ context.Context, imported, stored int) error {
	return r.record("import")
}
func (r *recordingNotifier) NotifyQueued(_ context.Context, release pulllist.Release, _ string) error {
	return r.record("queued:" + release.SeriesTitle)
}
func (r *recordingNotifier) NotifySkippedExisting(_ context.Context, release pulllist.Release, _ string) error {
	return r.record("skipped:" + release.SeriesTitle)
}
func (r *recordingNotifier) NotifyNoMatch(_ context.Context, release pulllist.Release) error {
	return r.record("no-match:" + release.SeriesTitle)
}
func (r *recordingNotifier) NotifyReleaseFailed(_ context.Context, release pulllist.Release, _ error) error {
	return r.record("failed:" + release.SeriesTitle)
}
func (r *recordingNotifier) NotifyRunCompleted(_ context.Context, queued, skipped, noMatch, failed int, _ time.Duration) error {
	return r.record("completed")
}
func (r *recordingNotifier) NotifyRunFailed(_ context.Context, _ error, stage string) error {
	return r.record("run-failed:" + stage)
}
func (r *recordingNotifier) NotifyUpcoming(_ context.Context, _ time.Time, releases []pulllist.Release) error {
	return r.record("upcoming")
}
func (r *recordingNotifier) TestNotification(context.Context) error {
	return r.record("test")
}

func (r *recordingNotifier) has(event string) bool {
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type fixture struct {
	manager  *Manager
	store    *pulllist.Store
	search   *recordingSearch
	notifier *recordingNotifier
}

func newFixture(t *testing.T, importer Importer) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Search.ReleaseDelay = 0
	store := testsupport.MustOpenStore(t, cfg)
	search := &recordingSearch{}
	notifier := &recordingNotifier{}

	manager := NewManager(cfg, store, importer, search, notifier, logging.NewNop())
	manager.now = func() time.Time { return today }

	return &fixture{manager: manager, store: store, search: search, notifier: notifier}
}

func TestRunDailyReconcilesAndDownloadsToday(t *testing.T) {
	imported := []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
		testsupport.Release("Zatanna", "5", "2026-09-02"),
	}
	f := newFixture(t, stubImporter{releases: imported})
	testsupport.SeedReleases(t, f.store,
		testsupport.Release("Old Book", "1", "2026-08-19"))

	if err := f.manager.Run(context.Background(), ModeDaily, false); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stored, err := f.store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected past release pruned, got %v", stored)
	}

	if len(f.search.queries) != 1 || f.search.queries[0] != "Saga 72" {
		t.Fatalf("expected only today's release searched, got %v", f.search.queries)
	}
	if !f.notifier.has("queued:Saga") || !f.notifier.has("completed") || !f.notifier.has("upcoming") {
		t.Fatalf("missing notifications: %v", f.notifier.events)
	}
}

func TestRunCatchUpIncludesPastReleases(t *testing.T) {
	f := newFixture(t, stubImporter{releases: []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
	}})
	// A past release survives in the store only until the next reconcile
	// prunes it, so catch-up runs pick up today's releases plus anything the
	// import still lists for today or earlier.
	if err := f.manager.Run(context.Background(), ModeCatchUp, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.search.queries) != 1 {
		t.Fatalf("expected one search, got %v", f.search.queries)
	}
}

func TestRunImportFailureLeavesStoreUntouched(t *testing.T) {
	importErr := services.Wrap(services.ErrTransient, "lcg", "download export", "", nil)
	f := newFixture(t, stubImporter{err: importErr})
	seeded := testsupport.Release("Saga", "72", "2026-08-26")
	testsupport.SeedReleases(t, f.store, seeded)

	err := f.manager.Run(context.Background(), ModeDaily, false)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected import failure propagated, got %v", err)
	}

	stored, loadErr := f.store.Load(context.Background())
	if loadErr != nil {
		t.Fatalf("Load: %v", loadErr)
	}
	if len(stored) != 1 || stored[0].Key() != seeded.Key() {
		t.Fatalf("expected store untouched, got %v", stored)
	}
	if len(f.search.queries) != 0 {
		t.Fatal("no search phase may run after an import failure")
	}
	if !f.notifier.has("run-failed:import") {
		t.Fatalf("expected run failure notification, got %v", f.notifier.events)
	}
}

func TestRunImportOnlySkipsDownloadPhase(t *testing.T) {
	f := newFixture(t, stubImporter{releases: []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
	}})

	if err := f.manager.Run(context.Background(), ModeImportOnly, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.search.queries) != 0 {
		t.Fatalf("import-only run must not search, got %v", f.search.queries)
	}
	if !f.notifier.has("import") || !f.notifier.has("upcoming") {
		t.Fatalf("missing notifications: %v", f.notifier.events)
	}
	if f.notifier.has("completed") {
		t.Fatal("import-only run must not send a download summary")
	}
}

func TestRunDryRunCommitsStoreButNeverEnqueues(t *testing.T) {
	f := newFixture(t, stubImporter{releases: []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
	}})

	if err := f.manager.Run(context.Background(), ModeDaily, true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.search.enqueued) != 0 {
		t.Fatalf("dry run must not enqueue, got %v", f.search.enqueued)
	}
	count, err := f.store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected reconcile still committed, got %d records", count)
	}
}

func TestRunRefusesConcurrentInvocations(t *testing.T) {
	f := newFixture(t, stubImporter{})

	other := flock.New(filepath.Join(f.manager.cfg.Paths.DataDir, "comicgrabr.lock"))
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !locked {
		t.Fatal("expected to hold the lock")
	}
	defer func() {
		_ = other.Unlock()
	}()

	if err := f.manager.Run(context.Background(), ModeDaily, false); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunSearchFailureDoesNotAbortRun(t *testing.T) {
	f := newFixture(t, stubImporter{releases: []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
	}})
	f.search.findErr = services.Wrap(services.ErrTimeout, "airdcpp", "poll results", "", nil)

	if err := f.manager.Run(context.Background(), ModeDaily, false); err != nil {
		t.Fatalf("per-release failures must not abort the run, got %v", err)
	}
	if !f.notifier.has("failed:Saga") || !f.notifier.has("completed") {
		t.Fatalf("missing notifications: %v", f.notifier.events)
	}
}
