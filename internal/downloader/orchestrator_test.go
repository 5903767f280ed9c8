package downloader_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"comicgrabr/internal/downloader"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services"
	"comicgrabr/internal/testsupport"
)

type stubSearch struct {
	find    func(query string) ([]downloader.Candidate, error)
	enqueue func(candidate downloader.Candidate) error

	findQueries []string
	enqueued    []string
}

func (s *stubSearch) Find(_ context.Context, query string) ([]downloader.Candidate, error) {
	s.findQueries = append(s.findQueries, query)
	if s.find == nil {
		return nil, nil
	}
	return s.find(query)
}

func (s *stubSearch) Enqueue(_ context.Context, candidate downloader.Candidate) error {
	s.enqueued = append(s.enqueued, candidate.Label)
	if s.enqueue == nil {
		return nil
	}
	return s.enqueue(candidate)
}

func newOrchestrator(t *testing.T, search downloader.SearchService) *downloader.Orchestrator {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Search.ReleaseDelay = 0
	return downloader.New(cfg, search, logging.NewNop())
}

func candidate(label string) []downloader.Candidate {
	return []downloader.Candidate{{Label: label, Handle: label}}
}

func TestRunQueuesBestCandidate(t *testing.T) {
	search := &stubSearch{
		find: func(string) ([]downloader.Candidate, error) {
			return candidate("saga.72.cbz"), nil
		},
	}
	orch := newOrchestrator(t, search)

	report, err := orch.Run(context.Background(),
		[]pulllist.Release{testsupport.Release("Saga", "72", "2026-08-26")}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].Outcome != downloader.OutcomeQueued {
		t.Fatalf("unexpected report: %+v", report.Results)
	}
	if len(search.enqueued) != 1 || search.enqueued[0] != "saga.72.cbz" {
		t.Fatalf("unexpected enqueue calls: %v", search.enqueued)
	}
	if search.findQueries[0] != "Saga 72" {
		t.Fatalf("unexpected derived query: %q", search.findQueries[0])
	}
}

func TestRunSkipsExistingWithoutEnqueue(t *testing.T) {
	search := &stubSearch{
		find: func(string) ([]downloader.Candidate, error) {
			return []downloader.Candidate{{Label: "saga.72.cbz", ExistsInQueue: true}}, nil
		},
	}
	orch := newOrchestrator(t, search)

	report, err := orch.Run(context.Background(),
		[]pulllist.Release{testsupport.Release("Saga", "72", "2026-08-26")}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Outcome != downloader.OutcomeSkippedExisting {
		t.Fatalf("expected skip, got %+v", report.Results[0])
	}
	if len(search.enqueued) != 0 {
		t.Fatalf("enqueue must not be invoked for existing candidates, got %v", search.enqueued)
	}
}

func TestRunIsolatesPerReleaseFailures(t *testing.T) {
	search := &stubSearch{
		find: func(query string) ([]downloader.Candidate, error) {
			switch query {
			case "Saga 72":
				return candidate("saga.72.cbz"), nil
			case "Nightwing 130":
				return nil, services.Wrap(services.ErrTransient, "airdcpp", "hub search", query, nil)
			default:
				return nil, nil
			}
		},
	}
	orch := newOrchestrator(t, search)

	releases := []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
		testsupport.Release("Nightwing", "130", "2026-08-26"),
		testsupport.Release("Zatanna", "5", "2026-08-26"),
	}
	report, err := orch.Run(context.Background(), releases, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []downloader.Outcome{
		downloader.OutcomeQueued,
		downloader.OutcomeFailed,
		downloader.OutcomeNoMatch,
	}
	if len(report.Results) != len(want) {
		t.Fatalf("expected %d outcomes, got %+v", len(want), report.Results)
	}
	for i, outcome := range want {
		if report.Results[i].Outcome != outcome {
			t.Errorf("release %d: got %s, want %s", i, report.Results[i].Outcome, outcome)
		}
	}
	if report.Results[1].Err == nil {
		t.Fatal("expected failure reason recorded")
	}
}

func TestRunDryRunNeverEnqueues(t *testing.T) {
	search := &stubSearch{
		find: func(query string) ([]downloader.Candidate, error) {
			if query == "Zatanna 5" {
				return nil, nil
			}
			return candidate(query + ".cbz"), nil
		},
	}
	orch := newOrchestrator(t, search)

	releases := []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
		testsupport.Release("Zatanna", "5", "2026-08-26"),
	}
	report, err := orch.Run(context.Background(), releases, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(search.enqueued) != 0 {
		t.Fatalf("dry run must not enqueue, got %v", search.enqueued)
	}
	if report.Results[0].Outcome != downloader.OutcomeQueued || !report.Results[0].Simulated {
		t.Fatalf("expected simulated queue outcome, got %+v", report.Results[0])
	}
	if report.Results[1].Outcome != downloader.OutcomeNoMatch {
		t.Fatalf("expected no-match under dry run, got %+v", report.Results[1])
	}
}

func TestRunTreatsLateDuplicateAsSkip(t *testing.T) {
	search := &stubSearch{
		find: func(string) ([]downloader.Candidate, error) {
			return candidate("saga.72.cbz"), nil
		},
		enqueue: func(downloader.Candidate) error {
			return services.Wrap(services.ErrDuplicate, "airdcpp", "enqueue", "saga.72.cbz", nil)
		},
	}
	orch := newOrchestrator(t, search)

	report, err := orch.Run(context.Background(),
		[]pulllist.Release{testsupport.Release("Saga", "72", "2026-08-26")}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Outcome != downloader.OutcomeSkippedExisting {
		t.Fatalf("expected late duplicate mapped to skip, got %+v", report.Results[0])
	}
}

func TestRunStopsBetweenReleasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	search := &stubSearch{
		find: func(string) ([]downloader.Candidate, error) {
			cancel()
			return candidate("first.cbz"), nil
		},
	}
	orch := newOrchestrator(t, search)

	releases := []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
		testsupport.Release("Zatanna", "5", "2026-08-26"),
	}
	report, err := orch.Run(ctx, releases, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected partial report with 1 result, got %+v", report.Results)
	}
}

func TestRunNotifiesObserverPerOutcome(t *testing.T) {
	search := &stubSearch{
		find: func(query string) ([]downloader.Candidate, error) {
			return candidate(query + ".cbz"), nil
		},
	}
	orch := newOrchestrator(t, search)

	var seen []string
	orch.Observe(func(result downloader.Result) {
		seen = append(seen, fmt.Sprintf("%s:%s", result.Release.SeriesTitle, result.Outcome))
	})

	releases := []pulllist.Release{
		testsupport.Release("Saga", "72", "2026-08-26"),
		testsupport.Release("Zatanna", "5", "2026-08-26"),
	}
	if _, err := orch.Run(context.Background(), releases, false); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(seen) != 2 || seen[0] != "Saga:queued" || seen[1] != "Zatanna:queued" {
		t.Fatalf("unexpected observer calls: %v", seen)
	}
}

func TestSummarizeTalliesOutcomes(t *testing.T) {
	report := downloader.RunReport{Results: []downloader.Result{
		{Outcome: downloader.OutcomeQueued},
		{Outcome: downloader.OutcomeQueued},
		{Outcome: downloader.OutcomeSkippedExisting},
		{Outcome: downloader.OutcomeNoMatch},
		{Outcome: downloader.OutcomeFailed},
	}}

	summary := downloader.Summarize(report)
	want := downloader.Summary{Queued: 2, Skipped: 1, NoMatch: 1, Failed: 1, Total: 5}
	if summary != want {
		t.Fatalf("got %+v, want %+v", summary, want)
	}
}
