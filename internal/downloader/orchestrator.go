package downloader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"comicgrabr/internal/config"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/services"
	"comicgrabr/internal/textutil"
)

// Candidate is one ranked search hit. The search service owns ranking; the
// orchestrator always takes the first candidate and never re-ranks.
type Candidate struct {
	Label         string
	ExistsOnDisk  bool
	ExistsInQueue bool
	Handle        any
}

// SearchService locates and queues download candidates for a derived query.
type SearchService interface {
	Find(ctx context.Context, query string) ([]Candidate, error)
	Enqueue(ctx context.Context, candidate Candidate) error
}

// ResultFunc observes each release's terminal outcome as it is produced.
// Observers are for notification fan-out only and cannot influence the run.
type ResultFunc func(Result)

// Orchestrator processes releases sequentially against a search service.
type Orchestrator struct {
	search       SearchService
	logger       *slog.Logger
	releaseDelay time.Duration
	observer     ResultFunc

	sleep func(ctx context.Context, d time.Duration) error
}

// New builds an orchestrator. The release delay from configuration paces
// consecutive searches so the hub network is not hammered.
func New(cfg *config.Config, search SearchService, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		search:       search,
		logger:       logging.NewComponentLogger(logger, "downloader"),
		releaseDelay: time.Duration(cfg.Search.ReleaseDelay) * time.Second,
		sleep:        sleepContext,
	}
}

// Observe registers a per-outcome observer. Passing nil removes it.
func (o *Orchestrator) Observe(fn ResultFunc) {
	o.observer = fn
}

// Run processes every release in order and returns one terminal result per
// release. A cancelled context stops the run between releases; the partial
// report is returned together with the context error so the caller can still
// account for the work that finished.
func (o *Orchestrator) Run(ctx context.Context, releases []pulllist.Release, dryRun bool) (RunReport, error) {
	report := RunReport{Started: time.Now()}
	defer func() {
		report.Duration = time.Since(report.Started)
	}()

	for i, release := range releases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 {
			if err := o.sleep(ctx, o.releaseDelay); err != nil {
				return report, err
			}
		}

		result := o.process(ctx, release, dryRun)
		report.Results = append(report.Results, result)
		if o.observer != nil {
			o.observer(result)
		}
	}
	return report, nil
}

// process runs one release to a terminal outcome. Failures are captured in
// the result, never returned: one release must not abort the run.
func (o *Orchestrator) process(ctx context.Context, release pulllist.Release, dryRun bool) Result {
	result := Result{Release: release, Simulated: dryRun}
	query := textutil.SearchQuery(release.SeriesTitle, release.IssueNumber)

	log := o.logger.With(
		logging.String(logging.FieldSeries, release.SeriesTitle),
		logging.String(logging.FieldIssue, release.IssueNumber),
	)
	log.Info("searching", logging.String("query", query))

	candidates, err := o.search.Find(ctx, query)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		log.Error("search failed", logging.Error(err))
		return result
	}
	if len(candidates) == 0 {
		result.Outcome = OutcomeNoMatch
		log.Info("no match found")
		return result
	}

	chosen := candidates[0]
	result.FileName = chosen.Label
	if chosen.ExistsOnDisk || chosen.ExistsInQueue {
		result.Outcome = OutcomeSkippedExisting
		log.Info("skipping, already present",
			logging.String("file", chosen.Label),
			logging.Bool("on_disk", chosen.ExistsOnDisk),
			logging.Bool("in_queue", chosen.ExistsInQueue),
		)
		return result
	}

	if dryRun {
		result.Outcome = OutcomeQueued
		log.Info("would queue download", logging.String("file", chosen.Label))
		return result
	}

	if err := o.search.Enqueue(ctx, chosen); err != nil {
		// The dedup policy pre-empts most duplicates, but the hub can still
		// reject a bundle it knows about. Treat that as a skip, not a failure.
		if errors.Is(err, services.ErrDuplicate) {
			result.Outcome = OutcomeSkippedExisting
			log.Info("skipping, hub reports duplicate", logging.String("file", chosen.Label))
			return result
		}
		result.Outcome = OutcomeFailed
		result.Err = err
		log.Error("enqueue failed", logging.String("file", chosen.Label), logging.Error(err))
		return result
	}

	result.Outcome = OutcomeQueued
	log.Info("download queued", logging.String("file", chosen.Label))
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
