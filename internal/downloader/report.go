package downloader

import (
	"time"

	"comicgrabr/internal/pulllist"
)

// Outcome is the terminal state of one release within a run.
type Outcome string

const (
	// OutcomeQueued means a download request was committed (or simulated
	// under dry run).
	OutcomeQueued Outcome = "queued"
	// OutcomeSkippedExisting means the best candidate already exists on disk
	// or in the download queue.
	OutcomeSkippedExisting Outcome = "skipped-existing"
	// OutcomeNoMatch means the search returned no usable candidates.
	OutcomeNoMatch Outcome = "no-match"
	// OutcomeFailed means the search or queue request failed; the reason is
	// recorded and the run continued.
	OutcomeFailed Outcome = "failed"
)

// Result records the terminal outcome for a single release.
type Result struct {
	Release   pulllist.Release
	Outcome   Outcome
	Simulated bool
	FileName  string
	Err       error
}

// RunReport collects per-release outcomes in processing order.
type RunReport struct {
	Results  []Result
	Started  time.Time
	Duration time.Duration
}

// Summary is the tally consumed by the end-of-run notification.
type Summary struct {
	Queued  int
	Skipped int
	NoMatch int
	Failed  int
	Total   int
}

// Summarize tallies a report's outcomes.
func Summarize(report RunReport) Summary {
	summary := Summary{Total: len(report.Results)}
	for _, result := range report.Results {
		switch result.Outcome {
		case OutcomeQueued:
			summary.Queued++
		case OutcomeSkippedExisting:
			summary.Skipped++
		case OutcomeNoMatch:
			summary.NoMatch++
		case OutcomeFailed:
			summary.Failed++
		}
	}
	return summary
}
