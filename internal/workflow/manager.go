package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"comicgrabr/internal/config"
	"comicgrabr/internal/downloader"
	"comicgrabr/internal/logging"
	"comicgrabr/internal/notifications"
	"comicgrabr/internal/pulllist"
	"comicgrabr/internal/reconcile"
)

// Mode selects what a run does.
type Mode int

const (
	// ModeDaily imports, reconciles, and downloads today's releases.
	ModeDaily Mode = iota
	// ModeCatchUp downloads today's and past releases still in the store.
	ModeCatchUp
	// ModeImportOnly imports and reconciles without a download phase.
	ModeImportOnly
)

func (m Mode) String() string {
	switch m {
	case ModeCatchUp:
		return "catch-up"
	case ModeImportOnly:
		return "import-only"
	default:
		return "daily"
	}
}

// ErrRunInProgress reports that another invocation holds the run lock.
var ErrRunInProgress = errors.New("another comicgrabr run is already in progress")

// Importer produces the freshly imported pull list for a run.
type Importer interface {
	Import(ctx context.Context) ([]pulllist.Release, error)
}

// ImporterFunc adapts a function to the Importer interface.
type ImporterFunc func(ctx context.Context) ([]pulllist.Release, error)

func (f ImporterFunc) Import(ctx context.Context) ([]pulllist.Release, error) { return f(ctx) }

// Manager owns one run at a time from import through reporting.
type Manager struct {
	cfg      *config.Config
	store    *pulllist.Store
	importer Importer
	search   downloader.SearchService
	notifier notifications.Service
	logger   *slog.Logger
	lock     *flock.Flock
	now      func() time.Time
}

// NewManager wires a run manager. The lock file lives next to the store so
// every invocation against the same data directory contends on it.
func NewManager(
	cfg *config.Config,
	store *pulllist.Store,
	importer Importer,
	search downloader.SearchService,
	notifier notifications.Service,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		importer: importer,
		search:   search,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		lock:     flock.New(filepath.Join(cfg.Paths.DataDir, "comicgrabr.lock")),
		now:      time.Now,
	}
}

// Run executes one complete run in the given mode. Import and persistence
// failures abort the run; per-release download failures never do.
func (m *Manager) Run(ctx context.Context, mode Mode, dryRun bool) error {
	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	defer func() {
		_ = m.lock.Unlock()
	}()

	runID := uuid.NewString()
	logger := m.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("run started",
		logging.String("mode", mode.String()),
		logging.Bool("dry_run", dryRun),
	)

	m.notify(logger, "run started", m.notifier.NotifyRunStarted(ctx, mode.String()))

	today := pulllist.Day(m.now())

	merged, err := m.importAndCommit(ctx, logger, today)
	if err != nil {
		m.notify(logger, "run failed", m.notifier.NotifyRunFailed(ctx, err, "import"))
		return err
	}

	if mode == ModeImportOnly {
		m.notifyUpcoming(ctx, logger, merged, today)
		logger.Info("run finished", logging.String("mode", mode.String()))
		return nil
	}

	selectMode := reconcile.TodayOnly
	if mode == ModeCatchUp {
		selectMode = reconcile.TodayAndPast
	}
	selected := reconcile.Select(merged, selectMode, today)
	logger.Info("releases selected",
		logging.Int("count", len(selected)),
		logging.String("selector", selectMode.String()),
	)

	report, runErr := m.download(ctx, logger, selected, dryRun)

	summary := downloader.Summarize(report)
	m.notify(logger, "run summary", m.notifier.NotifyRunCompleted(ctx,
		summary.Queued, summary.Skipped, summary.NoMatch, summary.Failed, report.Duration))
	m.notifyUpcoming(ctx, logger, merged, today)

	logger.Info("run finished",
		logging.Int("queued", summary.Queued),
		logging.Int("skipped", summary.Skipped),
		logging.Int("no_match", summary.NoMatch),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", report.Duration),
	)
	return runErr
}

// importAndCommit is the atomic first phase: a failed import or commit leaves
// the store exactly as it was.
func (m *Manager) importAndCommit(ctx context.Context, logger *slog.Logger, today time.Time) ([]pulllist.Release, error) {
	imported, err := m.importer.Import(ctx)
	if err != nil {
		return nil, fmt.Errorf("import pull list: %w", err)
	}

	existing, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pull list store: %w", err)
	}

	merged := reconcile.Merge(existing, imported, today)
	if err := m.store.Replace(ctx, merged); err != nil {
		return nil, fmt.Errorf("commit pull list store: %w", err)
	}

	logger.Info("pull list reconciled",
		logging.Int("imported", len(imported)),
		logging.Int("stored", len(merged)),
	)
	m.notify(logger, "import summary",
		m.notifier.NotifyImportCompleted(ctx, len(imported), len(merged)))
	return merged, nil
}

func (m *Manager) download(ctx context.Context, logger *slog.Logger, releases []pulllist.Release, dryRun bool) (downloader.RunReport, error) {
	orch := downloader.New(m.cfg, m.search, logger)
	orch.Observe(func(result downloader.Result) {
		m.notifyResult(ctx, logger, result)
	})

	report, err := orch.Run(ctx, releases, dryRun)
	if err != nil {
		logger.Warn("download phase interrupted",
			logging.Int("completed", len(report.Results)),
			logging.Error(err),
		)
	}
	return report, err
}

func (m *Manager) notifyResult(ctx context.Context, logger *slog.Logger, result downloader.Result) {
	var err error
	switch result.Outcome {
	case downloader.OutcomeQueued:
		err = m.notifier.NotifyQueued(ctx, result.Release, result.FileName)
	case downloader.OutcomeSkippedExisting:
		err = m.notifier.NotifySkippedExisting(ctx, result.Release, result.FileName)
	case downloader.OutcomeNoMatch:
		err = m.notifier.NotifyNoMatch(ctx, result.Release)
	case downloader.OutcomeFailed:
		err = m.notifier.NotifyReleaseFailed(ctx, result.Release, result.Err)
	}
	m.notify(logger, string(result.Outcome), err)
}

func (m *Manager) notifyUpcoming(ctx context.Context, logger *slog.Logger, releases []pulllist.Release, today time.Time) {
	day := reconcile.NextWednesday(today)
	upcoming := reconcile.UpcomingOn(releases, day)
	m.notify(logger, "upcoming digest", m.notifier.NotifyUpcoming(ctx, day, upcoming))
}

// notify logs a delivery failure and moves on. Notifications never affect a
// run's outcome.
func (m *Manager) notify(logger *slog.Logger, event string, err error) {
	if err != nil {
		logger.Warn("notification failed",
			logging.String("event", event),
			logging.Error(err),
		)
	}
}
