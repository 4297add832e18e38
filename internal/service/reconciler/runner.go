package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RunStatus captures the outcome of the most recent sweep.
type RunStatus struct {
	LastRun        time.Time `json:"last_run"`
	LastError      string    `json:"last_error,omitempty"`
	RecordsRemoved int       `json:"records_removed"`
	BlobsEmbedded  int       `json:"blobs_embedded"`
	Failures       int       `json:"failures"`
	Runs           int       `json:"runs"`
}

// Runner supervises the reconciler on a cron cadence. A sweep runs once at
// Start and then on every tick; overlapping runs are serialized by the
// mutex rather than stacked.
type Runner struct {
	svc      *Service
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron

	mu     sync.Mutex
	status RunStatus
}

// NewRunner creates a cron-supervised reconciler runner. The schedule uses
// robfig/cron syntax, e.g. "@every 10m".
func NewRunner(svc *Service, schedule string, logger *slog.Logger) *Runner {
	return &Runner{svc: svc, schedule: schedule, logger: logger, cron: cron.New()}
}

// Start runs one immediate sweep and schedules the rest.
func (r *Runner) Start(ctx context.Context) error {
	r.sweep(ctx)

	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.sweep(context.Background())
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("reconciler started", "schedule", r.schedule)
	return nil
}

// Stop halts the cron scheduler. A sweep already in flight finishes.
func (r *Runner) Stop() {
	r.cron.Stop()
	r.logger.Info("reconciler stopped")
}

// RunNow performs a sweep immediately and returns the resulting status.
func (r *Runner) RunNow(ctx context.Context) RunStatus {
	r.sweep(ctx)
	return r.Status()
}

// Status returns a copy of the most recent sweep outcome.
func (r *Runner) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// sweep runs cleanup then backfill. Neither phase can panic the scheduler;
// failures land in the status and the log, never in a raised error.
func (r *Runner) sweep(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Runs++
	r.status.LastRun = time.Now().UTC()
	r.status.LastError = ""
	r.status.RecordsRemoved = 0
	r.status.BlobsEmbedded = 0
	r.status.Failures = 0

	cleanup, err := r.svc.CleanupOrphans(ctx)
	if err != nil {
		r.logger.Error("orphan cleanup sweep failed", "error", err)
		r.status.LastError = err.Error()
	} else {
		r.status.RecordsRemoved = len(cleanup.Deleted)
		r.status.Failures += cleanup.Failures
	}

	backfill, err := r.svc.BackfillEmbeddings(ctx)
	if err != nil {
		r.logger.Error("embedding backfill sweep failed", "error", err)
		r.status.LastError = err.Error()
	} else {
		r.status.BlobsEmbedded = backfill.Embedded
		r.status.Failures += backfill.Failures
	}

	r.logger.Info("reconciler sweep finished",
		"removed", r.status.RecordsRemoved,
		"embedded", r.status.BlobsEmbedded,
		"failures", r.status.Failures)
}
