package jobs

import (
	"context"
	"fmt"
	"time"

	"showtix/pkg/logger"
)

// Handler processes jobs of a single type. Handle returns a human-readable
// result on success; an error schedules a retry (or permanent failure once
// the execution cap is hit).
type Handler interface {
	Type() Type
	Handle(ctx context.Context, job *Job) (string, error)
}

// ExhaustionNotifier is implemented by handlers that want to know when one of
// their jobs hits the permanent failure cap, e.g. to alert a human.
type ExhaustionNotifier interface {
	OnExhausted(ctx context.Context, job *Job)
}

// RecurringJob re-enqueues itself: whenever no PENDING or PROCESSING job of
// the type exists, a new one is scheduled Every after now.
type RecurringJob struct {
	Type  Type
	Every time.Duration
}

// WorkerConfig contains configuration for the retry-queue worker
type WorkerConfig struct {
	PollInterval    time.Duration
	BaseRetryDelay  time.Duration
	MaxRetryDelay   time.Duration
	MaxExecutions   int
	ProcessingLease time.Duration
}

// DefaultWorkerConfig returns default worker configuration
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		PollInterval:    10 * time.Second,
		BaseRetryDelay:  5 * time.Second,
		MaxRetryDelay:   5 * time.Minute,
		MaxExecutions:   5,
		ProcessingLease: 10 * time.Minute,
	}
}

// Worker polls the jobs table and dispatches due jobs to registered handlers
type Worker struct {
	repo      Repository
	config    *WorkerConfig
	handlers  map[Type]Handler
	recurring []RecurringJob
	log       *logger.Logger
	done      chan struct{}
}

// NewWorker creates a new retry-queue worker
func NewWorker(repo Repository, config *WorkerConfig) *Worker {
	if config == nil {
		config = DefaultWorkerConfig()
	}

	return &Worker{
		repo:     repo,
		config:   config,
		handlers: make(map[Type]Handler),
		log:      logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

// Register adds a handler for its job type. Must be called before Start.
func (w *Worker) Register(handler Handler) {
	w.handlers[handler.Type()] = handler
}

// Schedule adds a recurring job. Must be called before Start.
func (w *Worker) Schedule(jobType Type, every time.Duration) {
	w.recurring = append(w.recurring, RecurringJob{Type: jobType, Every: every})
}

// Start starts the polling loop in a background goroutine
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting retry-queue worker",
		"poll_interval", w.config.PollInterval.String(),
		"max_executions", w.config.MaxExecutions)

	go w.run(ctx)
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.log.Info("Stopping retry-queue worker")
	close(w.done)
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on startup
	w.tick(ctx)

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick reclaims stale jobs, tops up recurring jobs, then drains due jobs
func (w *Worker) tick(ctx context.Context) {
	now := time.Now()

	reclaimed, err := w.repo.ReclaimStale(ctx, now, w.config.ProcessingLease)
	if err != nil {
		w.log.ErrorWithContext(ctx, "failed to reclaim stale jobs", err, nil)
	} else if reclaimed > 0 {
		w.log.InfoWithContext(ctx, "reclaimed stale jobs", map[string]interface{}{"count": reclaimed})
	}

	for _, r := range w.recurring {
		if err := w.repo.EnsureScheduled(ctx, r.Type, now.Add(r.Every)); err != nil {
			w.log.ErrorWithContext(ctx, "failed to schedule recurring job", err,
				map[string]interface{}{"type": r.Type.String()})
		}
	}

	for {
		job, err := w.repo.ClaimNextDue(ctx, time.Now())
		if err != nil {
			w.log.ErrorWithContext(ctx, "failed to claim job", err, nil)
			return
		}
		if job == nil {
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		w.fail(ctx, job, fmt.Sprintf("no handler registered for type %s", job.Type))
		return
	}

	result, err := handler.Handle(ctx, job)
	if err == nil {
		if cerr := w.repo.Complete(ctx, job.ID, result); cerr != nil {
			w.log.ErrorWithContext(ctx, "failed to complete job", cerr,
				map[string]interface{}{"job_id": job.ID.String()})
		}
		return
	}

	if job.ExecutionCount >= w.config.MaxExecutions {
		w.fail(ctx, job, err.Error())
		if notifier, ok := handler.(ExhaustionNotifier); ok {
			notifier.OnExhausted(ctx, job)
		}
		return
	}

	nextRetryAt := CalculateNextRetry(time.Now(), job.ExecutionCount, w.config.BaseRetryDelay, w.config.MaxRetryDelay)
	if rerr := w.repo.ScheduleRetry(ctx, job.ID, err.Error(), nextRetryAt); rerr != nil {
		w.log.ErrorWithContext(ctx, "failed to schedule retry", rerr,
			map[string]interface{}{"job_id": job.ID.String()})
		return
	}
	w.log.LogJobRetryScheduled(ctx, job.ID.String(), job.ExecutionCount, nextRetryAt)
}

func (w *Worker) fail(ctx context.Context, job *Job, errMsg string) {
	if err := w.repo.MarkFailed(ctx, job.ID, errMsg); err != nil {
		w.log.ErrorWithContext(ctx, "failed to mark job failed", err,
			map[string]interface{}{"job_id": job.ID.String()})
		return
	}
	w.log.LogJobExhausted(ctx, job.ID.String(), job.Type.String())
}
