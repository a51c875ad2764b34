package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrJobNotFound = fmt.Errorf("job not found")

type Repository interface {
	Enqueue(ctx context.Context, job *Job) error
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context, status Status, jobType Type, limit int) ([]Job, error)

	// ClaimNextDue atomically moves the oldest due PENDING job to PROCESSING
	// and increments its execution count. Returns (nil, nil) when no job is
	// due. Safe to call from multiple workers.
	ClaimNextDue(ctx context.Context, now time.Time) (*Job, error)

	// ReclaimStale returns PROCESSING jobs whose lease expired (worker died
	// mid-run) back to PENDING so another worker can pick them up.
	ReclaimStale(ctx context.Context, now time.Time, lease time.Duration) (int64, error)

	// EnsureScheduled enqueues a job of the given type due at runAt unless a
	// PENDING or PROCESSING one already exists. Used for recurring jobs.
	EnsureScheduled(ctx context.Context, jobType Type, runAt time.Time) error

	Complete(ctx context.Context, jobID uuid.UUID, result string) error
	ScheduleRetry(ctx context.Context, jobID uuid.UUID, errMsg string, nextRetryAt time.Time) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Enqueue(ctx context.Context, job *Job) error {
	if job.NextRetryAt.IsZero() {
		job.NextRetryAt = time.Now()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (r *repository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	var job Job
	err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *repository) ListJobs(ctx context.Context, status Status, jobType Type, limit int) ([]Job, error) {
	query := r.db.WithContext(ctx).Model(&Job{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if jobType != "" {
		query = query.Where("type = ?", jobType)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var result []Job
	err := query.Order("created_at DESC").Limit(limit).Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return result, nil
}

func (r *repository) ClaimNextDue(ctx context.Context, now time.Time) (*Job, error) {
	var job Job

	// SKIP LOCKED keeps concurrent workers from claiming the same job
	// without serializing the whole queue.
	result := r.db.WithContext(ctx).Raw(`
		UPDATE jobs
		SET status = ?,
		    execution_count = execution_count + 1,
		    started_at = ?,
		    updated_at = ?
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = ? AND next_retry_at <= ?
			ORDER BY next_retry_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING *`,
		StatusProcessing, now, now, StatusPending, now,
	).Scan(&job)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &job, nil
}

func (r *repository) ReclaimStale(ctx context.Context, now time.Time, lease time.Duration) (int64, error) {
	cutoff := now.Add(-lease)
	result := r.db.WithContext(ctx).Model(&Job{}).
		Where("status = ? AND started_at < ?", StatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     StatusPending,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reclaim stale jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repository) EnsureScheduled(ctx context.Context, jobType Type, runAt time.Time) error {
	// Check-then-insert is racy across workers, but a duplicate recurring
	// job is harmless: both runs see the same state and the second is a no-op.
	var count int64
	err := r.db.WithContext(ctx).Model(&Job{}).
		Where("type = ? AND status IN ?", jobType, []Status{StatusPending, StatusProcessing}).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check scheduled jobs: %w", err)
	}
	if count > 0 {
		return nil
	}

	return r.Enqueue(ctx, &Job{
		Type:        jobType,
		Status:      StatusPending,
		NextRetryAt: runAt,
	})
}

func (r *repository) Complete(ctx context.Context, jobID uuid.UUID, result string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       StatusCompleted,
			"result":       result,
			"completed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

func (r *repository) ScheduleRetry(ctx context.Context, jobID uuid.UUID, errMsg string, nextRetryAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        StatusPending,
			"error_message": errMsg,
			"next_retry_at": nextRetryAt,
			"updated_at":    time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        StatusFailed,
			"error_message": errMsg,
			"completed_at":  now,
			"updated_at":    now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}
