package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository capturing state transitions
type fakeRepo struct {
	Repository

	completed map[uuid.UUID]string
	retried   map[uuid.UUID]time.Time
	failed    map[uuid.UUID]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		completed: make(map[uuid.UUID]string),
		retried:   make(map[uuid.UUID]time.Time),
		failed:    make(map[uuid.UUID]string),
	}
}

func (f *fakeRepo) Complete(_ context.Context, jobID uuid.UUID, result string) error {
	f.completed[jobID] = result
	return nil
}

func (f *fakeRepo) ScheduleRetry(_ context.Context, jobID uuid.UUID, _ string, nextRetryAt time.Time) error {
	f.retried[jobID] = nextRetryAt
	return nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, jobID uuid.UUID, errMsg string) error {
	f.failed[jobID] = errMsg
	return nil
}

type stubHandler struct {
	jobType   Type
	err       error
	result    string
	exhausted []uuid.UUID
}

func (h *stubHandler) Type() Type { return h.jobType }

func (h *stubHandler) Handle(_ context.Context, _ *Job) (string, error) {
	return h.result, h.err
}

func (h *stubHandler) OnExhausted(_ context.Context, job *Job) {
	h.exhausted = append(h.exhausted, job.ID)
}

func newTestWorker(repo Repository) *Worker {
	return NewWorker(repo, &WorkerConfig{
		PollInterval:    time.Second,
		BaseRetryDelay:  5 * time.Second,
		MaxRetryDelay:   5 * time.Minute,
		MaxExecutions:   5,
		ProcessingLease: 10 * time.Minute,
	})
}

func TestProcessSuccessCompletesJob(t *testing.T) {
	repo := newFakeRepo()
	worker := newTestWorker(repo)
	worker.Register(&stubHandler{jobType: TypePaymentCreation, result: "payment created"})

	job := &Job{ID: uuid.New(), Type: TypePaymentCreation, ExecutionCount: 1}
	worker.process(context.Background(), job)

	if got := repo.completed[job.ID]; got != "payment created" {
		t.Fatalf("expected job completed with result, got %q", got)
	}
	if len(repo.retried) != 0 || len(repo.failed) != 0 {
		t.Fatalf("success should not retry or fail")
	}
}

func TestProcessFailureSchedulesRetry(t *testing.T) {
	repo := newFakeRepo()
	worker := newTestWorker(repo)
	worker.Register(&stubHandler{jobType: TypePaymentCreation, err: errors.New("provider unreachable")})

	job := &Job{ID: uuid.New(), Type: TypePaymentCreation, ExecutionCount: 2}
	worker.process(context.Background(), job)

	if _, ok := repo.retried[job.ID]; !ok {
		t.Fatalf("expected retry to be scheduled")
	}
	if len(repo.failed) != 0 {
		t.Fatalf("job below execution cap should not be failed")
	}
}

func TestProcessFailureAtCapMarksFailed(t *testing.T) {
	repo := newFakeRepo()
	worker := newTestWorker(repo)
	handler := &stubHandler{jobType: TypePaymentCreation, err: errors.New("provider unreachable")}
	worker.Register(handler)

	job := &Job{ID: uuid.New(), Type: TypePaymentCreation, ExecutionCount: 5}
	worker.process(context.Background(), job)

	if _, ok := repo.failed[job.ID]; !ok {
		t.Fatalf("expected job to be permanently failed at execution cap")
	}
	if len(repo.retried) != 0 {
		t.Fatalf("exhausted job should not be retried")
	}
	if len(handler.exhausted) != 1 || handler.exhausted[0] != job.ID {
		t.Fatalf("expected exhaustion notification for job")
	}
}

func TestProcessUnknownTypeMarksFailed(t *testing.T) {
	repo := newFakeRepo()
	worker := newTestWorker(repo)

	job := &Job{ID: uuid.New(), Type: Type("unknown"), ExecutionCount: 1}
	worker.process(context.Background(), job)

	if _, ok := repo.failed[job.ID]; !ok {
		t.Fatalf("expected job with no handler to be failed")
	}
}
