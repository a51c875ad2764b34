package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return db, mock
}

func TestClaimNextDueReturnsClaimedJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	jobID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`UPDATE jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "status", "execution_count", "next_retry_at"}).
			AddRow(jobID.String(), string(TypePaymentCreation), string(StatusProcessing), 1, now))

	job, err := repo.ClaimNextDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job == nil {
		t.Fatalf("expected a claimed job")
	}
	if job.ID != jobID {
		t.Fatalf("expected job %s, got %s", jobID, job.ID)
	}
	if job.Status != StatusProcessing {
		t.Fatalf("claimed job should be PROCESSING, got %s", job.Status)
	}
	if job.ExecutionCount != 1 {
		t.Fatalf("execution count should be incremented to 1, got %d", job.ExecutionCount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimNextDueEmptyQueue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`UPDATE jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "status", "execution_count", "next_retry_at"}))

	job, err := repo.ClaimNextDue(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job for empty queue, got %v", job)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
