package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service interface defines the contract for retry-queue inspection
type Service interface {
	ListJobs(ctx context.Context, status Status, jobType Type, limit int) ([]Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error)
}

type service struct {
	repo Repository
}

// NewService creates a new job service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListJobs(ctx context.Context, status Status, jobType Type, limit int) ([]Job, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("invalid status filter: %s", status)
	}
	if jobType != "" && !jobType.IsValid() {
		return nil, fmt.Errorf("invalid type filter: %s", jobType)
	}
	return s.repo.ListJobs(ctx, status, jobType, limit)
}

func (s *service) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}
