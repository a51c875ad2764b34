package shows

import (
	"context"
	"fmt"
	"time"

	"showtix/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for show/performance reads
type Service interface {
	ListShows(ctx context.Context) ([]Show, error)
	GetShow(ctx context.Context, id uuid.UUID) (*Show, error)
	GetPerformance(ctx context.Context, id uuid.UUID) (*Performance, error)
	GetAvailability(ctx context.Context, performanceID uuid.UUID) (*AvailabilityInfo, error)
	InvalidateAvailability(ctx context.Context, performanceID uuid.UUID)
}

type service struct {
	repo            Repository
	cache           cache.Service
	availabilityTTL time.Duration
}

// NewService creates a new show read service. The cache is optional; with a
// nil cache every availability read goes to the database.
func NewService(repo Repository, cacheService cache.Service, availabilityTTL time.Duration) Service {
	return &service{
		repo:            repo,
		cache:           cacheService,
		availabilityTTL: availabilityTTL,
	}
}

func (s *service) ListShows(ctx context.Context) ([]Show, error) {
	return s.repo.ListPublishedShows(ctx)
}

func (s *service) GetShow(ctx context.Context, id uuid.UUID) (*Show, error) {
	return s.repo.GetShowByID(ctx, id)
}

func (s *service) GetPerformance(ctx context.Context, id uuid.UUID) (*Performance, error) {
	return s.repo.GetPerformanceByID(ctx, id)
}

// GetAvailability returns the seat budget for a performance, served from a
// short-TTL cache. The counter only changes through locked checkout and
// release transactions, so a slightly stale read here is harmless: the
// capacity check at checkout re-reads under the row lock.
func (s *service) GetAvailability(ctx context.Context, performanceID uuid.UUID) (*AvailabilityInfo, error) {
	fetch := func() (interface{}, error) {
		performance, err := s.repo.GetPerformanceByID(ctx, performanceID)
		if err != nil {
			return nil, err
		}
		return &AvailabilityInfo{
			PerformanceID:  performance.ID.String(),
			TotalSeats:     performance.TotalSeats,
			AvailableSeats: performance.AvailableSeats,
			PricePerTicket: performance.PricePerTicket,
			OnSale:         performance.IsOnSale(),
		}, nil
	}

	if s.cache == nil {
		info, err := fetch()
		if err != nil {
			return nil, err
		}
		return info.(*AvailabilityInfo), nil
	}

	var info AvailabilityInfo
	if err := s.cache.GetOrSet(ctx, availabilityKey(performanceID), s.availabilityTTL, fetch, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// InvalidateAvailability drops the cached availability for a performance.
// Called after reservations and releases; best-effort.
func (s *service) InvalidateAvailability(ctx context.Context, performanceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, availabilityKey(performanceID))
}

func availabilityKey(performanceID uuid.UUID) string {
	return fmt.Sprintf("showtix:availability:%s", performanceID)
}
