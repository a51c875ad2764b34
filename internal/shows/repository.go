package shows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowNotFound = errors.New("show not found")
var ErrPerformanceNotFound = errors.New("performance not found")

type Repository interface {
	GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error)
	ListPublishedShows(ctx context.Context) ([]Show, error)
	GetPerformanceByID(ctx context.Context, id uuid.UUID) (*Performance, error)
	ListPerformancesByShow(ctx context.Context, showID uuid.UUID) ([]Performance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetShowByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).
		Preload("Performances").
		Where("id = ?", id).
		First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return &show, nil
}

func (r *repository) ListPublishedShows(ctx context.Context) ([]Show, error) {
	var result []Show
	err := r.db.WithContext(ctx).
		Preload("Performances", "status = ?", PerformanceStatusOnSale).
		Where("status = ?", StatusPublished).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return result, nil
}

func (r *repository) GetPerformanceByID(ctx context.Context, id uuid.UUID) (*Performance, error) {
	var performance Performance
	err := r.db.WithContext(ctx).
		Preload("Show").
		Where("id = ?", id).
		First(&performance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerformanceNotFound
		}
		return nil, fmt.Errorf("failed to get performance: %w", err)
	}
	return &performance, nil
}

func (r *repository) ListPerformancesByShow(ctx context.Context, showID uuid.UUID) ([]Performance, error) {
	var result []Performance
	err := r.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("starts_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list performances: %w", err)
	}
	return result, nil
}
