package tickets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	ListByPerformance(ctx context.Context, performanceID uuid.UUID) ([]Ticket, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByPerformance(ctx context.Context, performanceID uuid.UUID) ([]Ticket, error) {
	var result []Ticket
	err := r.db.WithContext(ctx).
		Where("performance_id = ?", performanceID).
		Order("row_index ASC, seat_number ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return result, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Ticket, error) {
	var result []Ticket
	err := r.db.WithContext(ctx).
		Joins("JOIN line_items ON line_items.id = tickets.line_item_id").
		Where("line_items.order_id = ?", orderID).
		Order("tickets.row_index ASC, tickets.seat_number ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets for order: %w", err)
	}
	return result, nil
}
