package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"showtix/internal/coupons"
	"showtix/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInsufficientCapacity  = errors.New("insufficient capacity")
	ErrPerformanceNotOnSale  = errors.New("performance is not on sale")
	ErrPerformanceMissing    = errors.New("performance not found")
	ErrCouponRaceLost        = errors.New("coupon usage limit reached")
)

type Repository interface {
	// Concurrency-safe checkout reservation
	CreateOrderWithCapacityCheck(ctx context.Context, order *Order, coupon *coupons.Coupon, discount float64) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByIDWithRelations(ctx context.Context, id uuid.UUID) (*Order, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateOrderWithCapacityCheck reserves capacity for an order atomically.
// Inside a single transaction it creates the order and its line items, locks
// every referenced performance row, re-checks the seat budget under the lock,
// decrements it, and records the coupon usage. If any performance comes up
// short the whole transaction rolls back and nothing persists.
//
// Performances are locked in ascending ID order so that two carts covering
// overlapping performance sets cannot deadlock each other.
func (r *repository) CreateOrderWithCapacityCheck(ctx context.Context, order *Order, coupon *coupons.Coupon, discount float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Create the order and its line items
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// 2. Aggregate requested quantity per performance and fix the lock order
		requested := make(map[uuid.UUID]int)
		for _, item := range order.LineItems {
			requested[item.PerformanceID] += item.Quantity
		}

		performanceIDs := make([]uuid.UUID, 0, len(requested))
		for id := range requested {
			performanceIDs = append(performanceIDs, id)
		}
		sort.Slice(performanceIDs, func(i, j int) bool {
			return performanceIDs[i].String() < performanceIDs[j].String()
		})

		// 3. Lock each performance, re-check the budget, decrement
		for _, performanceID := range performanceIDs {
			quantity := requested[performanceID]

			var performance shows.Performance
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", performanceID).
				First(&performance).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPerformanceMissing
				}
				return fmt.Errorf("failed to lock performance: %w", err)
			}

			if !performance.IsOnSale() {
				return ErrPerformanceNotOnSale
			}

			if performance.AvailableSeats < quantity {
				return fmt.Errorf("%w: performance %s has %d seats, requested %d",
					ErrInsufficientCapacity, performanceID, performance.AvailableSeats, quantity)
			}

			err = tx.Model(&shows.Performance{}).
				Where("id = ?", performanceID).
				Update("available_seats", gorm.Expr("available_seats - ?", quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to decrement available seats: %w", err)
			}
		}

		// 4. Record coupon usage under the same transaction
		if coupon != nil {
			var lockedCoupon coupons.Coupon
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", coupon.ID).
				First(&lockedCoupon).Error
			if err != nil {
				return fmt.Errorf("failed to lock coupon: %w", err)
			}

			// The pre-transaction validation raced another checkout
			if lockedCoupon.IsExhausted() {
				return ErrCouponRaceLost
			}

			usage := &CouponUsage{
				OrderID:        order.ID,
				CouponID:       coupon.ID,
				DiscountAmount: discount,
			}
			if err := tx.Create(usage).Error; err != nil {
				return fmt.Errorf("failed to record coupon usage: %w", err)
			}

			err = tx.Model(&coupons.Coupon{}).
				Where("id = ?", coupon.ID).
				Update("used_count", gorm.Expr("used_count + 1")).Error
			if err != nil {
				return fmt.Errorf("failed to increment coupon usage: %w", err)
			}
		}

		return nil
	})
}

func (r *repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *repository) GetOrderByIDWithRelations(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("CouponUsages").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListPendingOlderThan returns pending orders created before the cutoff.
// Used by the orphaned-order cleanup job.
func (r *repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Order, error) {
	var result []Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("status = ?", StatusPending).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	return result, nil
}
