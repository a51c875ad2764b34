package payments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"showtix/internal/coupons"
	"showtix/internal/orders"
	"showtix/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAlreadyFinalized means the order already left PENDING; the current
	// webhook is a duplicate or a late arrival and must be a no-op.
	ErrAlreadyFinalized = errors.New("order already finalized")
)

// MaterializeFunc runs inside the success transaction to turn the order's
// reservations into concrete tickets. An error rolls everything back.
type MaterializeFunc func(tx *gorm.DB, order *orders.Order) error

// FinalizeResult reports what a finalize transaction changed, so the service
// can invalidate caches and send notifications after commit.
type FinalizeResult struct {
	Order          *orders.Order
	PerformanceIDs []uuid.UUID
	ReleasedSeats  int
}

type Repository interface {
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetPaymentByProviderTransactionID(ctx context.Context, providerTransactionID string) (*Payment, error)
	GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// MarkProcessing records the provider's transaction ID and URL once the
	// provider accepted the payment.
	MarkProcessing(ctx context.Context, paymentID uuid.UUID, providerTransactionID, paymentURL string) error

	// FinalizeSuccess atomically marks payment SUCCEEDED, order PAID, and
	// materializes tickets. Returns ErrAlreadyFinalized if the order already
	// left PENDING.
	FinalizeSuccess(ctx context.Context, paymentID uuid.UUID, materialize MaterializeFunc) (*FinalizeResult, error)

	// FinalizeFailure atomically marks the payment and order failed (or
	// cancelled), returns the reserved seats to their performances and rolls
	// back any coupon usage.
	FinalizeFailure(ctx context.Context, paymentID uuid.UUID, status Status, reason string) (*FinalizeResult, error)

	// CancelOrphanedOrder releases a pending order that never got a payment
	// outcome. Any non-terminal payments for it are cancelled too.
	CancelOrphanedOrder(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) GetPaymentByProviderTransactionID(ctx context.Context, providerTransactionID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("provider_transaction_id = ?", providerTransactionID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) MarkProcessing(ctx context.Context, paymentID uuid.UUID, providerTransactionID, paymentURL string) error {
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", paymentID, StatusPending).
		Updates(map[string]interface{}{
			"status":                  StatusProcessing,
			"provider_transaction_id": providerTransactionID,
			"payment_url":             paymentURL,
			"updated_at":              time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark payment processing: %w", err)
	}
	return nil
}

func (r *repository) FinalizeSuccess(ctx context.Context, paymentID uuid.UUID, materialize MaterializeFunc) (*FinalizeResult, error) {
	var result *FinalizeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, order, err := lockPaymentAndOrder(tx, paymentID)
		if err != nil {
			return err
		}

		if !payment.Status.CanTransitionTo(StatusSucceeded) {
			return fmt.Errorf("payment %s cannot move from %s to %s", paymentID, payment.Status, StatusSucceeded)
		}

		now := time.Now()
		err = tx.Model(&Payment{}).
			Where("id = ?", paymentID).
			Updates(map[string]interface{}{"status": StatusSucceeded, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		err = tx.Model(&orders.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": orders.StatusPaid, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		order.Status = orders.StatusPaid

		if err := materialize(tx, order); err != nil {
			return err
		}

		result = &FinalizeResult{
			Order:          order,
			PerformanceIDs: performanceIDsOf(order),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) FinalizeFailure(ctx context.Context, paymentID uuid.UUID, status Status, reason string) (*FinalizeResult, error) {
	if status != StatusFailed && status != StatusCancelled {
		return nil, fmt.Errorf("invalid failure status %s", status)
	}

	var result *FinalizeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, order, err := lockPaymentAndOrder(tx, paymentID)
		if err != nil {
			return err
		}

		if !payment.Status.CanTransitionTo(status) {
			return fmt.Errorf("payment %s cannot move from %s to %s", paymentID, payment.Status, status)
		}

		now := time.Now()
		err = tx.Model(&Payment{}).
			Where("id = ?", paymentID).
			Updates(map[string]interface{}{
				"status":         status,
				"failure_reason": reason,
				"updated_at":     now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		orderStatus := orders.StatusFailed
		if status == StatusCancelled {
			orderStatus = orders.StatusCancelled
		}
		err = tx.Model(&orders.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": orderStatus, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		order.Status = orderStatus

		released, err := releaseSeats(tx, order)
		if err != nil {
			return err
		}

		if err := rollbackCouponUsage(tx, order.ID); err != nil {
			return err
		}

		result = &FinalizeResult{
			Order:          order,
			PerformanceIDs: performanceIDsOf(order),
			ReleasedSeats:  released,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) CancelOrphanedOrder(ctx context.Context, orderID uuid.UUID) (*FinalizeResult, error) {
	var result *FinalizeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}

		now := time.Now()

		// Cancel any payment attempts that never reached an outcome
		err = tx.Model(&Payment{}).
			Where("order_id = ? AND status IN ?", orderID, []Status{StatusPending, StatusProcessing}).
			Updates(map[string]interface{}{
				"status":         StatusCancelled,
				"failure_reason": "order expired without payment outcome",
				"updated_at":     now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to cancel payments: %w", err)
		}

		err = tx.Model(&orders.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{"status": orders.StatusCancelled, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		order.Status = orders.StatusCancelled

		released, err := releaseSeats(tx, order)
		if err != nil {
			return err
		}

		if err := rollbackCouponUsage(tx, orderID); err != nil {
			return err
		}

		result = &FinalizeResult{
			Order:          order,
			PerformanceIDs: performanceIDsOf(order),
			ReleasedSeats:  released,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockPaymentAndOrder locks the payment row and its order row, in that order,
// and enforces the PENDING idempotency guard.
func lockPaymentAndOrder(tx *gorm.DB, paymentID uuid.UUID) (*Payment, *orders.Order, error) {
	var payment Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	order, err := lockOrder(tx, payment.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return &payment, order, nil
}

func lockOrder(tx *gorm.DB, orderID uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if !order.IsPending() {
		return nil, ErrAlreadyFinalized
	}

	if err := tx.Where("order_id = ?", orderID).Find(&order.LineItems).Error; err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	return &order, nil
}

// releaseSeats returns the order's reserved quantities to their performances.
// LEAST caps the result at total_seats, so a double release (which the
// PENDING guard should already prevent) can never inflate availability.
func releaseSeats(tx *gorm.DB, order *orders.Order) (int, error) {
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

	released := 0
	for _, performanceID := range performanceIDs {
		quantity := requested[performanceID]

		err := tx.Model(&shows.Performance{}).
			Where("id = ?", performanceID).
			Update("available_seats", gorm.Expr("LEAST(total_seats, available_seats + ?)", quantity)).Error
		if err != nil {
			return 0, fmt.Errorf("failed to release seats: %w", err)
		}
		released += quantity
	}
	return released, nil
}

// rollbackCouponUsage deletes the order's coupon usages and gives the uses
// back to their coupons, floored at zero.
func rollbackCouponUsage(tx *gorm.DB, orderID uuid.UUID) error {
	var usages []orders.CouponUsage
	if err := tx.Where("order_id = ?", orderID).Find(&usages).Error; err != nil {
		return fmt.Errorf("failed to load coupon usages: %w", err)
	}

	for _, usage := range usages {
		err := tx.Model(&coupons.Coupon{}).
			Where("id = ?", usage.CouponID).
			Update("used_count", gorm.Expr("GREATEST(used_count - 1, 0)")).Error
		if err != nil {
			return fmt.Errorf("failed to decrement coupon usage: %w", err)
		}

		if err := tx.Delete(&orders.CouponUsage{}, "id = ?", usage.ID).Error; err != nil {
			return fmt.Errorf("failed to delete coupon usage: %w", err)
		}
	}
	return nil
}

func performanceIDsOf(order *orders.Order) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		if !seen[item.PerformanceID] {
			seen[item.PerformanceID] = true
			ids = append(ids, item.PerformanceID)
		}
	}
	return ids
}
