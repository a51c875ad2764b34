package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showtix/internal/jobs"
	"showtix/internal/notifications"
	"showtix/internal/orders"
	"showtix/internal/shows"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

// PaymentCreationHandler retries provider payment creation for orders whose
// initial provider call failed at checkout.
type PaymentCreationHandler struct {
	service    Service
	ordersRepo orders.Repository
	notifier   notifications.NotificationService
	log        *logger.Logger
}

// NewPaymentCreationHandler creates the retry-queue handler for queued payments
func NewPaymentCreationHandler(service Service, ordersRepo orders.Repository,
	notifier notifications.NotificationService) *PaymentCreationHandler {

	return &PaymentCreationHandler{
		service:    service,
		ordersRepo: ordersRepo,
		notifier:   notifier,
		log:        logger.GetDefault(),
	}
}

func (h *PaymentCreationHandler) Type() jobs.Type {
	return jobs.TypePaymentCreation
}

func (h *PaymentCreationHandler) Handle(ctx context.Context, job *jobs.Job) (string, error) {
	orderID, paymentID, err := parseCreationPayload(job.Data)
	if err != nil {
		// A malformed payload never fixes itself; report success with the
		// parse failure as result so the job does not spin through retries.
		return fmt.Sprintf("dropping malformed payload: %v", err), nil
	}

	return h.service.RetryPaymentCreation(ctx, orderID, paymentID)
}

// OnExhausted alerts the customer that an operator has to take over
func (h *PaymentCreationHandler) OnExhausted(ctx context.Context, job *jobs.Job) {
	orderID, _, err := parseCreationPayload(job.Data)
	if err != nil {
		return
	}

	order, err := h.ordersRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		h.log.ErrorWithContext(ctx, "failed to load order for exhaustion notice", err,
			map[string]interface{}{"order_id": orderID.String()})
		return
	}

	if h.notifier == nil {
		return
	}
	err = h.notifier.SendOrderNotification(ctx, order.CustomerEmail, order.CustomerName, order.ID,
		notifications.NotificationTypePaymentManualRequired, map[string]interface{}{
			"order_id": order.ID.String(),
		})
	if err != nil {
		h.log.ErrorWithContext(ctx, "failed to send manual-required notification", err,
			map[string]interface{}{"order_id": order.ID.String()})
	}
}

func parseCreationPayload(data jobs.JSONMap) (uuid.UUID, uuid.UUID, error) {
	orderRaw, ok := data["order_id"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, errors.New("payload missing order_id")
	}
	paymentRaw, ok := data["payment_id"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, errors.New("payload missing payment_id")
	}

	orderID, err := uuid.Parse(orderRaw)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid order_id: %w", err)
	}
	paymentID, err := uuid.Parse(paymentRaw)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid payment_id: %w", err)
	}
	return orderID, paymentID, nil
}

// OrphanedOrderCleanupHandler reclaims seats from pending orders that never
// got a payment outcome. Runs as a recurring job.
type OrphanedOrderCleanupHandler struct {
	repo        Repository
	ordersRepo  orders.Repository
	showService shows.Service
	cutoff      time.Duration
	log         *logger.Logger
}

// NewOrphanedOrderCleanupHandler creates the cleanup handler. cutoff is how
// long an order may stay PENDING before its seats are reclaimed.
func NewOrphanedOrderCleanupHandler(repo Repository, ordersRepo orders.Repository,
	showService shows.Service, cutoff time.Duration) *OrphanedOrderCleanupHandler {

	return &OrphanedOrderCleanupHandler{
		repo:        repo,
		ordersRepo:  ordersRepo,
		showService: showService,
		cutoff:      cutoff,
		log:         logger.GetDefault(),
	}
}

func (h *OrphanedOrderCleanupHandler) Type() jobs.Type {
	return jobs.TypeOrphanedOrderCleanup
}

func (h *OrphanedOrderCleanupHandler) Handle(ctx context.Context, job *jobs.Job) (string, error) {
	cutoffTime := time.Now().Add(-h.cutoff)

	orphaned, err := h.ordersRepo.ListPendingOlderThan(ctx, cutoffTime)
	if err != nil {
		return "", err
	}

	cancelled := 0
	for _, order := range orphaned {
		result, err := h.repo.CancelOrphanedOrder(ctx, order.ID)
		if err != nil {
			if errors.Is(err, ErrAlreadyFinalized) {
				// A webhook beat us to it between the list and the lock
				continue
			}
			return "", fmt.Errorf("failed to cancel order %s: %w", order.ID, err)
		}

		h.log.LogSeatsReleased(ctx, order.ID.String(), result.ReleasedSeats)
		for _, performanceID := range result.PerformanceIDs {
			h.showService.InvalidateAvailability(ctx, performanceID)
		}
		cancelled++
	}

	return fmt.Sprintf("cancelled %d orphaned orders", cancelled), nil
}
