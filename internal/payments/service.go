package payments

import (
	"context"
	"errors"
	"fmt"

	"showtix/internal/jobs"
	"showtix/internal/notifications"
	"showtix/internal/orders"
	"showtix/internal/shows"
	"showtix/internal/tickets"
	"showtix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMockNotEnabled = errors.New("mock payments are not enabled")

// Config contains the provider-facing settings the service needs
type Config struct {
	Currency    string
	WebhookURL  string
	RedirectURL string
}

// Service drives the payment lifecycle. It implements orders.PaymentInitiator.
type Service interface {
	InitiatePayment(ctx context.Context, order *orders.Order) (*orders.PaymentIntent, error)

	// HandleWebhook processes a provider callback. The webhook body only
	// names the transaction; the outcome is fetched from the provider.
	// Duplicate webhooks are no-ops.
	HandleWebhook(ctx context.Context, providerTransactionID string) error

	// CompleteMockPayment finishes a mock payment with the given outcome
	// ("success", "failure" or "cancel") and runs the webhook flow.
	CompleteMockPayment(ctx context.Context, providerTransactionID, outcome string) error

	// RetryPaymentCreation re-attempts the provider call for a queued
	// payment. Called by the retry-queue handler.
	RetryPaymentCreation(ctx context.Context, orderID, paymentID uuid.UUID) (string, error)

	GetPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type service struct {
	repo         Repository
	gateway      ProviderGateway
	jobsRepo     jobs.Repository
	ordersRepo   orders.Repository
	materializer tickets.Materializer
	showService  shows.Service
	notifier     notifications.NotificationService
	config       Config
	log          *logger.Logger
}

// NewService creates a new payment service instance
func NewService(repo Repository, gateway ProviderGateway, jobsRepo jobs.Repository,
	ordersRepo orders.Repository, materializer tickets.Materializer,
	showService shows.Service, notifier notifications.NotificationService, config Config) Service {

	return &service{
		repo:         repo,
		gateway:      gateway,
		jobsRepo:     jobsRepo,
		ordersRepo:   ordersRepo,
		materializer: materializer,
		showService:  showService,
		notifier:     notifier,
		config:       config,
		log:          logger.GetDefault(),
	}
}

// InitiatePayment creates the payment row and asks the provider for a payment
// URL. When the provider is unreachable the attempt is parked on the retry
// queue instead of failing the checkout: the customer gets their reservation
// and a payment link by email later.
func (s *service) InitiatePayment(ctx context.Context, order *orders.Order) (*orders.PaymentIntent, error) {
	payment := &Payment{
		OrderID:  order.ID,
		Amount:   order.TotalAmount,
		Currency: s.config.Currency,
		Provider: s.gateway.Name(),
		Status:   StatusPending,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	provider, err := s.createAtProvider(ctx, payment, order)
	if err == nil {
		return &orders.PaymentIntent{PaymentURL: provider.PaymentURL}, nil
	}

	s.log.ErrorWithContext(ctx, "payment creation failed, queueing for retry", err,
		map[string]interface{}{"order_id": order.ID.String()})

	job := &jobs.Job{
		Type: jobs.TypePaymentCreation,
		Data: jobs.JSONMap{
			"order_id":   order.ID.String(),
			"payment_id": payment.ID.String(),
		},
	}
	if enqueueErr := s.jobsRepo.Enqueue(ctx, job); enqueueErr != nil {
		return nil, fmt.Errorf("payment creation failed and retry enqueue failed: %w", enqueueErr)
	}

	s.notify(ctx, order, notifications.NotificationTypePaymentQueued, map[string]interface{}{
		"order_id": order.ID.String(),
	})

	return &orders.PaymentIntent{Queued: true}, nil
}

func (s *service) createAtProvider(ctx context.Context, payment *Payment, order *orders.Order) (*ProviderPayment, error) {
	provider, err := s.gateway.CreatePayment(ctx, CreatePaymentRequest{
		OrderID:     order.ID.String(),
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Description: fmt.Sprintf("ShowTix order %s", order.ID),
		WebhookURL:  s.config.WebhookURL,
		RedirectURL: s.config.RedirectURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkProcessing(ctx, payment.ID, provider.TransactionID, provider.PaymentURL); err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *service) HandleWebhook(ctx context.Context, providerTransactionID string) error {
	payment, err := s.repo.GetPaymentByProviderTransactionID(ctx, providerTransactionID)
	if err != nil {
		return err
	}

	status, err := s.gateway.GetPaymentStatus(ctx, providerTransactionID)
	if err != nil {
		return fmt.Errorf("failed to fetch payment status: %w", err)
	}

	s.log.LogWebhookReceived(ctx, providerTransactionID, string(status))

	switch status {
	case ProviderStatusSucceeded:
		return s.finalizeSuccess(ctx, payment)
	case ProviderStatusFailed:
		return s.finalizeFailure(ctx, payment, StatusFailed, "provider reported failure")
	case ProviderStatusExpired:
		return s.finalizeFailure(ctx, payment, StatusFailed, "payment window expired at the provider")
	case ProviderStatusCancelled:
		return s.finalizeFailure(ctx, payment, StatusCancelled, "customer cancelled the payment")
	default:
		// pending or processing, nothing to do yet
		return nil
	}
}

func (s *service) finalizeSuccess(ctx context.Context, payment *Payment) error {
	var assigned []tickets.Ticket

	result, err := s.repo.FinalizeSuccess(ctx, payment.ID, func(tx *gorm.DB, order *orders.Order) error {
		created, merr := s.materializer.MaterializeForOrder(ctx, tx, order)
		if merr != nil {
			return merr
		}
		assigned = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyFinalized) {
			return nil
		}
		return err
	}

	seats := make([]string, 0, len(assigned))
	for _, t := range assigned {
		seats = append(seats, t.SeatLabel())
	}

	s.notify(ctx, result.Order, notifications.NotificationTypeOrderConfirmation, map[string]interface{}{
		"order_id":     result.Order.ID.String(),
		"total_amount": result.Order.TotalAmount,
		"seats":        seats,
	})

	return nil
}

func (s *service) finalizeFailure(ctx context.Context, payment *Payment, status Status, reason string) error {
	result, err := s.repo.FinalizeFailure(ctx, payment.ID, status, reason)
	if err != nil {
		if errors.Is(err, ErrAlreadyFinalized) {
			return nil
		}
		return err
	}

	s.log.LogSeatsReleased(ctx, result.Order.ID.String(), result.ReleasedSeats)
	for _, performanceID := range result.PerformanceIDs {
		s.showService.InvalidateAvailability(ctx, performanceID)
	}

	return nil
}

func (s *service) CompleteMockPayment(ctx context.Context, providerTransactionID, outcome string) error {
	mock, ok := s.gateway.(*MockGateway)
	if !ok {
		return ErrMockNotEnabled
	}

	var status ProviderStatus
	switch outcome {
	case "success":
		status = ProviderStatusSucceeded
	case "failure":
		status = ProviderStatusFailed
	case "cancel":
		status = ProviderStatusCancelled
	default:
		return fmt.Errorf("invalid outcome %q, want success, failure or cancel", outcome)
	}

	if err := mock.Complete(providerTransactionID, status); err != nil {
		return err
	}

	return s.HandleWebhook(ctx, providerTransactionID)
}

// RetryPaymentCreation is the retry-queue entry point for queued payments
func (s *service) RetryPaymentCreation(ctx context.Context, orderID, paymentID uuid.UUID) (string, error) {
	order, err := s.ordersRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !order.IsPending() {
		return fmt.Sprintf("order %s is %s, skipping payment creation", orderID, order.Status), nil
	}

	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Status != StatusPending {
		return fmt.Sprintf("payment %s is %s, nothing to do", paymentID, payment.Status), nil
	}

	provider, err := s.createAtProvider(ctx, payment, order)
	if err != nil {
		return "", err
	}

	s.notify(ctx, order, notifications.NotificationTypePaymentReady, map[string]interface{}{
		"order_id":    order.ID.String(),
		"payment_url": provider.PaymentURL,
	})

	return fmt.Sprintf("payment created at provider, transaction %s", provider.TransactionID), nil
}

func (s *service) GetPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	return s.repo.GetLatestPaymentForOrder(ctx, orderID)
}

// notify sends best-effort; a notification failure never fails the payment flow
func (s *service) notify(ctx context.Context, order *orders.Order, notType notifications.NotificationType, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.SendOrderNotification(ctx, order.CustomerEmail, order.CustomerName, order.ID, notType, data)
	if err != nil {
		s.log.ErrorWithContext(ctx, "failed to send notification", err, map[string]interface{}{
			"order_id": order.ID.String(),
			"type":     string(notType),
		})
	}
}
