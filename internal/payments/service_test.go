package payments

import (
	"context"
	"errors"
	"testing"

	"showtix/internal/jobs"
	"showtix/internal/notifications"
	"showtix/internal/orders"
	"showtix/internal/shows"
	"showtix/internal/tickets"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	Repository

	payments         map[uuid.UUID]*Payment
	byTransaction    map[string]*Payment
	processing       map[uuid.UUID]string
	alreadyFinalized bool

	successCalls []uuid.UUID
	failureCalls []Status
	lastOrder    *orders.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		payments:      make(map[uuid.UUID]*Payment),
		byTransaction: make(map[string]*Payment),
		processing:    make(map[uuid.UUID]string),
	}
}

func (f *fakeRepo) CreatePayment(_ context.Context, payment *Payment) error {
	payment.ID = uuid.New()
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakeRepo) GetPaymentByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (f *fakeRepo) GetPaymentByProviderTransactionID(_ context.Context, txID string) (*Payment, error) {
	payment, ok := f.byTransaction[txID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (f *fakeRepo) MarkProcessing(_ context.Context, paymentID uuid.UUID, txID, url string) error {
	f.processing[paymentID] = txID
	if payment, ok := f.payments[paymentID]; ok {
		payment.Status = StatusProcessing
		payment.ProviderTransactionID = &txID
	}
	return nil
}

func (f *fakeRepo) FinalizeSuccess(_ context.Context, paymentID uuid.UUID, materialize MaterializeFunc) (*FinalizeResult, error) {
	if f.alreadyFinalized {
		return nil, ErrAlreadyFinalized
	}
	f.successCalls = append(f.successCalls, paymentID)

	if err := materialize(nil, f.lastOrder); err != nil {
		return nil, err
	}

	return &FinalizeResult{
		Order:          f.lastOrder,
		PerformanceIDs: performanceIDsOf(f.lastOrder),
	}, nil
}

func (f *fakeRepo) FinalizeFailure(_ context.Context, paymentID uuid.UUID, status Status, reason string) (*FinalizeResult, error) {
	if f.alreadyFinalized {
		return nil, ErrAlreadyFinalized
	}
	f.failureCalls = append(f.failureCalls, status)

	return &FinalizeResult{
		Order:          f.lastOrder,
		PerformanceIDs: performanceIDsOf(f.lastOrder),
		ReleasedSeats:  f.lastOrder.TotalSeats(),
	}, nil
}

type fakeGateway struct {
	createErr error
	statuses  map[string]ProviderStatus
	created   int
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreatePayment(_ context.Context, req CreatePaymentRequest) (*ProviderPayment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &ProviderPayment{
		TransactionID: "tx_" + req.OrderID,
		PaymentURL:    "https://pay.example.com/tx_" + req.OrderID,
		Status:        ProviderStatusProcessing,
	}, nil
}

func (f *fakeGateway) GetPaymentStatus(_ context.Context, txID string) (ProviderStatus, error) {
	status, ok := f.statuses[txID]
	if !ok {
		return "", ErrTransactionNotFound
	}
	return status, nil
}

type fakeJobsRepo struct {
	jobs.Repository

	enqueued   []*jobs.Job
	enqueueErr error
}

func (f *fakeJobsRepo) Enqueue(_ context.Context, job *jobs.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

type fakeOrdersRepo struct {
	orders.Repository

	orders map[uuid.UUID]*orders.Order
}

func (f *fakeOrdersRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*orders.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return order, nil
}

type fakeMaterializer struct {
	tickets []tickets.Ticket
	err     error
}

func (f *fakeMaterializer) MaterializeForOrder(_ context.Context, _ *gorm.DB, _ *orders.Order) ([]tickets.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tickets, nil
}

type fakeShowService struct {
	shows.Service

	invalidated []uuid.UUID
}

func (f *fakeShowService) InvalidateAvailability(_ context.Context, performanceID uuid.UUID) {
	f.invalidated = append(f.invalidated, performanceID)
}

type sentNotification struct {
	notType notifications.NotificationType
	data    map[string]interface{}
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) SendOrderNotification(_ context.Context, _, _ string, _ uuid.UUID,
	notType notifications.NotificationType, data map[string]interface{}) error {
	f.sent = append(f.sent, sentNotification{notType: notType, data: data})
	return nil
}

func (f *fakeNotifier) Start(context.Context) error       { return nil }
func (f *fakeNotifier) Stop() error                       { return nil }
func (f *fakeNotifier) HealthCheck(context.Context) error { return nil }

type fixture struct {
	repo     *fakeRepo
	gateway  *fakeGateway
	jobsRepo *fakeJobsRepo
	orders   *fakeOrdersRepo
	mat      *fakeMaterializer
	shows    *fakeShowService
	notifier *fakeNotifier
	service  Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		gateway:  &fakeGateway{statuses: make(map[string]ProviderStatus)},
		jobsRepo: &fakeJobsRepo{},
		orders:   &fakeOrdersRepo{orders: make(map[uuid.UUID]*orders.Order)},
		mat:      &fakeMaterializer{},
		shows:    &fakeShowService{},
		notifier: &fakeNotifier{},
	}
	f.service = NewService(f.repo, f.gateway, f.jobsRepo, f.orders, f.mat, f.shows, f.notifier, Config{
		Currency:    "USD",
		WebhookURL:  "https://api.example.com/v1/payments/webhook",
		RedirectURL: "https://example.com/thanks",
	})
	return f
}

func pendingOrder() *orders.Order {
	return &orders.Order{
		ID:            uuid.New(),
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		TotalAmount:   120.0,
		Status:        orders.StatusPending,
		LineItems: []orders.LineItem{
			{ID: uuid.New(), PerformanceID: uuid.New(), Quantity: 2, PricePerTicket: 60.0},
		},
	}
}

func TestInitiatePaymentProviderUp(t *testing.T) {
	f := newFixture()
	order := pendingOrder()

	intent, err := f.service.InitiatePayment(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Queued {
		t.Fatalf("payment should not be queued when provider is up")
	}
	if intent.PaymentURL == "" {
		t.Fatalf("expected a payment URL")
	}
	if len(f.jobsRepo.enqueued) != 0 {
		t.Fatalf("no retry job should be enqueued")
	}
	if len(f.repo.processing) != 1 {
		t.Fatalf("payment should be marked processing")
	}
}

func TestInitiatePaymentProviderDownQueuesRetry(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = ErrProviderUnavailable
	order := pendingOrder()

	intent, err := f.service.InitiatePayment(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !intent.Queued {
		t.Fatalf("expected payment to be queued")
	}

	if len(f.jobsRepo.enqueued) != 1 {
		t.Fatalf("expected one retry job, got %d", len(f.jobsRepo.enqueued))
	}
	job := f.jobsRepo.enqueued[0]
	if job.Type != jobs.TypePaymentCreation {
		t.Fatalf("expected payment_creation job, got %s", job.Type)
	}
	if job.Data["order_id"] != order.ID.String() {
		t.Fatalf("job payload missing order reference")
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].notType != notifications.NotificationTypePaymentQueued {
		t.Fatalf("expected a payment-queued notification")
	}
}

func TestInitiatePaymentEnqueueFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = ErrProviderUnavailable
	f.jobsRepo.enqueueErr = errors.New("database down")

	_, err := f.service.InitiatePayment(context.Background(), pendingOrder())
	if err == nil {
		t.Fatalf("expected error when both provider and enqueue fail")
	}
}

func TestHandleWebhookSuccessMaterializesAndNotifies(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.repo.lastOrder = order

	txID := "tx_success"
	payment := &Payment{ID: uuid.New(), OrderID: order.ID, Status: StatusProcessing, ProviderTransactionID: &txID}
	f.repo.payments[payment.ID] = payment
	f.repo.byTransaction[txID] = payment
	f.gateway.statuses[txID] = ProviderStatusSucceeded
	f.mat.tickets = []tickets.Ticket{
		{RowIndex: 1, SeatNumber: 3},
		{RowIndex: 1, SeatNumber: 4},
	}

	if err := f.service.HandleWebhook(context.Background(), txID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.successCalls) != 1 {
		t.Fatalf("expected one success finalization")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].notType != notifications.NotificationTypeOrderConfirmation {
		t.Fatalf("expected an order confirmation")
	}
	seats, _ := f.notifier.sent[0].data["seats"].([]string)
	if len(seats) != 2 || seats[0] != "A3" || seats[1] != "A4" {
		t.Fatalf("expected seats [A3 A4], got %v", seats)
	}
}

func TestHandleWebhookFailureReleasesSeats(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.repo.lastOrder = order

	txID := "tx_failed"
	payment := &Payment{ID: uuid.New(), OrderID: order.ID, Status: StatusProcessing, ProviderTransactionID: &txID}
	f.repo.byTransaction[txID] = payment
	f.gateway.statuses[txID] = ProviderStatusFailed

	if err := f.service.HandleWebhook(context.Background(), txID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.failureCalls) != 1 || f.repo.failureCalls[0] != StatusFailed {
		t.Fatalf("expected one FAILED finalization, got %v", f.repo.failureCalls)
	}
	if len(f.shows.invalidated) != 1 {
		t.Fatalf("expected availability cache invalidation")
	}
}

func TestHandleWebhookExpiredReleasesSeats(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.repo.lastOrder = order

	txID := "tx_expired"
	payment := &Payment{ID: uuid.New(), OrderID: order.ID, Status: StatusProcessing, ProviderTransactionID: &txID}
	f.repo.byTransaction[txID] = payment
	f.gateway.statuses[txID] = ProviderStatusExpired

	if err := f.service.HandleWebhook(context.Background(), txID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An expired payment window fails the payment, not just leaves it pending.
	if len(f.repo.failureCalls) != 1 || f.repo.failureCalls[0] != StatusFailed {
		t.Fatalf("expected one FAILED finalization for expiry, got %v", f.repo.failureCalls)
	}
	if len(f.shows.invalidated) != 1 {
		t.Fatalf("expected availability cache invalidation after release")
	}
}

func TestHandleWebhookDuplicateIsNoop(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.repo.lastOrder = order
	f.repo.alreadyFinalized = true

	txID := "tx_dup"
	payment := &Payment{ID: uuid.New(), OrderID: order.ID, Status: StatusSucceeded, ProviderTransactionID: &txID}
	f.repo.byTransaction[txID] = payment
	f.gateway.statuses[txID] = ProviderStatusSucceeded

	if err := f.service.HandleWebhook(context.Background(), txID); err != nil {
		t.Fatalf("duplicate webhook should be a no-op, got %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("duplicate webhook must not notify again")
	}
}

func TestHandleWebhookPendingStatusDoesNothing(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.repo.lastOrder = order

	txID := "tx_pending"
	payment := &Payment{ID: uuid.New(), OrderID: order.ID, Status: StatusProcessing, ProviderTransactionID: &txID}
	f.repo.byTransaction[txID] = payment
	f.gateway.statuses[txID] = ProviderStatusPending

	if err := f.service.HandleWebhook(context.Background(), txID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.successCalls) != 0 || len(f.repo.failureCalls) != 0 {
		t.Fatalf("pending status must not finalize anything")
	}
}

func TestHandleWebhookUnknownTransaction(t *testing.T) {
	f := newFixture()

	err := f.service.HandleWebhook(context.Background(), "tx_missing")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestCompleteMockPaymentRequiresMockGateway(t *testing.T) {
	f := newFixture()

	err := f.service.CompleteMockPayment(context.Background(), "tx", "success")
	if !errors.Is(err, ErrMockNotEnabled) {
		t.Fatalf("expected ErrMockNotEnabled, got %v", err)
	}
}

func TestRetryPaymentCreationSkipsFinalizedOrder(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	order.Status = orders.StatusPaid
	f.orders.orders[order.ID] = order

	payment := &Payment{OrderID: order.ID, Status: StatusPending}
	f.repo.CreatePayment(context.Background(), payment)

	result, err := f.service.RetryPaymentCreation(context.Background(), order.ID, payment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == "" {
		t.Fatalf("expected a skip message")
	}
	if f.gateway.created != 0 {
		t.Fatalf("gateway must not be called for finalized orders")
	}
}

func TestRetryPaymentCreationCreatesAndNotifies(t *testing.T) {
	f := newFixture()
	order := pendingOrder()
	f.orders.orders[order.ID] = order

	payment := &Payment{OrderID: order.ID, Status: StatusPending}
	f.repo.CreatePayment(context.Background(), payment)

	_, err := f.service.RetryPaymentCreation(context.Background(), order.ID, payment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.gateway.created != 1 {
		t.Fatalf("expected one provider call")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].notType != notifications.NotificationTypePaymentReady {
		t.Fatalf("expected a payment-ready notification")
	}
}
