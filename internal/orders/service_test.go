package orders

import (
	"context"
	"errors"
	"testing"

	"showtix/internal/coupons"
	"showtix/internal/shows"

	"github.com/google/uuid"
)

type fakeOrderRepo struct {
	Repository

	created   *Order
	createErr error
	stored    map[uuid.UUID]*Order
}

func (f *fakeOrderRepo) CreateOrderWithCapacityCheck(_ context.Context, order *Order, _ *coupons.Coupon, _ float64) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = uuid.New()
	f.created = order
	return nil
}

func (f *fakeOrderRepo) GetOrderByIDWithRelations(_ context.Context, id uuid.UUID) (*Order, error) {
	order, ok := f.stored[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

type fakeShowService struct {
	shows.Service

	performances map[uuid.UUID]*shows.Performance
	invalidated  []uuid.UUID
}

func (f *fakeShowService) GetPerformance(_ context.Context, id uuid.UUID) (*shows.Performance, error) {
	performance, ok := f.performances[id]
	if !ok {
		return nil, shows.ErrPerformanceNotFound
	}
	return performance, nil
}

func (f *fakeShowService) InvalidateAvailability(_ context.Context, id uuid.UUID) {
	f.invalidated = append(f.invalidated, id)
}

type fakeCouponService struct {
	coupon   *coupons.Coupon
	discount float64
	err      error
}

func (f *fakeCouponService) Validate(_ context.Context, _ string, _ float64) (*coupons.Coupon, float64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.coupon, f.discount, nil
}

type fakeInitiator struct {
	intent *PaymentIntent
	err    error
	orders []*Order
}

func (f *fakeInitiator) InitiatePayment(_ context.Context, order *Order) (*PaymentIntent, error) {
	f.orders = append(f.orders, order)
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type fakeTicketService struct {
	tickets []TicketInfo
}

func (f *fakeTicketService) GetTicketsForOrder(_ context.Context, _ uuid.UUID) ([]TicketInfo, error) {
	return f.tickets, nil
}

func onSalePerformance(price float64) *shows.Performance {
	return &shows.Performance{
		ID:             uuid.New(),
		Status:         shows.PerformanceStatusOnSale,
		Rows:           10,
		SeatsPerRow:    12,
		TotalSeats:     120,
		AvailableSeats: 120,
		PricePerTicket: price,
	}
}

func checkoutFixture() (*fakeOrderRepo, *fakeShowService, *fakeCouponService, *fakeInitiator, Service) {
	repo := &fakeOrderRepo{stored: make(map[uuid.UUID]*Order)}
	showService := &fakeShowService{performances: make(map[uuid.UUID]*shows.Performance)}
	couponService := &fakeCouponService{}
	initiator := &fakeInitiator{intent: &PaymentIntent{PaymentURL: "https://pay.example.com/tx"}}
	svc := NewService(repo, showService, couponService, initiator, &fakeTicketService{})
	return repo, showService, couponService, initiator, svc
}

func TestCheckoutComputesTotalsAndInitiatesPayment(t *testing.T) {
	repo, showService, _, initiator, svc := checkoutFixture()

	performance := onSalePerformance(50.0)
	showService.performances[performance.ID] = performance

	resp, err := svc.Checkout(context.Background(), CheckoutRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Items: []CheckoutItem{
			{PerformanceID: performance.ID.String(), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.created == nil {
		t.Fatalf("expected order to be created")
	}
	if repo.created.TotalAmount != 150.0 {
		t.Fatalf("expected total 150, got %v", repo.created.TotalAmount)
	}
	if len(repo.created.LineItems) != 1 || repo.created.LineItems[0].PricePerTicket != 50.0 {
		t.Fatalf("expected price snapshot on line item")
	}

	if len(initiator.orders) != 1 {
		t.Fatalf("expected payment initiation after reservation")
	}
	if resp.PaymentURL != "https://pay.example.com/tx" {
		t.Fatalf("expected payment URL in response, got %q", resp.PaymentURL)
	}
	if len(showService.invalidated) != 1 {
		t.Fatalf("expected availability invalidation")
	}
}

func TestCheckoutAppliesCouponDiscount(t *testing.T) {
	repo, showService, couponService, _, svc := checkoutFixture()

	performance := onSalePerformance(100.0)
	showService.performances[performance.ID] = performance
	couponService.coupon = &coupons.Coupon{ID: uuid.New(), Code: "SAVE20"}
	couponService.discount = 40.0

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CouponCode:    "SAVE20",
		Items: []CheckoutItem{
			{PerformanceID: performance.ID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.created.TotalAmount != 160.0 {
		t.Fatalf("expected discounted total 160, got %v", repo.created.TotalAmount)
	}
	if repo.created.DiscountAmount != 40.0 {
		t.Fatalf("expected discount 40, got %v", repo.created.DiscountAmount)
	}
}

func TestCheckoutRejectsInvalidCoupon(t *testing.T) {
	_, showService, couponService, _, svc := checkoutFixture()

	performance := onSalePerformance(100.0)
	showService.performances[performance.ID] = performance
	couponService.err = coupons.ErrCouponExpired

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CouponCode:    "OLD",
		Items: []CheckoutItem{
			{PerformanceID: performance.ID.String(), Quantity: 1},
		},
	})
	if !errors.Is(err, ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon, got %v", err)
	}
}

func TestCheckoutRejectsOffSalePerformance(t *testing.T) {
	_, showService, _, _, svc := checkoutFixture()

	performance := onSalePerformance(50.0)
	performance.Status = shows.PerformanceStatusClosed
	showService.performances[performance.ID] = performance

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Items: []CheckoutItem{
			{PerformanceID: performance.ID.String(), Quantity: 1},
		},
	})
	if !errors.Is(err, ErrPerformanceNotOnSale) {
		t.Fatalf("expected ErrPerformanceNotOnSale, got %v", err)
	}
}

func TestCheckoutPropagatesCapacityError(t *testing.T) {
	repo, showService, _, initiator, svc := checkoutFixture()

	performance := onSalePerformance(50.0)
	showService.performances[performance.ID] = performance
	repo.createErr = ErrInsufficientCapacity

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		Items: []CheckoutItem{
			{PerformanceID: performance.ID.String(), Quantity: 200},
		},
	})
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if len(initiator.orders) != 0 {
		t.Fatalf("payment must not start when the reservation fails")
	}
}

func TestGetOrderIncludesTickets(t *testing.T) {
	repo := &fakeOrderRepo{stored: make(map[uuid.UUID]*Order)}
	ticketService := &fakeTicketService{tickets: []TicketInfo{
		{RowIndex: 1, SeatNumber: 3},
	}}
	svc := NewService(repo, &fakeShowService{}, &fakeCouponService{}, &fakeInitiator{}, ticketService)

	order := &Order{ID: uuid.New(), Status: StatusPaid}
	repo.stored[order.ID] = order

	detail, err := svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Tickets) != 1 {
		t.Fatalf("expected tickets in order detail")
	}
}
