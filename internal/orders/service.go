package orders

import (
	"context"
	"errors"
	"fmt"

	"showtix/internal/coupons"
	"showtix/internal/shows"
	"showtix/pkg/logger"

	"github.com/google/uuid"
)

var ErrInvalidCoupon = errors.New("invalid coupon")

// PaymentInitiator starts the payment for a freshly reserved order. Declared
// here to avoid a circular dependency: the payments package implements it.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, order *Order) (*PaymentIntent, error)
}

// PaymentIntent is the outcome of the initial payment-creation call. When the
// provider was unreachable the payment is queued for retry instead of failing
// the checkout.
type PaymentIntent struct {
	PaymentURL string
	Queued     bool
}

// TicketService lists materialized tickets for an order (implemented by the
// tickets package, declared here to avoid a circular dependency)
type TicketService interface {
	GetTicketsForOrder(ctx context.Context, orderID uuid.UUID) ([]TicketInfo, error)
}

// Service interface defines the contract for checkout business logic
type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetailResponse, error)
}

type service struct {
	repo          Repository
	showService   shows.Service
	couponService coupons.Service
	payments      PaymentInitiator
	ticketService TicketService
	log           *logger.Logger
}

// NewService creates a new order service instance
func NewService(repo Repository, showService shows.Service, couponService coupons.Service, payments PaymentInitiator, ticketService TicketService) Service {
	return &service{
		repo:          repo,
		showService:   showService,
		couponService: couponService,
		payments:      payments,
		ticketService: ticketService,
		log:           logger.GetDefault(),
	}
}

// Checkout reserves capacity for the cart and starts the payment.
//
// The reservation is count-based: the performance's seat budget is
// decremented under a row lock, but no concrete seats are picked until the
// payment succeeds. The provider call happens strictly after the reservation
// transaction commits, so no row lock is ever held across external I/O.
func (s *service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	// Step 1: resolve performances and build line items with price snapshots
	lineItems := make([]LineItem, 0, len(req.Items))
	var grossTotal float64

	for _, item := range req.Items {
		performanceID, err := uuid.Parse(item.PerformanceID)
		if err != nil {
			return nil, fmt.Errorf("invalid performance ID %q: %w", item.PerformanceID, err)
		}

		performance, err := s.showService.GetPerformance(ctx, performanceID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve performance: %w", err)
		}
		if !performance.IsOnSale() {
			return nil, ErrPerformanceNotOnSale
		}

		lineItems = append(lineItems, LineItem{
			PerformanceID:    performanceID,
			Quantity:         item.Quantity,
			PricePerTicket:   performance.PricePerTicket,
			WheelchairAccess: item.WheelchairAccess,
		})
		grossTotal += float64(item.Quantity) * performance.PricePerTicket
	}

	// Step 2: validate the coupon before any transaction begins
	var coupon *coupons.Coupon
	var discount float64
	if req.CouponCode != "" {
		var err error
		coupon, discount, err = s.couponService.Validate(ctx, req.CouponCode, grossTotal)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCoupon, err.Error())
		}
	}

	// Step 3: reserve capacity atomically
	order := &Order{
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		TotalAmount:    grossTotal - discount,
		DiscountAmount: discount,
		Status:         StatusPending,
		LineItems:      lineItems,
	}

	if err := s.repo.CreateOrderWithCapacityCheck(ctx, order, coupon, discount); err != nil {
		return nil, err
	}

	for _, item := range lineItems {
		s.showService.InvalidateAvailability(ctx, item.PerformanceID)
	}

	s.log.LogCheckoutCompleted(ctx, order.ID.String(), order.TotalAmount, len(lineItems))

	// Step 4: start the payment, strictly after the reservation committed
	intent, err := s.payments.InitiatePayment(ctx, order)
	if err != nil {
		// Both the provider call and the retry enqueue failed. The order
		// stays pending; the orphaned-order cleanup job reclaims its seats.
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	return &CheckoutResponse{
		OrderID:        order.ID.String(),
		Status:         order.Status.String(),
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		PaymentURL:     intent.PaymentURL,
		PaymentQueued:  intent.Queued,
	}, nil
}

// GetOrder retrieves an order with its line items and any materialized tickets
func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetailResponse, error) {
	order, err := s.repo.GetOrderByIDWithRelations(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetailResponse{Order: order}

	if s.ticketService != nil {
		tickets, err := s.ticketService.GetTicketsForOrder(ctx, orderID)
		if err != nil {
			s.log.ErrorWithContext(ctx, "failed to load tickets for order", err,
				map[string]interface{}{"order_id": orderID.String()})
		} else {
			detail.Tickets = tickets
		}
	}

	return detail, nil
}
