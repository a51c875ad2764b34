package coupons

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponExpired   = errors.New("coupon is outside its validity window")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

// Service interface defines the contract for coupon validation
type Service interface {
	Validate(ctx context.Context, code string, orderTotal float64) (*Coupon, float64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new coupon service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Validate checks a coupon code against its activity flag, validity window
// and usage cap, and returns the coupon plus the discount it grants on the
// given order total. This is the pre-transaction check; the checkout
// transaction re-reads the usage counter before recording the usage.
func (s *service) Validate(ctx context.Context, code string, orderTotal float64) (*Coupon, float64, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	if !coupon.Active {
		return nil, 0, ErrCouponInactive
	}
	if !coupon.IsWithinValidityWindow(time.Now()) {
		return nil, 0, ErrCouponExpired
	}
	if coupon.IsExhausted() {
		return nil, 0, ErrCouponExhausted
	}

	return coupon, coupon.DiscountFor(orderTotal), nil
}
