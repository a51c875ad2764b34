package coupons

import (
	"testing"
	"time"
)

func TestDiscountFor_Percent(t *testing.T) {
	c := &Coupon{Type: DiscountTypePercent, Value: 10}
	if got := c.DiscountFor(55.50); got != 5.55 {
		t.Fatalf("expected 5.55, got %v", got)
	}
}

func TestDiscountFor_PercentRoundsToCents(t *testing.T) {
	c := &Coupon{Type: DiscountTypePercent, Value: 15}
	if got := c.DiscountFor(33.33); got != 5.00 {
		t.Fatalf("expected 5.00, got %v", got)
	}
}

func TestDiscountFor_FixedCappedAtTotal(t *testing.T) {
	c := &Coupon{Type: DiscountTypeFixed, Value: 25}
	if got := c.DiscountFor(12.50); got != 12.50 {
		t.Fatalf("fixed discount must not exceed the order total, got %v", got)
	}
}

func TestIsExhausted(t *testing.T) {
	c := &Coupon{MaxUses: 2, UsedCount: 2}
	if !c.IsExhausted() {
		t.Fatal("coupon at its cap should be exhausted")
	}

	unlimited := &Coupon{MaxUses: 0, UsedCount: 5000}
	if unlimited.IsExhausted() {
		t.Fatal("max_uses 0 means unlimited")
	}
}

func TestIsWithinValidityWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{"no window", Coupon{}, true},
		{"inside window", Coupon{ValidFrom: &past, ValidUntil: &future}, true},
		{"not started", Coupon{ValidFrom: &future}, false},
		{"expired", Coupon{ValidUntil: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.IsWithinValidityWindow(now); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
