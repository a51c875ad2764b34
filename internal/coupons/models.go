package coupons

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Coupon is a discount code with bounded usage. UsedCount only moves inside
// the checkout and release transactions so it stays consistent with the
// CouponUsage rows that reference it.
type Coupon struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code       string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type       DiscountType `gorm:"type:varchar(20);check:type IN ('PERCENT', 'FIXED');not null" json:"type"`
	Value      float64      `gorm:"not null" json:"value"`
	MaxUses    int          `gorm:"default:0" json:"max_uses"` // 0 means unlimited
	UsedCount  int          `gorm:"default:0;check:used_count >= 0" json:"used_count"`
	ValidFrom  *time.Time   `json:"valid_from,omitempty"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`
	Active     bool         `gorm:"default:true" json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName sets the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercent || t == DiscountTypeFixed
}

// IsExhausted reports whether the coupon has reached its usage cap
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses > 0 && c.UsedCount >= c.MaxUses
}

// IsWithinValidityWindow reports whether the coupon is usable at the given time
func (c *Coupon) IsWithinValidityWindow(now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}

// DiscountFor computes the discount amount for an order total, rounded to
// cents. The discount never exceeds the order total.
func (c *Coupon) DiscountFor(orderTotal float64) float64 {
	var discount float64
	switch c.Type {
	case DiscountTypePercent:
		discount = orderTotal * c.Value / 100
	case DiscountTypeFixed:
		discount = c.Value
	}
	if discount > orderTotal {
		discount = orderTotal
	}
	return math.Round(discount*100) / 100
}
