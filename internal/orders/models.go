package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order is one checkout attempt. It is created in PENDING by the capacity
// reservation transaction; every terminal state is set by the payment
// lifecycle, never here.
type Order struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerName   string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail  string    `gorm:"type:varchar(255);not null" json:"customer_email"`
	TotalAmount    float64   `gorm:"not null" json:"total_amount"`
	DiscountAmount float64   `gorm:"default:0" json:"discount_amount"`
	Status         Status    `gorm:"type:varchar(20);check:status IN ('PENDING', 'PAID', 'FAILED', 'CANCELLED', 'REFUNDED');default:'PENDING'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	LineItems    []LineItem    `json:"line_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
	CouponUsages []CouponUsage `json:"coupon_usages,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
}

// LineItem is one performance's worth of tickets inside an order. Immutable
// once created; the quantity drives both the capacity decrement at checkout
// and the seat count passed to the allocator at materialization.
type LineItem struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID          uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	PerformanceID    uuid.UUID `gorm:"type:uuid;index;not null" json:"performance_id"`
	Quantity         int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	PricePerTicket   float64   `gorm:"not null" json:"price_per_ticket"`
	WheelchairAccess bool      `gorm:"default:false" json:"wheelchair_access"`
	CreatedAt        time.Time `json:"created_at"`

	// Relationships
	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
}

// CouponUsage links an order to the coupon it redeemed. Deleted (and the
// coupon counter decremented) when the payment fails or is cancelled.
type CouponUsage struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	CouponID       uuid.UUID `gorm:"type:uuid;index;not null" json:"coupon_id"`
	DiscountAmount float64   `gorm:"not null" json:"discount_amount"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName sets the table name for LineItem
func (LineItem) TableName() string {
	return "line_items"
}

// TableName sets the table name for CouponUsage
func (CouponUsage) TableName() string {
	return "coupon_usages"
}

// IsPending reports whether the order still awaits a payment outcome
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// TotalSeats sums the seat quantities across all line items
func (o *Order) TotalSeats() int {
	total := 0
	for _, item := range o.LineItems {
		total += item.Quantity
	}
	return total
}
