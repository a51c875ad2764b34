package payments

import (
	"time"

	"github.com/google/uuid"
)

// Payment tracks one payment attempt at the provider. An order can accumulate
// several failed payments but at most one succeeded one; the PENDING check on
// the order inside the finalize transactions enforces that.
type Payment struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID               uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	Amount                float64   `gorm:"not null" json:"amount"`
	Currency              string    `gorm:"type:varchar(3);not null" json:"currency"`
	Provider              string    `gorm:"type:varchar(50);not null" json:"provider"`
	ProviderTransactionID *string   `gorm:"type:varchar(255);uniqueIndex" json:"provider_transaction_id,omitempty"`
	PaymentURL            *string   `gorm:"type:text" json:"payment_url,omitempty"`
	Status                Status    `gorm:"type:varchar(20);check:status IN ('PENDING', 'PROCESSING', 'SUCCEEDED', 'FAILED', 'CANCELLED');default:'PENDING'" json:"status"`
	FailureReason         *string   `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
