package shows

import (
	"time"

	"github.com/google/uuid"
)

// Show is a production that runs one or more performances
type Show struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      Status    `gorm:"type:varchar(20);check:status IN ('DRAFT', 'PUBLISHED', 'ARCHIVED');default:'DRAFT'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Performances []Performance `json:"performances,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// Performance is one staging of a show with its own venue geometry and its
// own seat budget. AvailableSeats is the count-only capacity reserved at
// checkout; concrete seats are assigned later, at ticket materialization.
type Performance struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID         uuid.UUID `gorm:"type:uuid;index;not null" json:"show_id"`
	StartsAt       time.Time `gorm:"not null" json:"starts_at"`
	Rows           int       `gorm:"not null" json:"rows"`
	SeatsPerRow    int       `gorm:"not null" json:"seats_per_row"`
	TotalSeats     int       `gorm:"not null" json:"total_seats"`
	AvailableSeats int       `gorm:"not null;check:available_seats >= 0" json:"available_seats"`
	PricePerTicket float64   `gorm:"not null" json:"price_per_ticket"`
	Status         PerformanceStatus `gorm:"type:varchar(20);check:status IN ('SCHEDULED', 'ON_SALE', 'CLOSED', 'CANCELLED');default:'SCHEDULED'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Show *Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Show
func (Show) TableName() string {
	return "shows"
}

// TableName sets the table name for Performance
func (Performance) TableName() string {
	return "performances"
}

// IsOnSale reports whether tickets can currently be sold for the performance
func (p *Performance) IsOnSale() bool {
	return p.Status == PerformanceStatusOnSale
}

// AvailabilityInfo is the public availability view of a performance
type AvailabilityInfo struct {
	PerformanceID  string  `json:"performance_id"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
	PricePerTicket float64 `json:"price_per_ticket"`
	OnSale         bool    `json:"on_sale"`
}
