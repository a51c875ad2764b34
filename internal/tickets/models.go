package tickets

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ticket is a materialized seat assignment. Created exactly once, only after
// payment success; the unique index on (performance, row, seat) is the last
// line of defense against double-assigning a seat.
type Ticket struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LineItemID    uuid.UUID `gorm:"type:uuid;index;not null" json:"line_item_id"`
	PerformanceID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_performance_seat" json:"performance_id"`
	RowIndex      int       `gorm:"not null;uniqueIndex:idx_performance_seat" json:"row_index"`
	SeatNumber    int       `gorm:"not null;uniqueIndex:idx_performance_seat" json:"seat_number"`
	QRToken       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"qr_token"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

// SeatLabel renders the seat the way it is printed on the ticket: row letter
// plus seat number for the first 26 rows, an explicit row/seat pair beyond.
func (t *Ticket) SeatLabel() string {
	if t.RowIndex >= 1 && t.RowIndex <= 26 {
		return fmt.Sprintf("%c%d", 'A'+t.RowIndex-1, t.SeatNumber)
	}
	return fmt.Sprintf("R%dS%d", t.RowIndex, t.SeatNumber)
}
