package tickets

import (
	"errors"
	"testing"

	"showtix/internal/orders"
	"showtix/internal/seating"
	"showtix/internal/shows"

	"github.com/google/uuid"
)

func smallPerformance() *shows.Performance {
	return &shows.Performance{
		ID:          uuid.New(),
		Rows:        2,
		SeatsPerRow: 6,
	}
}

func TestAssignForItemsRespectsExistingTickets(t *testing.T) {
	performance := smallPerformance()

	// Row 1 already sold out by earlier orders.
	occupied := seating.NewOccupied()
	existing := []Ticket{
		{RowIndex: 1, SeatNumber: 1}, {RowIndex: 1, SeatNumber: 2}, {RowIndex: 1, SeatNumber: 3},
		{RowIndex: 1, SeatNumber: 4}, {RowIndex: 1, SeatNumber: 5}, {RowIndex: 1, SeatNumber: 6},
	}
	for _, ticket := range existing {
		occupied.Add(ticket.RowIndex, ticket.SeatNumber)
	}

	item := orders.LineItem{ID: uuid.New(), Quantity: 3}
	created, err := assignForItems(occupied, performance, []orders.LineItem{item})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(created))
	}

	for _, ticket := range created {
		if ticket.RowIndex == 1 {
			t.Fatalf("seat %s collides with an existing ticket", ticket.SeatLabel())
		}
		if ticket.PerformanceID != performance.ID {
			t.Fatalf("ticket bound to wrong performance")
		}
		if ticket.LineItemID != item.ID {
			t.Fatalf("ticket bound to wrong line item")
		}
		if ticket.QRToken == "" {
			t.Fatalf("ticket missing QR token")
		}
	}
}

func TestAssignForItemsGrowsOccupancyAcrossItems(t *testing.T) {
	performance := smallPerformance()
	items := []orders.LineItem{
		{ID: uuid.New(), Quantity: 4},
		{ID: uuid.New(), Quantity: 4},
	}

	created, err := assignForItems(seating.NewOccupied(), performance, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 8 {
		t.Fatalf("expected 8 tickets, got %d", len(created))
	}

	seen := make(map[string]bool)
	for _, ticket := range created {
		label := ticket.SeatLabel()
		if seen[label] {
			t.Fatalf("seat %s assigned twice within one order", label)
		}
		seen[label] = true
	}
}

func TestAssignForItemsFailsWhenSeatsRunOut(t *testing.T) {
	performance := smallPerformance() // 12 seats total

	items := []orders.LineItem{
		{ID: uuid.New(), Quantity: 10},
		{ID: uuid.New(), Quantity: 5},
	}

	_, err := assignForItems(seating.NewOccupied(), performance, items)
	if !errors.Is(err, ErrSeatAssignmentIncomplete) {
		t.Fatalf("expected ErrSeatAssignmentIncomplete, got %v", err)
	}
}
