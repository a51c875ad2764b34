package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"showtix/internal/orders"
	"showtix/internal/seating"
	"showtix/internal/shows"
	"showtix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSeatAssignmentIncomplete means the allocator could not place every
	// requested seat even in fluid-fill mode. Can only happen if the venue
	// geometry shrank after the capacity reservation, so the whole payment
	// transaction must roll back.
	ErrSeatAssignmentIncomplete = errors.New("could not assign all requested seats")
)

// Materializer turns a paid order's count-based reservations into concrete
// seat rows. It runs inside the payment-success transaction so a partial
// assignment can never be observed.
type Materializer interface {
	MaterializeForOrder(ctx context.Context, tx *gorm.DB, order *orders.Order) ([]Ticket, error)
}

// Service exposes ticket reads and implements orders.TicketService
type Service interface {
	Materializer
	GetTicketsForOrder(ctx context.Context, orderID uuid.UUID) ([]orders.TicketInfo, error)
	GetTicketsForPerformance(ctx context.Context, performanceID uuid.UUID) ([]Ticket, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new ticket service instance
func NewService(repo Repository) Service {
	return &service{repo: repo, log: logger.GetDefault()}
}

// MaterializeForOrder assigns concrete seats for every line item of a paid
// order and inserts the ticket rows, all within the caller's transaction.
//
// The performance row is locked FOR UPDATE before reading existing tickets,
// which serializes concurrent materializations for the same performance.
// Line items are grouped per performance so two items for the same show date
// share one growing occupancy view.
func (s *service) MaterializeForOrder(ctx context.Context, tx *gorm.DB, order *orders.Order) ([]Ticket, error) {
	grouped := groupByPerformance(order.LineItems)

	// Deterministic lock order across performances, mirroring the capacity
	// reservation, so two multi-performance orders cannot deadlock.
	performanceIDs := make([]uuid.UUID, 0, len(grouped))
	for id := range grouped {
		performanceIDs = append(performanceIDs, id)
	}
	sort.Slice(performanceIDs, func(i, j int) bool {
		return performanceIDs[i].String() < performanceIDs[j].String()
	})

	created := make([]Ticket, 0, order.TotalSeats())

	for _, performanceID := range performanceIDs {
		var performance shows.Performance
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", performanceID).
			First(&performance).Error
		if err != nil {
			return nil, fmt.Errorf("failed to lock performance %s: %w", performanceID, err)
		}

		var existing []Ticket
		err = tx.WithContext(ctx).
			Where("performance_id = ?", performanceID).
			Find(&existing).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load existing tickets: %w", err)
		}

		occupied := seating.NewOccupied()
		for _, t := range existing {
			occupied.Add(t.RowIndex, t.SeatNumber)
		}

		assigned, err := assignForItems(occupied, &performance, grouped[performanceID])
		if err != nil {
			return nil, err
		}
		created = append(created, assigned...)
	}

	if len(created) > 0 {
		if err := tx.WithContext(ctx).Create(&created).Error; err != nil {
			return nil, fmt.Errorf("failed to create tickets: %w", err)
		}
	}

	s.log.LogTicketsMaterialized(ctx, order.ID.String(), len(created))
	return created, nil
}

// assignForItems allocates seats for each line item of one performance,
// growing the occupancy view as it goes so items in the same order never
// collide. A short allocation aborts the whole batch.
func assignForItems(occupied seating.Occupied, performance *shows.Performance, items []orders.LineItem) ([]Ticket, error) {
	created := make([]Ticket, 0)

	for _, item := range items {
		seats := seating.AssignSeats(occupied, performance.Rows, performance.SeatsPerRow, item.Quantity, item.WheelchairAccess)
		if len(seats) < item.Quantity {
			return nil, fmt.Errorf("%w: performance %s wanted %d got %d",
				ErrSeatAssignmentIncomplete, performance.ID, item.Quantity, len(seats))
		}

		for _, seat := range seats {
			occupied.Add(seat.Row, seat.Number)
			created = append(created, Ticket{
				LineItemID:    item.ID,
				PerformanceID: performance.ID,
				RowIndex:      seat.Row,
				SeatNumber:    seat.Number,
				QRToken:       uuid.New().String(),
			})
		}
	}

	return created, nil
}

// GetTicketsForOrder implements orders.TicketService
func (s *service) GetTicketsForOrder(ctx context.Context, orderID uuid.UUID) ([]orders.TicketInfo, error) {
	ticketRows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := make([]orders.TicketInfo, 0, len(ticketRows))
	for _, t := range ticketRows {
		result = append(result, orders.TicketInfo{
			ID:            t.ID.String(),
			LineItemID:    t.LineItemID.String(),
			PerformanceID: t.PerformanceID.String(),
			RowIndex:      t.RowIndex,
			SeatNumber:    t.SeatNumber,
			QRToken:       t.QRToken,
		})
	}
	return result, nil
}

// GetTicketsForPerformance lists every assigned seat for a performance
func (s *service) GetTicketsForPerformance(ctx context.Context, performanceID uuid.UUID) ([]Ticket, error) {
	return s.repo.ListByPerformance(ctx, performanceID)
}

func groupByPerformance(items []orders.LineItem) map[uuid.UUID][]orders.LineItem {
	grouped := make(map[uuid.UUID][]orders.LineItem)
	for _, item := range items {
		grouped[item.PerformanceID] = append(grouped[item.PerformanceID], item)
	}
	return grouped
}
