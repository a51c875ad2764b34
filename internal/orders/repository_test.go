package orders

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return db, mock
}

func TestListPendingOlderThanFiltersByStatusAndAge(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	orderID := uuid.New()
	createdAt := time.Now().Add(-2 * time.Hour)

	mock.ExpectQuery(`SELECT .* FROM "orders" WHERE status = .* AND created_at < .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "customer_email", "total_amount", "status", "created_at"}).
			AddRow(orderID.String(), "Ada Lovelace", "ada@example.com", 150.0, string(StatusPending), createdAt))
	mock.ExpectQuery(`SELECT .* FROM "line_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "performance_id", "quantity", "price_per_ticket"}).
			AddRow(uuid.New().String(), orderID.String(), uuid.New().String(), 3, 50.0))

	orphaned, err := repo.ListPendingOlderThan(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orphaned) != 1 {
		t.Fatalf("expected 1 orphaned order, got %d", len(orphaned))
	}
	if orphaned[0].ID != orderID {
		t.Fatalf("expected order %s, got %s", orderID, orphaned[0].ID)
	}
	if len(orphaned[0].LineItems) != 1 {
		t.Fatalf("expected line items to be preloaded, got %d", len(orphaned[0].LineItems))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
