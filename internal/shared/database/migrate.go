package database

import (
	"showtix/internal/coupons"
	"showtix/internal/jobs"
	"showtix/internal/orders"
	"showtix/internal/payments"
	"showtix/internal/shows"
	"showtix/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&shows.Show{},
		&shows.Performance{},
		&coupons.Coupon{},
		&orders.Order{},
		&orders.LineItem{},
		&orders.CouponUsage{},
		&payments.Payment{},
		&tickets.Ticket{},
		&jobs.Job{},
	)
}
