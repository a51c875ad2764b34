package main

import (
	"fmt"
	"log"
	"time"

	"showtix/internal/coupons"
	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/internal/shows"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting ShowTix Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"jobs",
		"tickets",
		"payments",
		"coupon_usages",
		"line_items",
		"orders",
		"coupons",
		"performances",
		"shows",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	if err := s.SeedShows(); err != nil {
		return fmt.Errorf("failed to seed shows: %w", err)
	}

	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	return nil
}

// SeedShows creates a few published shows with performances on sale
func (s *Seeder) SeedShows() error {
	now := time.Now()

	seedShows := []struct {
		show         shows.Show
		performances []shows.Performance
	}{
		{
			show: shows.Show{
				Title:       "The Phantom of the Opera",
				Description: "The longest-running musical, back on the main stage.",
				Status:      shows.StatusPublished,
			},
			performances: []shows.Performance{
				{
					StartsAt:       now.AddDate(0, 0, 14).Truncate(time.Hour).Add(19 * time.Hour),
					Rows:           20,
					SeatsPerRow:    30,
					PricePerTicket: 89.50,
					Status:         shows.PerformanceStatusOnSale,
				},
				{
					StartsAt:       now.AddDate(0, 0, 15).Truncate(time.Hour).Add(19 * time.Hour),
					Rows:           20,
					SeatsPerRow:    30,
					PricePerTicket: 89.50,
					Status:         shows.PerformanceStatusOnSale,
				},
			},
		},
		{
			show: shows.Show{
				Title:       "An Evening of Stand-Up",
				Description: "Four comedians, one night, no refunds on laughter.",
				Status:      shows.StatusPublished,
			},
			performances: []shows.Performance{
				{
					StartsAt:       now.AddDate(0, 0, 7).Truncate(time.Hour).Add(20 * time.Hour),
					Rows:           12,
					SeatsPerRow:    18,
					PricePerTicket: 35.00,
					Status:         shows.PerformanceStatusOnSale,
				},
			},
		},
		{
			show: shows.Show{
				Title:       "Winter Gala (Draft)",
				Description: "Program under preparation.",
				Status:      shows.StatusDraft,
			},
			performances: []shows.Performance{
				{
					StartsAt:       now.AddDate(0, 2, 0).Truncate(time.Hour).Add(18 * time.Hour),
					Rows:           30,
					SeatsPerRow:    40,
					PricePerTicket: 120.00,
					Status:         shows.PerformanceStatusScheduled,
				},
			},
		},
	}

	for i := range seedShows {
		entry := &seedShows[i]
		if err := s.db.PostgreSQL.Create(&entry.show).Error; err != nil {
			return err
		}
		fmt.Printf("  Created show: %s\n", entry.show.Title)

		for j := range entry.performances {
			performance := &entry.performances[j]
			performance.ShowID = entry.show.ID
			performance.TotalSeats = performance.Rows * performance.SeatsPerRow
			performance.AvailableSeats = performance.TotalSeats

			if err := s.db.PostgreSQL.Create(performance).Error; err != nil {
				return err
			}
			fmt.Printf("    Performance %s: %d seats at %.2f\n",
				performance.StartsAt.Format("2006-01-02 15:04"),
				performance.TotalSeats, performance.PricePerTicket)
		}
	}

	return nil
}

// SeedCoupons creates a mix of active, capped and expired coupons
func (s *Seeder) SeedCoupons() error {
	now := time.Now()
	monthAgo := now.AddDate(0, -1, 0)
	weekAgo := now.AddDate(0, 0, -7)
	monthAhead := now.AddDate(0, 1, 0)

	seedCoupons := []coupons.Coupon{
		{
			Code:       "OPENING20",
			Type:       coupons.DiscountTypePercent,
			Value:      20,
			MaxUses:    100,
			ValidFrom:  &monthAgo,
			ValidUntil: &monthAhead,
			Active:     true,
		},
		{
			Code:   "FLAT10",
			Type:   coupons.DiscountTypeFixed,
			Value:  10,
			Active: true, // unlimited uses, no validity window
		},
		{
			Code:       "EARLYBIRD",
			Type:       coupons.DiscountTypePercent,
			Value:      15,
			MaxUses:    50,
			ValidFrom:  &monthAgo,
			ValidUntil: &weekAgo, // already expired
			Active:     true,
		},
		{
			Code:   "DISABLED5",
			Type:   coupons.DiscountTypeFixed,
			Value:  5,
			Active: false,
		},
	}

	for i := range seedCoupons {
		if err := s.db.PostgreSQL.Create(&seedCoupons[i]).Error; err != nil {
			return err
		}
		fmt.Printf("  Created coupon: %s\n", seedCoupons[i].Code)
	}

	return nil
}
