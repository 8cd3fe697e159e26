package database

import (
	"strings"

	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express. They
// back the row-lock protocols: inventory can never oversell past the check
// constraint even if a code path forgets the ledger, and overlap queries on
// live bookings stay on an index.
func MigrateConstraints(db *gorm.DB) error {
	// Availability can never exceed capacity or go negative.
	err := db.Exec(`
		ALTER TABLE event_ticket_types
		ADD CONSTRAINT chk_ticket_type_available_bounds
		CHECK (available_quantity >= 0 AND available_quantity <= total_quantity);
	`).Error
	if err != nil && !isDuplicateConstraint(err) {
		return err
	}

	// Overlap checks scan live bookings per listing by date range.
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_bookings_listing_dates_active
		ON bookings (listing_id, start_date, end_date)
		WHERE status IN ('REQUESTED', 'ACCEPTED');
	`).Error
	if err != nil {
		return err
	}

	// Gate scanning looks tickets up by either identifier.
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_event_tickets_qr_code
		ON event_tickets (qr_code);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_event_tickets_ticket_number
		ON event_tickets (ticket_number);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

func isDuplicateConstraint(err error) bool {
	// SQLSTATE 42710: constraint already exists.
	return err != nil && (strings.Contains(err.Error(), "42710") || strings.Contains(err.Error(), "already exists"))
}
