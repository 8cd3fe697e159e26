package bookings

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB opens a gorm handle that renders SQL without touching a
// database. pgx only dials on first use, so no server is needed.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=kerya dbname=kerya_test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestLockForUpdateRendersRowLock(t *testing.T) {
	db := newDryRunDB(t)

	stmt := lockForUpdate(db).
		Where("id = ?", uuid.New()).
		First(&Booking{}).Statement

	sql := stmt.SQL.String()
	require.Contains(t, sql, "FOR UPDATE")
	require.Contains(t, sql, `"bookings"`)
}
