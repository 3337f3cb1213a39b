package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLedger(t *testing.T) (Ledger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// A single connection serializes writers, matching how sqlite arbitrates
	// anyway and keeping contention tests free of busy errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&RoomRateDay{}))
	return NewLedger(db), db
}

func seedRange(t *testing.T, ledger Ledger, roomID uuid.UUID, checkIn, checkOut string, price float64, available int) {
	t.Helper()
	dates, err := DatesInRange(checkIn, checkOut)
	require.NoError(t, err)
	for _, date := range dates {
		require.NoError(t, ledger.UpsertRateDay(context.Background(), &RoomRateDay{
			RoomID:         roomID,
			Date:           date,
			BasePrice:      price,
			AvailableRooms: available,
		}))
	}
}

func TestLockDecrementsEveryNight(t *testing.T) {
	ledger, db := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-04", 100, 5)

	require.NoError(t, ledger.Lock(db, roomID, "2026-09-01", "2026-09-04", 2))

	for _, date := range []string{"2026-09-01", "2026-09-02", "2026-09-03"} {
		left, err := ledger.AvailableRooms(context.Background(), roomID, date)
		require.NoError(t, err)
		assert.Equal(t, 3, left, "date %s", date)
	}
}

func TestLockFailsWhenAnyNightShort(t *testing.T) {
	ledger, db := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-02", 100, 5)
	seedRange(t, ledger, roomID, "2026-09-02", "2026-09-03", 100, 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Lock(tx, roomID, "2026-09-01", "2026-09-03", 2)
	})
	require.ErrorIs(t, err, ErrNotEnoughAvailability)

	// The transaction rolled the first night's decrement back.
	left, err := ledger.AvailableRooms(context.Background(), roomID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 5, left)
}

func TestLockNeverOversellsUnderContention(t *testing.T) {
	ledger, db := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-02", 100, 3)

	var wg sync.WaitGroup
	successes := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Lock(db, roomID, "2026-09-01", "2026-09-02", 1); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	assert.Equal(t, 3, won)

	left, err := ledger.AvailableRooms(context.Background(), roomID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

func TestUnlockRestoresAndReportsPartial(t *testing.T) {
	ledger, db := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-03", 100, 5)
	require.NoError(t, ledger.Lock(db, roomID, "2026-09-01", "2026-09-03", 1))

	result, err := ledger.Unlock(db, roomID, "2026-09-01", "2026-09-03", 1)
	require.NoError(t, err)
	assert.False(t, result.Partial())
	assert.Equal(t, 2, result.DatesAffected)

	// A range extending past the seeded rows only touches what exists.
	result, err = ledger.Unlock(db, roomID, "2026-09-01", "2026-09-05", 1)
	require.NoError(t, err)
	assert.True(t, result.Partial())
	assert.Equal(t, 4, result.DatesExpected)
	assert.Equal(t, 2, result.DatesAffected)
}

func TestHasEnoughAvailability(t *testing.T) {
	ledger, _ := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-03", 100, 2)

	ok, err := ledger.HasEnoughAvailability(context.Background(), roomID, "2026-09-01", "2026-09-03", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.HasEnoughAvailability(context.Background(), roomID, "2026-09-01", "2026-09-03", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	// A date with no ledger row counts as unavailable.
	ok, err = ledger.HasEnoughAvailability(context.Background(), roomID, "2026-09-01", "2026-09-05", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDayUseLocksSingleDate(t *testing.T) {
	ledger, db := setupLedger(t)
	roomID := uuid.New()
	seedRange(t, ledger, roomID, "2026-09-01", "2026-09-02", 100, 5)

	require.NoError(t, ledger.Lock(db, roomID, "2026-09-01", "2026-09-01", 1))

	left, err := ledger.AvailableRooms(context.Background(), roomID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 4, left)
}

func TestDatesInRange(t *testing.T) {
	dates, err := DatesInRange("2026-09-01", "2026-09-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-01", "2026-09-02", "2026-09-03"}, dates)

	dates, err = DatesInRange("2026-09-01", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-01"}, dates)

	_, err = DatesInRange("2026-09-04", "2026-09-01")
	assert.ErrorIs(t, err, ErrBadDateRange)

	_, err = DatesInRange("01-09-2026", "2026-09-04")
	assert.ErrorIs(t, err, ErrBadDate)

	nights, err := Nights("2026-09-01", "2026-09-04")
	require.NoError(t, err)
	assert.Equal(t, 3, nights)
}

func TestUpsertRateDayUpdatesInPlace(t *testing.T) {
	ledger, _ := setupLedger(t)
	roomID := uuid.New()

	row := &RoomRateDay{RoomID: roomID, Date: "2026-09-01", BasePrice: 100, AvailableRooms: 5}
	require.NoError(t, ledger.UpsertRateDay(context.Background(), row))

	update := &RoomRateDay{RoomID: roomID, Date: "2026-09-01", BasePrice: 120, AvailableRooms: 4}
	require.NoError(t, ledger.UpsertRateDay(context.Background(), update))
	assert.Equal(t, row.ID, update.ID)

	rows, err := ledger.RatesForRange(context.Background(), roomID, "2026-09-01", "2026-09-02")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 120.0, rows[0].BasePrice)
}
