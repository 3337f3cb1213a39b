package hotels

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stayhub/internal/inventory"
	"stayhub/internal/pricing"
)

func setupHotelService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:hotels_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Hotel{}, &RoomType{}, &Room{}, &inventory.RoomRateDay{}))

	service := NewService(
		NewRepository(db),
		inventory.NewLedger(db),
		pricing.NewCalculator(0.10),
		nil, time.Minute,
	)
	return service, db
}

func seedSearchableRoom(t *testing.T, db *gorm.DB, city string, maxGuests int, price float64, available int) uuid.UUID {
	t.Helper()
	hotel := Hotel{ID: uuid.New(), Name: "Hotel " + city, City: city, Address: "1 Main St", Status: HotelStatusActive}
	require.NoError(t, db.Create(&hotel).Error)
	roomType := RoomType{ID: uuid.New(), HotelID: hotel.ID, Name: "Double", MaxGuests: maxGuests}
	require.NoError(t, db.Create(&roomType).Error)
	room := Room{ID: uuid.New(), HotelID: hotel.ID, RoomTypeID: roomType.ID, RoomNo: "101", Status: RoomStatusActive}
	require.NoError(t, db.Create(&room).Error)

	dates, err := inventory.DatesInRange("2026-09-01", "2026-09-05")
	require.NoError(t, err)
	for _, date := range dates {
		require.NoError(t, db.Create(&inventory.RoomRateDay{
			RoomID: room.ID, Date: date, BasePrice: price, AvailableRooms: available,
		}).Error)
	}
	return room.ID
}

func TestSearchRoomsQuotesAvailableRooms(t *testing.T) {
	service, db := setupHotelService(t)
	roomID := seedSearchableRoom(t, db, "Singapore", 2, 100, 3)

	results, err := service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Singapore",
		CheckIn:  "2026-09-01",
		CheckOut: "2026-09-03",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, roomID.String(), results[0].RoomID)
	assert.Equal(t, 2, results[0].Nights)
	assert.Equal(t, 220.0, results[0].TotalAmount)
	assert.Equal(t, "Hotel Singapore", results[0].HotelName)
	assert.Equal(t, "Double", results[0].RoomTypeName)
}

func TestSearchRoomsSkipsSoldOutRooms(t *testing.T) {
	service, db := setupHotelService(t)
	seedSearchableRoom(t, db, "Singapore", 2, 100, 0)

	results, err := service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Singapore",
		CheckIn:  "2026-09-01",
		CheckOut: "2026-09-03",
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRoomsFiltersByCityAndGuests(t *testing.T) {
	service, db := setupHotelService(t)
	seedSearchableRoom(t, db, "Singapore", 2, 100, 3)
	seedSearchableRoom(t, db, "Bangkok", 4, 80, 3)

	results, err := service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Singapore",
		CheckIn:  "2026-09-01",
		CheckOut: "2026-09-03",
		Guests:   4,
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Bangkok",
		CheckIn:  "2026-09-01",
		CheckOut: "2026-09-03",
		Guests:   4,
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchRoomsSkipsRoomsWithoutFullRates(t *testing.T) {
	service, db := setupHotelService(t)
	roomID := seedSearchableRoom(t, db, "Singapore", 2, 100, 3)

	// A stay reaching past the loaded rate calendar is not sellable.
	require.NoError(t, db.Where("room_id = ? AND date = ?", roomID, "2026-09-03").
		Delete(&inventory.RoomRateDay{}).Error)

	results, err := service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Singapore",
		CheckIn:  "2026-09-02",
		CheckOut: "2026-09-04",
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRoomsRejectsBackwardDates(t *testing.T) {
	service, _ := setupHotelService(t)

	_, err := service.SearchRooms(context.Background(), RoomSearchQuery{
		City:     "Singapore",
		CheckIn:  "2026-09-03",
		CheckOut: "2026-09-01",
	})
	assert.ErrorIs(t, err, inventory.ErrBadDateRange)
}
