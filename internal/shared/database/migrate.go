package database

import (
	"stayhub/internal/auth"
	"stayhub/internal/bookings"
	"stayhub/internal/hotels"
	"stayhub/internal/inventory"
	"stayhub/internal/payments"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.Account{},
		&hotels.Hotel{},
		&hotels.RoomType{},
		&hotels.Room{},
		&inventory.RoomRateDay{},
		&bookings.Booking{},
		&bookings.BookingDetail{},
		&bookings.BookingEvent{},
		&bookings.BookingNote{},
		&payments.Payment{},
	)
}
