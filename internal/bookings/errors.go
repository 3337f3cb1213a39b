package bookings

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDetailNotFound    = errors.New("booking detail not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingExpired    = errors.New("booking hold has expired")
	ErrNotOwner          = errors.New("booking does not belong to this account")
	ErrNotCancellable    = errors.New("booking can no longer be cancelled")
	ErrRoomNotInHotel    = errors.New("room does not belong to the booked hotel")
	ErrNothingToUpdate   = errors.New("no fields to update")
)
