package bookings

import (
	"stayhub/internal/payments"
	"stayhub/internal/pricing"
)

// HoldResponse is the priced temporary booking returned to the customer.
// Reused reports that an existing live hold was returned instead of a new one.
type HoldResponse struct {
	Booking   *Booking           `json:"booking"`
	Breakdown *pricing.Breakdown `json:"breakdown,omitempty"`
	Reused    bool               `json:"reused"`
}

// CheckoutResponse pairs the booked stay with its pending payment
type CheckoutResponse struct {
	Booking *Booking          `json:"booking"`
	Payment *payments.Payment `json:"payment"`
}

// BookingListResponse is a paginated booking listing
type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// TimelineResponse is the append-only lifecycle history of a booking
type TimelineResponse struct {
	BookingID string         `json:"booking_id"`
	Events    []BookingEvent `json:"events"`
}
