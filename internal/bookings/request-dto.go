package bookings

import "stayhub/internal/payments"

// CreateHoldRequest starts a temporary booking for a priced stay
type CreateHoldRequest struct {
	HotelID         string  `json:"hotel_id" binding:"required,uuid"`
	RoomID          string  `json:"room_id" binding:"required,uuid"`
	CheckIn         string  `json:"check_in" binding:"required,bookdate"`
	CheckOut        string  `json:"check_out" binding:"required,bookdate"`
	Rooms           int     `json:"rooms" binding:"omitempty,min=1,max=5"`
	Guests          int     `json:"guests" binding:"omitempty,min=1,max=10"`
	Discount        float64 `json:"discount" binding:"omitempty,min=0"`
	SpecialRequests string  `json:"special_requests" binding:"omitempty,max=1000"`
}

// CheckoutRequest converts a hold into a booked stay with a pending payment.
// The stay is restated here so a checkout replay carries everything needed to
// verify it against the hold.
type CheckoutRequest struct {
	RoomID          string          `json:"room_id" binding:"required,uuid"`
	CheckIn         string          `json:"check_in" binding:"required,bookdate"`
	CheckOut        string          `json:"check_out" binding:"required,bookdate"`
	Rooms           int             `json:"rooms" binding:"omitempty,min=1,max=5"`
	Guests          int             `json:"guests" binding:"omitempty,min=1,max=10"`
	PaymentMethod   payments.Method `json:"payment_method" binding:"required"`
	SpecialRequests string          `json:"special_requests" binding:"omitempty,max=1000"`
}

// AdminCreateBookingRequest creates a confirmed booking on behalf of a guest
type AdminCreateBookingRequest struct {
	AccountID       string  `json:"account_id" binding:"required,uuid"`
	HotelID         string  `json:"hotel_id" binding:"required,uuid"`
	RoomID          string  `json:"room_id" binding:"required,uuid"`
	CheckIn         string  `json:"check_in" binding:"required,bookdate"`
	CheckOut        string  `json:"check_out" binding:"required,bookdate"`
	Rooms           int     `json:"rooms" binding:"omitempty,min=1,max=5"`
	Guests          int     `json:"guests" binding:"omitempty,min=1,max=10"`
	Discount        float64 `json:"discount" binding:"omitempty,min=0"`
	SpecialRequests string  `json:"special_requests" binding:"omitempty,max=1000"`
}

// UpdateStatusRequest is an operator-driven lifecycle move
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// UpdateBookingRequest patches booking-level fields; only provided fields change
type UpdateBookingRequest struct {
	SpecialRequests *string  `json:"special_requests" binding:"omitempty,max=1000"`
	DiscountAmount  *float64 `json:"discount_amount" binding:"omitempty,min=0"`
}

// UpdateDetailRequest patches one room-stay line; moving the dates shifts the
// locked inventory to the new range
type UpdateDetailRequest struct {
	CheckIn  *string `json:"check_in" binding:"omitempty,bookdate"`
	CheckOut *string `json:"check_out" binding:"omitempty,bookdate"`
	Guests   *int    `json:"guests" binding:"omitempty,min=1,max=10"`
}

// AddNoteRequest attaches operator commentary to a booking
type AddNoteRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// CancelRequest optionally carries a reason for the cancellation
type CancelRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}
