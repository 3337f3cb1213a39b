package analytics

// BookingStats summarizes booking volume by lifecycle state
type BookingStats struct {
	TotalBookings     int64 `json:"total_bookings"`
	ActiveHolds       int64 `json:"active_holds"`
	Confirmed         int64 `json:"confirmed"`
	CheckedIn         int64 `json:"checked_in"`
	Completed         int64 `json:"completed"`
	Cancelled         int64 `json:"cancelled"`
	AwaitingSignOff   int64 `json:"awaiting_sign_off"`
}

// RevenueStats summarizes settled payment volume
type RevenueStats struct {
	GrossRevenue   float64 `json:"gross_revenue"`
	RefundedAmount float64 `json:"refunded_amount"`
	NetRevenue     float64 `json:"net_revenue"`
	PaymentCount   int64   `json:"payment_count"`
}

// OccupancyRow is per-hotel sold-night volume over a date range
type OccupancyRow struct {
	HotelID     string `json:"hotel_id"`
	HotelName   string `json:"hotel_name"`
	NightsSold  int64  `json:"nights_sold"`
	RoomsBooked int64  `json:"rooms_booked"`
}

// DailyRevenueRow is settled revenue bucketed by day
type DailyRevenueRow struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

// RangeQuery bounds a report to a created-at window
type RangeQuery struct {
	FromDate string `form:"from_date" binding:"omitempty,bookdate"`
	ToDate   string `form:"to_date" binding:"omitempty,bookdate"`
}
