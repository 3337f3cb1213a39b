package bookings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking is the aggregate root for a stay. Money fields are the frozen
// quote from checkout; per-room pricing lives on the details.
type Booking struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingRef      string     `gorm:"uniqueIndex;not null" json:"booking_ref"`
	AccountID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"account_id"`
	HotelID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"hotel_id"`
	Status          Status     `gorm:"type:varchar(25);not null;default:'CREATED';index" json:"status"`
	Subtotal        float64    `gorm:"not null;default:0" json:"subtotal"`
	DiscountAmount  float64    `gorm:"not null;default:0" json:"discount_amount"`
	TaxAmount       float64    `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount     float64    `gorm:"not null;default:0" json:"total_amount"`
	SpecialRequests string     `gorm:"type:text" json:"special_requests,omitempty"`
	ExpiresAt       *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt    *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Details []BookingDetail `gorm:"foreignKey:BookingID" json:"details,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether an unpaid hold has outlived its window
func (b *Booking) IsExpired(now time.Time) bool {
	return b.Status == StatusCreated && b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

// BookingDetail is one reserved room for a date range. Dates are canonical
// YYYY-MM-DD strings; the range is half-open except same-day use, which
// occupies the single check-in date.
type BookingDetail struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID     uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	RoomID        uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`
	CheckIn       string    `gorm:"type:varchar(10);not null" json:"check_in"`
	CheckOut      string    `gorm:"type:varchar(10);not null" json:"check_out"`
	Guests        int       `gorm:"not null;default:1" json:"guests"`
	Nights        int       `gorm:"not null" json:"nights"`
	PricePerNight float64   `gorm:"not null" json:"price_per_night"`
	TotalPrice    float64   `gorm:"not null" json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (BookingDetail) TableName() string {
	return "booking_details"
}

func (d *BookingDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// BookingEvent is an append-only audit record of a lifecycle change
type BookingEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"booking_id"`
	FromStatus Status         `gorm:"type:varchar(25)" json:"from_status,omitempty"`
	ToStatus   Status         `gorm:"type:varchar(25);not null" json:"to_status"`
	Actor      string         `gorm:"type:varchar(50);not null" json:"actor"`
	Note       string         `gorm:"type:text" json:"note,omitempty"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (BookingEvent) TableName() string {
	return "booking_events"
}

func (e *BookingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BookingNote is free-form operator commentary attached to a booking
type BookingNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookingNote) TableName() string {
	return "booking_notes"
}

func (n *BookingNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Actors recorded on booking events
const (
	ActorCustomer = "customer"
	ActorAdmin    = "admin"
	ActorPayment  = "payment"
	ActorSweeper  = "sweeper"
	ActorSystem   = "system"
)
