package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomRateDay is one ledger row: the nightly rate and the remaining available
// rooms for a room on a single calendar date. Pricing and availability are
// colocated so the checkout transaction touches one table.
type RoomRateDay struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_date" json:"room_id"`
	// Date is the canonical YYYY-MM-DD form; all range comparisons happen on
	// this string, never on time.Time values.
	Date             string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_room_date" json:"date"`
	BasePrice        float64   `gorm:"not null" json:"base_price"`
	DiscountPercent  float64   `json:"discount_percent"`
	ProviderDiscount float64   `json:"provider_discount"`
	SystemDiscount   float64   `json:"system_discount"`
	// FinalPrice, when set, wins over every other price field.
	FinalPrice     float64   `json:"final_price"`
	AvailableRooms int       `gorm:"not null;default:0" json:"available_rooms"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (RoomRateDay) TableName() string {
	return "room_rate_days"
}

func (r *RoomRateDay) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NightlyPrice resolves the effective nightly price for this row:
// precomputed final price first, explicit discount amounts second,
// percentage discount last.
func (r *RoomRateDay) NightlyPrice() float64 {
	if r.FinalPrice > 0 {
		return r.FinalPrice
	}
	if r.ProviderDiscount > 0 || r.SystemDiscount > 0 {
		return r.BasePrice - r.ProviderDiscount - r.SystemDiscount
	}
	return r.BasePrice * (1 - r.DiscountPercent/100)
}

// UnlockResult reports how many ledger rows an unlock actually touched so
// callers can detect partial unlocks.
type UnlockResult struct {
	DatesAffected int
	DatesExpected int
}

// Partial reports whether the unlock touched fewer rows than the stay spans.
func (u UnlockResult) Partial() bool {
	return u.DatesAffected < u.DatesExpected
}
