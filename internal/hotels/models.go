package hotels

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HotelStatus string

const (
	HotelStatusActive   HotelStatus = "ACTIVE"
	HotelStatusDisabled HotelStatus = "DISABLED"
)

// Hotel is a bookable property
type Hotel struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(100);not null" json:"name"`
	City         string      `gorm:"type:varchar(50);not null;index" json:"city"`
	Address      string      `gorm:"type:varchar(255);not null" json:"address"`
	StarRating   int         `gorm:"type:smallint" json:"star_rating"`
	CheckInTime  string      `gorm:"type:varchar(5);not null;default:'14:00'" json:"check_in_time"`
	CheckOutTime string      `gorm:"type:varchar(5);not null;default:'12:00'" json:"check_out_time"`
	Status       HotelStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// Relationships
	RoomTypes []RoomType `json:"room_types,omitempty" gorm:"foreignKey:HotelID"`
	Rooms     []Room     `json:"rooms,omitempty" gorm:"foreignKey:HotelID"`
}

func (Hotel) TableName() string {
	return "hotels"
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// RoomType groups rooms of the same shape within a hotel
type RoomType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID     uuid.UUID `gorm:"type:uuid;index;not null" json:"hotel_id"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	BedType     string    `gorm:"type:varchar(50)" json:"bed_type"`
	MaxGuests   int       `gorm:"not null;default:2" json:"max_guests"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RoomType) TableName() string {
	return "room_types"
}

func (rt *RoomType) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}

type RoomStatus string

const (
	RoomStatusActive   RoomStatus = "ACTIVE"
	RoomStatusDisabled RoomStatus = "DISABLED"
)

// Room is a concrete bookable unit; its per-date price and remaining
// availability live in the inventory ledger.
type Room struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"hotel_id"`
	RoomTypeID uuid.UUID  `gorm:"type:uuid;index;not null" json:"room_type_id"`
	RoomNo     string     `gorm:"type:varchar(20);not null" json:"room_no"`
	Status     RoomStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Hotel    *Hotel    `json:"hotel,omitempty" gorm:"foreignKey:HotelID"`
	RoomType *RoomType `json:"room_type,omitempty" gorm:"foreignKey:RoomTypeID"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomSearchQuery carries room search parameters
type RoomSearchQuery struct {
	City     string `form:"city" binding:"required"`
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
	Guests   int    `form:"guests,default=2"`
	Rooms    int    `form:"rooms,default=1"`
}

// RoomSearchResult is one available room with its quoted stay price
type RoomSearchResult struct {
	RoomID       string  `json:"room_id"`
	RoomNo       string  `json:"room_no"`
	HotelID      string  `json:"hotel_id"`
	HotelName    string  `json:"hotel_name"`
	RoomTypeName string  `json:"room_type_name"`
	MaxGuests    int     `json:"max_guests"`
	Nights       int     `json:"nights"`
	TotalAmount  float64 `json:"total_amount"`
}
