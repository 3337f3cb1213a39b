package hotels

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateHotel(ctx context.Context, hotel *Hotel) error
	GetHotelByID(ctx context.Context, id uuid.UUID) (*Hotel, error)
	ListHotels(ctx context.Context, city string) ([]Hotel, error)

	CreateRoomType(ctx context.Context, roomType *RoomType) error
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)
	GetRoomsByHotelID(ctx context.Context, hotelID uuid.UUID) ([]Room, error)
	FindCandidateRooms(ctx context.Context, city string, guests int) ([]Room, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHotel(ctx context.Context, hotel *Hotel) error {
	return r.db.WithContext(ctx).Create(hotel).Error
}

func (r *repository) GetHotelByID(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	var hotel Hotel
	err := r.db.WithContext(ctx).
		Preload("RoomTypes").
		Where("id = ?", id).
		First(&hotel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &hotel, nil
}

func (r *repository) ListHotels(ctx context.Context, city string) ([]Hotel, error) {
	var hotels []Hotel
	query := r.db.WithContext(ctx).Where("status = ?", HotelStatusActive)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	err := query.Order("name ASC").Find(&hotels).Error
	return hotels, err
}

func (r *repository) CreateRoomType(ctx context.Context, roomType *RoomType) error {
	return r.db.WithContext(ctx).Create(roomType).Error
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *repository) GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).
		Preload("Hotel").
		Preload("RoomType").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetRoomsByHotelID(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).
		Preload("RoomType").
		Where("hotel_id = ?", hotelID).
		Where("status = ?", RoomStatusActive).
		Order("room_no ASC").
		Find(&rooms).Error
	return rooms, err
}

// FindCandidateRooms returns active rooms in active hotels of the city whose
// room type sleeps at least guests. Availability is checked against the
// ledger afterwards, per candidate.
func (r *repository) FindCandidateRooms(ctx context.Context, city string, guests int) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).
		Preload("Hotel").
		Preload("RoomType").
		Joins("JOIN hotels ON hotels.id = rooms.hotel_id").
		Joins("JOIN room_types ON room_types.id = rooms.room_type_id").
		Where("hotels.city = ? AND hotels.status = ?", city, HotelStatusActive).
		Where("rooms.status = ?", RoomStatusActive).
		Where("room_types.max_guests >= ?", guests).
		Find(&rooms).Error
	return rooms, err
}
