package hotels

import (
	"context"
	"fmt"
	"time"

	"stayhub/internal/inventory"
	"stayhub/internal/pricing"
	"stayhub/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	CreateHotel(ctx context.Context, hotel *Hotel) error
	GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error)
	ListHotels(ctx context.Context, city string) ([]Hotel, error)
	GetHotelRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error)
	SearchRooms(ctx context.Context, query RoomSearchQuery) ([]RoomSearchResult, error)
}

type service struct {
	repo       Repository
	ledger     inventory.Ledger
	calculator *pricing.Calculator
	cache      cache.Service
	cacheTTL   time.Duration
}

func NewService(repo Repository, ledger inventory.Ledger, calculator *pricing.Calculator, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:       repo,
		ledger:     ledger,
		calculator: calculator,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
	}
}

func (s *service) CreateHotel(ctx context.Context, hotel *Hotel) error {
	if err := s.repo.CreateHotel(ctx, hotel); err != nil {
		return err
	}
	// New hotels invalidate cached searches
	if s.cache != nil {
		_ = s.cache.DeletePattern(ctx, cache.RoomSearchPattern())
	}
	return nil
}

func (s *service) GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	return s.repo.GetHotelByID(ctx, id)
}

func (s *service) ListHotels(ctx context.Context, city string) ([]Hotel, error) {
	return s.repo.ListHotels(ctx, city)
}

func (s *service) GetHotelRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	return s.repo.GetRoomsByHotelID(ctx, hotelID)
}

// SearchRooms finds rooms in a city that are available for the whole stay and
// quotes each one. Results are cached; the checkout path never trusts the
// cache, it re-validates under the booking transaction.
func (s *service) SearchRooms(ctx context.Context, query RoomSearchQuery) ([]RoomSearchResult, error) {
	if _, err := inventory.DatesInRange(query.CheckIn, query.CheckOut); err != nil {
		return nil, err
	}
	if query.Guests <= 0 {
		query.Guests = 2
	}
	if query.Rooms <= 0 {
		query.Rooms = 1
	}

	key := cache.RoomSearchKey(query.City, query.CheckIn, query.CheckOut, query.Guests)

	var results []RoomSearchResult
	if s.cache != nil {
		err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
			return s.searchRooms(ctx, query)
		}, &results)
		return results, err
	}

	return s.searchRooms(ctx, query)
}

func (s *service) searchRooms(ctx context.Context, query RoomSearchQuery) ([]RoomSearchResult, error) {
	candidates, err := s.repo.FindCandidateRooms(ctx, query.City, query.Guests)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate rooms: %w", err)
	}

	results := make([]RoomSearchResult, 0, len(candidates))
	for _, room := range candidates {
		available, err := s.ledger.HasEnoughAvailability(ctx, room.ID, query.CheckIn, query.CheckOut, query.Rooms)
		if err != nil {
			return nil, err
		}
		if !available {
			continue
		}

		rows, err := s.ledger.RatesForRange(ctx, room.ID, query.CheckIn, query.CheckOut)
		if err != nil {
			return nil, err
		}
		breakdown, err := s.calculator.Quote(rows, query.CheckIn, query.CheckOut, query.Rooms, 0)
		if err != nil {
			// A room with availability but incomplete pricing is not sellable
			continue
		}

		result := RoomSearchResult{
			RoomID:      room.ID.String(),
			RoomNo:      room.RoomNo,
			HotelID:     room.HotelID.String(),
			Nights:      breakdown.Nights,
			TotalAmount: breakdown.TotalAmount,
		}
		if room.Hotel != nil {
			result.HotelName = room.Hotel.Name
		}
		if room.RoomType != nil {
			result.RoomTypeName = room.RoomType.Name
			result.MaxGuests = room.RoomType.MaxGuests
		}
		results = append(results, result)
	}

	return results, nil
}
