package analytics

import (
	"context"
	"fmt"
	"time"

	"stayhub/pkg/cache"
)

// Dashboard bundles the admin reporting views into one payload
type Dashboard struct {
	Bookings  *BookingStats     `json:"bookings"`
	Revenue   *RevenueStats     `json:"revenue"`
	Occupancy []OccupancyRow    `json:"occupancy"`
	Daily     []DailyRevenueRow `json:"daily_revenue"`
}

type Service interface {
	GetDashboard(ctx context.Context, query RangeQuery) (*Dashboard, error)
	GetBookingStats(ctx context.Context, query RangeQuery) (*BookingStats, error)
	GetRevenueStats(ctx context.Context, query RangeQuery) (*RevenueStats, error)
	GetOccupancy(ctx context.Context, query RangeQuery, limit int) ([]OccupancyRow, error)
}

type service struct {
	repo  Repository
	cache cache.Service
}

// Dashboard queries scan the booking and payment tables, so results are
// cached briefly to keep an open admin dashboard from hammering them.
const dashboardCacheTTL = 1 * time.Minute

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) GetDashboard(ctx context.Context, query RangeQuery) (*Dashboard, error) {
	key := fmt.Sprintf("stayhub:analytics:dashboard:%s:%s", query.FromDate, query.ToDate)

	var dashboard Dashboard
	err := s.cache.GetOrSet(ctx, key, dashboardCacheTTL, func() (interface{}, error) {
		bookingStats, err := s.repo.BookingStats(ctx, query)
		if err != nil {
			return nil, err
		}
		revenue, err := s.repo.RevenueStats(ctx, query)
		if err != nil {
			return nil, err
		}
		occupancy, err := s.repo.OccupancyByHotel(ctx, query, 20)
		if err != nil {
			return nil, err
		}
		daily, err := s.repo.DailyRevenue(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Dashboard{
			Bookings:  bookingStats,
			Revenue:   revenue,
			Occupancy: occupancy,
			Daily:     daily,
		}, nil
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *service) GetBookingStats(ctx context.Context, query RangeQuery) (*BookingStats, error) {
	return s.repo.BookingStats(ctx, query)
}

func (s *service) GetRevenueStats(ctx context.Context, query RangeQuery) (*RevenueStats, error) {
	return s.repo.RevenueStats(ctx, query)
}

func (s *service) GetOccupancy(ctx context.Context, query RangeQuery, limit int) ([]OccupancyRow, error) {
	return s.repo.OccupancyByHotel(ctx, query, limit)
}
