package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stayhub/internal/bookings"
	"stayhub/internal/payments"
)

type Repository interface {
	BookingStats(ctx context.Context, query RangeQuery) (*BookingStats, error)
	RevenueStats(ctx context.Context, query RangeQuery) (*RevenueStats, error)
	OccupancyByHotel(ctx context.Context, query RangeQuery, limit int) ([]OccupancyRow, error)
	DailyRevenue(ctx context.Context, query RangeQuery) ([]DailyRevenueRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) scopeRange(db *gorm.DB, query RangeQuery, column string) *gorm.DB {
	if query.FromDate != "" {
		db = db.Where(column+" >= ?", query.FromDate)
	}
	if query.ToDate != "" {
		db = db.Where(column+" < ?", query.ToDate)
	}
	return db
}

func (r *repository) BookingStats(ctx context.Context, query RangeQuery) (*BookingStats, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.scopeRange(r.db.WithContext(ctx).Model(&bookings.Booking{}), query, "created_at").
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute booking stats: %w", err)
	}

	stats := &BookingStats{}
	for _, row := range rows {
		stats.TotalBookings += row.Count
		switch bookings.Status(row.Status) {
		case bookings.StatusCreated, bookings.StatusPaid:
			stats.ActiveHolds += row.Count
		case bookings.StatusPendingConfirmation:
			stats.AwaitingSignOff += row.Count
		case bookings.StatusConfirmed:
			stats.Confirmed += row.Count
		case bookings.StatusCheckedIn, bookings.StatusCheckedOut:
			stats.CheckedIn += row.Count
		case bookings.StatusCompleted:
			stats.Completed += row.Count
		case bookings.StatusCancelled:
			stats.Cancelled += row.Count
		}
	}
	return stats, nil
}

func (r *repository) RevenueStats(ctx context.Context, query RangeQuery) (*RevenueStats, error) {
	stats := &RevenueStats{}

	err := r.scopeRange(r.db.WithContext(ctx).Model(&payments.Payment{}), query, "created_at").
		Where("status = ?", payments.StatusSuccess).
		Select("COALESCE(SUM(amount_paid), 0) as gross_revenue, COUNT(*) as payment_count").
		Row().Scan(&stats.GrossRevenue, &stats.PaymentCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	err = r.scopeRange(r.db.WithContext(ctx).Model(&payments.Payment{}), query, "created_at").
		Where("status = ?", payments.StatusRefunded).
		Select("COALESCE(SUM(amount_paid), 0)").
		Row().Scan(&stats.RefundedAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute refunds: %w", err)
	}

	stats.NetRevenue = stats.GrossRevenue - stats.RefundedAmount
	return stats, nil
}

func (r *repository) OccupancyByHotel(ctx context.Context, query RangeQuery, limit int) ([]OccupancyRow, error) {
	if limit < 1 {
		limit = 20
	}
	var rows []OccupancyRow
	err := r.scopeRange(r.db.WithContext(ctx).Model(&bookings.BookingDetail{}), query, "booking_details.created_at").
		Select("hotels.id as hotel_id, hotels.name as hotel_name, COALESCE(SUM(booking_details.nights), 0) as nights_sold, COUNT(booking_details.id) as rooms_booked").
		Joins("JOIN bookings ON bookings.id = booking_details.booking_id").
		Joins("JOIN hotels ON hotels.id = bookings.hotel_id").
		Where("bookings.status NOT IN ?", []bookings.Status{bookings.StatusCancelled}).
		Group("hotels.id, hotels.name").
		Order("nights_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute occupancy: %w", err)
	}
	return rows, nil
}

func (r *repository) DailyRevenue(ctx context.Context, query RangeQuery) ([]DailyRevenueRow, error) {
	var rows []DailyRevenueRow
	err := r.scopeRange(r.db.WithContext(ctx).Model(&payments.Payment{}), query, "created_at").
		Where("status = ?", payments.StatusSuccess).
		Select("DATE(processed_at) as day, COALESCE(SUM(amount_paid), 0) as revenue, COUNT(*) as count").
		Group("DATE(processed_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily revenue: %w", err)
	}
	return rows, nil
}
