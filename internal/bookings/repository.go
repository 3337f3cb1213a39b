package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stayhub/internal/inventory"
	"stayhub/pkg/logger"
)

// ListQuery carries pagination and optional filters for booking listings
type ListQuery struct {
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit    int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty"`
	HotelID  string `form:"hotel_id" binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,bookdate"`
	ToDate   string `form:"to_date" binding:"omitempty,bookdate"`
}

type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking, event *BookingEvent) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (*Booking, error)
	// GetActiveHoldForAccount returns the account's live non-expired
	// CREATED or PAID booking, if any.
	GetActiveHoldForAccount(ctx context.Context, accountID uuid.UUID, now time.Time) (*Booking, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, query ListQuery) ([]Booking, int64, error)
	ListAll(ctx context.Context, query ListQuery) ([]Booking, int64, error)

	// AttachDetailsAndPay atomically moves a CREATED booking to PAID, freezes
	// its totals, inserts the detail rows and decrements the rate ledger for
	// each reserved night. The status flip is a conditional update running
	// first, so a booking cancelled between the caller's read and this
	// transaction can never gain locked inventory; that race returns false
	// with no error. Any date without enough remaining rooms rolls the whole
	// attachment back, status flip included.
	AttachDetailsAndPay(ctx context.Context, bookingID uuid.UUID, details []BookingDetail, subtotal, discount, tax, total float64, specialRequests string) (bool, error)
	// CreateBookingWithLock persists a booking together with its details and
	// ledger locks atomically. Used for operator-created bookings that start
	// past CREATED.
	CreateBookingWithLock(ctx context.Context, booking *Booking, details []BookingDetail, event *BookingEvent) error

	// UpdateStatusIf moves the booking to the target status only when its
	// current status is in from, appending a lifecycle event on success.
	// Returns false with no error when the guard does not match.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, actor, note string) (bool, error)
	// CancelAndUnlock cancels the booking and returns every locked night to
	// the ledger in a single transaction. Returns false when the booking was
	// not in a cancellable source state, which replayed callers treat as done.
	CancelAndUnlock(ctx context.Context, id uuid.UUID, from []Status, actor, reason string) (bool, error)

	UpdateBookingFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	GetDetailByID(ctx context.Context, id uuid.UUID) (*BookingDetail, error)
	// UpdateDetailWithRelock applies field changes to a detail; when the stay
	// dates move it releases the old range and locks the new one in the same
	// transaction.
	UpdateDetailWithRelock(ctx context.Context, detail *BookingDetail, updates map[string]interface{}, newCheckIn, newCheckOut string) error

	FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]Booking, error)
	FindNoShows(ctx context.Context, today string, limit int) ([]Booking, error)

	AppendEvent(ctx context.Context, event *BookingEvent) error
	ListEvents(ctx context.Context, bookingID uuid.UUID) ([]BookingEvent, error)
	CreateNote(ctx context.Context, note *BookingNote) error
	ListNotes(ctx context.Context, bookingID uuid.UUID) ([]BookingNote, error)
}

type repository struct {
	db     *gorm.DB
	ledger inventory.Ledger
	log    *logger.Logger
}

func NewRepository(db *gorm.DB, ledger inventory.Ledger, log *logger.Logger) Repository {
	return &repository{db: db, ledger: ledger, log: log}
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking, event *BookingEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		event.BookingID = booking.ID
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record booking event: %w", err)
		}
		return nil
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("booking_ref = ?", ref).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ref: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetActiveHoldForAccount(ctx context.Context, accountID uuid.UUID, now time.Time) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status IN ? AND expires_at > ?", accountID, []Status{StatusCreated, StatusPaid}, now).
		Order("created_at DESC").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get active hold: %w", err)
	}
	return &booking, nil
}

func (r *repository) applyListFilters(query ListQuery, db *gorm.DB) *gorm.DB {
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.HotelID != "" {
		db = db.Where("hotel_id = ?", query.HotelID)
	}
	if query.FromDate != "" {
		db = db.Where("created_at >= ?", query.FromDate)
	}
	if query.ToDate != "" {
		db = db.Where("created_at < ?", query.ToDate)
	}
	return db
}

func (r *repository) list(ctx context.Context, query ListQuery, scope func(*gorm.DB) *gorm.DB) ([]Booking, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	base := r.applyListFilters(query, scope(r.db.WithContext(ctx).Model(&Booking{})))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []Booking
	err := base.
		Preload("Details").
		Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, query ListQuery) ([]Booking, int64, error) {
	return r.list(ctx, query, func(db *gorm.DB) *gorm.DB {
		return db.Where("account_id = ?", accountID)
	})
}

func (r *repository) ListAll(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	return r.list(ctx, query, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *repository) AttachDetailsAndPay(ctx context.Context, bookingID uuid.UUID, details []BookingDetail, subtotal, discount, tax, total float64, specialRequests string) (bool, error) {
	attached := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":          StatusPaid,
			"subtotal":        subtotal,
			"discount_amount": discount,
			"tax_amount":      tax,
			"total_amount":    total,
			"updated_at":      time.Now().UTC(),
		}
		if specialRequests != "" {
			updates["special_requests"] = specialRequests
		}
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", bookingID, StatusCreated).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to move booking to %s: %w", StatusPaid, result.Error)
		}
		// The booking moved on (cancelled, expired, or already checked out)
		// between the caller's read and this transaction; take nothing.
		if result.RowsAffected == 0 {
			return nil
		}
		attached = true

		if err := r.attachDetails(tx, bookingID, details); err != nil {
			return err
		}
		event := &BookingEvent{
			BookingID:  bookingID,
			FromStatus: StatusCreated,
			ToStatus:   StatusPaid,
			Actor:      ActorSystem,
			Note:       "payment attached",
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record booking event: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return attached, nil
}

func (r *repository) attachDetails(tx *gorm.DB, bookingID uuid.UUID, details []BookingDetail) error {
	// One ledger decrement per room/date-range group so N identical rooms
	// lock with count=N instead of N single decrements.
	type lockKey struct {
		roomID   uuid.UUID
		checkIn  string
		checkOut string
	}
	counts := make(map[lockKey]int)
	for i := range details {
		details[i].BookingID = bookingID
		counts[lockKey{details[i].RoomID, details[i].CheckIn, details[i].CheckOut}]++
	}
	for key, count := range counts {
		if err := r.ledger.Lock(tx, key.roomID, key.checkIn, key.checkOut, count); err != nil {
			return err
		}
	}
	if err := tx.Create(&details).Error; err != nil {
		return fmt.Errorf("failed to create booking details: %w", err)
	}
	return nil
}

func (r *repository) CreateBookingWithLock(ctx context.Context, booking *Booking, details []BookingDetail, event *BookingEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		if err := r.attachDetails(tx, booking.ID, details); err != nil {
			return err
		}
		event.BookingID = booking.ID
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record booking event: %w", err)
		}
		return nil
	})
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, actor, note string) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Booking
		if err := tx.Select("id", "status").Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}
		if !statusIn(current.Status, from) {
			return nil
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		switch to {
		case StatusCheckedIn:
			updates["checked_in_at"] = now
		case StatusCheckedOut:
			updates["checked_out_at"] = now
		}

		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, current.Status).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update booking status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Lost the race to a concurrent transition.
			return nil
		}

		moved = true
		return tx.Create(&BookingEvent{
			BookingID:  id,
			FromStatus: current.Status,
			ToStatus:   to,
			Actor:      actor,
			Note:       note,
		}).Error
	})
	return moved, err
}

func (r *repository) CancelAndUnlock(ctx context.Context, id uuid.UUID, from []Status, actor, reason string) (bool, error) {
	cancelled := false
	var partials []inventory.UnlockResult
	var partialDetails []BookingDetail

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		if err := tx.Preload("Details").Where("id = ?", id).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}
		if !statusIn(booking.Status, from) {
			return nil
		}

		now := time.Now().UTC()
		result := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, booking.Status).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		for _, detail := range booking.Details {
			unlock, err := r.ledger.Unlock(tx, detail.RoomID, detail.CheckIn, detail.CheckOut, 1)
			if err != nil {
				return fmt.Errorf("failed to release inventory for room %s: %w", detail.RoomID, err)
			}
			if unlock.Partial() {
				partials = append(partials, unlock)
				partialDetails = append(partialDetails, detail)
			}
		}

		payload, _ := json.Marshal(map[string]string{"reason": reason})
		if err := tx.Create(&BookingEvent{
			BookingID:  id,
			FromStatus: booking.Status,
			ToStatus:   StatusCancelled,
			Actor:      actor,
			Note:       reason,
			Payload:    datatypes.JSON(payload),
		}).Error; err != nil {
			return fmt.Errorf("failed to record cancellation event: %w", err)
		}

		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}

	// A partial unlock means some nights had no matching ledger rows. The
	// cancellation still stands; flag the gap for reconciliation.
	for i, p := range partials {
		r.log.LogPartialUnlock(ctx, id.String(), partialDetails[i].RoomID.String(), p.DatesAffected, p.DatesExpected)
	}
	return cancelled, nil
}

func (r *repository) UpdateBookingFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update booking: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) GetDetailByID(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	var detail BookingDetail
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("failed to get booking detail: %w", err)
	}
	return &detail, nil
}

func (r *repository) UpdateDetailWithRelock(ctx context.Context, detail *BookingDetail, updates map[string]interface{}, newCheckIn, newCheckOut string) error {
	datesMoved := newCheckIn != detail.CheckIn || newCheckOut != detail.CheckOut

	var partial *inventory.UnlockResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if datesMoved {
			unlock, err := r.ledger.Unlock(tx, detail.RoomID, detail.CheckIn, detail.CheckOut, 1)
			if err != nil {
				return fmt.Errorf("failed to release old stay dates: %w", err)
			}
			if unlock.Partial() {
				partial = &unlock
			}
			if err := r.ledger.Lock(tx, detail.RoomID, newCheckIn, newCheckOut, 1); err != nil {
				return err
			}
		}
		updates["updated_at"] = time.Now().UTC()
		result := tx.Model(&BookingDetail{}).Where("id = ?", detail.ID).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update booking detail: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrDetailNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	if partial != nil {
		r.log.LogPartialUnlock(ctx, detail.BookingID.String(), detail.RoomID.String(), partial.DatesAffected, partial.DatesExpected)
	}
	return nil
}

func (r *repository) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", StatusCreated, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired holds: %w", err)
	}
	return bookings, nil
}

func (r *repository) FindNoShows(ctx context.Context, today string, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusConfirmed).
		Where("id IN (?)", r.db.Model(&BookingDetail{}).
			Select("booking_id").
			Group("booking_id").
			Having("MIN(check_in) < ?", today)).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find no-show bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) AppendEvent(ctx context.Context, event *BookingEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append booking event: %w", err)
	}
	return nil
}

func (r *repository) ListEvents(ctx context.Context, bookingID uuid.UUID) ([]BookingEvent, error) {
	var events []BookingEvent
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking events: %w", err)
	}
	return events, nil
}

func (r *repository) CreateNote(ctx context.Context, note *BookingNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create booking note: %w", err)
	}
	return nil
}

func (r *repository) ListNotes(ctx context.Context, bookingID uuid.UUID) ([]BookingNote, error) {
	var notes []BookingNote
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking notes: %w", err)
	}
	return notes, nil
}

func statusIn(s Status, list []Status) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}
