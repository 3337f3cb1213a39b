package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotEnoughAvailability means a conditional decrement found no row with
	// enough available rooms for some date in the stay.
	ErrNotEnoughAvailability = errors.New("not enough rooms available")
	// ErrNoRateRow means a ledger row is missing for a date in the stay.
	ErrNoRateRow = errors.New("no rate row for date")
)

// Ledger tracks available inventory per room per night and exposes atomic
// adjust operations. Lock and Unlock take the caller's transaction handle so
// booking creation and cancellation can adjust the ledger and the booking rows
// atomically.
type Ledger interface {
	HasEnoughAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string, count int) (bool, error)
	Lock(tx *gorm.DB, roomID uuid.UUID, checkIn, checkOut string, count int) error
	Unlock(tx *gorm.DB, roomID uuid.UUID, checkIn, checkOut string, count int) (UnlockResult, error)

	RatesForRange(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string) ([]RoomRateDay, error)
	AvailableRooms(ctx context.Context, roomID uuid.UUID, date string) (int, error)
	UpsertRateDay(ctx context.Context, row *RoomRateDay) error
}

type ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

// HasEnoughAvailability reports whether every date of the stay has at least
// count rooms left. It is an advisory pre-check; Lock re-validates under the
// transaction, so a stale answer here can only cause a clean failure, never
// an oversell.
func (l *ledger) HasEnoughAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string, count int) (bool, error) {
	dates, err := DatesInRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}

	var matched int64
	err = l.db.WithContext(ctx).
		Model(&RoomRateDay{}).
		Where("room_id = ?", roomID).
		Where("date IN ?", dates).
		Where("available_rooms >= ?", count).
		Count(&matched).Error
	if err != nil {
		return false, err
	}

	return matched == int64(len(dates)), nil
}

// Lock decrements available_rooms by count for every date of the stay. Each
// decrement is conditional on the row still holding enough rooms, with
// RowsAffected as the success signal; two racing checkouts can therefore never
// drive a counter negative. Any failed date aborts with
// ErrNotEnoughAvailability and the caller's transaction rolls the earlier
// decrements back.
func (l *ledger) Lock(tx *gorm.DB, roomID uuid.UUID, checkIn, checkOut string, count int) error {
	dates, err := DatesInRange(checkIn, checkOut)
	if err != nil {
		return err
	}

	for _, date := range dates {
		res := tx.Model(&RoomRateDay{}).
			Where("room_id = ? AND date = ?", roomID, date).
			Where("available_rooms >= ?", count).
			UpdateColumn("available_rooms", gorm.Expr("available_rooms - ?", count))
		if res.Error != nil {
			return fmt.Errorf("failed to lock room %s for %s: %w", roomID, date, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("room %s on %s: %w", roomID, date, ErrNotEnoughAvailability)
		}
	}

	return nil
}

// Unlock increments available_rooms by count for every date of the stay and
// reports how many rows were actually touched. A missing row for a date that
// should exist is a data-integrity condition the caller must log; it does not
// abort the surrounding transaction.
func (l *ledger) Unlock(tx *gorm.DB, roomID uuid.UUID, checkIn, checkOut string, count int) (UnlockResult, error) {
	dates, err := DatesInRange(checkIn, checkOut)
	if err != nil {
		return UnlockResult{}, err
	}

	result := UnlockResult{DatesExpected: len(dates)}
	for _, date := range dates {
		res := tx.Model(&RoomRateDay{}).
			Where("room_id = ? AND date = ?", roomID, date).
			UpdateColumn("available_rooms", gorm.Expr("available_rooms + ?", count))
		if res.Error != nil {
			return result, fmt.Errorf("failed to unlock room %s for %s: %w", roomID, date, res.Error)
		}
		result.DatesAffected += int(res.RowsAffected)
	}

	return result, nil
}

// RatesForRange returns the ledger rows for every date of the stay, ordered by
// date. It does not pad gaps; the price calculator treats a missing date as a
// hard failure.
func (l *ledger) RatesForRange(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string) ([]RoomRateDay, error) {
	dates, err := DatesInRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	var rows []RoomRateDay
	err = l.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("date IN ?", dates).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (l *ledger) AvailableRooms(ctx context.Context, roomID uuid.UUID, date string) (int, error) {
	var row RoomRateDay
	err := l.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("room %s on %s: %w", roomID, date, ErrNoRateRow)
		}
		return 0, err
	}
	return row.AvailableRooms, nil
}

func (l *ledger) UpsertRateDay(ctx context.Context, row *RoomRateDay) error {
	var existing RoomRateDay
	err := l.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", row.RoomID, row.Date).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return l.db.WithContext(ctx).Create(row).Error
		}
		return err
	}

	row.ID = existing.ID
	return l.db.WithContext(ctx).Save(row).Error
}
