package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	// UpdateStatusIf flips the payment to the target status only when it is
	// currently in one of the listed source states. Returns false with no
	// error when the guard does not match, so callers can decide whether the
	// current state makes the request an idempotent replay or a conflict.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, amountPaid *float64, note string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get latest payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	var list []Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return list, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, amountPaid *float64, note string) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if to == StatusSuccess || to == StatusFailed || to == StatusRefunded {
		updates["processed_at"] = now
	} else if to == StatusPending {
		// A reopened payment has not been processed yet.
		updates["processed_at"] = nil
	}
	if amountPaid != nil {
		updates["amount_paid"] = *amountPaid
	}
	if note != "" {
		updates["note"] = note
	}

	result := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
