package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/pkg/logger"
)

var (
	ErrInvalidMethod            = errors.New("invalid payment method")
	ErrInvalidStatus            = errors.New("invalid payment status")
	ErrInvalidStatusTransition  = errors.New("invalid payment status transition")
	ErrAmountExceedsDue         = errors.New("amount paid exceeds amount due")
	ErrRetryOnlyFailed          = errors.New("only a failed payment can be retried")
	ErrLifecycleNotConfigured   = errors.New("booking lifecycle not configured")
)

// Lifecycle is the slice of the booking service the payment flow drives.
// Declared here and injected after construction so the two services can be
// wired in either order without an import cycle.
type Lifecycle interface {
	ConfirmAfterPayment(ctx context.Context, bookingID uuid.UUID, method Method) error
	CancelForPayment(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)
}

type Service interface {
	// CreateForBooking attaches a PENDING payment to the booking, or returns
	// the existing live payment when the checkout is replayed. The second
	// return value reports whether a new row was created.
	CreateForBooking(ctx context.Context, bookingID uuid.UUID, method Method, amountDue float64) (*Payment, bool, error)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, req UpdateStatusRequest) (*Payment, error)
	Retry(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	SetLifecycle(lifecycle Lifecycle)
}

type service struct {
	repo      Repository
	lifecycle Lifecycle
	log       *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) SetLifecycle(lifecycle Lifecycle) {
	s.lifecycle = lifecycle
}

func (s *service) CreateForBooking(ctx context.Context, bookingID uuid.UUID, method Method, amountDue float64) (*Payment, bool, error) {
	if !method.IsValid() {
		return nil, false, ErrInvalidMethod
	}
	if amountDue < 0 {
		return nil, false, fmt.Errorf("amount due must not be negative")
	}

	existing, err := s.repo.GetLatestByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, false, err
	}
	if existing != nil && existing.Status != StatusFailed {
		return existing, false, nil
	}

	payment := &Payment{
		ID:            uuid.New(),
		BookingID:     bookingID,
		Method:        method,
		Status:        StatusPending,
		AmountDue:     amountDue,
		TransactionID: generateTransactionID(),
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, false, err
	}
	s.log.LogPaymentStatus(ctx, payment.ID.String(), bookingID.String(), string(StatusPending))
	return payment, true, nil
}

func (s *service) UpdateStatus(ctx context.Context, paymentID uuid.UUID, req UpdateStatusRequest) (*Payment, error) {
	if !req.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case StatusSuccess:
		return s.markSuccess(ctx, payment, req)
	case StatusFailed:
		return s.markFailed(ctx, payment, req)
	case StatusRefunded:
		return s.markRefunded(ctx, payment, req)
	case StatusPending:
		return nil, fmt.Errorf("%w: use retry to move a payment back to %s", ErrInvalidStatusTransition, StatusPending)
	}
	return nil, ErrInvalidStatus
}

func (s *service) markSuccess(ctx context.Context, payment *Payment, req UpdateStatusRequest) (*Payment, error) {
	amountPaid := payment.AmountDue
	if req.AmountPaid != nil {
		amountPaid = *req.AmountPaid
	}
	if amountPaid > payment.AmountDue {
		return nil, ErrAmountExceedsDue
	}

	updated, err := s.repo.UpdateStatusIf(ctx, payment.ID, []Status{StatusPending}, StatusSuccess, &amountPaid, req.Note)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Replayed callback for an already settled payment is a no-op.
		if payment.IsSuccess() {
			return payment, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, payment.Status, StatusSuccess)
	}

	s.log.LogPaymentStatus(ctx, payment.ID.String(), payment.BookingID.String(), string(StatusSuccess))
	if s.lifecycle == nil {
		return nil, ErrLifecycleNotConfigured
	}
	if err := s.lifecycle.ConfirmAfterPayment(ctx, payment.BookingID, payment.Method); err != nil {
		return nil, fmt.Errorf("payment settled but booking confirmation failed: %w", err)
	}
	return s.repo.GetPaymentByID(ctx, payment.ID)
}

func (s *service) markFailed(ctx context.Context, payment *Payment, req UpdateStatusRequest) (*Payment, error) {
	updated, err := s.repo.UpdateStatusIf(ctx, payment.ID, []Status{StatusPending}, StatusFailed, nil, req.Note)
	if err != nil {
		return nil, err
	}
	if !updated {
		if payment.IsFailed() {
			return payment, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, payment.Status, StatusFailed)
	}

	s.log.LogPaymentStatus(ctx, payment.ID.String(), payment.BookingID.String(), string(StatusFailed))
	if s.lifecycle == nil {
		return nil, ErrLifecycleNotConfigured
	}
	reason := req.Note
	if reason == "" {
		reason = "payment failed"
	}
	// Cancel is idempotent: a booking that already moved on is left alone.
	if _, err := s.lifecycle.CancelForPayment(ctx, payment.BookingID, reason); err != nil {
		return nil, fmt.Errorf("payment failed but booking release failed: %w", err)
	}
	return s.repo.GetPaymentByID(ctx, payment.ID)
}

func (s *service) markRefunded(ctx context.Context, payment *Payment, req UpdateStatusRequest) (*Payment, error) {
	updated, err := s.repo.UpdateStatusIf(ctx, payment.ID, []Status{StatusSuccess}, StatusRefunded, nil, req.Note)
	if err != nil {
		return nil, err
	}
	if !updated {
		if payment.IsRefunded() {
			return payment, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, payment.Status, StatusRefunded)
	}

	s.log.LogPaymentStatus(ctx, payment.ID.String(), payment.BookingID.String(), string(StatusRefunded))
	if s.lifecycle == nil {
		return nil, ErrLifecycleNotConfigured
	}
	reason := req.Note
	if reason == "" {
		reason = "payment refunded"
	}
	if _, err := s.lifecycle.CancelForPayment(ctx, payment.BookingID, reason); err != nil {
		return nil, fmt.Errorf("payment refunded but booking release failed: %w", err)
	}
	return s.repo.GetPaymentByID(ctx, payment.ID)
}

func (s *service) Retry(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsFailed() {
		return nil, ErrRetryOnlyFailed
	}
	updated, err := s.repo.UpdateStatusIf(ctx, payment.ID, []Status{StatusFailed}, StatusPending, nil, "retry requested")
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrRetryOnlyFailed
	}
	s.log.LogPaymentStatus(ctx, payment.ID.String(), payment.BookingID.String(), string(StatusPending))
	return s.repo.GetPaymentByID(ctx, payment.ID)
}

func (s *service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	return s.repo.GetPaymentByID(ctx, paymentID)
}

func (s *service) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	return s.repo.ListByBookingID(ctx, bookingID)
}

func generateTransactionID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN-%d", time.Now().UnixNano())
	}
	return "TXN-" + strings.ToUpper(hex.EncodeToString(buf))
}
