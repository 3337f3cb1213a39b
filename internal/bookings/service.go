package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/hotels"
	"stayhub/internal/inventory"
	"stayhub/internal/payments"
	"stayhub/internal/pricing"
	"stayhub/internal/shared/config"
	"stayhub/pkg/cache"
	"stayhub/pkg/logger"
)

// EventPublisher fans booking lifecycle events out to the notification
// pipeline. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{}) error
}

type Service interface {
	// CreateHold opens a priced temporary booking in CREATED. An account with
	// a live non-expired CREATED or PAID booking gets it back instead of
	// stacking a second one.
	CreateHold(ctx context.Context, accountID uuid.UUID, req CreateHoldRequest) (*HoldResponse, error)
	// Checkout attaches room details (locking inventory), freezes the quote
	// and opens a PENDING payment, advancing the booking to PAID.
	Checkout(ctx context.Context, accountID, bookingID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (*Booking, error)
	ListAccountBookings(ctx context.Context, accountID uuid.UUID, query ListQuery) (*BookingListResponse, error)
	CancelBooking(ctx context.Context, accountID, bookingID uuid.UUID, reason string) (bool, error)

	AdminListBookings(ctx context.Context, query ListQuery) (*BookingListResponse, error)
	AdminCreateBooking(ctx context.Context, req AdminCreateBookingRequest) (*Booking, error)
	AdminUpdateStatus(ctx context.Context, bookingID uuid.UUID, req UpdateStatusRequest) (*Booking, error)
	AdminCancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)
	UpdateBooking(ctx context.Context, bookingID uuid.UUID, req UpdateBookingRequest) (*Booking, error)
	UpdateBookingDetail(ctx context.Context, detailID uuid.UUID, req UpdateDetailRequest) (*BookingDetail, error)
	AddNote(ctx context.Context, bookingID, authorID uuid.UUID, req AddNoteRequest) (*BookingNote, error)
	ListNotes(ctx context.Context, bookingID uuid.UUID) ([]BookingNote, error)
	GetTimeline(ctx context.Context, bookingID uuid.UUID) (*TimelineResponse, error)

	// ConfirmAfterPayment and CancelForPayment implement the payment
	// service's lifecycle hooks.
	ConfirmAfterPayment(ctx context.Context, bookingID uuid.UUID, method payments.Method) error
	CancelForPayment(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)

	SweepExpiredHolds(ctx context.Context) (int, error)
	SweepNoShows(ctx context.Context) (int, error)
}

type service struct {
	repo       Repository
	hotelRepo  hotels.Repository
	ledger     inventory.Ledger
	calculator *pricing.Calculator
	payments   payments.Service
	cache      cache.Service
	publisher  EventPublisher
	cfg        *config.Config
	log        *logger.Logger
	now        func() time.Time
}

func NewService(
	repo Repository,
	hotelRepo hotels.Repository,
	ledger inventory.Ledger,
	calculator *pricing.Calculator,
	paymentService payments.Service,
	cacheService cache.Service,
	publisher EventPublisher,
	cfg *config.Config,
	log *logger.Logger,
) Service {
	return &service{
		repo:       repo,
		hotelRepo:  hotelRepo,
		ledger:     ledger,
		calculator: calculator,
		payments:   paymentService,
		cache:      cacheService,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

func (s *service) CreateHold(ctx context.Context, accountID uuid.UUID, req CreateHoldRequest) (*HoldResponse, error) {
	hotelID, err := uuid.Parse(req.HotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid hotel id: %w", err)
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	if _, err := inventory.DatesInRange(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	roomCount := req.Rooms
	if roomCount < 1 {
		roomCount = 1
	}

	now := s.now().UTC()
	// One live CREATED/PAID booking per account. The redis key is a fast
	// path; the database row is the source of truth.
	if existing, err := s.repo.GetActiveHoldForAccount(ctx, accountID, now); err == nil {
		return &HoldResponse{Booking: existing, Reused: true}, nil
	} else if !errors.Is(err, ErrBookingNotFound) {
		return nil, err
	}

	room, err := s.hotelRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HotelID != hotelID {
		return nil, ErrRoomNotInHotel
	}
	if room.Status != hotels.RoomStatusActive {
		return nil, fmt.Errorf("room is not available for booking")
	}

	enough, err := s.ledger.HasEnoughAvailability(ctx, roomID, req.CheckIn, req.CheckOut, roomCount)
	if err != nil {
		return nil, err
	}
	if !enough {
		return nil, inventory.ErrNotEnoughAvailability
	}

	rates, err := s.ledger.RatesForRange(ctx, roomID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.calculator.Quote(rates, req.CheckIn, req.CheckOut, roomCount, req.Discount)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.cfg.Booking.HoldWindow)
	booking := &Booking{
		ID:              uuid.New(),
		BookingRef:      generateBookingRef(now),
		AccountID:       accountID,
		HotelID:         hotelID,
		Status:          StatusCreated,
		Subtotal:        breakdown.Subtotal,
		DiscountAmount:  breakdown.DiscountAmount,
		TaxAmount:       breakdown.TaxAmount,
		TotalAmount:     breakdown.TotalAmount,
		SpecialRequests: req.SpecialRequests,
		ExpiresAt:       &expiresAt,
	}
	event := &BookingEvent{
		ToStatus: StatusCreated,
		Actor:    ActorCustomer,
		Note:     "temporary booking created",
	}
	if err := s.repo.CreateBooking(ctx, booking, event); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.ActiveHoldKey(accountID.String()), booking.ID.String(), s.cfg.Booking.HoldWindow); err != nil {
		s.log.WithError(err).Warn("failed to cache active hold")
	}
	s.log.LogBookingCreated(ctx, booking.ID.String(), accountID.String(), hotelID.String())
	s.publish(ctx, "booking.created", booking, nil)

	return &HoldResponse{Booking: booking, Breakdown: breakdown}, nil
}

func (s *service) Checkout(ctx context.Context, accountID, bookingID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.AccountID != accountID {
		return nil, ErrNotOwner
	}

	// Replayed checkout: the booking already moved on, return its state.
	if booking.Status != StatusCreated {
		return s.checkoutReplay(ctx, booking, req.PaymentMethod)
	}

	now := s.now().UTC()
	if booking.IsExpired(now) {
		if _, err := s.repo.CancelAndUnlock(ctx, bookingID, []Status{StatusCreated}, ActorSystem, "hold expired before checkout"); err != nil {
			s.log.WithError(err).Error("failed to cancel expired hold at checkout")
		}
		return nil, ErrBookingExpired
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	room, err := s.hotelRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HotelID != booking.HotelID {
		return nil, ErrRoomNotInHotel
	}
	if !req.PaymentMethod.IsValid() {
		return nil, payments.ErrInvalidMethod
	}

	roomCount := req.Rooms
	if roomCount < 1 {
		roomCount = 1
	}
	guests := req.Guests
	if guests < 1 {
		guests = 1
	}

	rates, err := s.ledger.RatesForRange(ctx, roomID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.calculator.Quote(rates, req.CheckIn, req.CheckOut, roomCount, booking.DiscountAmount)
	if err != nil {
		return nil, err
	}

	nightly := pricing.RoundCents(breakdown.SubtotalPerRoom / float64(breakdown.Nights))
	details := make([]BookingDetail, roomCount)
	for i := range details {
		details[i] = BookingDetail{
			ID:            uuid.New(),
			RoomID:        roomID,
			CheckIn:       req.CheckIn,
			CheckOut:      req.CheckOut,
			Guests:        guests,
			Nights:        breakdown.Nights,
			PricePerNight: nightly,
			TotalPrice:    breakdown.SubtotalPerRoom,
		}
	}

	// The status flip and the conditional ledger decrements share one
	// transaction; a date without enough rooms, or a booking that was
	// cancelled under us, rolls everything back.
	attached, err := s.repo.AttachDetailsAndPay(ctx, bookingID, details,
		breakdown.Subtotal, breakdown.DiscountAmount, breakdown.TaxAmount, breakdown.TotalAmount, req.SpecialRequests)
	if err != nil {
		return nil, err
	}
	if !attached {
		// Lost the race with a cancel, the sweeper, or a concurrent checkout;
		// route through the fresh state.
		current, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return s.checkoutReplay(ctx, current, req.PaymentMethod)
	}
	s.log.LogBookingTransition(ctx, bookingID.String(), string(StatusCreated), string(StatusPaid), ActorSystem)

	payment, _, err := s.payments.CreateForBooking(ctx, bookingID, req.PaymentMethod, breakdown.TotalAmount)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, cache.ActiveHoldKey(accountID.String())); err != nil {
		s.log.WithError(err).Warn("failed to drop active hold key")
	}

	updated, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking.checked_out_cart", updated, map[string]interface{}{
		"payment_id": payment.ID.String(),
		"method":     string(payment.Method),
	})
	return &CheckoutResponse{Booking: updated, Payment: payment}, nil
}

// checkoutReplay returns the state an earlier checkout produced. A PAID
// booking that lost its payment row (crash between the attach transaction
// and the payment insert) gets a fresh one, so the replay self-heals.
func (s *service) checkoutReplay(ctx context.Context, booking *Booking, method payments.Method) (*CheckoutResponse, error) {
	if !statusIn(booking.Status, []Status{StatusPaid, StatusPendingConfirmation, StatusConfirmed}) {
		return nil, fmt.Errorf("%w: %s cannot be checked out", ErrInvalidTransition, booking.Status)
	}
	list, err := s.payments.ListForBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return &CheckoutResponse{Booking: booking, Payment: &list[0]}, nil
	}
	if booking.Status == StatusPaid && method.IsValid() {
		payment, _, err := s.payments.CreateForBooking(ctx, booking.ID, method, booking.TotalAmount)
		if err != nil {
			return nil, err
		}
		return &CheckoutResponse{Booking: booking, Payment: payment}, nil
	}
	return &CheckoutResponse{Booking: booking}, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, bookingID)
}

func (s *service) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	return s.repo.GetBookingByRef(ctx, ref)
}

func (s *service) ListAccountBookings(ctx context.Context, accountID uuid.UUID, query ListQuery) (*BookingListResponse, error) {
	bookings, total, err := s.repo.ListByAccount(ctx, accountID, query)
	if err != nil {
		return nil, err
	}
	return &BookingListResponse{Bookings: bookings, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

func (s *service) CancelBooking(ctx context.Context, accountID, bookingID uuid.UUID, reason string) (bool, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking.AccountID != accountID {
		return false, ErrNotOwner
	}
	if !booking.Status.IsCancellable() && booking.Status != StatusCancelled {
		return false, fmt.Errorf("%w: status is %s", ErrNotCancellable, booking.Status)
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	cancelled, err := s.repo.CancelAndUnlock(ctx, bookingID, cancellableStatuses, ActorCustomer, reason)
	if err != nil {
		return false, err
	}
	if cancelled {
		if err := s.cache.Delete(ctx, cache.ActiveHoldKey(accountID.String())); err != nil {
			s.log.WithError(err).Warn("failed to drop active hold key")
		}
		s.log.LogBookingTransition(ctx, bookingID.String(), string(booking.Status), string(StatusCancelled), ActorCustomer)
		s.publish(ctx, "booking.cancelled", booking, map[string]interface{}{"reason": reason})
	}
	return cancelled, nil
}

func (s *service) AdminListBookings(ctx context.Context, query ListQuery) (*BookingListResponse, error) {
	bookings, total, err := s.repo.ListAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return &BookingListResponse{Bookings: bookings, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

func (s *service) AdminCreateBooking(ctx context.Context, req AdminCreateBookingRequest) (*Booking, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}
	hotelID, err := uuid.Parse(req.HotelID)
	if err != nil {
		return nil, fmt.Errorf("invalid hotel id: %w", err)
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}

	room, err := s.hotelRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HotelID != hotelID {
		return nil, ErrRoomNotInHotel
	}

	roomCount := req.Rooms
	if roomCount < 1 {
		roomCount = 1
	}
	guests := req.Guests
	if guests < 1 {
		guests = 1
	}

	rates, err := s.ledger.RatesForRange(ctx, roomID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.calculator.Quote(rates, req.CheckIn, req.CheckOut, roomCount, req.Discount)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	nightly := pricing.RoundCents(breakdown.SubtotalPerRoom / float64(breakdown.Nights))
	booking := &Booking{
		ID:              uuid.New(),
		BookingRef:      generateBookingRef(now),
		AccountID:       accountID,
		HotelID:         hotelID,
		Status:          StatusConfirmed,
		Subtotal:        breakdown.Subtotal,
		DiscountAmount:  breakdown.DiscountAmount,
		TaxAmount:       breakdown.TaxAmount,
		TotalAmount:     breakdown.TotalAmount,
		SpecialRequests: req.SpecialRequests,
	}
	details := make([]BookingDetail, roomCount)
	for i := range details {
		details[i] = BookingDetail{
			ID:            uuid.New(),
			RoomID:        roomID,
			CheckIn:       req.CheckIn,
			CheckOut:      req.CheckOut,
			Guests:        guests,
			Nights:        breakdown.Nights,
			PricePerNight: nightly,
			TotalPrice:    breakdown.SubtotalPerRoom,
		}
	}
	event := &BookingEvent{
		ToStatus: StatusConfirmed,
		Actor:    ActorAdmin,
		Note:     "booking created by operator",
	}
	if err := s.repo.CreateBookingWithLock(ctx, booking, details, event); err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), accountID.String(), hotelID.String())
	s.publish(ctx, "booking.confirmed", booking, nil)
	return s.repo.GetBookingByID(ctx, booking.ID)
}

func (s *service) AdminUpdateStatus(ctx context.Context, bookingID uuid.UUID, req UpdateStatusRequest) (*Booking, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
	}
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, req.Status)
	}

	if req.Status == StatusCancelled {
		reason := req.Note
		if reason == "" {
			reason = "cancelled by operator"
		}
		if _, err := s.repo.CancelAndUnlock(ctx, bookingID, []Status{booking.Status}, ActorAdmin, reason); err != nil {
			return nil, err
		}
	} else {
		moved, err := s.repo.UpdateStatusIf(ctx, bookingID, []Status{booking.Status}, req.Status, ActorAdmin, req.Note)
		if err != nil {
			return nil, err
		}
		if !moved {
			// The booking changed under us; re-check against the fresh state.
			return nil, fmt.Errorf("%w: booking state changed, retry", ErrInvalidTransition)
		}
	}

	s.log.LogBookingTransition(ctx, bookingID.String(), string(booking.Status), string(req.Status), ActorAdmin)
	updated, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking.status_changed", updated, map[string]interface{}{
		"from": string(booking.Status),
		"to":   string(req.Status),
	})
	return updated, nil
}

func (s *service) AdminCancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking.Status == StatusCancelled {
		return false, nil
	}
	if !booking.Status.IsCancellable() {
		return false, fmt.Errorf("%w: status is %s", ErrNotCancellable, booking.Status)
	}
	if reason == "" {
		reason = "cancelled by operator"
	}
	cancelled, err := s.repo.CancelAndUnlock(ctx, bookingID, cancellableStatuses, ActorAdmin, reason)
	if err != nil {
		return false, err
	}
	if cancelled {
		s.log.LogBookingTransition(ctx, bookingID.String(), string(booking.Status), string(StatusCancelled), ActorAdmin)
		s.publish(ctx, "booking.cancelled", booking, map[string]interface{}{"reason": reason})
	}
	return cancelled, nil
}

func (s *service) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req UpdateBookingRequest) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.SpecialRequests != nil {
		updates["special_requests"] = *req.SpecialRequests
	}
	if req.DiscountAmount != nil {
		discount := *req.DiscountAmount
		if discount > booking.Subtotal {
			discount = booking.Subtotal
		}
		tax := pricing.RoundCents((booking.Subtotal - discount) * s.calculator.TaxRate)
		updates["discount_amount"] = pricing.RoundCents(discount)
		updates["tax_amount"] = tax
		updates["total_amount"] = pricing.RoundCents(booking.Subtotal - discount + tax)
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	if _, err := s.repo.UpdateBookingFields(ctx, bookingID, updates); err != nil {
		return nil, err
	}
	return s.repo.GetBookingByID(ctx, bookingID)
}

func (s *service) UpdateBookingDetail(ctx context.Context, detailID uuid.UUID, req UpdateDetailRequest) (*BookingDetail, error) {
	detail, err := s.repo.GetDetailByID(ctx, detailID)
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.GetBookingByID(ctx, detail.BookingID)
	if err != nil {
		return nil, err
	}
	// A cancelled booking already returned its nights to the ledger; moving
	// its dates would release them twice.
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s booking details cannot be edited", ErrInvalidTransition, booking.Status)
	}

	newCheckIn := detail.CheckIn
	newCheckOut := detail.CheckOut
	if req.CheckIn != nil {
		newCheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		newCheckOut = *req.CheckOut
	}

	updates := map[string]interface{}{}
	if req.Guests != nil {
		updates["guests"] = *req.Guests
	}
	if newCheckIn != detail.CheckIn || newCheckOut != detail.CheckOut {
		rates, err := s.ledger.RatesForRange(ctx, detail.RoomID, newCheckIn, newCheckOut)
		if err != nil {
			return nil, err
		}
		breakdown, err := s.calculator.Quote(rates, newCheckIn, newCheckOut, 1, 0)
		if err != nil {
			return nil, err
		}
		updates["check_in"] = newCheckIn
		updates["check_out"] = newCheckOut
		updates["nights"] = breakdown.Nights
		updates["price_per_night"] = pricing.RoundCents(breakdown.SubtotalPerRoom / float64(breakdown.Nights))
		updates["total_price"] = breakdown.SubtotalPerRoom
	}
	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.repo.UpdateDetailWithRelock(ctx, detail, updates, newCheckIn, newCheckOut); err != nil {
		return nil, err
	}
	return s.repo.GetDetailByID(ctx, detailID)
}

func (s *service) AddNote(ctx context.Context, bookingID, authorID uuid.UUID, req AddNoteRequest) (*BookingNote, error) {
	if _, err := s.repo.GetBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	note := &BookingNote{
		ID:        uuid.New(),
		BookingID: bookingID,
		AuthorID:  authorID,
		Body:      req.Body,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *service) ListNotes(ctx context.Context, bookingID uuid.UUID) ([]BookingNote, error) {
	if _, err := s.repo.GetBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, bookingID)
}

func (s *service) GetTimeline(ctx context.Context, bookingID uuid.UUID) (*TimelineResponse, error) {
	if _, err := s.repo.GetBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &TimelineResponse{BookingID: bookingID.String(), Events: events}, nil
}

// ConfirmAfterPayment routes a settled payment into the lifecycle: manual
// methods confirm directly, gateway methods park in PENDING_CONFIRMATION for
// operator sign-off.
func (s *service) ConfirmAfterPayment(ctx context.Context, bookingID uuid.UUID, method payments.Method) error {
	target := StatusPendingConfirmation
	from := []Status{StatusPaid, StatusCreated}
	if method.IsManual() {
		target = StatusConfirmed
		from = []Status{StatusPaid, StatusCreated, StatusPendingConfirmation}
	}

	moved, err := s.repo.UpdateStatusIf(ctx, bookingID, from, target, ActorPayment, "payment settled")
	if err != nil {
		return err
	}
	if !moved {
		booking, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		// Replayed settlement against a booking already confirmed is fine.
		if statusIn(booking.Status, []Status{target, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCompleted}) {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
	}

	s.log.LogBookingTransition(ctx, bookingID.String(), string(StatusPaid), string(target), ActorPayment)
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err == nil {
		s.publish(ctx, "booking.payment_settled", booking, map[string]interface{}{"method": string(method)})
	}
	return nil
}

// CancelForPayment releases the booking after a failed or refunded payment.
// Replays against an already cancelled booking return false without error.
func (s *service) CancelForPayment(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	cancelled, err := s.repo.CancelAndUnlock(ctx, bookingID, cancellableStatuses, ActorPayment, reason)
	if err != nil {
		return false, err
	}
	if cancelled {
		s.log.LogBookingTransition(ctx, bookingID.String(), "", string(StatusCancelled), ActorPayment)
		if booking, err := s.repo.GetBookingByID(ctx, bookingID); err == nil {
			s.publish(ctx, "booking.cancelled", booking, map[string]interface{}{"reason": reason})
		}
	}
	return cancelled, nil
}

// SweepExpiredHolds cancels CREATED bookings whose hold window has lapsed.
// Holds carry no inventory locks, but the cancel path still runs the unlock
// so a hold that somehow gained details is fully released.
func (s *service) SweepExpiredHolds(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredHolds(ctx, s.now().UTC(), 100)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, booking := range expired {
		cancelled, err := s.repo.CancelAndUnlock(ctx, booking.ID, []Status{StatusCreated}, ActorSweeper, "hold expired")
		if err != nil {
			s.log.LogSweepFailure(ctx, "expired_holds", booking.ID.String(), err)
			continue
		}
		if cancelled {
			swept++
			s.publish(ctx, "booking.expired", &booking, nil)
		}
	}
	return swept, nil
}

// SweepNoShows cancels CONFIRMED bookings whose stay started but nobody
// checked in.
func (s *service) SweepNoShows(ctx context.Context) (int, error) {
	today := inventory.FormatDate(s.now().UTC())
	noShows, err := s.repo.FindNoShows(ctx, today, 100)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, booking := range noShows {
		cancelled, err := s.repo.CancelAndUnlock(ctx, booking.ID, []Status{StatusConfirmed}, ActorSweeper, "guest did not arrive")
		if err != nil {
			s.log.LogSweepFailure(ctx, "no_shows", booking.ID.String(), err)
			continue
		}
		if cancelled {
			swept++
			s.publish(ctx, "booking.no_show", &booking, nil)
		}
	}
	return swept, nil
}

func (s *service) publish(ctx context.Context, eventType string, booking *Booking, extra map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"booking_id":  booking.ID.String(),
		"booking_ref": booking.BookingRef,
		"account_id":  booking.AccountID.String(),
		"hotel_id":    booking.HotelID.String(),
		"status":      string(booking.Status),
		"total":       booking.TotalAmount,
	}
	for k, v := range extra {
		payload[k] = v
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.log.WithError(err).Warn("failed to publish booking event")
	}
}

const refAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateBookingRef(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("BK-%s-%d", now.Format("20060102"), now.UnixNano()%1000000)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(refAlphabet[int(b)%len(refAlphabet)])
	}
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), sb.String())
}
