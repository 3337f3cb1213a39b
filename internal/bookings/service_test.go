package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stayhub/internal/hotels"
	"stayhub/internal/inventory"
	"stayhub/internal/payments"
	"stayhub/internal/pricing"
	"stayhub/internal/shared/config"
	"stayhub/pkg/cache"
	"stayhub/pkg/logger"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakePublisher) has(eventType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == eventType {
			return true
		}
	}
	return false
}

// fakeCache satisfies cache.Service without a redis instance
type fakeCache struct{}

func (fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (fakeCache) Delete(ctx context.Context, key string) error         { return nil }
func (fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (fakeCache) Exists(ctx context.Context, key string) bool          { return false }
func (fakeCache) Ping(ctx context.Context) error                       { return nil }
func (fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	value, err := fetcher()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

type testEnv struct {
	db        *gorm.DB
	service   Service
	payments  payments.Service
	ledger    inventory.Ledger
	publisher *fakePublisher

	accountID uuid.UUID
	hotelID   uuid.UUID
	roomID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:bookings_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&hotels.Hotel{}, &hotels.RoomType{}, &hotels.Room{},
		&inventory.RoomRateDay{},
		&Booking{}, &BookingDetail{}, &BookingEvent{}, &BookingNote{},
		&payments.Payment{},
	))

	cfg := &config.Config{
		Booking: config.BookingConfig{
			HoldWindow:          20 * time.Minute,
			ExpirySweepInterval: time.Minute,
			NoShowSweepInterval: 24 * time.Hour,
			TaxRate:             0.10,
		},
	}
	log := logger.GetDefault()
	ledger := inventory.NewLedger(db)
	calculator := pricing.NewCalculator(cfg.Booking.TaxRate)
	publisher := &fakePublisher{}

	paymentService := payments.NewService(payments.NewRepository(db), log)
	bookingService := NewService(
		NewRepository(db, ledger, log),
		hotels.NewRepository(db), ledger, calculator,
		paymentService, fakeCache{}, publisher, cfg, log,
	)
	paymentService.SetLifecycle(bookingService)

	env := &testEnv{
		db:        db,
		service:   bookingService,
		payments:  paymentService,
		ledger:    ledger,
		publisher: publisher,
		accountID: uuid.New(),
		hotelID:   uuid.New(),
		roomID:    uuid.New(),
	}
	env.seed(t)
	return env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	hotel := hotels.Hotel{ID: e.hotelID, Name: "Test Hotel", City: "Singapore", Address: "1 Test Way", Status: hotels.HotelStatusActive}
	require.NoError(t, e.db.Create(&hotel).Error)

	roomType := hotels.RoomType{ID: uuid.New(), HotelID: e.hotelID, Name: "Standard", MaxGuests: 2}
	require.NoError(t, e.db.Create(&roomType).Error)

	room := hotels.Room{ID: e.roomID, HotelID: e.hotelID, RoomTypeID: roomType.ID, RoomNo: "101", Status: hotels.RoomStatusActive}
	require.NoError(t, e.db.Create(&room).Error)

	dates, err := inventory.DatesInRange("2026-09-01", "2026-09-06")
	require.NoError(t, err)
	for _, date := range dates {
		require.NoError(t, e.db.Create(&inventory.RoomRateDay{
			RoomID: e.roomID, Date: date, BasePrice: 100, AvailableRooms: 3,
		}).Error)
	}
}

func (e *testEnv) setClock(t *testing.T, at time.Time) {
	t.Helper()
	svc, ok := e.service.(*service)
	require.True(t, ok)
	svc.now = func() time.Time { return at }
}

func (e *testEnv) available(t *testing.T, date string) int {
	t.Helper()
	left, err := e.ledger.AvailableRooms(context.Background(), e.roomID, date)
	require.NoError(t, err)
	return left
}

func (e *testEnv) hold(t *testing.T, accountID uuid.UUID, checkIn, checkOut string) *Booking {
	t.Helper()
	resp, err := e.service.CreateHold(context.Background(), accountID, CreateHoldRequest{
		HotelID:  e.hotelID.String(),
		RoomID:   e.roomID.String(),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	require.NoError(t, err)
	require.False(t, resp.Reused)
	return resp.Booking
}

func (e *testEnv) checkout(t *testing.T, accountID, bookingID uuid.UUID, checkIn, checkOut string, method payments.Method) *CheckoutResponse {
	t.Helper()
	resp, err := e.service.Checkout(context.Background(), accountID, bookingID, CheckoutRequest{
		RoomID:        e.roomID.String(),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateHoldQuotesWithoutLocking(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")

	assert.Equal(t, StatusCreated, booking.Status)
	assert.Equal(t, 200.0, booking.Subtotal)
	assert.Equal(t, 20.0, booking.TaxAmount)
	assert.Equal(t, 220.0, booking.TotalAmount)
	require.NotNil(t, booking.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(20*time.Minute), *booking.ExpiresAt, time.Minute)

	// The hold quotes but does not consume inventory.
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))
	assert.True(t, env.publisher.has("booking.created"))
}

func TestCreateHoldIsIdempotentPerAccount(t *testing.T) {
	env := newTestEnv(t)

	first := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")

	resp, err := env.service.CreateHold(context.Background(), env.accountID, CreateHoldRequest{
		HotelID:  env.hotelID.String(),
		RoomID:   env.roomID.String(),
		CheckIn:  "2026-09-02",
		CheckOut: "2026-09-04",
	})
	require.NoError(t, err)
	assert.True(t, resp.Reused)
	assert.Equal(t, first.ID, resp.Booking.ID)
}

func TestCheckoutLocksInventoryAndOpensPayment(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	assert.Equal(t, StatusPaid, resp.Booking.Status)
	require.Len(t, resp.Booking.Details, 1)
	assert.Equal(t, 2, resp.Booking.Details[0].Nights)
	assert.Equal(t, 200.0, resp.Booking.Details[0].TotalPrice)

	require.NotNil(t, resp.Payment)
	assert.Equal(t, payments.StatusPending, resp.Payment.Status)
	assert.Equal(t, 220.0, resp.Payment.AmountDue)

	assert.Equal(t, 2, env.available(t, "2026-09-01"))
	assert.Equal(t, 2, env.available(t, "2026-09-02"))
	assert.Equal(t, 3, env.available(t, "2026-09-03"))
}

func TestCheckoutReplayReturnsExistingState(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	first := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	replay := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	assert.Equal(t, first.Payment.ID, replay.Payment.ID)
	assert.Equal(t, StatusPaid, replay.Booking.Status)

	// Inventory was only taken once.
	assert.Equal(t, 2, env.available(t, "2026-09-01"))
}

func TestCheckoutFailsCleanlyWhenSoldOut(t *testing.T) {
	env := newTestEnv(t)

	// One date of the stay is sold out.
	require.NoError(t, env.db.Model(&inventory.RoomRateDay{}).
		Where("room_id = ? AND date = ?", env.roomID, "2026-09-02").
		Update("available_rooms", 0).Error)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	_, err := env.service.Checkout(context.Background(), env.accountID, booking.ID, CheckoutRequest{
		RoomID:        env.roomID.String(),
		CheckIn:       "2026-09-01",
		CheckOut:      "2026-09-03",
		PaymentMethod: payments.MethodCash,
	})
	require.ErrorIs(t, err, inventory.ErrNotEnoughAvailability)

	// Nothing was taken and no detail row survived the rollback.
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	var detailCount int64
	require.NoError(t, env.db.Model(&BookingDetail{}).Where("booking_id = ?", booking.ID).Count(&detailCount).Error)
	assert.Zero(t, detailCount)

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, current.Status)
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	env := newTestEnv(t)

	// Only one room left for the stay.
	require.NoError(t, env.db.Model(&inventory.RoomRateDay{}).
		Where("room_id = ?", env.roomID).
		Update("available_rooms", 1).Error)

	accountA, accountB := uuid.New(), uuid.New()
	holdA := env.hold(t, accountA, "2026-09-01", "2026-09-03")
	holdB := env.hold(t, accountB, "2026-09-01", "2026-09-03")

	type outcome struct{ err error }
	results := make(chan outcome, 2)
	checkout := func(accountID, bookingID uuid.UUID) {
		_, err := env.service.Checkout(context.Background(), accountID, bookingID, CheckoutRequest{
			RoomID:        env.roomID.String(),
			CheckIn:       "2026-09-01",
			CheckOut:      "2026-09-03",
			PaymentMethod: payments.MethodCash,
		})
		results <- outcome{err: err}
	}
	go checkout(accountA, holdA.ID)
	go checkout(accountB, holdB.ID)

	var failures, wins int
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			require.ErrorIs(t, r.err, inventory.ErrNotEnoughAvailability)
			failures++
		} else {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 0, env.available(t, "2026-09-01"))
	assert.Equal(t, 0, env.available(t, "2026-09-02"))
}

func TestManualPaymentSuccessConfirmsDirectly(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodBankTransfer)

	settled, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusSuccess, settled.Status)
	assert.Equal(t, 220.0, settled.AmountPaid)

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, current.Status)

	// Replayed callback is a no-op.
	again, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusSuccess, again.Status)

	timeline, err := env.service.GetTimeline(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Events, 3)
	assert.Equal(t, StatusConfirmed, timeline.Events[2].ToStatus)
}

func TestGatewayPaymentSuccessAwaitsSignOff(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCreditCard)

	_, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusSuccess,
	})
	require.NoError(t, err)

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingConfirmation, current.Status)

	// Operator signs the gateway settlement off.
	confirmed, err := env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
}

func TestPaymentFailureReleasesInventory(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCreditCard)
	assert.Equal(t, 2, env.available(t, "2026-09-01"))

	_, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusFailed,
		Note:   "card declined",
	})
	require.NoError(t, err)

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))

	// Replay changes nothing.
	_, err = env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
}

func TestRefundCancelsAndReleases(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	_, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{Status: payments.StatusSuccess})
	require.NoError(t, err)

	refunded, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{
		Status: payments.StatusRefunded,
		Note:   "guest requested refund",
	})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusRefunded, refunded.Status)

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
}

func TestUserCancelRestoresAvailabilityAtomically(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	cancelled, err := env.service.CancelBooking(context.Background(), env.accountID, booking.ID, "change of plans")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))

	// Double cancel is a recognized no-op, not an error.
	again, err := env.service.CancelBooking(context.Background(), env.accountID, booking.ID, "")
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))

	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, current.CancelledAt)
}

func TestCancelRejectedForForeignAccount(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")

	_, err := env.service.CancelBooking(context.Background(), uuid.New(), booking.ID, "")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSweepCancelsOnlyExpiredHolds(t *testing.T) {
	env := newTestEnv(t)

	expired := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")

	paidAccount := uuid.New()
	paid := env.hold(t, paidAccount, "2026-09-03", "2026-09-05")
	env.checkout(t, paidAccount, paid.ID, "2026-09-03", "2026-09-05", payments.MethodCash)

	// Age both bookings past the hold window.
	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, env.db.Model(&Booking{}).
		Where("id IN ?", []uuid.UUID{expired.ID, paid.ID}).
		Update("expires_at", past).Error)

	swept, err := env.service.SweepExpiredHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	expiredNow, err := env.service.GetBooking(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, expiredNow.Status)

	paidNow, err := env.service.GetBooking(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paidNow.Status)

	// A second sweep finds nothing.
	swept, err = env.service.SweepExpiredHolds(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
}

func TestSweepNoShows(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	_, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{Status: payments.StatusSuccess})
	require.NoError(t, err)

	// Check-in day: the guest may still arrive, the sweep leaves it alone.
	env.setClock(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	swept, err := env.service.SweepNoShows(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, current.Status)

	// Stay started yesterday and nobody checked in.
	env.setClock(t, time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC))
	swept, err = env.service.SweepNoShows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	current, err = env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))
}

func TestAdminStatusTableEnforced(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	_, err := env.payments.UpdateStatus(context.Background(), resp.Payment.ID, payments.UpdateStatusRequest{Status: payments.StatusSuccess})
	require.NoError(t, err)

	// CONFIRMED cannot go back to PAID.
	_, err = env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusPaid})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	checkedIn, err := env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusCheckedIn})
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckedInAt)

	// Checked-in guests cannot be cancelled.
	_, err = env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusCancelled})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	checkedOut, err := env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusCheckedOut})
	require.NoError(t, err)
	require.NotNil(t, checkedOut.CheckedOutAt)

	completed, err := env.service.AdminUpdateStatus(context.Background(), booking.ID, UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
}

func TestDayUseBooking(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-02", "2026-09-02")
	assert.Equal(t, 110.0, booking.TotalAmount)

	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-02", "2026-09-02", payments.MethodCash)
	require.Len(t, resp.Booking.Details, 1)
	assert.Equal(t, 1, resp.Booking.Details[0].Nights)

	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 2, env.available(t, "2026-09-02"))
	assert.Equal(t, 3, env.available(t, "2026-09-03"))
}

func TestAdminCreateBookingLocksImmediately(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.service.AdminCreateBooking(context.Background(), AdminCreateBookingRequest{
		AccountID: env.accountID.String(),
		HotelID:   env.hotelID.String(),
		RoomID:    env.roomID.String(),
		CheckIn:   "2026-09-01",
		CheckOut:  "2026-09-03",
		Rooms:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, booking.Status)
	require.Len(t, booking.Details, 2)
	assert.Equal(t, 440.0, booking.TotalAmount)

	assert.Equal(t, 1, env.available(t, "2026-09-01"))
	assert.Equal(t, 1, env.available(t, "2026-09-02"))
}

func TestUpdateDetailShiftsLockedDates(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	detailID := resp.Booking.Details[0].ID

	newCheckIn, newCheckOut := "2026-09-03", "2026-09-05"
	updated, err := env.service.UpdateBookingDetail(context.Background(), detailID, UpdateDetailRequest{
		CheckIn:  &newCheckIn,
		CheckOut: &newCheckOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-03", updated.CheckIn)
	assert.Equal(t, 2, updated.Nights)

	// Old nights released, new nights taken.
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))
	assert.Equal(t, 2, env.available(t, "2026-09-03"))
	assert.Equal(t, 2, env.available(t, "2026-09-04"))
}

func TestUpdateBookingRecomputesTotalsForDiscount(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	discount := 50.0
	updated, err := env.service.UpdateBooking(context.Background(), booking.ID, UpdateBookingRequest{
		DiscountAmount: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.DiscountAmount)
	assert.Equal(t, 15.0, updated.TaxAmount)
	assert.Equal(t, 165.0, updated.TotalAmount)

	_, err = env.service.UpdateBooking(context.Background(), booking.ID, UpdateBookingRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestNotesAndTimeline(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	adminID := uuid.New()

	note, err := env.service.AddNote(context.Background(), booking.ID, adminID, AddNoteRequest{Body: "guest asked for a quiet floor"})
	require.NoError(t, err)
	assert.Equal(t, adminID, note.AuthorID)

	notes, err := env.service.ListNotes(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	timeline, err := env.service.GetTimeline(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Events, 1)
	assert.Equal(t, StatusCreated, timeline.Events[0].ToStatus)
	assert.Equal(t, ActorCustomer, timeline.Events[0].Actor)
}

func TestBookingRefFormat(t *testing.T) {
	env := newTestEnv(t)
	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	assert.Regexp(t, `^BK-\d{8}-[A-Z2-9]{6}$`, booking.BookingRef)
}

func TestAttachTakesNothingFromCancelledBooking(t *testing.T) {
	env := newTestEnv(t)
	repo := NewRepository(env.db, env.ledger, logger.GetDefault())

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")

	// The sweeper wins the race before the attach transaction runs.
	cancelled, err := repo.CancelAndUnlock(context.Background(), booking.ID, []Status{StatusCreated}, ActorSweeper, "hold expired")
	require.NoError(t, err)
	require.True(t, cancelled)

	details := []BookingDetail{{
		ID: uuid.New(), RoomID: env.roomID,
		CheckIn: "2026-09-01", CheckOut: "2026-09-03",
		Guests: 2, Nights: 2, PricePerNight: 100, TotalPrice: 200,
	}}
	attached, err := repo.AttachDetailsAndPay(context.Background(), booking.ID, details, 200, 0, 20, 220, "")
	require.NoError(t, err)
	assert.False(t, attached)

	current, err := repo.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, current.Status)
	assert.Empty(t, current.Details)
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))

	// The checkout path surfaces the lost race instead of reporting success.
	_, err = env.service.Checkout(context.Background(), env.accountID, booking.ID, CheckoutRequest{
		RoomID:        env.roomID.String(),
		CheckIn:       "2026-09-01",
		CheckOut:      "2026-09-03",
		PaymentMethod: payments.MethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateHoldReusesPaidBooking(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)

	// A live PAID booking blocks a second hold the same way a CREATED one does.
	resp, err := env.service.CreateHold(context.Background(), env.accountID, CreateHoldRequest{
		HotelID:  env.hotelID.String(),
		RoomID:   env.roomID.String(),
		CheckIn:  "2026-09-03",
		CheckOut: "2026-09-05",
	})
	require.NoError(t, err)
	assert.True(t, resp.Reused)
	assert.Equal(t, booking.ID, resp.Booking.ID)
	assert.Equal(t, StatusPaid, resp.Booking.Status)
}

func TestDetailEditRejectedOnCancelledBooking(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	resp := env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	detailID := resp.Booking.Details[0].ID

	cancelled, err := env.service.CancelBooking(context.Background(), env.accountID, booking.ID, "")
	require.NoError(t, err)
	require.True(t, cancelled)
	require.Equal(t, 3, env.available(t, "2026-09-01"))

	newCheckIn, newCheckOut := "2026-09-03", "2026-09-05"
	_, err = env.service.UpdateBookingDetail(context.Background(), detailID, UpdateDetailRequest{
		CheckIn:  &newCheckIn,
		CheckOut: &newCheckOut,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Nothing re-released, nothing newly locked.
	assert.Equal(t, 3, env.available(t, "2026-09-01"))
	assert.Equal(t, 3, env.available(t, "2026-09-02"))
	assert.Equal(t, 3, env.available(t, "2026-09-03"))
	assert.Equal(t, 3, env.available(t, "2026-09-04"))
}

func TestCancelRollsBackWhenEventLogFails(t *testing.T) {
	env := newTestEnv(t)

	booking := env.hold(t, env.accountID, "2026-09-01", "2026-09-03")
	env.checkout(t, env.accountID, booking.ID, "2026-09-01", "2026-09-03", payments.MethodCash)
	require.Equal(t, 2, env.available(t, "2026-09-01"))

	// Force the event insert inside the cancel transaction to fail.
	require.NoError(t, env.db.Migrator().DropTable(&BookingEvent{}))

	cancelled, err := env.service.CancelBooking(context.Background(), env.accountID, booking.ID, "")
	require.Error(t, err)
	assert.False(t, cancelled)

	// The whole transaction rolled back: status and inventory untouched.
	current, err := env.service.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, current.Status)
	assert.Equal(t, 2, env.available(t, "2026-09-01"))
	assert.Equal(t, 2, env.available(t, "2026-09-02"))
}
