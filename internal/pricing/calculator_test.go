package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/inventory"
)

func rateRow(roomID uuid.UUID, date string, base float64) inventory.RoomRateDay {
	return inventory.RoomRateDay{RoomID: roomID, Date: date, BasePrice: base, AvailableRooms: 5}
}

func TestQuoteTwoNights(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{
		rateRow(roomID, "2026-09-01", 100),
		rateRow(roomID, "2026-09-02", 150),
	}

	calc := NewCalculator(0.10)
	breakdown, err := calc.Quote(rows, "2026-09-01", "2026-09-03", 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, breakdown.Nights)
	assert.Equal(t, 250.0, breakdown.Subtotal)
	assert.Equal(t, 25.0, breakdown.TaxAmount)
	assert.Equal(t, 275.0, breakdown.TotalAmount)
}

func TestQuoteDayUseChargesOneNight(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{rateRow(roomID, "2026-09-01", 80)}

	calc := NewCalculator(0.10)
	breakdown, err := calc.Quote(rows, "2026-09-01", "2026-09-01", 1, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, breakdown.Nights)
	assert.Equal(t, 80.0, breakdown.Subtotal)
	assert.Equal(t, 88.0, breakdown.TotalAmount)
}

func TestQuoteMultipleRooms(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{
		rateRow(roomID, "2026-09-01", 100),
		rateRow(roomID, "2026-09-02", 100),
	}

	calc := NewCalculator(0.10)
	breakdown, err := calc.Quote(rows, "2026-09-01", "2026-09-03", 3, 0)
	require.NoError(t, err)

	assert.Equal(t, 200.0, breakdown.SubtotalPerRoom)
	assert.Equal(t, 600.0, breakdown.Subtotal)
	assert.Equal(t, 660.0, breakdown.TotalAmount)
}

func TestQuoteDiscountAppliedBeforeTax(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{
		rateRow(roomID, "2026-09-01", 100),
		rateRow(roomID, "2026-09-02", 100),
	}

	calc := NewCalculator(0.10)
	breakdown, err := calc.Quote(rows, "2026-09-01", "2026-09-03", 1, 50)
	require.NoError(t, err)

	assert.Equal(t, 50.0, breakdown.DiscountAmount)
	assert.Equal(t, 15.0, breakdown.TaxAmount)
	assert.Equal(t, 165.0, breakdown.TotalAmount)
}

func TestQuoteDiscountCappedAtSubtotal(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{rateRow(roomID, "2026-09-01", 100)}

	calc := NewCalculator(0.10)
	breakdown, err := calc.Quote(rows, "2026-09-01", "2026-09-02", 1, 9999)
	require.NoError(t, err)

	assert.Equal(t, 100.0, breakdown.DiscountAmount)
	assert.Equal(t, 0.0, breakdown.TaxAmount)
	assert.Equal(t, 0.0, breakdown.TotalAmount)
}

func TestQuoteFailsOnMissingRateDay(t *testing.T) {
	roomID := uuid.New()
	rows := []inventory.RoomRateDay{rateRow(roomID, "2026-09-01", 100)}

	calc := NewCalculator(0.10)
	_, err := calc.Quote(rows, "2026-09-01", "2026-09-03", 1, 0)
	assert.ErrorIs(t, err, ErrNoRate)
}

func TestQuoteRejectsBadInput(t *testing.T) {
	calc := NewCalculator(0.10)

	_, err := calc.Quote(nil, "2026-09-01", "2026-09-02", 0, 0)
	assert.Error(t, err)

	_, err = calc.Quote(nil, "2026-09-01", "2026-09-02", 1, -5)
	assert.Error(t, err)

	_, err = calc.Quote(nil, "2026-09-03", "2026-09-01", 1, 0)
	assert.ErrorIs(t, err, inventory.ErrBadDateRange)
}

func TestNightlyPriceResolution(t *testing.T) {
	// FinalPrice wins outright.
	row := inventory.RoomRateDay{BasePrice: 100, DiscountPercent: 50, FinalPrice: 70}
	assert.Equal(t, 70.0, row.NightlyPrice())

	// Absolute discounts beat the percentage.
	row = inventory.RoomRateDay{BasePrice: 100, DiscountPercent: 50, ProviderDiscount: 10, SystemDiscount: 5}
	assert.Equal(t, 85.0, row.NightlyPrice())

	// Percentage is the fallback.
	row = inventory.RoomRateDay{BasePrice: 100, DiscountPercent: 25}
	assert.Equal(t, 75.0, row.NightlyPrice())

	row = inventory.RoomRateDay{BasePrice: 100}
	assert.Equal(t, 100.0, row.NightlyPrice())
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 10.55, RoundCents(10.554))
	assert.Equal(t, 10.56, RoundCents(10.556))
	assert.Equal(t, 0.1, RoundCents(0.1+0.2-0.2))
}
