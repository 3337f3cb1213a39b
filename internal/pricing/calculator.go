package pricing

import (
	"errors"
	"fmt"
	"math"

	"stayhub/internal/inventory"
)

// ErrNoRate means at least one date of the stay has no pricing row; the quote
// fails rather than guessing a fallback price.
var ErrNoRate = errors.New("no pricing available")

// DefaultTaxRate is the flat tax applied to the discounted subtotal.
const DefaultTaxRate = 0.10

// NightlyRate is one priced night in a breakdown.
type NightlyRate struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Breakdown is a fully resolved price for a stay. total = subtotal - discount + tax.
type Breakdown struct {
	Nights          int           `json:"nights"`
	RoomCount       int           `json:"room_count"`
	Nightly         []NightlyRate `json:"nightly"`
	SubtotalPerRoom float64       `json:"subtotal_per_room"`
	Subtotal        float64       `json:"subtotal"`
	DiscountAmount  float64       `json:"discount_amount"`
	TaxAmount       float64       `json:"tax_amount"`
	TotalAmount     float64       `json:"total_amount"`
}

// Calculator resolves rate rows into price breakdowns. It holds no state
// beyond the tax rate and performs no I/O, so the same inputs always produce
// the same breakdown.
type Calculator struct {
	TaxRate float64
}

func NewCalculator(taxRate float64) *Calculator {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &Calculator{TaxRate: taxRate}
}

// Quote prices a stay from its ledger rows. rows must cover every date of
// [checkIn, checkOut) (or the single day-use date); any gap fails with
// ErrNoRate. discount is a pre-validated package/code discount amount applied
// before tax.
func (c *Calculator) Quote(rows []inventory.RoomRateDay, checkIn, checkOut string, roomCount int, discount float64) (*Breakdown, error) {
	if roomCount < 1 {
		return nil, fmt.Errorf("room count must be at least 1")
	}
	if discount < 0 {
		return nil, fmt.Errorf("discount must not be negative")
	}

	wantDates, err := inventory.DatesInRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	priced := make(map[string]float64, len(rows))
	for _, row := range rows {
		priced[row.Date] = RoundCents(row.NightlyPrice())
	}

	breakdown := &Breakdown{
		RoomCount: roomCount,
		Nightly:   make([]NightlyRate, 0, len(wantDates)),
	}

	for _, date := range wantDates {
		price, ok := priced[date]
		if !ok {
			return nil, fmt.Errorf("%w for %s", ErrNoRate, date)
		}
		breakdown.Nightly = append(breakdown.Nightly, NightlyRate{Date: date, Price: price})
		breakdown.SubtotalPerRoom += price
	}

	breakdown.Nights = len(breakdown.Nightly)
	breakdown.SubtotalPerRoom = RoundCents(breakdown.SubtotalPerRoom)
	breakdown.Subtotal = RoundCents(breakdown.SubtotalPerRoom * float64(roomCount))

	if discount > breakdown.Subtotal {
		discount = breakdown.Subtotal
	}
	breakdown.DiscountAmount = RoundCents(discount)
	breakdown.TaxAmount = RoundCents((breakdown.Subtotal - breakdown.DiscountAmount) * c.TaxRate)
	breakdown.TotalAmount = RoundCents(breakdown.Subtotal - breakdown.DiscountAmount + breakdown.TaxAmount)

	return breakdown, nil
}

// RoundCents rounds a currency amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
