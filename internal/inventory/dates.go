package inventory

import (
	"errors"
	"time"
)

// DateLayout is the canonical calendar-date form used across the ledger.
const DateLayout = "2006-01-02"

var (
	ErrBadDate      = errors.New("date must be in YYYY-MM-DD form")
	ErrBadDateRange = errors.New("check-out date must not be before check-in date")
)

// ParseDate validates a canonical YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// FormatDate normalizes a time value to the canonical date string in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DatesInRange expands a stay into its ledger dates: the half-open interval
// [checkIn, checkOut) for multi-night stays, or the single date when
// checkIn == checkOut (day-use).
func DatesInRange(checkIn, checkOut string) ([]string, error) {
	start, err := ParseDate(checkIn)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(checkOut)
	if err != nil {
		return nil, err
	}

	if checkIn == checkOut {
		return []string{checkIn}, nil
	}
	if end.Before(start) {
		return nil, ErrBadDateRange
	}

	var dates []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// Nights returns the number of nights a stay spans; day-use counts as one.
func Nights(checkIn, checkOut string) (int, error) {
	dates, err := DatesInRange(checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	return len(dates), nil
}
