package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form accepted at every boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a canonical YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateRange is a closed interval of calendar dates with CheckIn strictly before CheckOut.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange parses both dates and rejects empty or reversed stays.
func NewDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return DateRangeOf(in, out)
}

// DateRangeOf builds a range from already parsed dates, truncated to the day.
func DateRangeOf(checkIn, checkOut time.Time) (DateRange, error) {
	in, out := truncateDay(checkIn), truncateDay(checkOut)
	if !in.Before(out) {
		return DateRange{}, fmt.Errorf("%w: check-in %s is not before check-out %s",
			ErrInvalidDateRange, in.Format(DateLayout), out.Format(DateLayout))
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights is the number of nights between check-in and check-out.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

func (r DateRange) String() string {
	return "[" + r.CheckIn.Format(DateLayout) + ", " + r.CheckOut.Format(DateLayout) + "]"
}

// Overlaps reports whether two ranges share at least one calendar day.
// Both bounds are inclusive: a stay starting on another stay's check-out day conflicts.
func Overlaps(a, b DateRange) bool {
	return !a.CheckIn.After(b.CheckOut) && !b.CheckIn.After(a.CheckOut)
}

type Booking struct {
	ID         int64
	RoomID     int64
	Stay       DateRange
	GuestName  string
	GuestCount int
}

// NewBooking validates a reservation before it reaches the ledger.
func NewBooking(roomID int64, stay DateRange, guestName string, guestCount int) (Booking, error) {
	if roomID <= 0 {
		return Booking{}, fmt.Errorf("room id must be positive, got %d", roomID)
	}
	if stay.CheckIn.IsZero() || !stay.CheckIn.Before(stay.CheckOut) {
		return Booking{}, ErrInvalidDateRange
	}
	if guestCount < 1 {
		return Booking{}, fmt.Errorf("%w: %d", ErrInvalidGuestCount, guestCount)
	}
	name := strings.TrimSpace(guestName)
	if name == "" {
		return Booking{}, ErrMissingGuestName
	}
	return Booking{RoomID: roomID, Stay: stay, GuestName: name, GuestCount: guestCount}, nil
}
