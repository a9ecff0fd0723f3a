package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange  = errors.New("check-in must be before check-out")
	ErrInvalidCapacity   = errors.New("capacity must be at least 1")
	ErrInvalidGuestCount = errors.New("guest count must be at least 1")
	ErrMissingGuestName  = errors.New("guest name is required")
	ErrInvalidStatus     = errors.New("status must be AVAILABLE or UNAVAILABLE")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrBookingConflict   = errors.New("room already booked for these dates")
	ErrCapacityExceeded  = errors.New("guest count exceeds room capacity")
	ErrRoomUnavailable   = errors.New("room is not available for booking")
)

// StoreError wraps a failed catalog or ledger read/write.
// errors.Is(err, ErrStoreUnavailable) holds for every StoreError.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + ErrStoreUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
