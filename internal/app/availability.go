package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"hotel_rooms/internal/domain"
)

// AvailabilityResolver computes which rooms can be offered for a stay.
// It only reads the catalog and the ledger.
type AvailabilityResolver struct {
	rooms    domain.RoomReader
	bookings domain.BookingReader
}

func NewAvailabilityResolver(r domain.RoomReader, b domain.BookingReader) *AvailabilityResolver {
	return &AvailabilityResolver{rooms: r, bookings: b}
}

// IsSelectable is the booking-independent part of the decision.
func IsSelectable(r domain.Room, minCapacity int) bool {
	return r.Capacity >= minCapacity && r.Status == domain.StatusAvailable
}

// ResolveAvailableRooms returns the rooms with enough capacity, AVAILABLE status and
// no booking overlapping [checkIn, checkOut], ordered by room id.
// An empty, non-nil slice means nothing matched.
func (s *AvailabilityResolver) ResolveAvailableRooms(ctx context.Context, checkIn, checkOut string, minCapacity int) ([]domain.Room, error) {
	stay, err := domain.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, stay, minCapacity)
}

// Resolve is ResolveAvailableRooms for an already validated stay.
func (s *AvailabilityResolver) Resolve(ctx context.Context, stay domain.DateRange, minCapacity int) ([]domain.Room, error) {
	if minCapacity < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidCapacity, minCapacity)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, storeErr(ctx, "list rooms", err)
	}

	candidates := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if IsSelectable(r, minCapacity) {
			candidates = append(candidates, r)
		}
	}

	bookings, err := s.bookings.ListBookings(ctx)
	if err != nil {
		return nil, storeErr(ctx, "list bookings", err)
	}
	busy := make(map[int64]bool, len(candidates))
	for _, b := range bookings {
		if !busy[b.RoomID] && domain.Overlaps(b.Stay, stay) {
			busy[b.RoomID] = true
		}
	}

	out := make([]domain.Room, 0, len(candidates))
	for _, r := range candidates {
		if !busy[r.ID] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	// the caller may have gone away while the ledger was read
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// storeErr keeps cancellation distinguishable from a broken store.
func storeErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *domain.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}
