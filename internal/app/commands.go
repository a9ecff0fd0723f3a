package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/domain"
)

// BookingService commits reservations to the ledger.
type BookingService struct {
	rooms    domain.RoomCatalog
	bookings domain.BookingLedger
	events   domain.EventPublisher
}

func NewBookingService(r domain.RoomCatalog, b domain.BookingLedger, ev domain.EventPublisher) *BookingService {
	return &BookingService{rooms: r, bookings: b, events: ev}
}

type BookingRequest struct {
	RoomID     int64
	CheckIn    string
	CheckOut   string
	GuestName  string
	GuestCount int
}

func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	stay, err := domain.NewDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return domain.Booking{}, err
	}
	b, err := domain.NewBooking(req.RoomID, stay, req.GuestName, req.GuestCount)
	if err != nil {
		return domain.Booking{}, err
	}

	room, err := s.rooms.GetRoom(ctx, b.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("room %d: %w", b.RoomID, domain.ErrNotFound)
		}
		return domain.Booking{}, storeErr(ctx, "get room", err)
	}
	if room.Status != domain.StatusAvailable {
		return domain.Booking{}, fmt.Errorf("room %d: %w", room.ID, domain.ErrRoomUnavailable)
	}
	if b.GuestCount > room.Capacity {
		return domain.Booking{}, fmt.Errorf("%w: %d guests, room %d sleeps %d",
			domain.ErrCapacityExceeded, b.GuestCount, room.ID, room.Capacity)
	}

	// the ledger re-checks overlaps under a lock; this is the authoritative conflict test
	created, err := s.bookings.CreateBooking(ctx, b)
	if err != nil {
		if errors.Is(err, domain.ErrBookingConflict) || errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, err
		}
		return domain.Booking{}, storeErr(ctx, "create booking", err)
	}

	if s.events != nil {
		if err := s.events.BookingCreated(ctx, created); err != nil {
			log.Warn().Err(err).Int64("booking_id", created.ID).Int64("room_id", created.RoomID).
				Msg("publish booking.created failed")
		}
	}
	return created, nil
}

// CatalogService owns catalog writes: seeding, remote sync and status updates.
type CatalogService struct {
	remote   domain.CatalogClient
	rooms    domain.RoomCatalog
	bookings domain.BookingLedger
	cache    domain.Cache
}

func NewCatalogService(c domain.CatalogClient, r domain.RoomCatalog, b domain.BookingLedger, cache domain.Cache) *CatalogService {
	return &CatalogService{remote: c, rooms: r, bookings: b, cache: cache}
}

// Seed bulk-clears the ledger and catalog and loads the demo fixture.
func (s *CatalogService) Seed(ctx context.Context) error {
	// cached views of rooms about to be deleted must go too, not only the fixture ids
	existing, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	for _, r := range existing {
		invalidateRoom(ctx, s.cache, r.ID)
	}

	// bookings first: they reference rooms
	if err := s.bookings.DeleteAllBookings(ctx); err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}
	if err := s.rooms.DeleteAllRooms(ctx); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}

	rooms := SeedRooms()
	if err := s.rooms.UpsertRooms(ctx, rooms); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	for _, r := range rooms {
		invalidateRoom(ctx, s.cache, r.ID)
	}

	bookings, err := SeedBookings()
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if _, err := s.bookings.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("seed booking for room %d: %w", b.RoomID, err)
		}
	}
	log.Info().Int("rooms", len(rooms)).Int("bookings", len(bookings)).Msg("catalog seeded")
	return nil
}

// RemoteRoomIDs lists the room ids the remote catalog knows about.
func (s *CatalogService) RemoteRoomIDs(ctx context.Context) ([]int64, error) {
	if s.remote == nil {
		return nil, errors.New("remote catalog is not configured")
	}
	return s.remote.ListRoomIDs(ctx)
}

// SyncRoom pulls one room from the remote catalog and upserts it.
// A room the remote no longer knows is skipped, not deleted.
func (s *CatalogService) SyncRoom(ctx context.Context, id int64) error {
	if s.remote == nil {
		return errors.New("remote catalog is not configured")
	}
	p, err := s.remote.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Int64("id", id).Msg("room missing in remote catalog; skipped")
			return nil
		}
		return err
	}

	r := mapRoom(p)
	if r.ID == 0 {
		r.ID = id
	}
	if r.ID != id {
		return fmt.Errorf("remote room %d rejected: payload carries id %d", id, r.ID)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("remote room %d rejected: %w", id, err)
	}
	if err := s.rooms.UpsertRooms(ctx, []domain.Room{r}); err != nil {
		return err
	}
	invalidateRoom(ctx, s.cache, r.ID)
	return nil
}

func (s *CatalogService) UpdateRoomStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if err := s.rooms.UpdateRoomStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return storeErr(ctx, "update room status", err)
	}
	invalidateRoom(ctx, s.cache, id)
	return nil
}
