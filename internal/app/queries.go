package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/domain"
)

const allRoomsKey = "rooms:all"

func roomKey(id int64) string { return fmt.Sprintf("room:%d", id) }

func statusKey(st domain.RoomStatus) string { return "rooms:status:" + string(st) }

type QueryService struct {
	rooms    domain.RoomCatalog
	bookings domain.BookingLedger
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RoomCatalog, b domain.BookingLedger, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{rooms: r, bookings: b, cache: c, cacheTTL: ttl}
}

// ListByStatus lists rooms with the given administrative status, ordered by id.
// An empty status lists the whole catalog.
func (s *QueryService) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	key := allRoomsKey
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
		}
		key = statusKey(status)
	}

	var out []domain.Room
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	var (
		rs  []domain.Room
		err error
	)
	if status == "" {
		rs, err = s.rooms.ListRooms(ctx)
	} else {
		rs, err = s.rooms.ListRoomsByStatus(ctx, status)
	}
	if err != nil {
		return nil, storeErr(ctx, "list rooms", err)
	}

	// copy before sorting so the store's backing array is never reordered or cached by reference
	out = make([]domain.Room, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	s.cacheSet(ctx, key, out)
	return out, nil
}

func (s *QueryService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	key := roomKey(id)
	var r domain.Room
	if ok, _ := s.cache.Get(ctx, key, &r); ok {
		return r, nil
	}
	r, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, err
		}
		return domain.Room{}, storeErr(ctx, "get room", err)
	}
	s.cacheSet(ctx, key, r)
	return r, nil
}

// ListBookingsForRoom returns the room's ledger entries ordered by check-in.
func (s *QueryService) ListBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	bs, err := s.bookings.ListBookingsForRoom(ctx, roomID)
	if err != nil {
		return nil, storeErr(ctx, "list room bookings", err)
	}
	out := make([]domain.Booking, len(bs))
	copy(out, bs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Stay.CheckIn.Equal(out[j].Stay.CheckIn) {
			return out[i].Stay.CheckIn.Before(out[j].Stay.CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// invalidateRoom drops every cached view a change to room id can affect.
func invalidateRoom(ctx context.Context, c domain.Cache, id int64) {
	if c == nil {
		return
	}
	cacheDel(ctx, c, roomKey(id))
	invalidateListings(ctx, c)
}

func invalidateListings(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	cacheDel(ctx, c, allRoomsKey)
	for _, st := range []domain.RoomStatus{domain.StatusAvailable, domain.StatusUnavailable} {
		cacheDel(ctx, c, statusKey(st))
	}
}

// cacheDel logs a failed invalidation; the stale entry lives until its TTL.
func cacheDel(ctx context.Context, c domain.Cache, key string) {
	if err := c.Del(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}
