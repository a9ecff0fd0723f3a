package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"hotel_rooms/internal/domain"
)

// ---- fakes ----

// memStore is an in-memory catalog and ledger. roomsErr/bookingsErr make every read fail.
type memStore struct {
	mu          sync.Mutex
	rooms       map[int64]domain.Room
	bookings    []domain.Booking
	nextID      int64
	roomsErr    error
	bookingsErr error
	roomReads   int
	ledgerReads int
	// onListRooms runs after the rooms have been read
	onListRooms func()
}

func newMemStore(rooms ...domain.Room) *memStore {
	s := &memStore{rooms: map[int64]domain.Room{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	s.roomReads++
	if s.roomsErr != nil {
		s.mu.Unlock()
		return nil, s.roomsErr
	}
	out := make([]domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	hook := s.onListRooms
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *memStore) ListRoomsByStatus(ctx context.Context, st domain.RoomStatus) ([]domain.Room, error) {
	all, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if r.Status == st {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomReads++
	if s.roomsErr != nil {
		return domain.Room{}, s.roomsErr
	}
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *memStore) UpsertRooms(ctx context.Context, rs []domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomsErr != nil {
		return s.roomsErr
	}
	for _, r := range rs {
		s.rooms[r.ID] = r
	}
	return nil
}

func (s *memStore) UpdateRoomStatus(ctx context.Context, id int64, st domain.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = st
	s.rooms[id] = r
	return nil
}

func (s *memStore) DeleteAllRooms(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bookings) > 0 {
		return errors.New("foreign key constraint: bookings reference rooms")
	}
	s.rooms = map[int64]domain.Room{}
	return nil
}

func (s *memStore) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgerReads++
	if s.bookingsErr != nil {
		return nil, s.bookingsErr
	}
	return append([]domain.Booking(nil), s.bookings...), nil
}

func (s *memStore) ListBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	all, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, b := range all {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookingsErr != nil {
		return domain.Booking{}, s.bookingsErr
	}
	if _, ok := s.rooms[b.RoomID]; !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	for _, x := range s.bookings {
		if x.RoomID == b.RoomID && domain.Overlaps(x.Stay, b.Stay) {
			return domain.Booking{}, domain.ErrBookingConflict
		}
	}
	s.nextID++
	b.ID = s.nextID
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *memStore) DeleteAllBookings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = nil
	return nil
}

// fakeCache stores JSON so reads never alias what was written.
type fakeCache struct {
	store map[string][]byte
	gets  int
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.gets++
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type fakeCatalog struct {
	ids      []int64
	payloads map[int64]map[string]any
	err      error
}

func (f *fakeCatalog) ListRoomIDs(ctx context.Context) ([]int64, error) { return f.ids, f.err }

func (f *fakeCatalog) GetRoom(ctx context.Context, id int64) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type fakePublisher struct {
	got []domain.Booking
	err error
}

func (p *fakePublisher) BookingCreated(ctx context.Context, b domain.Booking) error {
	p.got = append(p.got, b)
	return p.err
}

func room(id int64, capacity int, st domain.RoomStatus) domain.Room {
	return domain.Room{ID: id, Name: "Room", Capacity: capacity, Price: 2500, Status: st, Amenities: []string{}}
}

// brokenCache misses on every read and fails every write.
type brokenCache struct{ err error }

func (c brokenCache) Get(ctx context.Context, key string, dst any) (bool, error)   { return false, c.err }
func (c brokenCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return c.err }
func (c brokenCache) Del(ctx context.Context, key string) error                    { return c.err }
