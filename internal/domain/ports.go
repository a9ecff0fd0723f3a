package domain

import "context"

// RoomReader is the catalog read contract the availability resolver depends on.
type RoomReader interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// BookingReader returns every committed booking, past ones included.
type BookingReader interface {
	ListBookings(ctx context.Context) ([]Booking, error)
}

type RoomCatalog interface {
	RoomReader
	ListRoomsByStatus(ctx context.Context, status RoomStatus) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	UpsertRooms(ctx context.Context, rs []Room) error
	UpdateRoomStatus(ctx context.Context, id int64, status RoomStatus) error
	DeleteAllRooms(ctx context.Context) error
}

type BookingLedger interface {
	BookingReader
	ListBookingsForRoom(ctx context.Context, roomID int64) ([]Booking, error)
	// CreateBooking commits b only if no existing booking of the same room overlaps it.
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	DeleteAllBookings(ctx context.Context) error
}

type CatalogClient interface {
	ListRoomIDs(ctx context.Context) ([]int64, error)
	GetRoom(ctx context.Context, id int64) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type EventPublisher interface {
	BookingCreated(ctx context.Context, b Booking) error
}
