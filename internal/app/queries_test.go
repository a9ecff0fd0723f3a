package app_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/app"
	"hotel_rooms/internal/domain"
)

func TestListByStatus_CacheMissThenHit(t *testing.T) {
	s := seededStore(t)
	cache := &fakeCache{}
	q := app.NewQueryService(s, s, cache, 10*time.Minute)
	ctx := context.Background()

	first, err := q.ListByStatus(ctx, domain.StatusAvailable)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if want := []int64{1, 2, 4, 5, 7}; !reflect.DeepEqual(ids(first), want) {
		t.Fatalf("got %v, want %v", ids(first), want)
	}
	reads := s.roomReads

	second, err := q.ListByStatus(ctx, domain.StatusAvailable)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if s.roomReads != reads {
		t.Fatalf("second call should be served from cache")
	}
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("cache returned %v", ids(second))
	}
}

func TestListByStatus_AllAndInvalid(t *testing.T) {
	s := seededStore(t)
	q := app.NewQueryService(s, s, &fakeCache{}, time.Minute)

	all, err := q.ListByStatus(context.Background(), "")
	if err != nil || len(all) != 7 {
		t.Fatalf("all rooms: %d %v", len(all), err)
	}
	if _, err := q.ListByStatus(context.Background(), "BROKEN"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("got %v", err)
	}
}

func TestGetRoom_NotFoundAndStoreError(t *testing.T) {
	s := seededStore(t)
	q := app.NewQueryService(s, s, &fakeCache{}, time.Minute)

	if _, err := q.GetRoom(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	s.roomsErr = errors.New("i/o timeout")
	_, err := q.GetRoom(context.Background(), 1)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("got %v", err)
	}
}

func TestListBookingsForRoom_OrderedByCheckIn(t *testing.T) {
	s := seededStore(t)
	q := app.NewQueryService(s, s, &fakeCache{}, time.Minute)

	bs, err := q.ListBookingsForRoom(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(bs) != 2 {
		t.Fatalf("want 2 bookings, got %d", len(bs))
	}
	if !bs[0].Stay.CheckIn.Before(bs[1].Stay.CheckIn) {
		t.Fatalf("not ordered: %v then %v", bs[0].Stay, bs[1].Stay)
	}

	if _, err := q.ListBookingsForRoom(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestCacheFailuresAreLoggedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	s := seededStore(t)
	cache := brokenCache{err: errors.New("redis: connection refused")}
	q := app.NewQueryService(s, s, cache, time.Minute)
	ctx := context.Background()

	if _, err := q.GetRoom(ctx, 1); err != nil {
		t.Fatalf("read should fall through to the store: %v", err)
	}
	if err := app.NewCatalogService(nil, s, s, cache).UpdateRoomStatus(ctx, 1, domain.StatusUnavailable); err != nil {
		t.Fatalf("status update should not fail on cache errors: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"key":"room:1"`) || !strings.Contains(out, "cache set failed") {
		t.Fatalf("failed cache write not logged: %s", out)
	}
	if !strings.Contains(out, "cache invalidation failed") || !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("failed invalidation not logged at warn: %s", out)
	}
}
