package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_rooms/internal/domain"
	mysqlrepo "hotel_rooms/internal/storage/mysql"
)

var roomCols = []string{"id", "name", "description", "image_url", "capacity", "price", "amenities", "status", "created_at"}

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mysqlrepo.New(db), mock
}

func stay(t *testing.T, in, out string) domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(in, out)
	require.NoError(t, err)
	return r
}

func TestListRooms_Scan(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(1, "Room 1", "desc", "photos/r1.jpg", 1, 2500.0, []byte(`["Wi-Fi","TV"]`), "AVAILABLE", created).
			AddRow(3, "Room 3", "desc", "photos/r3.jpg", 3, 3500.0, []byte(`[]`), "UNAVAILABLE", created))

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, []string{"Wi-Fi", "TV"}, rooms[0].Amenities)
	assert.Equal(t, domain.StatusUnavailable, rooms[1].Status)
	assert.Equal(t, created, rooms[1].CreatedAt)
	assert.Empty(t, rooms[1].Amenities)
}

func TestListRooms_EmptyIsNotNil(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms")).WillReturnRows(sqlmock.NewRows(roomCols))

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestListRooms_UnknownStatusFails(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms")).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(1, "Room 1", "", "", 1, 0.0, []byte(`[]`), "MAINTENANCE", time.Now()))

	_, err := repo.ListRooms(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetRoom_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(roomCols))

	_, err := repo.GetRoom(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBookings_Scan(t *testing.T) {
	repo, mock := newMock(t)
	in := time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 11, 27, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings ORDER BY room_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "check_in", "check_out", "guest_name", "guest_count"}).
			AddRow(1, 1, in, out, "Ivanov I.I.", 2))

	bs, err := repo.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, int64(1), bs[0].RoomID)
	assert.Equal(t, 2, bs[0].Stay.Nights())
}

func TestListBookings_StoreError(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("invalid connection")
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).WillReturnError(boom)

	_, err := repo.ListBookings(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCreateBooking_Commits(t *testing.T) {
	repo, mock := newMock(t)
	b, err := domain.NewBooking(4, stay(t, "2025-11-26", "2025-11-29"), "Jane", 2)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rooms WHERE id = ? FOR UPDATE")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WithArgs(int64(4), "2025-11-29", "2025-11-26").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(int64(4), "2025-11-26", "2025-11-29", "Jane", 2).
		WillReturnResult(sqlmock.NewResult(17, 1))
	mock.ExpectCommit()

	got, err := repo.CreateBooking(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, int64(17), got.ID)
}

func TestCreateBooking_ConflictRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	b, err := domain.NewBooking(2, stay(t, "2025-11-28", "2025-11-30"), "Jane", 1)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WithArgs(int64(2), "2025-11-30", "2025-11-28").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err = repo.CreateBooking(context.Background(), b)
	assert.ErrorIs(t, err, domain.ErrBookingConflict)
}

func TestCreateBooking_UnknownRoom(t *testing.T) {
	repo, mock := newMock(t)
	b, err := domain.NewBooking(99, stay(t, "2025-12-01", "2025-12-03"), "Jane", 1)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = repo.CreateBooking(context.Background(), b)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRoomStatus_Missing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET status = ?")).
		WithArgs("AVAILABLE", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(roomCols))

	err := repo.UpdateRoomStatus(context.Background(), 5, domain.StatusAvailable)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertRooms_Transaction(t *testing.T) {
	repo, mock := newMock(t)
	rooms := []domain.Room{
		{ID: 1, Name: "Room 1", Capacity: 1, Price: 2500, Status: domain.StatusAvailable},
		{ID: 2, Name: "Room 2", Capacity: 2, Price: 3000, Amenities: []string{"TV"}, Status: domain.StatusAvailable},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(int64(1), "Room 1", "", "", 1, 2500.0, "[]", "AVAILABLE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(int64(2), "Room 2", "", "", 2, 3000.0, `["TV"]`, "AVAILABLE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertRooms(context.Background(), rooms))
}
