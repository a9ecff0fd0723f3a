package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotel_rooms/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(sc scanner) (domain.Room, error) {
	var (
		r             domain.Room
		status        string
		amenitiesJSON []byte
		createdAt     sql.NullTime
	)
	if err := sc.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.ImageURL,
		&r.Capacity,
		&r.Price,
		&amenitiesJSON,
		&status,
		&createdAt,
	); err != nil {
		return domain.Room{}, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Room{}, fmt.Errorf("room %d: %w", r.ID, err)
	}
	r.Status = st
	r.Amenities = []string{}
	if len(amenitiesJSON) > 0 {
		if err := json.Unmarshal(amenitiesJSON, &r.Amenities); err != nil {
			return domain.Room{}, fmt.Errorf("room %d amenities: %w", r.ID, err)
		}
	}
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time.UTC()
	}
	return r, nil
}

func (r *Repo) queryRooms(ctx context.Context, q string, args ...any) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- catalog ----

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return r.queryRooms(ctx, listRoomsSQL)
}

func (r *Repo) ListRoomsByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	return r.queryRooms(ctx, listRoomsByStatusSQL, string(status))
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	return rm, nil
}

func (r *Repo) UpsertRooms(ctx context.Context, rs []domain.Room) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rm := range rs {
		amen := rm.Amenities
		if amen == nil {
			amen = []string{}
		}
		amenJSON, err := json.Marshal(amen)
		if err != nil {
			return err
		}
		created := rm.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, upsertRoomSQL,
			rm.ID,
			rm.Name,
			rm.Description,
			rm.ImageURL,
			rm.Capacity,
			rm.Price,
			string(amenJSON),
			string(rm.Status),
			created,
		); err != nil {
			return fmt.Errorf("upsert room %d: %w", rm.ID, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) UpdateRoomStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	res, err := r.db.ExecContext(ctx, updateRoomStatusSQL, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 for an unchanged row too; tell the two apart
		if _, err := r.GetRoom(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteAllRooms(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, deleteAllRoomsSQL)
	return err
}

// ---- ledger ----

func scanBooking(sc scanner) (domain.Booking, error) {
	var (
		b       domain.Booking
		in, out time.Time
	)
	if err := sc.Scan(&b.ID, &b.RoomID, &in, &out, &b.GuestName, &b.GuestCount); err != nil {
		return domain.Booking{}, err
	}
	stay, err := domain.DateRangeOf(in, out)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	b.Stay = stay
	return b, nil
}

func (r *Repo) queryBookings(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return r.queryBookings(ctx, listBookingsSQL)
}

func (r *Repo) ListBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	return r.queryBookings(ctx, listBookingsForRoomSQL, roomID)
}

// CreateBooking locks the room row, re-checks for an overlapping booking and inserts.
// Two concurrent requests for the same room and dates cannot both commit.
func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	if err := tx.QueryRowContext(ctx, lockRoomSQL, b.RoomID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, fmt.Errorf("room %d: %w", b.RoomID, domain.ErrNotFound)
		}
		return domain.Booking{}, err
	}

	in := b.Stay.CheckIn.Format(domain.DateLayout)
	out := b.Stay.CheckOut.Format(domain.DateLayout)

	var conflicts int
	if err := tx.QueryRowContext(ctx, countConflictsSQL, b.RoomID, out, in).Scan(&conflicts); err != nil {
		return domain.Booking{}, err
	}
	if conflicts > 0 {
		return domain.Booking{}, fmt.Errorf("room %d %s: %w", b.RoomID, b.Stay, domain.ErrBookingConflict)
	}

	res, err := tx.ExecContext(ctx, insertBookingSQL, b.RoomID, in, out, b.GuestName, b.GuestCount)
	if err != nil {
		return domain.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Booking{}, err
	}
	b.ID = id
	return b, nil
}

func (r *Repo) DeleteAllBookings(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, deleteAllBookingsSQL)
	return err
}
