package app

import (
	"fmt"
	"time"

	"hotel_rooms/internal/domain"
)

// photo files in catalog order; room n gets seedPhotos[n-1]
var seedPhotos = []string{
	"1267_room-type.jpg",
	"images-2.jpeg",
	"images.jpeg",
	"luxury-room.jpg",
	"r3.jpg",
	"standard-room.jpg",
	"tipy-nomerov.jpg",
}

// SeedRooms builds the demo catalog. Every third room is UNAVAILABLE.
func SeedRooms() []domain.Room {
	now := time.Now().UTC().Truncate(time.Second)
	out := make([]domain.Room, 0, len(seedPhotos))
	for i, photo := range seedPhotos {
		n := i + 1

		capacity := 3
		switch n % 4 {
		case 0:
			capacity = 4
		case 1:
			capacity = 1
		case 2:
			capacity = 2
		}

		amenities := []string{"Wi-Fi", "TV"}
		switch n % 3 {
		case 0:
			amenities = []string{"Wi-Fi", "TV", "Air conditioning", "Minibar"}
		case 1:
			amenities = []string{"Wi-Fi", "TV", "Air conditioning"}
		}

		status := domain.StatusAvailable
		if n%3 == 0 {
			status = domain.StatusUnavailable
		}

		out = append(out, domain.Room{
			ID:          int64(n),
			Name:        fmt.Sprintf("Room %d", n),
			Description: "Comfortable room with a great view and everything you need for a pleasant stay.",
			ImageURL:    "photos/" + photo,
			Capacity:    capacity,
			Price:       2000 + float64(n)*500,
			Amenities:   amenities,
			Status:      status,
			CreatedAt:   now,
		})
	}
	return out
}

// SeedBookings: room 1 is taken 25-27 Nov and 30 Nov-2 Dec 2025, room 2 is taken 26-28 Nov 2025.
func SeedBookings() ([]domain.Booking, error) {
	raw := []struct {
		room      int64
		in, out   string
		guest     string
		guestsNum int
	}{
		{1, "2025-11-25", "2025-11-27", "Ivanov I.I.", 2},
		{2, "2025-11-26", "2025-11-28", "Petrov P.P.", 1},
		{1, "2025-11-30", "2025-12-02", "Sidorov S.S.", 2},
	}
	out := make([]domain.Booking, 0, len(raw))
	for _, r := range raw {
		stay, err := domain.NewDateRange(r.in, r.out)
		if err != nil {
			return nil, err
		}
		b, err := domain.NewBooking(r.room, stay, r.guest, r.guestsNum)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
