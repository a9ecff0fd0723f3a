package domain

import (
	"fmt"
	"strings"
	"time"
)

type RoomStatus string

const (
	StatusAvailable   RoomStatus = "AVAILABLE"
	StatusUnavailable RoomStatus = "UNAVAILABLE"
)

// ParseStatus accepts the canonical names case-insensitively.
func ParseStatus(s string) (RoomStatus, error) {
	switch RoomStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusUnavailable:
		return StatusUnavailable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s RoomStatus) Valid() bool { return s == StatusAvailable || s == StatusUnavailable }

type Room struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	Capacity    int        `json:"capacity"`
	Price       float64    `json:"price"` // per night
	Amenities   []string   `json:"amenities"`
	Status      RoomStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks the catalog invariants a room must hold before it is stored.
func (r Room) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("room id must be positive, got %d", r.ID)
	}
	if r.Capacity < 1 {
		return fmt.Errorf("%w: room %d has capacity %d", ErrInvalidCapacity, r.ID, r.Capacity)
	}
	if r.Price < 0 {
		return fmt.Errorf("room %d has negative price", r.ID)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	return nil
}
