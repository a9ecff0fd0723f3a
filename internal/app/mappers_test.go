package app

import (
	"testing"
	"time"

	"hotel_rooms/internal/domain"
)

func TestMapRoom_Aliases(t *testing.T) {
	r := mapRoom(map[string]any{
		"roomId":        "7",
		"room_name":     "  Suite ",
		"summary":       "Top floor",
		"photo":         map[string]any{"url": "https://cdn.example/7.jpg"},
		"occupancy":     map[string]any{"max": float64(4)},
		"nightly_price": "5500,50",
		"amenities":     []any{"Wi-Fi", map[string]any{"name": "TV"}, map[string]any{"label": "Sauna"}, ""},
		"state":         "unavailable",
		"createdAt":     "2025-10-01",
	})

	if r.ID != 7 || r.Name != "Suite" || r.Description != "Top floor" {
		t.Fatalf("identity fields: %+v", r)
	}
	if r.ImageURL != "https://cdn.example/7.jpg" || r.Capacity != 4 || r.Price != 5500.5 {
		t.Fatalf("numeric/nested fields: %+v", r)
	}
	if len(r.Amenities) != 3 || r.Amenities[2] != "Sauna" {
		t.Fatalf("amenities: %v", r.Amenities)
	}
	if r.Status != domain.StatusUnavailable {
		t.Fatalf("status: %s", r.Status)
	}
	if !r.CreatedAt.Equal(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at: %v", r.CreatedAt)
	}
}

func TestMapRoom_Defaults(t *testing.T) {
	r := mapRoom(map[string]any{"status": "on fire"})
	if r.Status != domain.StatusUnavailable {
		t.Fatalf("unknown status should map to UNAVAILABLE, got %s", r.Status)
	}
	if r.Amenities == nil || len(r.Amenities) != 0 {
		t.Fatalf("amenities should be empty, got %#v", r.Amenities)
	}
	if r.Capacity != 0 || r.CreatedAt.IsZero() {
		t.Fatalf("unexpected defaults: %+v", r)
	}
}
