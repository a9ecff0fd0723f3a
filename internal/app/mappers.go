package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/domain"
)

/********** alias registry (single source of truth) **********/

var roomAliases = map[string][]string{
	"id":          {"id", "room_id", "roomId"},
	"name":        {"name", "title", "room_name"},
	"description": {"description", "details", "summary"},
	"image":       {"image_url", "imageUrl", "image", "photo", "photo.url"},
	"capacity":    {"capacity", "max_occupancy", "maxOccupancy", "guests", "occupancy.max"},
	"price":       {"price", "nightly_price", "price_per_night", "rate", "price.amount"},
	"amenities":   {"amenities", "facilities", "features"},
	"status":      {"status", "state", "availability"},
	"created_at":  {"created_at", "createdAt", "created"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString: first non-empty string for a named alias set.
func firstString(m map[string]any, key string) string {
	for _, p := range roomAliases[key] {
		if s, ok := lookupAny(m, p).(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "2500,50").
func firstFloat(m map[string]any, key string) *float64 {
	for _, p := range roomAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstStrings accepts a JSON array of strings or {name|label} objects,
// or a single comma separated string.
func firstStrings(m map[string]any, key string) []string {
	for _, p := range roomAliases[key] {
		switch raw := lookupAny(m, p).(type) {
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t = strings.TrimSpace(t); t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
					if n, ok := t["label"].(string); ok && n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			var out []string
			for _, part := range strings.Split(raw, ",") {
				if t := strings.TrimSpace(part); t != "" {
					out = append(out, t)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** room mapper **********/

// mapRoom converts a remote catalog payload into a Room. Missing capacity maps to 0
// and missing status to UNAVAILABLE, so Validate rejects or hides incomplete rooms.
func mapRoom(p map[string]any) domain.Room {
	var r domain.Room
	if f := firstFloat(p, "id"); f != nil {
		r.ID = int64(*f)
	}
	r.Name = firstString(p, "name")
	r.Description = firstString(p, "description")
	r.ImageURL = firstString(p, "image")
	if f := firstFloat(p, "capacity"); f != nil {
		r.Capacity = int(*f)
	}
	if f := firstFloat(p, "price"); f != nil {
		r.Price = *f
	}
	r.Amenities = firstStrings(p, "amenities")
	if r.Amenities == nil {
		r.Amenities = []string{}
	}

	r.Status = domain.StatusUnavailable
	if s := firstString(p, "status"); s != "" {
		if st, err := domain.ParseStatus(s); err == nil {
			r.Status = st
		} else {
			log.Warn().Str("context", "mapRoom").Str("status", s).Msg("unknown room status; treating as UNAVAILABLE")
		}
	}

	r.CreatedAt = time.Now().UTC().Truncate(time.Second)
	if s := firstString(p, "created_at"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			r.CreatedAt = t.UTC()
		} else if t, err := time.Parse(domain.DateLayout, s); err == nil {
			r.CreatedAt = t
		}
	}
	return r
}
