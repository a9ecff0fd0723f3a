// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/app"
	"hotel_rooms/internal/domain"
)

type Handlers struct {
	Q        *app.QueryService
	Resolver *app.AvailabilityResolver
	Bookings *app.BookingService
	Catalog  *app.CatalogService

	validate *validator.Validate
}

func NewHandlers(q *app.QueryService, r *app.AvailabilityResolver, b *app.BookingService, c *app.CatalogService) *Handlers {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Handlers{Q: q, Resolver: r, Bookings: b, Catalog: c, validate: v}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []fieldError `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Get("/v1/rooms/{id}", h.getRoom)
	s.mux.Get("/v1/rooms/{id}/bookings", h.listRoomBookings)
	s.mux.Patch("/v1/rooms/{id}/status", h.updateRoomStatus)
	s.mux.Get("/v1/availability", h.availability)
	s.mux.Post("/v1/bookings", h.createBooking)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, fields ...fieldError) {
	w.Header().Set("Content-Type", "application/problem+json")
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: fields}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto HTTP problems.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid date", err.Error(), fieldError{Field: "check_in", Message: "dates must be YYYY-MM-DD"})
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid date range", err.Error(), fieldError{Field: "check_out", Message: "check-out must be after check-in"})
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid guest count", err.Error(), fieldError{Field: "guests", Message: "must be at least 1"})
	case errors.Is(err, domain.ErrInvalidGuestCount):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid guest count", err.Error(), fieldError{Field: "guest_count", Message: "must be at least 1"})
	case errors.Is(err, domain.ErrMissingGuestName):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid guest name", err.Error(), fieldError{Field: "guest_name", Message: "is required"})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid status", err.Error(), fieldError{Field: "status", Message: "must be AVAILABLE or UNAVAILABLE"})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrBookingConflict),
		errors.Is(err, domain.ErrRoomUnavailable),
		errors.Is(err, domain.ErrCapacityExceeded):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("store unavailable")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not check rooms right now, please retry")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// client went away or the request timed out; nothing useful to send
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("request abandoned")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "request was cancelled")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func (h *Handlers) writeValidation(w http.ResponseWriter, err error) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	fields := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "datetime":
			msg = "must be a date in YYYY-MM-DD form"
		case "min":
			msg = "must be at least " + fe.Param()
		case "gt":
			msg = "must be greater than " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		}
		fields = append(fields, fieldError{Field: fe.Field(), Message: msg})
	}
	writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", "", fields...)
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any, withETag bool) {
	etag, body := calcETagAndBody(v)
	if withETag && etag != "" {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func roomID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

// ---- rooms ----

type roomsResponse struct {
	Items []domain.Room `json:"items"`
	Count int           `json:"count"`
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	var status domain.RoomStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := domain.ParseStatus(s)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status = st
	}
	rooms, err := h.Q.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, roomsResponse{Items: rooms, Count: len(rooms)}, true)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	room, err := h.Q.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, room, true)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handlers) updateRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be a JSON object")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidation(w, err)
		return
	}
	st, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.UpdateRoomStatus(r.Context(), id, st); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Q.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, room, false)
}

// ---- bookings ----

type bookingResponse struct {
	ID         int64  `json:"id"`
	RoomID     int64  `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	GuestName  string `json:"guest_name"`
	GuestCount int    `json:"guest_count"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		RoomID:     b.RoomID,
		CheckIn:    b.Stay.CheckIn.Format(domain.DateLayout),
		CheckOut:   b.Stay.CheckOut.Format(domain.DateLayout),
		Nights:     b.Stay.Nights(),
		GuestName:  b.GuestName,
		GuestCount: b.GuestCount,
	}
}

func (h *Handlers) listRoomBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	bs, err := h.Q.ListBookingsForRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		items = append(items, toBookingResponse(b))
	}
	writeJSON(w, r, http.StatusOK, struct {
		Items []bookingResponse `json:"items"`
	}{items}, true)
}

type createBookingRequest struct {
	RoomID     int64  `json:"room_id" validate:"required,gt=0"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestName  string `json:"guest_name" validate:"required,max=255"`
	GuestCount int    `json:"guest_count" validate:"required,min=1"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be a JSON object")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		observability.ObserveBooking(err)
		h.writeValidation(w, err)
		return
	}

	b, err := h.Bookings.CreateBooking(r.Context(), app.BookingRequest{
		RoomID:     req.RoomID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		GuestName:  req.GuestName,
		GuestCount: req.GuestCount,
	})
	observability.ObserveBooking(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Int64("booking_id", b.ID).Int64("room_id", b.RoomID).Str("stay", b.Stay.String()).Msg("booking created")
	w.Header().Set("Location", "/v1/rooms/"+strconv.FormatInt(b.RoomID, 10)+"/bookings")
	writeJSON(w, r, http.StatusCreated, toBookingResponse(b), false)
}

// ---- availability ----

type availabilityQuery struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests" validate:"min=1"`
}

type availabilityResponse struct {
	CheckIn  string        `json:"check_in"`
	CheckOut string        `json:"check_out"`
	Guests   int           `json:"guests"`
	Items    []domain.Room `json:"items"`
	Count    int           `json:"count"`
	Message  string        `json:"message,omitempty"`
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := availabilityQuery{
		CheckIn:  strings.TrimSpace(qs.Get("check_in")),
		CheckOut: strings.TrimSpace(qs.Get("check_out")),
		Guests:   1,
	}
	if g := qs.Get("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil {
			writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", "",
				fieldError{Field: "guests", Message: "must be an integer"})
			return
		}
		q.Guests = n
	}
	if err := h.validate.Struct(q); err != nil {
		observability.ObserveResolution(0, domain.ErrInvalidDate)
		h.writeValidation(w, err)
		return
	}

	rooms, err := h.Resolver.ResolveAvailableRooms(r.Context(), q.CheckIn, q.CheckOut, q.Guests)
	observability.ObserveResolution(len(rooms), err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := availabilityResponse{
		CheckIn:  q.CheckIn,
		CheckOut: q.CheckOut,
		Guests:   q.Guests,
		Items:    rooms,
		Count:    len(rooms),
	}
	if len(rooms) == 0 {
		resp.Message = "no rooms match your criteria"
	}
	writeJSON(w, r, http.StatusOK, resp, false)
}
