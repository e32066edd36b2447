package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"canchero/internal/booking"
	"canchero/internal/db"
	"canchero/internal/metrics"
	"canchero/internal/model"
	"canchero/internal/slots"
	"canchero/internal/timezone"
)

// CheckConflictRequest is the request body for POST /api/v1/bookings/check-conflict.
// Times are wall-clock in the club's timezone.
type CheckConflictRequest struct {
	CourtID          string `json:"court_id"`
	Date             string `json:"date"`       // YYYY-MM-DD
	StartTime        string `json:"start_time"` // HH:MM
	EndTime          string `json:"end_time"`   // HH:MM
	ExcludeBookingID string `json:"exclude_booking_id,omitempty"`
}

// CheckConflictResponse reports whether the window is taken. The message
// carries local times only; stored UTC bounds are never exposed.
type CheckConflictResponse struct {
	IsConflict bool   `json:"is_conflict"`
	Message    string `json:"message,omitempty"`
}

// CreateBookingRequest is the request body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	CourtID   string `json:"court_id"`
	ClientID  string `json:"client_id,omitempty"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Comment   string `json:"comment,omitempty"`
}

// UpdateBookingRequest is the request body for PATCH /api/v1/bookings/{id}.
// Omitted fields stay unchanged; changing the window requires all three
// time fields.
type UpdateBookingRequest struct {
	Date      string  `json:"date,omitempty"`
	StartTime string  `json:"start_time,omitempty"`
	EndTime   string  `json:"end_time,omitempty"`
	Status    *string `json:"status,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// handleCheckConflict validates a proposed window against existing bookings.
// POST /api/v1/bookings/check-conflict
func (s *HTTPServer) handleCheckConflict(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("check_conflict")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CheckConflictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CourtID == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		writeError(w, http.StatusBadRequest, "court_id, date, start_time and end_time are required")
		return
	}

	start, end, err := s.parseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.HasConflict(r.Context(), req.CourtID, start, end, req.ExcludeBookingID)
	if err != nil {
		if errors.Is(err, slots.ErrInvalidInterval) {
			writeError(w, http.StatusBadRequest, "end_time must be after start_time")
			return
		}
		s.log.Error().Err(err).Str("court_id", req.CourtID).Msg("conflict check failed")
		writeError(w, http.StatusInternalServerError, "failed to check conflicts")
		return
	}

	if res.Conflict {
		metrics.IncConflictDetected()
	}
	writeJSON(w, http.StatusOK, CheckConflictResponse{IsConflict: res.Conflict, Message: res.Message})
}

// handleBookings creates or lists bookings.
// POST /api/v1/bookings | GET /api/v1/bookings?court_id=...&date=YYYY-MM-DD
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	case http.MethodGet:
		s.handleListBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CourtID == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		writeError(w, http.StatusBadRequest, "court_id, date, start_time and end_time are required")
		return
	}

	start, end, err := s.parseWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.bookings.Create(r.Context(), booking.CreateRequest{
		CourtID:   req.CourtID,
		ClientID:  req.ClientID,
		StartTime: start,
		EndTime:   end,
		Comment:   req.Comment,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	s.invalidateDays(r, b)
	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_bookings")

	courtID := r.URL.Query().Get("court_id")
	dateStr := r.URL.Query().Get("date")
	if courtID == "" || dateStr == "" {
		writeError(w, http.StatusBadRequest, "court_id and date are required")
		return
	}

	localDate, err := s.tz.ParseLocalDate(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	from, to := s.tz.DayBoundsUTC(localDate)

	bookings, err := s.store.ListBookingsInRange(r.Context(), courtID, from, to)
	if err != nil {
		s.log.Error().Err(err).Str("court_id", courtID).Msg("failed to list bookings")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "date": dateStr})
}

// handleBookingByID gets, edits or cancels a single booking.
// GET|PATCH|DELETE /api/v1/bookings/{id}
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("get_booking")
		b, err := s.store.GetBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, http.StatusNotFound, "booking not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load booking")
			return
		}
		writeJSON(w, http.StatusOK, b)

	case http.MethodPatch:
		metrics.IncHTTP("update_booking")
		s.handleUpdateBooking(w, r, id)

	case http.MethodDelete:
		metrics.IncHTTP("cancel_booking")
		before, _ := s.store.GetBooking(r.Context(), id)
		if err := s.bookings.Cancel(r.Context(), id); err != nil {
			s.writeBookingError(w, err)
			return
		}
		if before != nil {
			s.invalidateDays(r, before)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := booking.UpdateRequest{Status: req.Status, Comment: req.Comment}

	hasTimes := req.Date != "" || req.StartTime != "" || req.EndTime != ""
	if hasTimes {
		if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
			writeError(w, http.StatusBadRequest, "changing the window requires date, start_time and end_time")
			return
		}
		start, end, err := s.parseWindow(req.Date, req.StartTime, req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.StartTime = &start
		upd.EndTime = &end
	}

	before, _ := s.store.GetBooking(r.Context(), id)

	b, err := s.bookings.Update(r.Context(), id, upd)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	if before != nil {
		s.invalidateDays(r, before)
	}
	s.invalidateDays(r, b)
	writeJSON(w, http.StatusOK, b)
}

// parseWindow converts a local date plus HH:MM bounds into a UTC interval.
func (s *HTTPServer) parseWindow(date, startClock, endClock string) (time.Time, time.Time, error) {
	start, err := s.tz.ParseLocalDateTime(date, startClock)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid date or start_time; expected YYYY-MM-DD and HH:MM")
	}
	end, err := s.tz.ParseLocalDateTime(date, endClock)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end_time; expected HH:MM")
	}
	return start, end, nil
}

// writeBookingError maps service errors onto HTTP statuses.
func (s *HTTPServer) writeBookingError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, CheckConflictResponse{IsConflict: true, Message: conflict.Message})
	case errors.Is(err, booking.ErrCourtNotFound), errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrCourtInactive),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, slots.ErrInvalidInterval),
		errors.Is(err, timezone.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("booking operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// invalidateDays drops cached availability for the local days a booking touches.
func (s *HTTPServer) invalidateDays(r *http.Request, b *model.Booking) {
	startDay := b.StartTime.In(s.tz.Location()).Format("2006-01-02")
	endDay := b.EndTime.In(s.tz.Location()).Format("2006-01-02")
	s.cache.Invalidate(r.Context(), b.CourtID, startDay)
	if endDay != startDay {
		s.cache.Invalidate(r.Context(), b.CourtID, endDay)
	}
}
