package api

import (
	"errors"
	"net/http"

	"canchero/internal/db"
	"canchero/internal/metrics"
	"canchero/internal/model"
	"canchero/internal/slots"
)

// AvailabilityResponse is the response for GET /api/v1/availability.
type AvailabilityResponse struct {
	Court          *model.Court `json:"court"`
	Date           string       `json:"date"`
	AvailableSlots []slots.Slot `json:"available_slots"`
}

// handleAvailability returns the free slots for a court on a local calendar day.
// GET /api/v1/availability?court_id=...&date=YYYY-MM-DD
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	courtID := r.URL.Query().Get("court_id")
	if courtID == "" {
		writeError(w, http.StatusBadRequest, "court_id is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	localDate, err := s.tz.ParseLocalDate(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	court, err := s.store.GetCourt(r.Context(), courtID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "court not found")
			return
		}
		s.log.Error().Err(err).Str("court_id", courtID).Msg("failed to load court")
		writeError(w, http.StatusInternalServerError, "failed to load court")
		return
	}

	metrics.IncAvailabilityRequest()

	if cached, ok := s.cache.Get(r.Context(), courtID, dateStr); ok {
		writeJSON(w, http.StatusOK, AvailabilityResponse{Court: court, Date: dateStr, AvailableSlots: cached})
		return
	}

	// Storage failures fail closed: the caller sees an error, never a
	// fabricated empty day.
	free, err := s.engine.GenerateSlots(r.Context(), courtID, localDate)
	if err != nil {
		s.log.Error().Err(err).Str("court_id", courtID).Str("date", dateStr).Msg("slot generation failed")
		writeError(w, http.StatusInternalServerError, "failed to compute availability")
		return
	}

	s.cache.Set(r.Context(), courtID, dateStr, free)
	writeJSON(w, http.StatusOK, AvailabilityResponse{Court: court, Date: dateStr, AvailableSlots: free})
}

// handleCourts lists active courts.
// GET /api/v1/courts
func (s *HTTPServer) handleCourts(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("courts")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	courts, err := s.store.ListActiveCourts(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list courts")
		writeError(w, http.StatusInternalServerError, "failed to list courts")
		return
	}
	if courts == nil {
		courts = []model.Court{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"courts": courts})
}
