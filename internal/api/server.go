// Package api exposes the booking service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"canchero/internal/booking"
	"canchero/internal/cache"
	"canchero/internal/db"
	"canchero/internal/slots"
	"canchero/internal/timezone"
)

// HTTPServer serves the booking API.
type HTTPServer struct {
	store    *db.DB
	bookings *booking.Service
	engine   *slots.Engine
	tz       *timezone.Normalizer
	cache    *cache.AvailabilityCache
	log      *zerolog.Logger

	apiKeys map[string]struct{}
	limiter *clientLimiter
	server  *http.Server
}

// Options configures the HTTP server.
type Options struct {
	Port      int
	APIKeys   []string
	RateLimit float64 // requests per second per client; 0 disables
	Burst     int
}

// NewHTTPServer wires routes and middleware.
func NewHTTPServer(store *db.DB, bookings *booking.Service, engine *slots.Engine, tz *timezone.Normalizer, availCache *cache.AvailabilityCache, log *zerolog.Logger, opts Options) *HTTPServer {
	s := &HTTPServer{
		store:    store,
		bookings: bookings,
		engine:   engine,
		tz:       tz,
		cache:    availCache,
		log:      log,
		apiKeys:  make(map[string]struct{}),
	}
	for _, k := range opts.APIKeys {
		if k != "" {
			s.apiKeys[k] = struct{}{}
		}
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.Burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/availability", s.withAuth(s.handleAvailability))
	mux.HandleFunc("/api/v1/courts", s.withAuth(s.handleCourts))
	mux.HandleFunc("/api/v1/bookings/check-conflict", s.withAuth(s.handleCheckConflict))
	mux.HandleFunc("/api/v1/bookings", s.withAuth(s.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", s.withAuth(s.handleBookingByID))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the underlying handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.log.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// withAuth checks the API key and rate limit before the handler runs.
// With no keys configured the check is disabled.
func (s *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientKey := r.Header.Get("X-Api-Key")
		if len(s.apiKeys) > 0 {
			if _, ok := s.apiKeys[clientKey]; !ok {
				writeError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		if s.limiter != nil {
			id := clientKey
			if id == "" {
				id = r.RemoteAddr
			}
			if !s.limiter.Allow(id) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
