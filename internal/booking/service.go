// Package booking orchestrates booking writes: validation, conflict check
// and persistence, serialized per court and day so two concurrent callers
// cannot both pass the check and double-book.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"canchero/internal/metrics"
	"canchero/internal/model"
	"canchero/internal/slots"
	"canchero/internal/timezone"
)

var (
	// ErrCourtNotFound is returned when the referenced court does not exist.
	ErrCourtNotFound = errors.New("court not found")
	// ErrCourtInactive is returned when booking an inactive court.
	ErrCourtInactive = errors.New("court is not active")
	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ConflictError reports that the requested window overlaps an existing
// booking. It carries the same message shape as a pre-check conflict.
type ConflictError struct {
	Message string
	Booking *model.Booking
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Store is the persistence surface the service needs.
type Store interface {
	GetCourt(ctx context.Context, id string) (*model.Court, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	UpdateBookingStatus(ctx context.Context, id, status string) error
}

// ConflictChecker decides whether a window overlaps active bookings.
type ConflictChecker interface {
	HasConflict(ctx context.Context, courtID string, start, end time.Time, excludeBookingID string) (slots.ConflictResult, error)
}

// Service validates and persists bookings.
type Service struct {
	store   Store
	checker ConflictChecker
	tz      *timezone.Normalizer
	log     *zerolog.Logger

	// Advisory locks keyed by court and local day. The conflict check and
	// the subsequent write happen under the same lock; without it two
	// concurrent creates can both observe "no conflict" and both persist.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a booking service.
func NewService(store Store, checker ConflictChecker, tz *timezone.Normalizer, log *zerolog.Logger) *Service {
	return &Service{
		store:   store,
		checker: checker,
		tz:      tz,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(courtID string, start time.Time) *sync.Mutex {
	key := courtID + "|" + s.tz.FormatDate(start)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// CreateRequest holds the fields for a new booking. Times are UTC instants,
// already normalized by the caller.
type CreateRequest struct {
	CourtID   string
	ClientID  string
	StartTime time.Time
	EndTime   time.Time
	Comment   string
}

// Create validates the request, checks for conflicts and persists a new
// PENDIENTE booking. On overlap it returns *ConflictError.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	court, err := s.store.GetCourt(ctx, req.CourtID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCourtNotFound, req.CourtID)
	}
	if !court.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrCourtInactive, court.Name)
	}

	lock := s.lockFor(req.CourtID, req.StartTime)
	lock.Lock()
	defer lock.Unlock()

	res, err := s.checker.HasConflict(ctx, req.CourtID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if res.Conflict {
		metrics.IncConflictDetected()
		s.log.Info().
			Str("court_id", req.CourtID).
			Str("start", s.tz.FormatTime(req.StartTime)).
			Str("end", s.tz.FormatTime(req.EndTime)).
			Msg("booking rejected: conflict")
		return nil, &ConflictError{Message: res.Message, Booking: res.Booking}
	}

	b := &model.Booking{
		CourtID:   req.CourtID,
		ClientID:  req.ClientID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Status:    model.StatusPendiente,
		Comment:   req.Comment,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated(b.Status)
	s.log.Info().
		Str("booking_id", b.ID).
		Str("court_id", b.CourtID).
		Str("date", s.tz.FormatDate(b.StartTime)).
		Str("start", s.tz.FormatTime(b.StartTime)).
		Str("end", s.tz.FormatTime(b.EndTime)).
		Msg("booking created")
	return b, nil
}

// UpdateRequest holds the mutable fields of an edit. Nil pointers leave the
// field unchanged.
type UpdateRequest struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *string
	Comment   *string
}

// Update edits a booking in place. Time changes re-run the conflict check
// excluding the booking itself; status changes follow the transition table.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}

	if req.Status != nil && *req.Status != b.Status {
		if !model.ValidStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, *req.Status)
		}
		if !model.CanTransition(b.Status, *req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, *req.Status)
		}
		b.Status = *req.Status
	}
	if req.Comment != nil {
		b.Comment = *req.Comment
	}

	timesChanged := false
	if req.StartTime != nil {
		b.StartTime = req.StartTime.UTC()
		timesChanged = true
	}
	if req.EndTime != nil {
		b.EndTime = req.EndTime.UTC()
		timesChanged = true
	}

	if timesChanged && b.IsActive() {
		lock := s.lockFor(b.CourtID, b.StartTime)
		lock.Lock()
		defer lock.Unlock()

		res, err := s.checker.HasConflict(ctx, b.CourtID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, err
		}
		if res.Conflict {
			metrics.IncConflictDetected()
			return nil, &ConflictError{Message: res.Message, Booking: res.Booking}
		}
	} else if timesChanged && !b.EndTime.After(b.StartTime) {
		return nil, fmt.Errorf("%w: end is not after start", slots.ErrInvalidInterval)
	}

	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.log.Info().Str("booking_id", b.ID).Str("status", b.Status).Msg("booking updated")
	return b, nil
}

// Cancel transitions a booking to CANCELADO, freeing its slots immediately.
func (s *Service) Cancel(ctx context.Context, id string) error {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if !model.CanTransition(b.Status, model.StatusCancelado) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, model.StatusCancelado)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, model.StatusCancelado); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	metrics.IncBookingCancelled()
	s.log.Info().Str("booking_id", id).Msg("booking cancelled")
	return nil
}
