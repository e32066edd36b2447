// Package slots computes free time slots for a court and detects conflicts
// between a proposed interval and existing active bookings.
package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canchero/internal/model"
	"canchero/internal/timezone"
)

// Default slot grid: 08:00-23:00 local, one-hour slots.
const (
	DefaultOpenHour    = 8
	DefaultCloseHour   = 23
	DefaultSlotMinutes = 60
)

// ErrInvalidInterval marks a proposed interval with end <= start. It is
// rejected before any booking query is issued.
var ErrInvalidInterval = errors.New("invalid interval")

// Slot is a free candidate reservation window. Times are UTC; DisplayTime
// is the local wall-clock start for presentation.
type Slot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DisplayTime string    `json:"display_time"`
}

// ConflictResult is the outcome of a conflict check. Booking is the first
// conflicting booking found, in storage order.
type ConflictResult struct {
	Conflict bool
	Booking  *model.Booking
	Message  string
}

// BookingSource supplies the active bookings overlapping a UTC range.
// Cancelled bookings must never be returned.
type BookingSource interface {
	ActiveBookingsInRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Booking, error)
}

// Options configures the slot grid.
type Options struct {
	OpenHour    int // first slot starts at this local hour
	CloseHour   int // last slot ends at this local hour
	SlotMinutes int
}

// Engine generates slots and checks conflicts. It holds no mutable state;
// concurrent calls are independent.
type Engine struct {
	source BookingSource
	tz     *timezone.Normalizer
	opts   Options
}

// NewEngine creates an engine. Zero option fields fall back to the defaults.
func NewEngine(source BookingSource, tz *timezone.Normalizer, opts Options) *Engine {
	if opts.OpenHour <= 0 {
		opts.OpenHour = DefaultOpenHour
	}
	if opts.CloseHour <= 0 {
		opts.CloseHour = DefaultCloseHour
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = DefaultSlotMinutes
	}
	return &Engine{source: source, tz: tz, opts: opts}
}

// GenerateSlots returns the free slots for a court on a calendar day in the
// fixed local timezone, ascending. The list is recomputed on every call.
// A booking blocks every slot it overlaps, including bookings that start
// before the operating window or are not aligned to the grid.
func (e *Engine) GenerateSlots(ctx context.Context, courtID string, localDate time.Time) ([]Slot, error) {
	dayStart, dayEnd := e.tz.DayBoundsUTC(localDate)

	bookings, err := e.source.ActiveBookingsInRange(ctx, courtID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	local := localDate.In(e.tz.Location())
	step := time.Duration(e.opts.SlotMinutes) * time.Minute

	free := make([]Slot, 0)
	for hour := e.opts.OpenHour; hour < e.opts.CloseHour; hour++ {
		slotStart := e.tz.LocalCivilToUTC(timezone.CivilTime{
			Year: local.Year(), Month: local.Month(), Day: local.Day(), Hour: hour,
		})
		slotEnd := slotStart.Add(step)

		if blocked(bookings, slotStart, slotEnd) {
			continue
		}
		free = append(free, Slot{
			StartTime:   slotStart,
			EndTime:     slotEnd,
			DisplayTime: e.tz.FormatTime(slotStart),
		})
	}
	return free, nil
}

func blocked(bookings []model.Booking, start, end time.Time) bool {
	for i := range bookings {
		if bookings[i].OverlapsWith(start, end) {
			return true
		}
	}
	return false
}

// HasConflict reports whether [start, end) overlaps an active booking for
// the court. excludeBookingID removes the booking being edited from the
// candidate set. Among several overlapping bookings the first in storage
// order wins; callers must not rely on which one.
func (e *Engine) HasConflict(ctx context.Context, courtID string, start, end time.Time, excludeBookingID string) (ConflictResult, error) {
	if !end.After(start) {
		return ConflictResult{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidInterval, e.tz.FormatTime(end), e.tz.FormatTime(start))
	}

	bookings, err := e.source.ActiveBookingsInRange(ctx, courtID, start, end)
	if err != nil {
		return ConflictResult{}, fmt.Errorf("query bookings: %w", err)
	}

	for i := range bookings {
		b := bookings[i]
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if !b.OverlapsWith(start, end) {
			continue
		}
		return ConflictResult{
			Conflict: true,
			Booking:  &b,
			Message: fmt.Sprintf("El horario se superpone con una reserva existente de %s a %s",
				e.tz.FormatTime(b.StartTime), e.tz.FormatTime(b.EndTime)),
		}, nil
	}
	return ConflictResult{}, nil
}

// Overlaps reports strict half-open overlap of [aStart, aEnd) and [bStart, bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
