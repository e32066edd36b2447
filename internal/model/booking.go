package model

import "time"

// Booking statuses. Only CANCELADO frees the court.
const (
	StatusPendiente = "PENDIENTE"
	StatusSenado    = "SEÑADO"
	StatusPagado    = "PAGADO"
	StatusCancelado = "CANCELADO"
)

// Booking is a court reservation. StartTime and EndTime are stored in UTC.
type Booking struct {
	ID        string    `json:"id"`
	CourtID   string    `json:"court_id"`
	ClientID  string    `json:"client_id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the booking occupies its court.
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelado
}

// Duration returns the booked time span.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// SlotCount reports how many slots of the given length are needed to cover
// the booking's duration, rounding partial slots up.
func (b *Booking) SlotCount(slot time.Duration) int {
	if slot <= 0 {
		return 0
	}
	d := b.Duration()
	n := int(d / slot)
	if d%slot != 0 {
		n++
	}
	return n
}

// OverlapsWith reports strict half-open overlap with [start, end).
// Touching endpoints do not overlap.
func (b *Booking) OverlapsWith(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendiente, StatusSenado, StatusPagado, StatusCancelado:
		return true
	}
	return false
}

// statusTransitions lists the allowed status changes. Payment moves
// forward only; any active booking can be cancelled.
var statusTransitions = map[string][]string{
	StatusPendiente: {StatusSenado, StatusPagado, StatusCancelado},
	StatusSenado:    {StatusPagado, StatusCancelado},
	StatusPagado:    {StatusCancelado},
	StatusCancelado: {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
