package model

import "time"

// Court types. Type only affects display, never scheduling.
const (
	CourtPadel  = "PADEL"
	CourtFutbol = "FUTBOL"
)

// Court is a rentable court. Only active courts are offered for new bookings.
type Court struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCourtType reports whether t is a known court type.
func ValidCourtType(t string) bool {
	return t == CourtPadel || t == CourtFutbol
}
