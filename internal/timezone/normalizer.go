// Package timezone maps between the club's fixed civil timezone and the
// UTC instants the database stores. All wall-clock scheduling decisions go
// through here so the result never depends on the host's local zone.
package timezone

import (
	"errors"
	"fmt"
	"time"
)

// DefaultZone is the civil timezone all bookings are made against.
const DefaultZone = "America/Argentina/Buenos_Aires"

// ErrInvalidDate marks malformed date or time input. Callers surface it as
// a validation failure; it is never coerced to "now" on a scheduling path.
var ErrInvalidDate = errors.New("invalid date")

// CivilTime is a wall-clock timestamp in the fixed zone, with no offset.
type CivilTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// Normalizer converts between the fixed civil timezone and UTC.
type Normalizer struct {
	loc *time.Location
}

// New loads the named zone. An empty name selects DefaultZone.
func New(zoneName string) (*Normalizer, error) {
	if zoneName == "" {
		zoneName = DefaultZone
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zoneName, err)
	}
	return &Normalizer{loc: loc}, nil
}

// Location returns the fixed zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ToLocalCivil projects a UTC instant onto the fixed zone's wall clock.
func (n *Normalizer) ToLocalCivil(instant time.Time) CivilTime {
	local := instant.In(n.loc)
	return CivilTime{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// LocalCivilToUTC composes civil fields as a wall-clock time in the fixed
// zone and resolves the equivalent UTC instant. Inverse of ToLocalCivil.
func (n *Normalizer) LocalCivilToUTC(c CivilTime) time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, n.loc).UTC()
}

// ParseLocalDate parses a YYYY-MM-DD calendar day as midnight in the fixed zone.
func (n *Normalizer) ParseLocalDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	return t, nil
}

// ParseLocalDateTime parses a YYYY-MM-DD date plus an HH:MM wall-clock time
// in the fixed zone and returns the UTC instant.
func (n *Normalizer) ParseLocalDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q, expected YYYY-MM-DD and HH:MM", ErrInvalidDate, date, clock)
	}
	return t.UTC(), nil
}

// DayBoundsUTC returns the UTC half-open interval [start of day, start of
// next day) for a calendar day in the fixed zone. AddDate handles days that
// are not 24 hours long under DST.
func (n *Normalizer) DayBoundsUTC(localDate time.Time) (time.Time, time.Time) {
	local := localDate.In(n.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.loc)
	return dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC()
}

// FormatDate renders an instant as dd/mm/yyyy local. Display-only: a zero
// instant renders a placeholder instead of failing.
func (n *Normalizer) FormatDate(instant time.Time) string {
	if instant.IsZero() {
		return "--/--/----"
	}
	return instant.In(n.loc).Format("02/01/2006")
}

// FormatTime renders an instant as HH:MM local (24h). Display-only.
func (n *Normalizer) FormatTime(instant time.Time) string {
	if instant.IsZero() {
		return "--:--"
	}
	return instant.In(n.loc).Format("15:04")
}
