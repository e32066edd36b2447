package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestBooking_Duration(t *testing.T) {
	b := Booking{
		StartTime: datetime(2026, 1, 15, 18, 0),
		EndTime:   datetime(2026, 1, 15, 19, 30),
	}
	assert.Equal(t, 90*time.Minute, b.Duration())
}

func TestBooking_SlotCount(t *testing.T) {
	aligned := Booking{
		StartTime: datetime(2026, 1, 15, 18, 0),
		EndTime:   datetime(2026, 1, 15, 20, 0),
	}
	assert.Equal(t, 2, aligned.SlotCount(time.Hour))

	partial := Booking{
		StartTime: datetime(2026, 1, 15, 18, 30),
		EndTime:   datetime(2026, 1, 15, 19, 30),
	}
	assert.Equal(t, 1, partial.SlotCount(time.Hour))
	assert.Equal(t, 2, partial.SlotCount(45*time.Minute))
	assert.Equal(t, 0, partial.SlotCount(0))
}

func TestBooking_IsActive(t *testing.T) {
	for _, status := range []string{StatusPendiente, StatusSenado, StatusPagado} {
		b := Booking{Status: status}
		assert.True(t, b.IsActive(), status)
	}
	cancelled := Booking{Status: StatusCancelado}
	assert.False(t, cancelled.IsActive())
}

func TestBooking_OverlapsWith(t *testing.T) {
	existing := Booking{
		StartTime: datetime(2026, 1, 15, 10, 0),
		EndTime:   datetime(2026, 1, 15, 11, 0),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"before", datetime(2026, 1, 15, 8, 0), datetime(2026, 1, 15, 9, 0), false},
		{"touching start", datetime(2026, 1, 15, 9, 0), datetime(2026, 1, 15, 10, 0), false},
		{"touching end", datetime(2026, 1, 15, 11, 0), datetime(2026, 1, 15, 12, 0), false},
		{"partial overlap", datetime(2026, 1, 15, 10, 30), datetime(2026, 1, 15, 11, 30), true},
		{"contained", datetime(2026, 1, 15, 10, 15), datetime(2026, 1, 15, 10, 45), true},
		{"containing", datetime(2026, 1, 15, 9, 0), datetime(2026, 1, 15, 13, 0), true},
		{"exact match", datetime(2026, 1, 15, 10, 0), datetime(2026, 1, 15, 11, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.OverlapsWith(tt.start, tt.end))
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPendiente, StatusSenado, true},
		{StatusPendiente, StatusPagado, true},
		{StatusPendiente, StatusCancelado, true},
		{StatusSenado, StatusPagado, true},
		{StatusSenado, StatusCancelado, true},
		{StatusPagado, StatusCancelado, true},
		{StatusSenado, StatusPendiente, false},
		{StatusPagado, StatusPendiente, false},
		{StatusPagado, StatusSenado, false},
		{StatusCancelado, StatusPendiente, false},
		{StatusCancelado, StatusCancelado, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPendiente))
	assert.True(t, ValidStatus(StatusCancelado))
	assert.False(t, ValidStatus("CONFIRMADO"))
	assert.False(t, ValidStatus(""))
}

func TestValidCourtType(t *testing.T) {
	assert.True(t, ValidCourtType(CourtPadel))
	assert.True(t, ValidCourtType(CourtFutbol))
	assert.False(t, ValidCourtType("TENIS"))
}
