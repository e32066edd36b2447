package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canchero/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func createTestCourt(t *testing.T, database *DB, name string) *model.Court {
	t.Helper()
	court := &model.Court{Name: name, Type: model.CourtPadel, IsActive: true}
	require.NoError(t, database.CreateCourt(context.Background(), court))
	return court
}

func utc(hour, min int) time.Time {
	return time.Date(2024, 6, 10, hour, min, 0, 0, time.UTC)
}

func TestCourtCRUD(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	court := createTestCourt(t, database, "Cancha 1")
	require.NotEmpty(t, court.ID)

	got, err := database.GetCourt(ctx, court.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancha 1", got.Name)
	assert.Equal(t, model.CourtPadel, got.Type)
	assert.True(t, got.IsActive)

	_, err = database.GetCourt(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, database.SetCourtActive(ctx, court.ID, false))
	active, err := database.ListActiveCourts(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSyncCourts(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seeds := []model.Court{
		{Name: "Cancha 1", Type: model.CourtPadel},
		{Name: "Cancha 2", Type: model.CourtFutbol},
	}
	require.NoError(t, database.SyncCourts(ctx, seeds))

	active, err := database.ListActiveCourts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	// Re-sync with a changed type updates in place, no duplicate rows.
	seeds[0].Type = model.CourtFutbol
	require.NoError(t, database.SyncCourts(ctx, seeds))

	active, err = database.ListActiveCourts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, model.CourtFutbol, active[0].Type)
}

func TestBookingCRUD(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	court := createTestCourt(t, database, "Cancha 1")

	b := &model.Booking{
		CourtID:   court.ID,
		StartTime: utc(14, 0),
		EndTime:   utc(15, 0),
	}
	require.NoError(t, database.CreateBooking(ctx, b))
	require.NotEmpty(t, b.ID)
	assert.Equal(t, model.StatusPendiente, b.Status)

	got, err := database.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(utc(14, 0)))
	assert.True(t, got.EndTime.Equal(utc(15, 0)))

	got.EndTime = utc(16, 0)
	got.Status = model.StatusSenado
	require.NoError(t, database.UpdateBooking(ctx, got))

	got, err = database.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.EndTime.Equal(utc(16, 0)))
	assert.Equal(t, model.StatusSenado, got.Status)

	require.NoError(t, database.DeleteBooking(ctx, b.ID))
	_, err = database.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingStatus_NotFound(t *testing.T) {
	database := newTestDB(t)
	err := database.UpdateBookingStatus(context.Background(), "missing", model.StatusPagado)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveBookingsInRange(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	court := createTestCourt(t, database, "Cancha 1")
	other := createTestCourt(t, database, "Cancha 2")

	insert := func(courtID, status string, start, end time.Time) *model.Booking {
		b := &model.Booking{CourtID: courtID, Status: status, StartTime: start, EndTime: end}
		require.NoError(t, database.CreateBooking(ctx, b))
		return b
	}

	inside := insert(court.ID, model.StatusPagado, utc(14, 0), utc(15, 0))
	insert(court.ID, model.StatusCancelado, utc(16, 0), utc(17, 0))
	insert(other.ID, model.StatusPagado, utc(14, 0), utc(15, 0))
	straddling := insert(court.ID, model.StatusPendiente, utc(2, 0), utc(4, 0))
	insert(court.ID, model.StatusPagado, utc(22, 0), utc(23, 30))

	// Range 03:00-20:00 picks up the inside booking and the one straddling
	// the lower bound; cancelled and other-court rows stay out.
	got, err := database.ActiveBookingsInRange(ctx, court.ID, utc(3, 0), utc(20, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order, not start-time order.
	assert.Equal(t, inside.ID, got[0].ID)
	assert.Equal(t, straddling.ID, got[1].ID)
}

func TestActiveBookingsInRange_TouchingBoundsExcluded(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	court := createTestCourt(t, database, "Cancha 1")

	b := &model.Booking{CourtID: court.ID, StartTime: utc(10, 0), EndTime: utc(11, 0)}
	require.NoError(t, database.CreateBooking(ctx, b))

	// Half-open semantics: a booking ending exactly at the range start or
	// starting exactly at the range end does not overlap.
	got, err := database.ActiveBookingsInRange(ctx, court.ID, utc(11, 0), utc(12, 0))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = database.ActiveBookingsInRange(ctx, court.ID, utc(9, 0), utc(10, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListBookingsInRange_IncludesCancelled(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	court := createTestCourt(t, database, "Cancha 1")

	b1 := &model.Booking{CourtID: court.ID, Status: model.StatusCancelado, StartTime: utc(16, 0), EndTime: utc(17, 0)}
	require.NoError(t, database.CreateBooking(ctx, b1))
	b2 := &model.Booking{CourtID: court.ID, Status: model.StatusPagado, StartTime: utc(14, 0), EndTime: utc(15, 0)}
	require.NoError(t, database.CreateBooking(ctx, b2))

	got, err := database.ListBookingsInRange(ctx, court.ID, utc(0, 0), utc(23, 59))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by start time for listings.
	assert.Equal(t, b2.ID, got[0].ID)
	assert.Equal(t, b1.ID, got[1].ID)
}

func TestClientCRUD(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	c := &model.Client{Name: "Juan Pérez", Phone: "+54 11 5555-1234"}
	require.NoError(t, database.CreateClient(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := database.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", got.Name)
	assert.Equal(t, "+54 11 5555-1234", got.Phone)

	list, err := database.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = database.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
