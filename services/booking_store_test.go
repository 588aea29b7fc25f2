package services

import (
	"context"
	"testing"
	"time"

	"bookingpro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStore_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	day := time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC)

	a := env.seedBooking(t, models.StatusPending, day)
	env.seedBooking(t, models.StatusConfirmed, day.AddDate(0, 0, 1))
	env.seedBooking(t, models.StatusConfirmed, day.AddDate(0, 0, 5))

	all, total, err := env.bookings.List(ctx, BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.True(t, all[0].BookingDate.After(all[2].BookingDate), "newest booking first by default")

	confirmed, total, err := env.bookings.List(ctx, BookingFilter{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, confirmed, 2)

	ranged, _, err := env.bookings.List(ctx, BookingFilter{From: day, To: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	paged, total, err := env.bookings.List(ctx, BookingFilter{ListParams: ListParams{Limit: 1, OrderBy: "id", Order: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	assert.Equal(t, a.ID, paged[0].ID)

	_, _, err = env.bookings.List(ctx, BookingFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBookingStore_UpdateAndCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, models.StatusConfirmed, time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, env.bookings.MarkReminded(ctx, booking.ID, time.Now()))

	moved := time.Date(2026, 11, 12, 14, 0, 0, 0, time.UTC)
	comment := "ring twice"
	updated, err := env.bookings.Update(ctx, booking.ID, BookingUpdate{BookingDate: &moved, Comments: &comment})
	require.NoError(t, err)
	assert.True(t, updated.BookingDate.Equal(moved))
	assert.Equal(t, "ring twice", updated.Comments)
	assert.Nil(t, updated.ReminderSentAt, "moving a booking re-arms its reminder")

	bad := "nope"
	_, err = env.bookings.Update(ctx, booking.ID, BookingUpdate{CustomerEmail: &bad})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	counts, err := env.bookings.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusConfirmed])
	assert.Equal(t, int64(0), counts[models.StatusCanceled])

	require.NoError(t, env.bookings.Delete(ctx, booking.ID))
	assert.ErrorIs(t, env.bookings.Delete(ctx, booking.ID), ErrBookingNotFound)
}
