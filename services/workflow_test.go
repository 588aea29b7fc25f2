package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submission(serviceID uint) SubmitInput {
	return SubmitInput{
		ServiceID: serviceID,
		Name:      "Jane Roe",
		Email:     "jane@example.com",
		Phone:     "+15550100",
		Date:      "2026-11-20",
		Time:      "10:30",
		Terms:     true,
	}
}

func TestSubmit_PricesAndPersistsBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	svc := env.createService(t, 100, OptionInput{Label: "Inside fridge", Type: models.OptionCheckbox, Price: 20})
	env.createLocation(t, "62701", -10, 5, true)

	in := submission(svc.ID)
	in.ZipCode = "62701"
	in.Options = map[string]string{strconv.FormatUint(uint64(svc.Options[0].ID), 10): "yes"}

	booking, err := env.workflow.Submit(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, 115.0, booking.TotalPrice)
	assert.Equal(t, models.StatusPending, booking.Status)
	require.NotNil(t, booking.ClientID)
	require.NotNil(t, booking.LocationID)
	assert.True(t, booking.BookingDate.Equal(time.Date(2026, 11, 20, 10, 30, 0, 0, time.UTC)))

	stored, err := env.bookings.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 115.0, stored.TotalPrice)
	assert.Equal(t, "yes", stored.SubServices.Data()[strconv.FormatUint(uint64(svc.Options[0].ID), 10)])

	var clients int64
	require.NoError(t, env.db.Model(&models.Client{}).Count(&clients).Error)
	assert.Equal(t, int64(1), clients)

	assert.Equal(t, int64(1), env.logCount(t, booking.ID, NotifyCreated))
	assert.Equal(t, 1, env.mailer.count())

	notes, err := env.bookings.Notes(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Booking created", notes[0].NoteContent)
	assert.Nil(t, notes[0].CreatedBy)
}

func TestSubmit_SameEmailReusesClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.createService(t, 100)

	first, err := env.workflow.Submit(ctx, submission(svc.ID))
	require.NoError(t, err)

	in := submission(svc.ID)
	in.Name = "Jane Smith"
	second, err := env.workflow.Submit(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, *first.ClientID, *second.ClientID)

	var clients []models.Client
	require.NoError(t, env.db.Find(&clients).Error)
	require.Len(t, clients, 1)
	assert.Equal(t, "Jane Smith", clients[0].Name)
}

func TestSubmit_RequiredFieldOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.createService(t, 50)

	tests := []struct {
		description string
		mutate      func(*SubmitInput)
		field       string
	}{
		{"everything missing", func(in *SubmitInput) { *in = SubmitInput{} }, "service"},
		{"name missing", func(in *SubmitInput) { in.Name = " " }, "name"},
		{"email missing", func(in *SubmitInput) { in.Email = "" }, "email"},
		{"date missing", func(in *SubmitInput) { in.Date = "" }, "date"},
		{"time missing", func(in *SubmitInput) { in.Time = "" }, "time"},
		{"phone missing", func(in *SubmitInput) { in.Phone = "" }, "phone"},
		{"terms not accepted", func(in *SubmitInput) { in.Terms = false }, "terms"},
		{"name and phone missing", func(in *SubmitInput) { in.Name, in.Phone = "", "" }, "name"},
	}

	for _, test := range tests {
		in := submission(svc.ID)
		test.mutate(&in)
		_, err := env.workflow.Submit(context.Background(), in)

		var svcErr *Error
		require.ErrorAsf(t, err, &svcErr, test.description)
		assert.Equalf(t, KindValidation, svcErr.Kind, test.description)
		assert.Equalf(t, test.field, svcErr.Field, test.description)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.createService(t, 50)
	env.createLocation(t, "99999", 0, 0, false)

	inactive := env.createService(t, 50)
	off := false
	_, err := env.catalog.Update(ctx, inactive.ID, ServiceUpdate{IsActive: &off})
	require.NoError(t, err)

	tests := []struct {
		description string
		mutate      func(*SubmitInput)
		expected    error
	}{
		{"bad email", func(in *SubmitInput) { in.Email = "jane@" }, ErrInvalidEmail},
		{"unknown service", func(in *SubmitInput) { in.ServiceID = 4242 }, ErrInvalidService},
		{"inactive service", func(in *SubmitInput) { in.ServiceID = inactive.ID }, ErrInvalidService},
		{"bad date", func(in *SubmitInput) { in.Date = "20/11/2026" }, ErrInvalidDate},
		{"bad time", func(in *SubmitInput) { in.Time = "half past ten" }, ErrInvalidDate},
		{"unknown zip", func(in *SubmitInput) { in.ZipCode = "00000" }, ErrLocationNotServiceable},
		{"not serviceable zip", func(in *SubmitInput) { in.ZipCode = "99999" }, ErrLocationNotServiceable},
		{"bad zip before bad date", func(in *SubmitInput) { in.ZipCode, in.Date = "00000", "someday" }, ErrLocationNotServiceable},
	}

	for _, test := range tests {
		in := submission(svc.ID)
		test.mutate(&in)
		_, err := env.workflow.Submit(ctx, in)
		assert.ErrorIsf(t, err, test.expected, test.description)
	}

	var bookings int64
	require.NoError(t, env.db.Model(&models.Booking{}).Count(&bookings).Error)
	assert.Zero(t, bookings)
	var clients int64
	require.NoError(t, env.db.Model(&models.Client{}).Count(&clients).Error)
	assert.Zero(t, clients, "a rejected submission must not leave a client behind")
}

func TestSubmit_StructuredLocation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.createService(t, 100)
	env.createLocation(t, "62701", 15, 0, true)

	in := submission(svc.ID)
	in.Location = &LocationQuery{Country: "us", City: "springfield"}
	booking, err := env.workflow.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 115.0, booking.TotalPrice)
	assert.Equal(t, "62701", booking.ZipCode)
}

func TestValidateTransition(t *testing.T) {
	allowed := map[models.BookingStatus][]models.BookingStatus{
		models.StatusPending:   {models.StatusConfirmed, models.StatusCompleted, models.StatusCanceled},
		models.StatusConfirmed: {models.StatusPending, models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted: {models.StatusConfirmed, models.StatusCanceled},
		models.StatusCanceled:  {models.StatusPending, models.StatusConfirmed},
	}

	for _, from := range models.BookingStatuses {
		for _, to := range models.BookingStatuses {
			err := ValidateTransition(from, to)
			ok := from == to
			for _, s := range allowed[from] {
				ok = ok || s == to
			}
			if ok {
				assert.NoErrorf(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIsf(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}

	assert.ErrorIs(t, ValidateTransition("pending", "archived"), ErrInvalidStatus)
}

func TestChangeStatus_RecalculatesAroundCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	spy := &spyStats{}
	env.workflow.stats = spy
	admin := uuid.New()

	booking := env.seedBooking(t, models.StatusPending, time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC))

	_, err := env.workflow.ChangeStatus(ctx, booking.ID, "confirmed", admin)
	require.NoError(t, err)
	assert.Empty(t, spy.calls, "pending -> confirmed")

	_, err = env.workflow.ChangeStatus(ctx, booking.ID, "completed", admin)
	require.NoError(t, err)
	assert.Len(t, spy.calls, 1, "confirmed -> completed")

	_, err = env.workflow.ChangeStatus(ctx, booking.ID, "confirmed", admin)
	require.NoError(t, err)
	assert.Len(t, spy.calls, 2, "completed -> confirmed")

	_, err = env.workflow.ChangeStatus(ctx, booking.ID, "canceled", admin)
	require.NoError(t, err)
	assert.Len(t, spy.calls, 2, "confirmed -> canceled")
	assert.Equal(t, *booking.ClientID, spy.calls[0])

	notes, err := env.bookings.Notes(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, notes, 4)
	assert.Equal(t, "Status changed from confirmed to canceled", notes[0].NoteContent)
	require.NotNil(t, notes[0].CreatedBy)
	assert.Equal(t, admin, *notes[0].CreatedBy)
}

func TestChangeStatus_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, models.StatusCompleted, time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC))

	_, err := env.workflow.ChangeStatus(ctx, booking.ID, "archived", uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.workflow.ChangeStatus(ctx, booking.ID, "pending", uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.workflow.ChangeStatus(ctx, 4242, "confirmed", uuid.Nil)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	same, err := env.workflow.ChangeStatus(ctx, booking.ID, "completed", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, same.Status)
	notes, err := env.bookings.Notes(ctx, booking.ID)
	require.NoError(t, err)
	assert.Empty(t, notes, "same-status change is a no-op")
}

func TestCancel_WindowBoundary(t *testing.T) {
	now := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		description string
		startsIn    time.Duration
		expected    error
	}{
		{"exactly at the window", window, nil},
		{"well outside the window", 3 * window, nil},
		{"just inside the window", window - time.Second, ErrCancellationWindow},
		{"already started", -time.Hour, ErrCancellationWindow},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			env := newTestEnv(t)
			env.settings.CancellationWindowHours = 24
			env.workflow.now = func() time.Time { return now }
			booking := env.seedBooking(t, models.StatusConfirmed, now.Add(test.startsIn))
			code := utils.CancelCode(booking.CustomerEmail, booking.ID, env.settings.CancelCodeLength)

			canceled, err := env.workflow.Cancel(context.Background(), booking.ID, code, false, uuid.Nil)
			if test.expected != nil {
				assert.ErrorIs(t, err, test.expected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusCanceled, canceled.Status)
			assert.Equal(t, int64(1), env.logCount(t, booking.ID, NotifyCancellation))
		})
	}
}

func TestCancel_CustomerRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	future := time.Now().Add(30 * 24 * time.Hour).UTC()

	pending := env.seedBooking(t, models.StatusPending, future)
	_, err := env.workflow.Cancel(ctx, pending.ID, "0000000000", false, uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidCancelCode)

	completed := env.seedBooking(t, models.StatusCompleted, future)
	code := utils.CancelCode(completed.CustomerEmail, completed.ID, 10)
	_, err = env.workflow.Cancel(ctx, completed.ID, code, false, uuid.Nil)
	assert.ErrorIs(t, err, ErrNotCancellable)

	code = utils.CancelCode(pending.CustomerEmail, pending.ID, 10)
	_, err = env.workflow.Cancel(ctx, pending.ID, code, false, uuid.Nil)
	require.NoError(t, err)
	notes, err := env.bookings.Notes(ctx, pending.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, "Booking canceled by customer", notes[0].NoteContent)
	assert.Nil(t, notes[0].CreatedBy)
}

func TestCancel_Admin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	spy := &spyStats{}
	env.workflow.stats = spy
	admin := uuid.New()

	// Admins ignore the window and the code.
	booking := env.seedBooking(t, models.StatusCompleted, time.Now().Add(time.Hour).UTC())
	_, err := env.workflow.Cancel(ctx, booking.ID, "", true, admin)
	require.NoError(t, err)
	assert.Len(t, spy.calls, 1, "leaving completed recalculates stats")

	notes, err := env.bookings.Notes(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Booking canceled by admin", notes[0].NoteContent)

	sent := env.logCount(t, booking.ID, NotifyCancellation)
	assert.Equal(t, int64(1), sent)
	again, err := env.workflow.Cancel(ctx, booking.ID, "", true, admin)
	require.NoError(t, err, "canceling twice is a no-op for admins")
	assert.Equal(t, models.StatusCanceled, again.Status)
	notes, err = env.bookings.Notes(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1, "no extra note")
	assert.Equal(t, sent, env.logCount(t, booking.ID, NotifyCancellation), "no second notification")
	assert.Len(t, spy.calls, 1)
}

func TestSendReminders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)

	due := env.seedBooking(t, models.StatusConfirmed, time.Date(2026, 11, 2, 15, 0, 0, 0, time.UTC))
	env.seedBooking(t, models.StatusPending, time.Date(2026, 11, 2, 16, 0, 0, 0, time.UTC))
	env.seedBooking(t, models.StatusConfirmed, time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC))
	env.seedBooking(t, models.StatusConfirmed, time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC))

	sent, err := env.workflow.SendReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, int64(1), env.logCount(t, due.ID, NotifyReminder))

	reminded, err := env.bookings.Get(ctx, due.ID)
	require.NoError(t, err)
	require.NotNil(t, reminded.ReminderSentAt)

	sent, err = env.workflow.SendReminders(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent, "a second sweep on the same day sends nothing")
}
