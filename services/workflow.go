package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatsRecalculator refreshes a client's derived spend and visit counters.
type StatsRecalculator interface {
	RecalculateStats(ctx context.Context, clientID uint) error
}

// SubmitInput is a public booking request. Options maps option IDs to the
// raw submitted values.
type SubmitInput struct {
	ServiceID  uint              `json:"service_id" form:"service_id"`
	Name       string            `json:"name" form:"name"`
	Email      string            `json:"email" form:"email"`
	Phone      string            `json:"phone" form:"phone"`
	Date       string            `json:"date" form:"date"`
	Time       string            `json:"time" form:"time"`
	Terms      bool              `json:"terms" form:"terms"`
	Options    map[string]string `json:"options"`
	ZipCode    string            `json:"zip_code" form:"zip_code"`
	Location   *LocationQuery    `json:"location_data"`
	Comments   string            `json:"comments" form:"comments"`
	AccessInfo string            `json:"access_info" form:"access_info"`
}

type BookingWorkflow struct {
	db        *gorm.DB
	clients   *ClientStore
	bookings  *BookingStore
	services  *ServiceStore
	locations LocationResolver
	notifier  Notifier
	stats     StatsRecalculator
	settings  *config.Settings
	logger    *slog.Logger
	now       func() time.Time
}

func NewBookingWorkflow(
	db *gorm.DB,
	clients *ClientStore,
	bookings *BookingStore,
	services *ServiceStore,
	locations LocationResolver,
	notifier Notifier,
	settings *config.Settings,
	logger *slog.Logger,
) *BookingWorkflow {
	return &BookingWorkflow{
		db:        db,
		clients:   clients,
		bookings:  bookings,
		services:  services,
		locations: locations,
		notifier:  notifier,
		stats:     clients,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// ParseStatus accepts only the four booking statuses.
func ParseStatus(s string) (models.BookingStatus, error) {
	status := models.BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCompleted, models.StatusCanceled},
	models.StatusConfirmed: {models.StatusPending, models.StatusCompleted, models.StatusCanceled},
	models.StatusCompleted: {models.StatusConfirmed, models.StatusCanceled},
	models.StatusCanceled:  {models.StatusPending, models.StatusConfirmed},
}

// ValidateTransition returns ErrInvalidTransition for a move the lifecycle
// does not allow. Staying in the same status is always allowed.
func ValidateTransition(from, to models.BookingStatus) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	if from == to {
		return nil
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

func (w *BookingWorkflow) Submit(ctx context.Context, in SubmitInput) (*models.Booking, error) {
	if err := checkRequired(in); err != nil {
		return nil, err
	}
	email, ok := utils.NormEmail(in.Email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	phone := strings.TrimSpace(in.Phone)
	if !utils.ValidatePhone(phone) {
		return nil, invalidField("phone", "Please provide a valid phone number")
	}

	service, err := w.services.Get(ctx, in.ServiceID)
	if errors.Is(err, ErrServiceNotFound) || (err == nil && !service.IsActive) {
		return nil, ErrInvalidService
	}
	if err != nil {
		return nil, err
	}

	query := LocationQuery{ZipCode: in.ZipCode}
	if query.ZipCode == "" && in.Location != nil {
		query = *in.Location
	}
	pricing, err := w.locations.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	start, err := w.parseStart(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	selections := models.Selections{}
	for _, opt := range service.Options {
		key := strconv.FormatUint(uint64(opt.ID), 10)
		if v := strings.TrimSpace(in.Options[key]); v != "" {
			selections[key] = v
		}
	}
	total := ComputeTotal(service.Price, service.Options, selections, pricing.PriceAdjustment, pricing.ServiceFee)

	booking := &models.Booking{
		ServiceID:     service.ID,
		SubServices:   datatypes.NewJSONType(selections),
		BookingDate:   start,
		CustomerName:  strings.TrimSpace(in.Name),
		CustomerEmail: email,
		CustomerPhone: phone,
		AccessInfo:    in.AccessInfo,
		ZipCode:       pricing.ZipCode,
		Comments:      in.Comments,
		TotalPrice:    total,
		Status:        models.BookingStatus(w.settings.DefaultStatus),
	}
	if pricing.LocationID != 0 {
		id := pricing.LocationID
		booking.LocationID = &id
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := w.clients.WithTx(tx).GetOrCreate(ctx, ClientInput{Name: in.Name, Email: email, Phone: phone})
		if err != nil {
			return err
		}
		booking.ClientID = &client.ID
		return w.bookings.WithTx(tx).Create(ctx, booking)
	})
	if err != nil {
		w.logger.Error("booking submission failed", "email", email, "service_id", in.ServiceID, "error", err)
		return nil, err
	}

	if _, err := w.bookings.AddNote(ctx, booking.ID, "Booking created", uuid.Nil); err != nil {
		w.logger.Error("failed to add booking note", "booking_id", booking.ID, "error", err)
	}
	if booking.Status == models.StatusCompleted {
		w.recalculate(ctx, booking.ClientID)
	}
	if !w.notifier.Send(ctx, NotifyCreated, booking.ID, nil) {
		w.logger.Warn("booking confirmation not delivered", "booking_id", booking.ID)
	}

	w.logger.Info("booking created", "booking_id", booking.ID, "client_id", *booking.ClientID, "total", total)
	booking.Service = service
	return booking, nil
}

func checkRequired(in SubmitInput) error {
	switch {
	case in.ServiceID == 0:
		return MissingField("service")
	case strings.TrimSpace(in.Name) == "":
		return MissingField("name")
	case strings.TrimSpace(in.Email) == "":
		return MissingField("email")
	case strings.TrimSpace(in.Date) == "":
		return MissingField("date")
	case strings.TrimSpace(in.Time) == "":
		return MissingField("time")
	case strings.TrimSpace(in.Phone) == "":
		return MissingField("phone")
	case !in.Terms:
		return MissingField("terms")
	}
	return nil
}

func (w *BookingWorkflow) parseStart(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, w.settings.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ChangeStatus moves a booking through its lifecycle on behalf of an admin.
func (w *BookingWorkflow) ChangeStatus(ctx context.Context, bookingID uint, status string, actorID uuid.UUID) (*models.Booking, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	booking, err := w.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prev := booking.Status
	if prev == next {
		return booking, nil
	}
	if err := ValidateTransition(prev, next); err != nil {
		return nil, err
	}

	note := "Status changed from " + string(prev) + " to " + string(next)
	if err := w.writeStatus(ctx, bookingID, next, note, actorID); err != nil {
		return nil, err
	}
	if prev == models.StatusCompleted || next == models.StatusCompleted {
		w.recalculate(ctx, booking.ClientID)
	}
	w.notifier.Send(ctx, NotifyStatusUpdate, bookingID, map[string]string{"status": string(next)})

	w.logger.Info("booking status changed", "booking_id", bookingID, "from", prev, "to", next, "actor", actorID)
	booking.Status = next
	return booking, nil
}

// Cancel cancels a booking. Customers must present the booking's cancel code
// and stay outside the cancellation window. Admins may cancel in any status;
// canceling an already canceled booking changes nothing.
func (w *BookingWorkflow) Cancel(ctx context.Context, bookingID uint, code string, isAdmin bool, actorID uuid.UUID) (*models.Booking, error) {
	booking, err := w.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prev := booking.Status

	by := "admin"
	if isAdmin {
		if prev == models.StatusCanceled {
			return booking, nil
		}
	} else {
		by, actorID = "customer", uuid.Nil
		expected := utils.CancelCode(booking.CustomerEmail, booking.ID, w.settings.CancelCodeLength)
		if !strings.EqualFold(strings.TrimSpace(code), expected) {
			return nil, ErrInvalidCancelCode
		}
		if prev != models.StatusPending && prev != models.StatusConfirmed {
			return nil, ErrNotCancellable
		}
		hoursUntil := booking.BookingDate.Sub(w.now()).Hours()
		if hoursUntil < float64(w.settings.CancellationWindowHours) {
			return nil, ErrCancellationWindow
		}
	}

	if err := w.writeStatus(ctx, bookingID, models.StatusCanceled, "Booking canceled by "+by, actorID); err != nil {
		return nil, err
	}
	if prev == models.StatusCompleted {
		w.recalculate(ctx, booking.ClientID)
	}
	w.notifier.Send(ctx, NotifyCancellation, bookingID, nil)

	w.logger.Info("booking canceled", "booking_id", bookingID, "by", by)
	booking.Status = models.StatusCanceled
	return booking, nil
}

func (w *BookingWorkflow) writeStatus(ctx context.Context, bookingID uint, status models.BookingStatus, note string, actorID uuid.UUID) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := w.bookings.WithTx(tx)
		if err := store.UpdateStatus(ctx, bookingID, status); err != nil {
			return err
		}
		_, err := store.AddNote(ctx, bookingID, note, actorID)
		return err
	})
}

func (w *BookingWorkflow) recalculate(ctx context.Context, clientID *uint) {
	if clientID == nil {
		return
	}
	if err := w.stats.RecalculateStats(ctx, *clientID); err != nil {
		w.logger.Error("failed to recalculate client stats", "client_id", *clientID, "error", err)
	}
}

// SendReminders notifies confirmed bookings that start tomorrow in the
// configured timezone. Bookings already reminded are skipped, so running the
// sweep twice on one day sends nothing new.
func (w *BookingWorkflow) SendReminders(ctx context.Context, now time.Time) (int, error) {
	from, to := utils.NextDayWindow(now.In(w.settings.Location()))
	due, err := w.bookings.DueForReminder(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if !w.notifier.Send(ctx, NotifyReminder, b.ID, nil) {
			continue
		}
		if err := w.bookings.MarkReminded(ctx, b.ID, now); err != nil {
			return sent, err
		}
		sent++
	}
	w.logger.Info("reminder sweep finished", "due", len(due), "sent", sent)
	return sent, nil
}
