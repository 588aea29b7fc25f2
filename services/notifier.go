package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotifyCreated      NotificationKind = "created"
	NotifyStatusUpdate NotificationKind = "status_update"
	NotifyReminder     NotificationKind = "reminder"
	NotifyCancellation NotificationKind = "cancellation"
)

// Notifier reports delivery as a bool. Implementations never return errors
// to the caller.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, bookingID uint, extra map[string]string) bool
}

type Dispatcher struct {
	db       *gorm.DB
	bookings *BookingStore
	mailer   Mailer
	texter   Texter
	settings *config.Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher builds a dispatcher. texter may be nil, in which case no
// text messages are sent.
func NewDispatcher(db *gorm.DB, bookings *BookingStore, mailer Mailer, texter Texter, settings *config.Settings, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		db:       db,
		bookings: bookings,
		mailer:   mailer,
		texter:   texter,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *Dispatcher) Send(ctx context.Context, kind NotificationKind, bookingID uint, extra map[string]string) bool {
	booking, err := d.bookings.Get(ctx, bookingID)
	if err != nil {
		d.logger.Error("notification skipped, booking not loaded", "kind", kind, "booking_id", bookingID, "error", err)
		return false
	}
	vars := d.placeholders(booking, extra)

	switch kind {
	case NotifyCreated:
		customer := d.email(ctx, kind, booking, booking.CustomerEmail, "created_customer", vars)
		admin := false
		if d.settings.AdminEmail != "" {
			admin = d.email(ctx, kind, booking, d.settings.AdminEmail, "created_admin", vars)
		}
		d.text(ctx, kind, booking, "created_customer", vars)
		return customer || admin

	case NotifyStatusUpdate:
		if !d.settings.ShouldNotify(vars.status) {
			return false
		}
		return d.email(ctx, kind, booking, booking.CustomerEmail, "status_update", vars)

	case NotifyReminder:
		sent := d.email(ctx, kind, booking, booking.CustomerEmail, "reminder", vars)
		texted := d.text(ctx, kind, booking, "reminder", vars)
		return sent || texted

	case NotifyCancellation:
		return d.email(ctx, kind, booking, booking.CustomerEmail, "cancellation", vars)
	}

	d.logger.Warn("unknown notification kind", "kind", kind, "booking_id", bookingID)
	return false
}

type templateVars struct {
	status   string
	replacer *strings.Replacer
}

func (d *Dispatcher) placeholders(b *models.Booking, extra map[string]string) templateVars {
	status := string(b.Status)
	if s, ok := extra["status"]; ok && s != "" {
		status = s
	}
	serviceName := ""
	if b.Service != nil {
		serviceName = b.Service.Title
	}
	date := b.BookingDate.In(d.settings.Location()).Format("January 2, 2006 at 3:04 PM")

	return templateVars{
		status: status,
		replacer: strings.NewReplacer(
			"{customer_name}", b.CustomerName,
			"{service_name}", serviceName,
			"{booking_date}", date,
			"{booking_id}", strconv.FormatUint(uint64(b.ID), 10),
			"{total_price}", fmt.Sprintf("%.2f", b.TotalPrice),
			"{currency}", d.settings.Currency,
			"{status}", status,
			"{message}", extra["message"],
			"{site_name}", d.settings.SiteName,
			"{cancel_code}", utils.CancelCode(b.CustomerEmail, b.ID, d.settings.CancelCodeLength),
		),
	}
}

func (d *Dispatcher) render(name string, vars templateVars) (subject, body string) {
	tpl, ok := d.settings.Templates[name]
	if !ok {
		tpl = config.DefaultTemplates()[name]
	}
	return vars.replacer.Replace(tpl.Subject), vars.replacer.Replace(tpl.Body)
}

func (d *Dispatcher) email(ctx context.Context, kind NotificationKind, b *models.Booking, to, template string, vars templateVars) bool {
	subject, body := d.render(template, vars)
	err := d.mailer.Send(ctx, Email{To: to, Subject: subject, Body: body})
	d.record(ctx, kind, b.ID, "email", to, err)
	return err == nil
}

func (d *Dispatcher) text(ctx context.Context, kind NotificationKind, b *models.Booking, template string, vars templateVars) bool {
	if d.texter == nil || b.CustomerPhone == "" {
		return false
	}
	_, body := d.render(template, vars)
	channel, err := d.texter.Send(ctx, b.CustomerPhone, body)
	if channel == "" {
		channel = "sms"
	}
	d.record(ctx, kind, b.ID, channel, b.CustomerPhone, err)
	return err == nil
}

func (d *Dispatcher) record(ctx context.Context, kind NotificationKind, bookingID uint, channel, recipient string, sendErr error) {
	entry := models.NotificationLog{
		BookingID: bookingID,
		Kind:      string(kind),
		Channel:   channel,
		Recipient: recipient,
		Status:    "sent",
		SentAt:    d.now(),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
		d.logger.Error("notification failed", "kind", kind, "booking_id", bookingID,
			"channel", channel, "recipient", recipient, "error", sendErr)
	}
	if err := d.db.WithContext(ctx).Create(&entry).Error; err != nil {
		d.logger.Error("failed to record notification", "booking_id", bookingID, "error", err)
	}
}
