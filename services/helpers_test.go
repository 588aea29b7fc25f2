package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bookingpro-backend/config"
	"bookingpro-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "bookings.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	return &s
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
	// failFor makes sends to these addresses fail.
	failFor map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.failFor[msg.To] {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeTexter struct {
	sent []string
}

func (f *fakeTexter) Send(_ context.Context, phone, _ string) (string, error) {
	f.sent = append(f.sent, phone)
	return "sms", nil
}

type spyStats struct {
	calls []uint
}

func (s *spyStats) RecalculateStats(_ context.Context, clientID uint) error {
	s.calls = append(s.calls, clientID)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	settings  *config.Settings
	mailer    *fakeMailer
	clients   *ClientStore
	bookings  *BookingStore
	locations *LocationStore
	catalog   *ServiceStore
	notifier  *Dispatcher
	workflow  *BookingWorkflow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:       openTestDB(t),
		settings: testSettings(),
		mailer:   &fakeMailer{},
	}
	env.clients = NewClientStore(env.db)
	env.bookings = NewBookingStore(env.db)
	env.locations = NewLocationStore(env.db)
	env.catalog = NewServiceStore(env.db)
	env.notifier = NewDispatcher(env.db, env.bookings, env.mailer, nil, env.settings, testLogger())
	env.workflow = NewBookingWorkflow(env.db, env.clients, env.bookings, env.catalog, env.locations,
		env.notifier, env.settings, testLogger())
	return env
}

func (env *testEnv) createService(t *testing.T, price float64, options ...OptionInput) *models.Service {
	t.Helper()
	svc, err := env.catalog.Create(context.Background(), ServiceInput{
		Title:   "Deep Clean",
		Price:   price,
		Options: options,
	})
	require.NoError(t, err)
	return svc
}

func (env *testEnv) createLocation(t *testing.T, zip string, adjustment, fee float64, serviceable bool) *models.LocationArea {
	t.Helper()
	loc, err := env.locations.Create(context.Background(), LocationInput{
		Country:         "US",
		City:            "Springfield",
		AreaName:        "Downtown " + zip,
		ZipCode:         zip,
		PriceAdjustment: adjustment,
		ServiceFee:      fee,
		IsServiceable:   &serviceable,
	})
	require.NoError(t, err)
	return loc
}

// seedBooking inserts a booking directly, bypassing the workflow.
func (env *testEnv) seedBooking(t *testing.T, status models.BookingStatus, at time.Time) *models.Booking {
	t.Helper()
	ctx := context.Background()
	svc := env.createService(t, 80)
	client, err := env.clients.GetOrCreate(ctx, ClientInput{Name: "Jane Roe", Email: "jane@example.com", Phone: "+15550100"})
	require.NoError(t, err)

	booking := &models.Booking{
		ClientID:      &client.ID,
		ServiceID:     svc.ID,
		BookingDate:   at,
		CustomerName:  "Jane Roe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "+15550100",
		TotalPrice:    80,
		Status:        status,
	}
	require.NoError(t, env.bookings.Create(ctx, booking))
	return booking
}

func (env *testEnv) logCount(t *testing.T, bookingID uint, kind NotificationKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.NotificationLog{}).
		Where("booking_id = ? AND kind = ?", bookingID, string(kind)).Count(&n).Error)
	return n
}
