package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type MessageTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Settings holds every business and infrastructure option of the service.
type Settings struct {
	Port        string   `yaml:"port"`
	DatabaseURL string   `yaml:"database_url"`
	CORSOrigins []string `yaml:"cors_origins"`

	SiteName                string   `yaml:"site_name"`
	PublicURL               string   `yaml:"public_url"`
	Currency                string   `yaml:"currency"`
	Timezone                string   `yaml:"timezone"`
	DefaultStatus           string   `yaml:"default_status"`
	CancellationWindowHours int      `yaml:"cancellation_window_hours"`
	CancelCodeLength        int      `yaml:"cancel_code_length"`
	NotifyStatuses          []string `yaml:"notify_statuses"`
	ReminderCron            string   `yaml:"reminder_cron"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"-"`
	FromEmail     string `yaml:"from_email"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"-"`
	} `yaml:"smtp"`

	Twilio struct {
		AccountSID     string `yaml:"account_sid"`
		AuthToken      string `yaml:"-"`
		PhoneNumber    string `yaml:"phone_number"`
		WhatsAppNumber string `yaml:"whatsapp_number"`
	} `yaml:"twilio"`

	JWTSecret      string      `yaml:"-"`
	JWTExpiryHours int         `yaml:"jwt_expiry_hours"`
	Templates      TemplateSet `yaml:"templates"`
	location       *time.Location
}

// TemplateSet keys: created_customer, created_admin, status_update,
// reminder, cancellation.
type TemplateSet map[string]MessageTemplate

func DefaultSettings() Settings {
	s := Settings{
		Port:                    "8080",
		CORSOrigins:             []string{"http://localhost:3000"},
		SiteName:                "BookingPro",
		Currency:                "USD",
		Timezone:                "UTC",
		DefaultStatus:           "pending",
		CancellationWindowHours: 24,
		CancelCodeLength:        10,
		NotifyStatuses:          []string{"confirmed", "canceled"},
		ReminderCron:            "0 9 * * *",
		FromEmail:               "no-reply@localhost",
		JWTExpiryHours:          24,
		Templates:               DefaultTemplates(),
	}
	s.SMTP.Port = 587
	return s
}

func DefaultTemplates() TemplateSet {
	return TemplateSet{
		"created_customer": {
			Subject: "Your booking #{booking_id} with {site_name}",
			Body: "Hi {customer_name},\n\nThank you for booking {service_name} on {booking_date}.\n" +
				"Total: {total_price} {currency}\nStatus: {status}\n\n" +
				"To cancel, use booking #{booking_id} and code {cancel_code}.\n",
		},
		"created_admin": {
			Subject: "New booking #{booking_id}: {service_name}",
			Body: "New booking from {customer_name} for {service_name} on {booking_date}.\n" +
				"Total: {total_price} {currency}\n",
		},
		"status_update": {
			Subject: "Booking #{booking_id} is now {status}",
			Body:    "Hi {customer_name},\n\nYour booking for {service_name} on {booking_date} is now {status}.\n{message}\n",
		},
		"reminder": {
			Subject: "Reminder: {service_name} on {booking_date}",
			Body:    "Hi {customer_name}, this is a reminder of your {service_name} booking on {booking_date}.\n",
		},
		"cancellation": {
			Subject: "Booking #{booking_id} canceled",
			Body:    "Hi {customer_name},\n\nYour booking for {service_name} on {booking_date} has been canceled.\n{message}\n",
		},
	}
}

// LoadSettings applies defaults, then SETTINGS_FILE (YAML), then the
// environment.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	s := DefaultSettings()
	if path := os.Getenv("SETTINGS_FILE"); path != "" {
		if err := s.mergeFile(path); err != nil {
			return nil, err
		}
	}
	s.applyEnv()

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	defaults := s.Templates
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	// Templates missing from the file keep their defaults.
	for k, v := range defaults {
		if _, ok := s.Templates[k]; !ok {
			s.Templates[k] = v
		}
	}
	return nil
}

func (s *Settings) applyEnv() {
	setString(&s.Port, "PORT")
	setString(&s.DatabaseURL, "DB_URL")
	setString(&s.SiteName, "SITE_NAME")
	setString(&s.PublicURL, "PUBLIC_URL")
	setString(&s.Currency, "CURRENCY")
	setString(&s.Timezone, "TIMEZONE")
	setString(&s.DefaultStatus, "DEFAULT_BOOKING_STATUS")
	setString(&s.ReminderCron, "REMINDER_CRON")
	setString(&s.AdminEmail, "ADMIN_EMAIL")
	setString(&s.AdminPassword, "ADMIN_PASSWORD")
	setString(&s.FromEmail, "FROM_EMAIL")
	setString(&s.SMTP.Host, "SMTP_HOST")
	setString(&s.SMTP.Username, "SMTP_USERNAME")
	setString(&s.SMTP.Password, "SMTP_PASSWORD")
	setString(&s.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&s.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&s.Twilio.PhoneNumber, "TWILIO_PHONE_NUMBER")
	setString(&s.Twilio.WhatsAppNumber, "TWILIO_WHATSAPP_NUMBER")
	setString(&s.JWTSecret, "JWT_SECRET")
	setInt(&s.SMTP.Port, "SMTP_PORT")
	setInt(&s.CancellationWindowHours, "CANCELLATION_WINDOW_HOURS")
	setInt(&s.CancelCodeLength, "CANCEL_CODE_LENGTH")
	setInt(&s.JWTExpiryHours, "JWT_EXPIRY_HOURS")
	if v := os.Getenv("NOTIFY_STATUSES"); v != "" {
		s.NotifyStatuses = splitList(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		s.CORSOrigins = splitList(v)
	}
}

func (s *Settings) validate() error {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	s.location = loc
	switch s.DefaultStatus {
	case "pending", "confirmed", "completed", "canceled":
	default:
		return fmt.Errorf("invalid default booking status %q", s.DefaultStatus)
	}
	if s.CancellationWindowHours < 0 {
		return fmt.Errorf("cancellation window must not be negative")
	}
	if s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// Location is the configured timezone, UTC when unset.
func (s *Settings) Location() *time.Location {
	if s.location == nil {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			s.location = loc
		} else {
			s.location = time.UTC
		}
	}
	return s.location
}

func (s *Settings) JWTExpiry() time.Duration {
	return time.Duration(s.JWTExpiryHours) * time.Hour
}

// ShouldNotify reports whether a status change to status triggers an email.
func (s *Settings) ShouldNotify(status string) bool {
	for _, st := range s.NotifyStatuses {
		if st == status {
			return true
		}
	}
	return false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("ignoring %s=%q: %v", key, v, err)
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
