package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookingpro-backend/config"
	"bookingpro-backend/controllers"
	"bookingpro-backend/models"
	"bookingpro-backend/routes"
	"bookingpro-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	db, err := config.ConnectDB(settings.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	if err := seedAdmin(db, settings, logger); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	clients := services.NewClientStore(db)
	bookings := services.NewBookingStore(db)
	locations := services.NewLocationStore(db)
	catalog := services.NewServiceStore(db)

	var mailer services.Mailer = services.LogMailer{Logger: logger}
	if settings.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(settings)
	}
	var texter services.Texter
	if settings.Twilio.AccountSID != "" && settings.Twilio.AuthToken != "" {
		texter = services.NewTwilioTexter(settings)
	}
	dispatcher := services.NewDispatcher(db, bookings, mailer, texter, settings, logger)

	workflow := services.NewBookingWorkflow(db, clients, bookings, catalog, locations, dispatcher, settings, logger)

	scheduler := services.NewReminderScheduler(workflow, settings, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}

	handler := &controllers.Handler{
		DB:        db,
		Settings:  settings,
		Clients:   clients,
		Bookings:  bookings,
		Locations: locations,
		Services:  catalog,
		Workflow:  workflow,
		Reports:   services.NewReportService(db, bookings, settings),
		Reminders: workflow,
		Logger:    logger,
	}
	r := routes.SetupRouter(handler, settings, logger)
	printRoutes(r)

	srv := &http.Server{Addr: ":" + settings.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("server started", "port", settings.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

// seedAdmin creates the first admin from ADMIN_EMAIL and ADMIN_PASSWORD when
// the users table is empty.
func seedAdmin(db *gorm.DB, settings *config.Settings, logger *slog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || settings.AdminEmail == "" || settings.AdminPassword == "" {
		return nil
	}
	admin := models.User{
		Email:    strings.ToLower(strings.TrimSpace(settings.AdminEmail)),
		Password: settings.AdminPassword, // hashed in BeforeCreate
		Name:     "Administrator",
		Role:     "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("admin user created", "email", admin.Email)
	return nil
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
