package routes

import (
	"log/slog"
	"net/http"

	"bookingpro-backend/config"
	"bookingpro-backend/controllers"
	"bookingpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(h *controllers.Handler, settings *config.Settings, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestID())
	r.Use(config.PerformanceLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)

		auth.Use(utils.AuthMiddleware(settings.JWTSecret))
		auth.GET("/me", h.Me)
	}

	// Public booking surface
	api := r.Group("/api")
	{
		api.POST("/bookings", h.SubmitBooking)
		api.POST("/ajax/submit-booking", h.SubmitBooking)
		api.POST("/bookings/:id/cancel", utils.OptionalAuth(settings.JWTSecret), h.CancelBooking)
		api.GET("/bookings/:id/qr", h.BookingQR)
		api.GET("/services", h.ListPublicServices)
		api.POST("/validate-zip-code", h.ValidateLocation)
		api.POST("/validate-location", h.ValidateLocation)

		locations := api.Group("/locations")
		{
			locations.GET("/countries", h.GetCountries)
			locations.GET("/cities", h.GetCities)
			locations.GET("/areas", h.GetAreas)
		}
	}

	admin := r.Group("/api/admin")
	admin.Use(utils.AuthMiddleware(settings.JWTSecret), utils.RequireAdmin())
	{
		bookings := admin.Group("/bookings")
		{
			bookings.GET("", h.GetBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PUT("/:id", h.UpdateBooking)
			bookings.DELETE("/:id", h.DeleteBooking)
			bookings.PUT("/:id/status", h.UpdateBookingStatus)
			bookings.GET("/:id/notes", h.GetBookingNotes)
			bookings.POST("/:id/notes", h.AddBookingNote)
		}
		admin.POST("/update-booking-status", h.UpdateBookingStatus)

		clients := admin.Group("/clients")
		{
			clients.POST("", h.CreateClient)
			clients.GET("", h.GetClients)
			clients.GET("/:id", h.GetClient)
			clients.PUT("/:id", h.UpdateClient)
			clients.DELETE("/:id", h.DeleteClient)
			clients.POST("/:id/notes", h.AddClientNote)
		}

		services := admin.Group("/services")
		{
			services.POST("", h.CreateService)
			services.GET("", h.GetServices)
			services.GET("/:id", h.GetService)
			services.PUT("/:id", h.UpdateService)
			services.DELETE("/:id", h.DeleteService)
		}

		locations := admin.Group("/locations")
		{
			locations.POST("", h.CreateLocation)
			locations.GET("", h.GetLocations)
			locations.GET("/export", h.ExportLocations)
			locations.POST("/import", h.ImportLocations)
			locations.GET("/:id", h.GetLocation)
			locations.PUT("/:id", h.UpdateLocation)
			locations.DELETE("/:id", h.DeleteLocation)
		}

		admin.GET("/dashboard", h.GetDashboardOverview)
		admin.GET("/reports", h.GetReportAnalytics)
		admin.POST("/reminders/run", h.RunReminders)
	}

	return r
}
