package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bookingpro-backend/config"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler carries the collaborators every HTTP handler needs. It is built
// once in main and shared by all routes.
type Handler struct {
	DB        *gorm.DB
	Settings  *config.Settings
	Clients   *services.ClientStore
	Bookings  *services.BookingStore
	Locations *services.LocationStore
	Services  *services.ServiceStore
	Workflow  *services.BookingWorkflow
	Reports   *services.ReportService
	Reminders services.ReminderSweeper
	Logger    *slog.Logger
}

func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindPolicy:
		if errors.Is(err, services.ErrInvalidCancelCode) {
			return http.StatusForbidden
		}
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError maps a service error onto an HTTP status. Persistence details
// are logged and never returned to the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("requestId"),
			"error", err,
		)
	}
	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Field != "" && status != http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{
			"success": false,
			"error":   services.PublicMessage(err),
			"message": services.PublicMessage(err),
			"field":   svcErr.Field,
		})
		return
	}
	utils.RespondWithError(c, status, services.PublicMessage(err))
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return uint(id), true
}

// actorID is the authenticated admin, uuid.Nil for anonymous requests.
func actorID(c *gin.Context) uuid.UUID {
	v, ok := c.Get("userId")
	if !ok {
		return uuid.Nil
	}
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
