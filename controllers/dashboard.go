package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetDashboardOverview(c *gin.Context) {
	overview, err := h.Reports.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// RunReminders triggers the reminder sweep outside the cron schedule.
func (h *Handler) RunReminders(c *gin.Context) {
	sent, err := h.Reminders.SendReminders(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
