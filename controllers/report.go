// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetReportAnalytics returns revenue, growth and top performers.
func (h *Handler) GetReportAnalytics(c *gin.Context) {
	summary, err := h.Reports.Analytics(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
