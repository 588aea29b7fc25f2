// controllers/service.go
package controllers

import (
	"net/http"

	"bookingpro-backend/models"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type publicService struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Subtitle    string                 `json:"subtitle"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Icon        string                 `json:"icon"`
	Options     []models.ServiceOption `json:"options"`
}

// ListPublicServices returns the active services in display order.
func (h *Handler) ListPublicServices(c *gin.Context) {
	list, err := h.Services.List(c.Request.Context(), true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]publicService, 0, len(list))
	for _, s := range list {
		out = append(out, publicService{
			ID:          s.ID,
			Title:       s.Title,
			Subtitle:    s.Subtitle,
			Description: s.Description,
			Price:       s.Price,
			Icon:        s.Icon,
			Options:     s.Options,
		})
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"services": out, "currency": h.Settings.Currency})
}

// CreateService creates a new service with its options
func (h *Handler) CreateService(c *gin.Context) {
	var input services.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := h.Services.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (h *Handler) GetServices(c *gin.Context) {
	list, err := h.Services.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	service, err := h.Services.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

// UpdateService replaces the option list only when options are sent.
func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.ServiceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := h.Services.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Services.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
