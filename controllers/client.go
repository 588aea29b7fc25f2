package controllers

import (
	"net/http"

	"bookingpro-backend/services"
	"bookingpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateClient adds a client by hand; public submissions create clients
// through the booking workflow instead.
func (h *Handler) CreateClient(c *gin.Context) {
	var input services.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if email already exists
	if email, ok := utils.NormEmail(input.Email); ok {
		_, total, err := h.Clients.List(c.Request.Context(), services.ClientFilter{Email: email})
		if err != nil {
			h.respondError(c, err)
			return
		}
		if total > 0 {
			utils.RespondWithError(c, http.StatusConflict, "Client with this email already exists")
			return
		}
	}

	client, err := h.Clients.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) GetClients(c *gin.Context) {
	var filter services.ClientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	clients, total, err := h.Clients.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "total": total})
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	client, err := h.Clients.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	bookings, _, err := h.Bookings.List(c.Request.Context(), services.BookingFilter{ClientID: id})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "bookings": bookings})
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.ClientUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Phone != nil && *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	client, err := h.Clients.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Clients.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

func (h *Handler) AddClientNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	client, err := h.Clients.AddNote(c.Request.Context(), id, input.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
