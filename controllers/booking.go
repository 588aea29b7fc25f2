// controllers/booking.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookingpro-backend/services"
	"bookingpro-backend/utils"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// submitJSON is the JSON form of a booking request. Either service or
// service_id names the service; terms may arrive as a bool or a string.
type submitJSON struct {
	Service    uint                    `json:"service"`
	ServiceID  uint                    `json:"service_id"`
	Name       string                  `json:"name"`
	Email      string                  `json:"email"`
	Phone      string                  `json:"phone"`
	Date       string                  `json:"date"`
	Time       string                  `json:"time"`
	Terms      interface{}             `json:"terms"`
	Options    map[string]interface{}  `json:"options"`
	ZipCode    string                  `json:"zip_code"`
	Location   *services.LocationQuery `json:"location_data"`
	Comments   string                  `json:"comments"`
	AccessInfo string                  `json:"access_info"`
}

type StatusInput struct {
	BookingID uint   `json:"booking_id"`
	Status    string `json:"status" binding:"required"`
}

type NoteInput struct {
	Note string `json:"note" binding:"required"`
}

type CancelInput struct {
	Code string `json:"code" form:"code"`
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "on", "yes", "true":
			return true
		}
	}
	return false
}

func bindSubmission(c *gin.Context) (services.SubmitInput, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body submitJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return services.SubmitInput{}, err
		}
		in := services.SubmitInput{
			ServiceID:  body.ServiceID,
			Name:       body.Name,
			Email:      body.Email,
			Phone:      body.Phone,
			Date:       body.Date,
			Time:       body.Time,
			Terms:      truthy(body.Terms),
			Options:    map[string]string{},
			ZipCode:    body.ZipCode,
			Location:   body.Location,
			Comments:   body.Comments,
			AccessInfo: body.AccessInfo,
		}
		if in.ServiceID == 0 {
			in.ServiceID = body.Service
		}
		for k, v := range body.Options {
			if v != nil {
				in.Options[k] = fmt.Sprint(v)
			}
		}
		return in, nil
	}

	in := services.SubmitInput{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Phone:      c.PostForm("phone"),
		Date:       c.PostForm("date"),
		Time:       c.PostForm("time"),
		Terms:      truthy(c.PostForm("terms")),
		Options:    c.PostFormMap("options"),
		ZipCode:    c.PostForm("zip_code"),
		Comments:   c.PostForm("comments"),
		AccessInfo: c.PostForm("access_info"),
	}
	service := c.PostForm("service_id")
	if service == "" {
		service = c.PostForm("service")
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(service), 10, 64); err == nil {
		in.ServiceID = uint(id)
	}
	if loc := c.PostFormMap("location_data"); len(loc) > 0 {
		in.Location = &services.LocationQuery{
			ZipCode: loc["zip_code"],
			Country: loc["country"],
			City:    loc["city"],
			Area:    loc["area"],
		}
	}
	return in, nil
}

// SubmitBooking handles the public booking form.
func (h *Handler) SubmitBooking(c *gin.Context) {
	input, err := bindSubmission(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, err := h.Workflow.Submit(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{
		"booking_id":  booking.ID,
		"total_price": booking.TotalPrice,
		"status":      booking.Status,
		"message":     "Thank you! Your booking has been received.",
	})
}

// CancelBooking cancels with the customer's code, or without one for admins.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input CancelInput
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, err := h.Workflow.Cancel(c.Request.Context(), id, input.Code, utils.IsAdmin(c), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"booking_id": booking.ID,
		"status":     booking.Status,
		"message":    "Your booking has been canceled.",
	})
}

// BookingQR renders a PNG QR code linking to the booking's cancel page.
// The cancel code doubles as the access check.
func (h *Handler) BookingQR(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	booking, err := h.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	code := c.Query("code")
	expected := utils.CancelCode(booking.CustomerEmail, booking.ID, h.Settings.CancelCodeLength)
	if code == "" || !strings.EqualFold(code, expected) {
		h.respondError(c, services.ErrInvalidCancelCode)
		return
	}

	base := strings.TrimRight(h.Settings.PublicURL, "/")
	if base == "" {
		base = "http://" + c.Request.Host
	}
	link := fmt.Sprintf("%s/bookings/%d/cancel?code=%s", base, booking.ID, expected)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		h.Logger.Error("qr encode failed", "booking_id", booking.ID, "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetBookings(c *gin.Context) {
	var filter services.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	bookings, total, err := h.Bookings.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	booking, err := h.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.BookingUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	booking, err := h.Bookings.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatus takes the booking from the path, or from booking_id in
// the body on the form-style route.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	id := input.BookingID
	if c.Param("id") != "" {
		var ok bool
		if id, ok = idParam(c); !ok {
			return
		}
	}
	if id == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "booking_id is required")
		return
	}

	booking, err := h.Workflow.ChangeStatus(c.Request.Context(), id, input.Status, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"booking_id": booking.ID,
		"status":     booking.Status,
		"message":    "Booking status updated",
	})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Bookings.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

func (h *Handler) GetBookingNotes(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := h.Bookings.Get(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	notes, err := h.Bookings.Notes(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) AddBookingNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if _, err := h.Bookings.Get(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	note, err := h.Bookings.AddNote(c.Request.Context(), id, input.Note, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
