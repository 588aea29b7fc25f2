package controllers

import (
	"errors"
	"net/http"
	"time"

	"bookingpro-backend/services"
	"bookingpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type validateLocationInput struct {
	services.LocationQuery
	ServiceID uint `json:"service_id" form:"service_id"`
}

// ValidateLocation answers both the postal-code and the country/city forms
// of the serviceability check.
func (h *Handler) ValidateLocation(c *gin.Context) {
	var input validateLocationInput
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Empty() {
		utils.RespondWithError(c, http.StatusBadRequest, "Please enter a postal code or location")
		return
	}

	pricing, err := h.Locations.Resolve(c.Request.Context(), input.LocationQuery)
	if errors.Is(err, services.ErrLocationNotServiceable) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"valid":   false,
			"message": services.PublicMessage(err),
		})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	adjusted := pricing.PriceAdjustment + pricing.ServiceFee
	if input.ServiceID != 0 {
		service, err := h.Services.Get(c.Request.Context(), input.ServiceID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		adjusted += service.Price
	}

	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"valid": true,
		"details": gin.H{
			"zip_code":         pricing.ZipCode,
			"city":             pricing.City,
			"area":             pricing.Area,
			"state":            pricing.Area,
			"country":          pricing.Country,
			"price_adjustment": pricing.PriceAdjustment,
			"service_fee":      pricing.ServiceFee,
			"adjusted_price":   adjusted,
		},
	})
}

func (h *Handler) GetCountries(c *gin.Context) {
	countries, err := h.Locations.Countries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"countries": countries})
}

func (h *Handler) GetCities(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "country is required")
		return
	}
	cities, err := h.Locations.Cities(c.Request.Context(), country)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"cities": cities})
}

func (h *Handler) GetAreas(c *gin.Context) {
	country, city := c.Query("country"), c.Query("city")
	if country == "" || city == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "country and city are required")
		return
	}
	areas, err := h.Locations.Areas(c.Request.Context(), country, city)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"areas": areas})
}

func (h *Handler) GetLocations(c *gin.Context) {
	var filter services.LocationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	locations, total, err := h.Locations.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations, "total": total})
}

func (h *Handler) GetLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	loc, err := h.Locations.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var input services.LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	loc, err := h.Locations.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input services.LocationUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	loc, err := h.Locations.Update(c.Request.Context(), id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Locations.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
}

// ImportLocations reads a CSV upload from the "file" form field.
func (h *Handler) ImportLocations(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Please upload a CSV file")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	stats, err := h.Locations.ImportCSV(c.Request.Context(), file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Logger.Info("locations imported", "imported", stats.Imported, "updated", stats.Updated,
		"failed", stats.Failed, "skipped", stats.Skipped)
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"imported": stats.Imported,
		"updated":  stats.Updated,
		"failed":   stats.Failed,
		"skipped":  stats.Skipped,
		"errors":   stats.Errors,
	})
}

func (h *Handler) ExportLocations(c *gin.Context) {
	filename := "locations-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := h.Locations.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("location export failed", "error", err)
	}
}
