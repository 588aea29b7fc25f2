package services

import (
	"strconv"
	"strings"

	"bookingpro-backend/models"
)

// ComputeTotal prices a booking: base price, plus every selected option,
// plus the location adjustment and fee. The result is not clamped at zero.
func ComputeTotal(basePrice float64, options []models.ServiceOption, selected map[string]string, locationAdjustment, locationFee float64) float64 {
	total := basePrice
	for _, opt := range options {
		value, ok := selected[strconv.FormatUint(uint64(opt.ID), 10)]
		if !ok {
			continue
		}
		total += OptionPrice(opt, value)
	}
	return total + locationAdjustment + locationFee
}

// OptionPrice is the contribution of a single option for a raw submitted value.
func OptionPrice(opt models.ServiceOption, value string) float64 {
	value = strings.TrimSpace(value)
	switch opt.Type {
	case models.OptionCheckbox:
		if value == "yes" {
			return opt.Price
		}
		return 0
	case models.OptionRadio, models.OptionDropdown:
		for _, choice := range opt.ChoiceList() {
			if choice.Label == value {
				return choice.Price
			}
		}
		return 0
	case models.OptionNumber:
		qty, err := strconv.Atoi(value)
		if err != nil || qty <= 0 {
			return 0
		}
		return opt.Price * float64(qty)
	default:
		if opt.Price != 0 && value != "" {
			return opt.Price
		}
		return 0
	}
}
