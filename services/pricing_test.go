package services

import (
	"testing"

	"bookingpro-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestOptionPrice(t *testing.T) {
	sizes := models.EncodeChoices([]models.OptionChoice{
		{Label: "Small", Price: 10},
		{Label: "Large", Price: 30},
	})

	tests := []struct {
		description string
		option      models.ServiceOption
		value       string
		expected    float64
	}{
		{"checkbox selected", models.ServiceOption{Type: models.OptionCheckbox, Price: 20}, "yes", 20},
		{"checkbox not selected", models.ServiceOption{Type: models.OptionCheckbox, Price: 20}, "no", 0},
		{"radio match", models.ServiceOption{Type: models.OptionRadio, Choices: sizes}, "Large", 30},
		{"radio no match", models.ServiceOption{Type: models.OptionRadio, Choices: sizes}, "Huge", 0},
		{"dropdown match", models.ServiceOption{Type: models.OptionDropdown, Choices: sizes}, "Small", 10},
		{"number scales by quantity", models.ServiceOption{Type: models.OptionNumber, Price: 7.5}, "4", 30},
		{"number zero quantity", models.ServiceOption{Type: models.OptionNumber, Price: 7.5}, "0", 0},
		{"number not a number", models.ServiceOption{Type: models.OptionNumber, Price: 7.5}, "many", 0},
		{"text fixed price", models.ServiceOption{Type: models.OptionText, Price: 12}, "gate code 1234", 12},
		{"text empty value", models.ServiceOption{Type: models.OptionText, Price: 12}, "", 0},
		{"text without price", models.ServiceOption{Type: models.OptionText}, "anything", 0},
	}

	for _, test := range tests {
		assert.Equalf(t, test.expected, OptionPrice(test.option, test.value), test.description)
	}
}

func TestComputeTotal(t *testing.T) {
	options := []models.ServiceOption{
		{ID: 1, Type: models.OptionCheckbox, Price: 20},
		{ID: 2, Type: models.OptionNumber, Price: 5},
		{ID: 3, Type: models.OptionText, Price: 3},
	}

	t.Run("sums base, options and location", func(t *testing.T) {
		selected := map[string]string{"1": "yes", "2": "3", "3": "note"}
		assert.Equal(t, 100.0+20+15+3-10+5, ComputeTotal(100, options, selected, -10, 5))
	})

	t.Run("ignores unselected and unknown options", func(t *testing.T) {
		selected := map[string]string{"1": "no", "99": "yes"}
		assert.Equal(t, 100.0, ComputeTotal(100, options, selected, 0, 0))
	})

	t.Run("negative total is not clamped", func(t *testing.T) {
		assert.Equal(t, -15.0, ComputeTotal(10, nil, nil, -30, 5))
	})
}
