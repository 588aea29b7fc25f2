package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Service struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Title           string  `gorm:"not null" json:"title"`
	Subtitle        string  `json:"subtitle"`
	Description     string  `gorm:"type:text" json:"description"`
	Price           float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Icon            string  `json:"icon"`
	DurationMinutes int     `json:"durationMinutes"`
	SortOrder       int     `gorm:"default:0" json:"sortOrder"`
	IsActive        bool    `gorm:"default:true" json:"isActive"`

	Options []ServiceOption `gorm:"foreignKey:ServiceID" json:"options"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OptionType string

const (
	OptionCheckbox OptionType = "checkbox"
	OptionRadio    OptionType = "radio"
	OptionDropdown OptionType = "dropdown"
	OptionNumber   OptionType = "number"
	OptionText     OptionType = "text"
)

// ServiceOption is a per-booking add-on. Price is the fixed price for
// checkbox/text options and the unit price for number options; radio and
// dropdown options price each entry of Choices.
type ServiceOption struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ServiceID uint           `gorm:"index;not null" json:"serviceId"`
	Label     string         `gorm:"not null" json:"label"`
	Type      OptionType     `gorm:"type:varchar(20);not null" json:"type"`
	Price     float64        `gorm:"type:decimal(10,2);default:0.0" json:"price"`
	Choices   datatypes.JSON `json:"choices,omitempty"`
	SortOrder int            `gorm:"default:0" json:"sortOrder"`
}

type OptionChoice struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// ChoiceList decodes Choices; malformed JSON yields no choices.
func (o ServiceOption) ChoiceList() []OptionChoice {
	if len(o.Choices) == 0 {
		return nil
	}
	var out []OptionChoice
	if err := json.Unmarshal(o.Choices, &out); err != nil {
		return nil
	}
	return out
}

func EncodeChoices(choices []OptionChoice) datatypes.JSON {
	if len(choices) == 0 {
		return nil
	}
	b, _ := json.Marshal(choices)
	return datatypes.JSON(b)
}
