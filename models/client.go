package models

import "time"

type Client struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	// Notes is a free-text log, newest entry first.
	Notes string `gorm:"type:text" json:"notes"`

	TotalSpent    float64    `gorm:"type:decimal(10,2);default:0.0" json:"totalSpent"`
	TotalBookings int        `gorm:"default:0" json:"totalBookings"`
	LastBookingAt *time.Time `json:"lastBookingAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
