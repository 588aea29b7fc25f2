package models

import "time"

// LocationArea is a serviceable postal area with its pricing delta.
type LocationArea struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Country  string `gorm:"size:100;index:idx_location_hierarchy,priority:1;not null" json:"country"`
	City     string `gorm:"size:100;index:idx_location_hierarchy,priority:2" json:"city"`
	AreaName string `gorm:"size:150" json:"areaName"`
	ZipCode  string `gorm:"size:32;uniqueIndex;not null" json:"zipCode"`

	PriceAdjustment float64 `gorm:"type:decimal(10,2);default:0.0" json:"priceAdjustment"`
	ServiceFee      float64 `gorm:"type:decimal(10,2);default:0.0" json:"serviceFee"`
	IsServiceable   bool    `gorm:"not null" json:"isServiceable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
