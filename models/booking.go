package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCanceled  BookingStatus = "canceled"
)

// BookingStatuses lists every valid status in lifecycle order.
var BookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled}

func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	ClientID  *uint `gorm:"index" json:"clientId,omitempty"`
	ServiceID uint  `gorm:"index;not null" json:"serviceId"`
	SubServices datatypes.JSONType[Selections] `json:"subServices"`

	BookingDate   time.Time `gorm:"index;not null" json:"bookingDate"`
	CustomerName  string    `gorm:"not null" json:"customerName"`
	CustomerEmail string    `gorm:"index;not null" json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
	AccessInfo    string    `gorm:"type:text" json:"accessInfo"`
	ZipCode       string    `gorm:"size:32" json:"zipCode,omitempty"`
	LocationID    *uint     `json:"locationId,omitempty"`
	Comments      string    `gorm:"type:text" json:"comments,omitempty"`

	TotalPrice float64       `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Status     BookingStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`

	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BookingNote struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	BookingID   uint   `gorm:"index;not null" json:"bookingId"`
	NoteContent string `gorm:"type:text;not null" json:"noteContent"`
	// CreatedBy is the acting admin, nil for system and customer entries.
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Selections maps option id to the raw value the customer submitted.
type Selections map[string]string
