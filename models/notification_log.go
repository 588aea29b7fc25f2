package models

import "time"

type NotificationLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BookingID    uint      `gorm:"index;not null" json:"bookingId"`
	Kind         string    `gorm:"type:varchar(20)" json:"kind"`    // created, status_update, reminder, cancellation
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // email, sms, whatsapp
	Recipient    string    `json:"recipient"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time `json:"sentAt"`
}
