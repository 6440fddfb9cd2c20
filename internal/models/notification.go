package models

import (
	"time"
)

// Notification event types
const (
	NotifBookingRequest   = "booking_request"
	NotifBookingAccepted  = "booking_accepted"
	NotifBookingRejected  = "booking_rejected"
	NotifBookingCancelled = "booking_cancelled"
	NotifBookingCompleted = "booking_completed"
	NotifPaymentReceived  = "payment_received"
	NotifPaymentSettled   = "payment_settled"
)

// Notification is a fire-and-forget record of an event directed at a user.
// Metadata carries a JSON reference to the originating entity.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:50;index" json:"type"`
	Title     string    `gorm:"size:200" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
