package models

import (
	"time"
)

// Payment statuses. A successful payment is never rewritten back to
// pending or failed; verification is idempotent on repeat calls.
const (
	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)

// Payment purposes, recorded in the metadata payload sent to the gateway.
const (
	PurposeAdHoc        = "adhoc"
	PurposeBooking      = "booking"
	PurposeSubscription = "subscription"
)

// Payment is one attempt at collecting money through the hosted gateway.
// Amount is in the decimal currency unit; conversion to the gateway's
// smallest unit happens at the initialize boundary only.
type Payment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BookingID  *uint      `gorm:"index" json:"booking_id"`
	Booking    *Booking   `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Reference  string     `gorm:"uniqueIndex;size:100;not null" json:"reference"`
	AccessCode string     `gorm:"size:100" json:"-"`
	Amount     float64    `gorm:"not null" json:"amount"`
	Currency   string     `gorm:"size:10" json:"currency"`
	Purpose    string     `gorm:"size:20;index" json:"purpose"` // adhoc, booking, subscription
	Status     string     `gorm:"size:20;default:pending;index" json:"status"`
	Channel    string     `gorm:"size:50" json:"channel"`
	Fees       float64    `json:"fees"`
	PaidAt     *time.Time `json:"paid_at"`
	Metadata   string     `gorm:"type:text" json:"metadata"` // JSON: purpose details, gateway response
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
