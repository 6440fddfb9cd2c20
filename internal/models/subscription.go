package models

import (
	"time"
)

// Subscription statuses. ACTIVE lazily becomes EXPIRED the first time the
// record is read past its end date; there is no eager sweep.
const (
	SubscriptionTrial     = "TRIAL"
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// Subscription is one-to-one with a musician profile.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"uniqueIndex;not null" json:"profile_id"`
	Status    string    `gorm:"size:20;default:ACTIVE;index" json:"status"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	AutoRenew bool      `gorm:"default:true" json:"auto_renew"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }
