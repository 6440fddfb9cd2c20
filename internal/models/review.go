package models

import (
	"time"
)

// Review is one-to-one with a completed booking. The author may edit or
// delete it within seven days of creation; every mutation recomputes the
// musician's average rating from the remaining reviews.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookingID  uint      `gorm:"uniqueIndex;not null" json:"booking_id"`
	Booking    *Booking  `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking,omitempty"`
	ClientID   uint      `gorm:"index;not null" json:"client_id"`
	MusicianID uint      `gorm:"index;not null" json:"musician_id"`
	Rating     int       `gorm:"not null" json:"rating"` // 1-5
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }
