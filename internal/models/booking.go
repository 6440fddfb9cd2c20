package models

import (
	"time"
)

// Booking statuses. Transitions are monotonic: PENDING is never re-entered,
// and REJECTED, CANCELLED and COMPLETED are terminal.
const (
	BookingPending   = "PENDING"
	BookingAccepted  = "ACCEPTED"
	BookingRejected  = "REJECTED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

// Booking is the central workflow entity between a client and a musician.
// AgreedRate stays nil while PENDING and is set on acceptance.
type Booking struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ClientID    uint         `gorm:"index;not null" json:"client_id"`
	Client      *User        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	MusicianID  uint         `gorm:"index;not null" json:"musician_id"`
	Musician    *User        `gorm:"foreignKey:MusicianID" json:"musician,omitempty"`
	EventDate   time.Time    `gorm:"not null" json:"event_date"`
	EventType   string       `gorm:"size:100" json:"event_type"`
	Venue       string       `gorm:"size:300" json:"venue"`
	Notes       string       `gorm:"type:text" json:"notes"`
	OfferedRate float64      `gorm:"not null" json:"offered_rate"`
	AgreedRate  *float64     `json:"agreed_rate"`
	Status      string       `gorm:"size:20;default:PENDING;index" json:"status"`
	Instruments []Instrument `gorm:"many2many:booking_instruments;" json:"instruments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Counterparty returns the other party's user ID.
func (b *Booking) Counterparty(callerID uint) uint {
	if callerID == b.ClientID {
		return b.MusicianID
	}
	return b.ClientID
}

// IsTerminal reports whether no further transition may leave the status.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingRejected, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}
