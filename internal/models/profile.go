package models

import (
	"time"
)

// MusicianProfile is one-to-one with a MUSICIAN user. TotalGigs and
// AverageRating are derived: the booking and review flows recompute them,
// they are never authoritative on their own.
type MusicianProfile struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	StageName     string          `gorm:"size:200" json:"stage_name"`
	Bio           string          `gorm:"type:text" json:"bio"`
	Location      string          `gorm:"size:200;index" json:"location"`
	HourlyRate    float64         `json:"hourly_rate"`
	IsAvailable   bool            `gorm:"default:true" json:"is_available"`
	TotalGigs     int             `gorm:"default:0" json:"total_gigs"`
	AverageRating float64         `gorm:"default:0" json:"average_rating"`
	Instruments   []Instrument    `gorm:"many2many:profile_instruments;" json:"instruments,omitempty"`
	Genres        []Genre         `gorm:"many2many:profile_genres;" json:"genres,omitempty"`
	Portfolio     []PortfolioItem `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"portfolio,omitempty"`
	Subscription  *Subscription   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"subscription,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Instrument is seeded reference data.
type Instrument struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Genre is seeded reference data.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// PortfolioItem is a work sample attached to a musician profile.
type PortfolioItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfileID   uint      `gorm:"index;not null" json:"profile_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	URL         string    `gorm:"size:500" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MusicianProfile) TableName() string { return "musician_profiles" }
func (Instrument) TableName() string      { return "instruments" }
func (Genre) TableName() string           { return "genres" }
func (PortfolioItem) TableName() string   { return "portfolio_items" }
