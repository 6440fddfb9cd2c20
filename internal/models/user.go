package models

import (
	"time"
)

// User roles
const (
	RoleClient   = "CLIENT"
	RoleMusician = "MUSICIAN"
	RoleAdmin    = "ADMIN"
)

// User represents a marketplace account. Accounts are soft-disabled via
// IsActive and hard-deleted on account deletion (the profile cascades).
type User struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Email      string           `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone      string           `gorm:"uniqueIndex;size:30;not null" json:"phone"`
	Password   string           `gorm:"size:255;not null" json:"-"`
	FullName   string           `gorm:"size:200" json:"full_name"`
	Role       string           `gorm:"size:20;default:CLIENT" json:"role"` // CLIENT, MUSICIAN, ADMIN
	IsActive   bool             `gorm:"default:true" json:"is_active"`
	IsVerified bool             `gorm:"default:false" json:"is_verified"`
	Profile    *MusicianProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	LastLogin  *time.Time       `json:"last_login"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (User) TableName() string { return "users" }
