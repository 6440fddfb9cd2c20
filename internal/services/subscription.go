package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/response"
)

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// now is swappable in tests.
var now = time.Now

type CreateSubscriptionRequest struct {
	DurationMonths int     `json:"duration_months" binding:"required,min=1,max=24"`
	Amount         float64 `json:"amount" binding:"omitempty,gte=0"`
	AutoRenew      *bool   `json:"auto_renew"`
}

// Create starts a subscription window for the caller's musician profile.
// Rejected while an ACTIVE subscription exists.
func (s *SubscriptionService) Create(userID uint, req *CreateSubscriptionRequest) (*models.Subscription, error) {
	profile, err := s.profileOf(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.currentFor(profile.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.SubscriptionActive {
		return nil, response.NewConflict("an active subscription already exists")
	}

	start := now()
	sub := &models.Subscription{
		ProfileID: profile.ID,
		Status:    models.SubscriptionActive,
		StartDate: start,
		EndDate:   start.AddDate(0, req.DurationMonths, 0),
		Amount:    req.Amount,
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	} else {
		sub.AutoRenew = true
	}

	if existing != nil {
		// One subscription row per profile: reuse the expired/cancelled row.
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		if err := s.db.Save(sub).Error; err != nil {
			return nil, err
		}
		return sub, nil
	}

	if err := s.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

type RenewSubscriptionRequest struct {
	DurationMonths int `json:"duration_months" binding:"required,min=1,max=24"`
}

// Renew extends the window from max(now, endDate): renewing early appends
// to the remaining time, renewing after expiry restarts from now. The
// status is reset to ACTIVE either way.
func (s *SubscriptionService) Renew(userID uint, req *RenewSubscriptionRequest) (*models.Subscription, error) {
	profile, err := s.profileOf(userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.currentFor(profile.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, response.NewNotFound("subscription not found")
	}

	base := now()
	if sub.EndDate.After(base) {
		base = sub.EndDate
	}

	updates := map[string]interface{}{
		"status":   models.SubscriptionActive,
		"end_date": base.AddDate(0, req.DurationMonths, 0),
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(sub, sub.ID)
	return sub, nil
}

// Cancel marks the subscription CANCELLED and turns off auto-renew.
// The existing window is untouched: access continues until end date.
func (s *SubscriptionService) Cancel(userID uint) (*models.Subscription, error) {
	profile, err := s.profileOf(userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.currentFor(profile.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, response.NewNotFound("subscription not found")
	}

	updates := map[string]interface{}{
		"status":     models.SubscriptionCancelled,
		"auto_renew": false,
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(sub, sub.ID)
	return sub, nil
}

// Status returns the caller's subscription, lazily expiring it when the
// window has passed. Expiration is only ever discovered on read.
func (s *SubscriptionService) Status(userID uint) (*models.Subscription, error) {
	profile, err := s.profileOf(userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.currentFor(profile.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, response.NewNotFound("subscription not found")
	}
	return sub, nil
}

// currentFor loads the profile's subscription and applies lazy expiry:
// an ACTIVE (or TRIAL) subscription past its end date is rewritten to
// EXPIRED before being returned.
func (s *SubscriptionService) currentFor(profileID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("profile_id = ?", profileID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if (sub.Status == models.SubscriptionActive || sub.Status == models.SubscriptionTrial) &&
		sub.EndDate.Before(now()) {
		if err := s.db.Model(&sub).Update("status", models.SubscriptionExpired).Error; err != nil {
			return nil, err
		}
		sub.Status = models.SubscriptionExpired
	}

	return &sub, nil
}

func (s *SubscriptionService) profileOf(userID uint) (*models.MusicianProfile, error) {
	var profile models.MusicianProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, response.NewNotFound("musician profile not found")
	}
	return &profile, nil
}
