package services

import (
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/response"
)

// MusicianService manages musician profiles and the public discovery
// listing.
type MusicianService struct {
	db *gorm.DB
}

func NewMusicianService(db *gorm.DB) *MusicianService {
	return &MusicianService{db: db}
}

type UpdateProfileRequest struct {
	StageName     *string  `json:"stage_name"`
	Bio           *string  `json:"bio"`
	Location      *string  `json:"location"`
	HourlyRate    *float64 `json:"hourly_rate"`
	IsAvailable   *bool    `json:"is_available"`
	InstrumentIDs []uint   `json:"instrument_ids"`
	GenreIDs      []uint   `json:"genre_ids"`
}

// UpdateProfile applies a partial update to the caller's own profile.
// Instrument and genre lists, when present, replace the existing sets.
func (s *MusicianService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.MusicianProfile, error) {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.StageName != nil {
		updates["stage_name"] = *req.StageName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, response.NewBadRequest("hourly rate must not be negative")
		}
		updates["hourly_rate"] = *req.HourlyRate
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if req.InstrumentIDs != nil {
		var instruments []models.Instrument
		if err := s.db.Find(&instruments, req.InstrumentIDs).Error; err != nil {
			return nil, err
		}
		if len(instruments) != len(req.InstrumentIDs) {
			return nil, response.NewBadRequest("unknown instrument id")
		}
		if err := s.db.Model(profile).Association("Instruments").Replace(instruments); err != nil {
			return nil, err
		}
	}

	if req.GenreIDs != nil {
		var genres []models.Genre
		if err := s.db.Find(&genres, req.GenreIDs).Error; err != nil {
			return nil, err
		}
		if len(genres) != len(req.GenreIDs) {
			return nil, response.NewBadRequest("unknown genre id")
		}
		if err := s.db.Model(profile).Association("Genres").Replace(genres); err != nil {
			return nil, err
		}
	}

	return s.GetByID(profile.ID)
}

type MusicianListRequest struct {
	Location     string   `form:"location"`
	InstrumentID uint     `form:"instrument_id"`
	GenreID      uint     `form:"genre_id"`
	Available    *bool    `form:"available"`
	MinRating    *float64 `form:"min_rating"`
	Page         int      `form:"page"`
	PageSize     int      `form:"page_size"`
}

type MusicianListResponse struct {
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
	Items    []models.MusicianProfile `json:"items"`
}

// List filters discoverable musicians. Only active accounts show up.
func (s *MusicianService) List(req *MusicianListRequest) (*MusicianListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.MusicianProfile{}).
		Joins("JOIN users ON users.id = musician_profiles.user_id").
		Where("users.is_active = ?", true)

	if req.Location != "" {
		query = query.Where("musician_profiles.location LIKE ?", "%"+req.Location+"%")
	}
	if req.Available != nil {
		query = query.Where("musician_profiles.is_available = ?", *req.Available)
	}
	if req.MinRating != nil {
		query = query.Where("musician_profiles.average_rating >= ?", *req.MinRating)
	}
	if req.InstrumentID > 0 {
		query = query.Where("musician_profiles.id IN (?)",
			s.db.Table("profile_instruments").Select("musician_profile_id").Where("instrument_id = ?", req.InstrumentID))
	}
	if req.GenreID > 0 {
		query = query.Where("musician_profiles.id IN (?)",
			s.db.Table("profile_genres").Select("musician_profile_id").Where("genre_id = ?", req.GenreID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.MusicianProfile
	err := query.
		Preload("Instruments").
		Preload("Genres").
		Order("musician_profiles.average_rating DESC, musician_profiles.total_gigs DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &MusicianListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// GetByID returns a single profile with its public associations.
func (s *MusicianService) GetByID(profileID uint) (*models.MusicianProfile, error) {
	var profile models.MusicianProfile
	err := s.db.
		Preload("Instruments").
		Preload("Genres").
		Preload("Portfolio").
		First(&profile, profileID).Error
	if err != nil {
		return nil, response.NewNotFound("musician not found")
	}
	return &profile, nil
}

type PortfolioItemRequest struct {
	Title       string `json:"title" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	Description string `json:"description"`
}

// AddPortfolioItem appends a work sample to the caller's profile.
func (s *MusicianService) AddPortfolioItem(userID uint, req *PortfolioItemRequest) (*models.PortfolioItem, error) {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return nil, err
	}

	item := &models.PortfolioItem{
		ProfileID:   profile.ID,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeletePortfolioItem removes an item. Items belonging to someone else
// read as absent.
func (s *MusicianService) DeletePortfolioItem(userID uint, itemID uint) error {
	profile, err := s.profileByUser(userID)
	if err != nil {
		return err
	}

	result := s.db.Where("id = ? AND profile_id = ?", itemID, profile.ID).Delete(&models.PortfolioItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("portfolio item not found")
	}
	return nil
}

// ListInstruments returns the reference instrument catalogue.
func (s *MusicianService) ListInstruments() ([]models.Instrument, error) {
	var instruments []models.Instrument
	err := s.db.Order("name").Find(&instruments).Error
	return instruments, err
}

// ListGenres returns the reference genre catalogue.
func (s *MusicianService) ListGenres() ([]models.Genre, error) {
	var genres []models.Genre
	err := s.db.Order("name").Find(&genres).Error
	return genres, err
}

func (s *MusicianService) profileByUser(userID uint) (*models.MusicianProfile, error) {
	var profile models.MusicianProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, response.NewNotFound("profile not found")
	}
	return &profile, nil
}
