package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/response"
)

// reviewEditWindow is how long after creation the author may edit or
// delete a review.
const reviewEditWindow = 7 * 24 * time.Hour

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Create attaches a review to a completed booking. Only the booking's
// client may review, and only once per booking.
func (s *ReviewService) Create(clientID, bookingID uint, req *CreateReviewRequest) (*models.Review, error) {
	var booking models.Booking
	err := s.db.Where("id = ? AND client_id = ? AND status = ?", bookingID, clientID, models.BookingCompleted).
		First(&booking).Error
	if err != nil {
		return nil, errBookingNotFound()
	}

	var existing int64
	s.db.Model(&models.Review{}).Where("booking_id = ?", bookingID).Count(&existing)
	if existing > 0 {
		return nil, response.NewConflict("this booking has already been reviewed")
	}

	review := &models.Review{
		BookingID:  bookingID,
		ClientID:   clientID,
		MusicianID: booking.MusicianID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, err
	}

	if err := s.recomputeAverage(booking.MusicianID); err != nil {
		return nil, err
	}

	return review, nil
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

// Update edits the author's own review within the edit window and
// recomputes the musician's average rating.
func (s *ReviewService) Update(clientID, reviewID uint, req *UpdateReviewRequest) (*models.Review, error) {
	review, err := s.editable(clientID, reviewID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}
	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.recomputeAverage(review.MusicianID); err != nil {
		return nil, err
	}

	s.db.First(review, reviewID)
	return review, nil
}

// Delete removes the author's own review within the edit window and
// recomputes the musician's average rating over the remaining reviews.
func (s *ReviewService) Delete(clientID, reviewID uint) error {
	review, err := s.editable(clientID, reviewID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(review).Error; err != nil {
		return err
	}

	return s.recomputeAverage(review.MusicianID)
}

// ListForMusician returns the reviews written about a musician.
func (s *ReviewService) ListForMusician(musicianID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("musician_id = ?", musicianID).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (s *ReviewService) editable(clientID, reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Where("id = ? AND client_id = ?", reviewID, clientID).First(&review).Error; err != nil {
		return nil, response.NewNotFound("review not found")
	}
	if time.Since(review.CreatedAt) > reviewEditWindow {
		return nil, response.NewForbidden("reviews can only be changed within 7 days of creation")
	}
	return &review, nil
}

// recomputeAverage rescans all reviews for the musician and writes the
// mean onto the profile. An empty set resets the average to 0. The
// profile field is derived, never authoritative on its own.
func (s *ReviewService) recomputeAverage(musicianID uint) error {
	var avg *float64
	err := s.db.Model(&models.Review{}).
		Where("musician_id = ?", musicianID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return err
	}

	value := 0.0
	if avg != nil {
		value = *avg
	}

	return s.db.Model(&models.MusicianProfile{}).
		Where("user_id = ?", musicianID).
		Update("average_rating", value).Error
}
