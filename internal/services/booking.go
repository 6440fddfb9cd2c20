package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/logger"
	"github.com/giglink/backend/pkg/response"
)

// errBookingNotFound masks every failed precondition on a booking
// operation: missing row, wrong party, wrong role, wrong state. Callers
// cannot tell which one failed.
func errBookingNotFound() *response.AppError {
	return response.NewNotFound("booking not found")
}

type BookingService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewBookingService(db *gorm.DB, notifier *NotificationService) *BookingService {
	return &BookingService{db: db, notifier: notifier}
}

type CreateBookingRequest struct {
	MusicianID    uint      `json:"musician_id" binding:"required"`
	EventDate     time.Time `json:"event_date" binding:"required"`
	EventType     string    `json:"event_type"`
	Venue         string    `json:"venue"`
	Notes         string    `json:"notes"`
	OfferedRate   float64   `json:"offered_rate" binding:"required,gt=0"`
	InstrumentIDs []uint    `json:"instrument_ids"`
}

// Create submits a booking request against an available musician.
// The booking starts PENDING with no agreed rate.
func (s *BookingService) Create(clientID uint, req *CreateBookingRequest) (*models.Booking, error) {
	var musician models.User
	err := s.db.Preload("Profile").
		Where("id = ? AND role = ? AND is_active = ?", req.MusicianID, models.RoleMusician, true).
		First(&musician).Error
	if err != nil {
		return nil, response.NewNotFound("musician not found")
	}
	if musician.Profile == nil || !musician.Profile.IsAvailable {
		return nil, response.NewNotFound("musician not found")
	}

	booking := &models.Booking{
		ClientID:    clientID,
		MusicianID:  req.MusicianID,
		EventDate:   req.EventDate,
		EventType:   req.EventType,
		Venue:       req.Venue,
		Notes:       req.Notes,
		OfferedRate: req.OfferedRate,
		Status:      models.BookingPending,
	}

	if len(req.InstrumentIDs) > 0 {
		var instruments []models.Instrument
		if err := s.db.Find(&instruments, req.InstrumentIDs).Error; err != nil {
			return nil, err
		}
		booking.Instruments = instruments
	}

	if err := s.db.Create(booking).Error; err != nil {
		return nil, err
	}

	s.notify(req.MusicianID, models.NotifBookingRequest,
		"New booking request",
		fmt.Sprintf("You have a new booking request for %s", booking.EventDate.Format("Jan 2, 2006")),
		booking.ID)

	return booking, nil
}

type AcceptBookingRequest struct {
	AgreedRate *float64 `json:"agreed_rate" binding:"omitempty,gt=0"`
}

// Accept transitions PENDING → ACCEPTED. Only the target musician may
// accept, and only while the booking is PENDING. The agreed rate defaults
// to the client's offered rate when no override is given.
func (s *BookingService) Accept(musicianID, bookingID uint, req *AcceptBookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Where("id = ? AND musician_id = ?", bookingID, musicianID).First(&booking).Error; err != nil {
		return nil, errBookingNotFound()
	}

	agreedRate := booking.OfferedRate
	if req != nil && req.AgreedRate != nil {
		agreedRate = *req.AgreedRate
	}

	// Status-guarded write: the WHERE clause is the only protection
	// against two racing accepts, and the loser takes the not-found path.
	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingPending).
		Updates(map[string]interface{}{
			"status":      models.BookingAccepted,
			"agreed_rate": agreedRate,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errBookingNotFound()
	}

	s.notify(booking.ClientID, models.NotifBookingAccepted,
		"Booking accepted",
		fmt.Sprintf("Your booking request was accepted at a rate of %.2f", agreedRate),
		bookingID)

	s.db.First(&booking, bookingID)
	return &booking, nil
}

// Reject transitions PENDING → REJECTED. Only the target musician, only
// while PENDING. No rate is set.
func (s *BookingService) Reject(musicianID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Where("id = ? AND musician_id = ?", bookingID, musicianID).First(&booking).Error; err != nil {
		return nil, errBookingNotFound()
	}

	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingPending).
		Update("status", models.BookingRejected)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errBookingNotFound()
	}

	s.notify(booking.ClientID, models.NotifBookingRejected,
		"Booking declined",
		"Your booking request was declined by the musician",
		bookingID)

	s.db.First(&booking, bookingID)
	return &booking, nil
}

// Cancel transitions PENDING or ACCEPTED → CANCELLED. Either party may
// cancel; the counterparty is notified.
func (s *BookingService) Cancel(callerID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("id = ? AND (client_id = ? OR musician_id = ?)", bookingID, callerID, callerID).
		First(&booking).Error
	if err != nil {
		return nil, errBookingNotFound()
	}

	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", bookingID, []string{models.BookingPending, models.BookingAccepted}).
		Update("status", models.BookingCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errBookingNotFound()
	}

	s.notify(booking.Counterparty(callerID), models.NotifBookingCancelled,
		"Booking cancelled",
		"A booking you are part of was cancelled by the other party",
		bookingID)

	s.db.First(&booking, bookingID)
	return &booking, nil
}

// Complete transitions ACCEPTED → COMPLETED and credits the musician with
// one gig. Either party may complete; the counterparty is notified.
func (s *BookingService) Complete(callerID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("id = ? AND (client_id = ? OR musician_id = ?)", bookingID, callerID, callerID).
		First(&booking).Error
	if err != nil {
		return nil, errBookingNotFound()
	}

	result := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingAccepted).
		Update("status", models.BookingCompleted)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errBookingNotFound()
	}

	// Exactly one increment per completion: the guarded update above
	// succeeded at most once for this booking.
	err = s.db.Model(&models.MusicianProfile{}).
		Where("user_id = ?", booking.MusicianID).
		UpdateColumn("total_gigs", gorm.Expr("total_gigs + ?", 1)).Error
	if err != nil {
		logger.Error().Err(err).Uint("booking_id", bookingID).Msg("failed to increment total gigs")
	}

	s.notify(booking.Counterparty(callerID), models.NotifBookingCompleted,
		"Booking completed",
		"A booking you are part of was marked as completed",
		bookingID)

	s.db.First(&booking, bookingID)
	return &booking, nil
}

// GetByID returns a booking visible to the caller (either party).
func (s *BookingService) GetByID(callerID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("Client").Preload("Musician").Preload("Instruments").
		Where("id = ? AND (client_id = ? OR musician_id = ?)", bookingID, callerID, callerID).
		First(&booking).Error
	if err != nil {
		return nil, errBookingNotFound()
	}
	return &booking, nil
}

type BookingListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
}

type BookingListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Booking `json:"items"`
}

// List returns the caller's bookings, newest first.
func (s *BookingService) List(callerID uint, req *BookingListRequest) (*BookingListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Booking{}).
		Where("client_id = ? OR musician_id = ?", callerID, callerID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var items []models.Booking
	offset := (req.Page - 1) * req.PageSize
	err := query.Preload("Client").Preload("Musician").
		Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &BookingListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// notify persists and pushes a booking notification. The booking write has
// already committed; a notification failure is logged, never propagated.
func (s *BookingService) notify(userID uint, ntype, title, body string, bookingID uint) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Notify(userID, ntype, title, body, map[string]interface{}{
		"booking_id": bookingID,
	})
	if err != nil {
		logger.Error().Err(err).Uint("booking_id", bookingID).Msg("failed to create booking notification")
	}
}
