package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/logger"
	"github.com/giglink/backend/pkg/response"
)

type PaymentService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	notifier *NotificationService
	email    *EmailService
	cfg      *config.PaystackConfig
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, notifier *NotificationService, email *EmailService, cfg *config.PaystackConfig) *PaymentService {
	return &PaymentService{db: db, gateway: gateway, notifier: notifier, email: email, cfg: cfg}
}

// newReference builds a transaction reference unique enough in practice:
// a nanosecond timestamp plus a random suffix. Collision is treated as
// practically impossible, not defended against.
func newReference() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
	return fmt.Sprintf("GL-%d-%s", time.Now().UnixNano(), suffix)
}

// toSubunit converts a decimal currency amount to the gateway's smallest
// unit. This is the only place the conversion happens.
func toSubunit(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// InitiateResult is returned to the caller so it can redirect the payer
// to the gateway's hosted page.
type InitiateResult struct {
	AuthorizationURL string          `json:"authorization_url"`
	Reference        string          `json:"reference"`
	Payment          *models.Payment `json:"payment"`
}

type InitiatePaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// InitiateAdHoc starts a payment not linked to any booking or subscription.
func (s *PaymentService) InitiateAdHoc(ctx context.Context, userID uint, req *InitiatePaymentRequest) (*InitiateResult, error) {
	return s.initiate(ctx, userID, req.Amount, models.PurposeAdHoc, nil, map[string]interface{}{
		"purpose": models.PurposeAdHoc,
	})
}

// InitiateBooking starts the payment for an accepted booking. The caller
// must be the booking's client, the booking ACCEPTED with an agreed rate,
// and no pending or successful payment may already exist for it.
func (s *PaymentService) InitiateBooking(ctx context.Context, userID, bookingID uint) (*InitiateResult, error) {
	var booking models.Booking
	err := s.db.Where("id = ? AND client_id = ?", bookingID, userID).First(&booking).Error
	if err != nil {
		return nil, errBookingNotFound()
	}
	if booking.Status != models.BookingAccepted || booking.AgreedRate == nil {
		return nil, errBookingNotFound()
	}

	var existing int64
	s.db.Model(&models.Payment{}).
		Where("booking_id = ? AND status IN ?", bookingID, []string{models.PaymentPending, models.PaymentSuccessful}).
		Count(&existing)
	if existing > 0 {
		return nil, response.NewConflict("a payment for this booking already exists")
	}

	result, err := s.initiate(ctx, userID, *booking.AgreedRate, models.PurposeBooking, &bookingID, map[string]interface{}{
		"purpose":    models.PurposeBooking,
		"booking_id": bookingID,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InitiateSubscription starts a subscription payment for the caller's
// musician profile. Settlement does not activate the subscription; the
// caller invokes the subscription lifecycle separately once paid.
func (s *PaymentService) InitiateSubscription(ctx context.Context, userID uint, req *InitiatePaymentRequest) (*InitiateResult, error) {
	var profile models.MusicianProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, response.NewNotFound("musician profile not found")
	}

	return s.initiate(ctx, userID, req.Amount, models.PurposeSubscription, nil, map[string]interface{}{
		"purpose":    models.PurposeSubscription,
		"profile_id": profile.ID,
	})
}

// initiate is the shared algorithm behind the three entry variants:
// resolve payer, build a reference, ask the gateway, and only persist a
// pending Payment once the gateway accepted.
func (s *PaymentService) initiate(ctx context.Context, userID uint, amount float64, purpose string, bookingID *uint, metadata map[string]interface{}) (*InitiateResult, error) {
	var payer models.User
	if err := s.db.First(&payer, userID).Error; err != nil {
		return nil, response.NewNotFound("user not found")
	}

	reference := newReference()

	initResult, err := s.gateway.Initialize(ctx, &GatewayInitRequest{
		Email:       payer.Email,
		Amount:      toSubunit(amount),
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Currency:    s.cfg.Currency,
		Metadata:    metadata,
	})
	if err != nil {
		// Gateway rejection: no local record is created.
		return nil, response.NewUpstream(fmt.Sprintf("payment initialization failed: %v", err))
	}

	metaStr, _ := json.Marshal(metadata)
	payment := &models.Payment{
		UserID:     userID,
		BookingID:  bookingID,
		Reference:  reference,
		AccessCode: initResult.AccessCode,
		Amount:     amount,
		Currency:   s.cfg.Currency,
		Purpose:    purpose,
		Status:     models.PaymentPending,
		Metadata:   string(metaStr),
	}
	if err := s.db.Create(payment).Error; err != nil {
		// Two initiations raced past the pending/successful check; the
		// partial index on booking_id catches the loser here.
		if bookingID != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("a payment for this booking already exists")
		}
		return nil, err
	}

	return &InitiateResult{
		AuthorizationURL: initResult.AuthorizationURL,
		Reference:        reference,
		Payment:          payment,
	}, nil
}

// Verify reconciles a locally pending payment against the gateway's
// record, exactly once. A payment already successful is returned
// unchanged without another gateway call. A gateway transport failure
// marks the payment failed and surfaces the error; there is no retry.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		return nil, response.NewNotFound("payment not found")
	}

	if payment.Status == models.PaymentSuccessful {
		return &payment, nil
	}

	verifyResult, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.db.Model(&payment).Update("status", models.PaymentFailed)
		return nil, response.NewUpstream(fmt.Sprintf("payment verification failed: %v", err))
	}

	updates := map[string]interface{}{
		"channel": verifyResult.Channel,
		"fees":    float64(verifyResult.Fees) / 100,
	}
	if verifyResult.Succeeded() {
		updates["status"] = models.PaymentSuccessful
		if verifyResult.PaidAt != nil {
			updates["paid_at"] = verifyResult.PaidAt
		}
	} else {
		updates["status"] = models.PaymentFailed
	}

	// Fold the gateway's settlement details into the metadata payload.
	var meta map[string]interface{}
	if payment.Metadata != "" {
		_ = json.Unmarshal([]byte(payment.Metadata), &meta)
	}
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["gateway_status"] = verifyResult.Status
	meta["gateway_response"] = verifyResult.GatewayResponse
	if b, err := json.Marshal(meta); err == nil {
		updates["metadata"] = string(b)
	}

	if err := s.db.Model(&payment).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.db.Where("reference = ?", reference).First(&payment)

	if payment.Status == models.PaymentSuccessful {
		s.notifySettled(&payment)
	}

	return &payment, nil
}

// notifySettled notifies the payer and, for booking-linked payments, the
// booking's musician, and mails the payer a receipt. All of it is best
// effort. Settlement never auto-completes the booking.
func (s *PaymentService) notifySettled(payment *models.Payment) {
	if s.notifier != nil {
		meta := map[string]interface{}{"payment_id": payment.ID, "reference": payment.Reference}

		_, err := s.notifier.Notify(payment.UserID, models.NotifPaymentSettled,
			"Payment successful",
			fmt.Sprintf("Your payment of %.2f %s was confirmed", payment.Amount, payment.Currency),
			meta)
		if err != nil {
			logger.Error().Err(err).Str("reference", payment.Reference).Msg("failed to notify payer")
		}

		if payment.BookingID != nil {
			var booking models.Booking
			if err := s.db.First(&booking, *payment.BookingID).Error; err == nil {
				meta["booking_id"] = booking.ID
				_, err = s.notifier.Notify(booking.MusicianID, models.NotifPaymentReceived,
					"Payment received",
					fmt.Sprintf("A payment of %.2f %s was received for your booking", payment.Amount, payment.Currency),
					meta)
				if err != nil {
					logger.Error().Err(err).Str("reference", payment.Reference).Msg("failed to notify musician")
				}
			}
		}
	}

	if s.email != nil {
		var payer models.User
		if err := s.db.First(&payer, payment.UserID).Error; err == nil {
			if err := s.email.SendPaymentReceipt(&payer, payment); err != nil {
				logger.Warn().Err(err).Str("reference", payment.Reference).Msg("failed to send payment receipt")
			}
		}
	}
}

type PaymentListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
	Purpose  string `form:"purpose"`
}

type PaymentListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Payment `json:"items"`
}

// History returns the caller's payments, newest first.
func (s *PaymentService) History(userID uint, req *PaymentListRequest) (*PaymentListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Payment{}).Where("user_id = ?", userID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Purpose != "" {
		query = query.Where("purpose = ?", req.Purpose)
	}

	var total int64
	query.Count(&total)

	var items []models.Payment
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &PaymentListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}
