package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/logger"
	"github.com/giglink/backend/pkg/response"
)

type NotificationService struct {
	db    *gorm.DB
	queue DispatchQueue
}

func NewNotificationService(db *gorm.DB, queue DispatchQueue) *NotificationService {
	return &NotificationService{db: db, queue: queue}
}

// Notify persists a notification record and then publishes it to the
// dispatch queue. The record is the source of truth; the push is
// best-effort and a publish failure never surfaces to the caller.
func (s *NotificationService) Notify(userID uint, ntype, title, body string, metadata map[string]interface{}) (*models.Notification, error) {
	var metaStr string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaStr = string(b)
		}
	}

	notification := &models.Notification{
		UserID:   userID,
		Type:     ntype,
		Title:    title,
		Body:     body,
		Metadata: metaStr,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, err
	}

	if s.queue != nil {
		task := &DispatchTask{
			NotificationID: notification.ID,
			UserID:         userID,
			Type:           ntype,
			Title:          title,
			Body:           body,
			Metadata:       metaStr,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Warn().Err(err).Uint("user_id", userID).Msg("notification push dropped")
		}
	}

	return notification, nil
}

// DeliverTask is the dispatch queue processor: it hands the event to the
// hub for delivery to the user's live sessions.
func (s *NotificationService) DeliverTask(ctx context.Context, task *DispatchTask) error {
	GetHub().Deliver(NotificationEvent{
		NotificationID: task.NotificationID,
		UserID:         task.UserID,
		Type:           task.Type,
		Title:          task.Title,
		Body:           task.Body,
		Metadata:       task.Metadata,
	})
	return nil
}

type NotificationListRequest struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Unread   int64                 `json:"unread"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var unread int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Unread:   unread,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("notification not found")
	}
	return nil
}

// MarkAllRead marks all of the caller's notifications as read.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// CleanupOld deletes read notifications older than retentionDays.
// Returns the number of deleted records.
func (s *NotificationService) CleanupOld(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var retentionCron *cron.Cron

// StartRetentionScheduler prunes old read notifications nightly at 03:10.
func StartRetentionScheduler(db *gorm.DB, retentionDays int) {
	service := NewNotificationService(db, nil)

	retentionCron = cron.New()
	_, err := retentionCron.AddFunc("10 3 * * *", func() {
		deleted, err := service.CleanupOld(retentionDays)
		if err != nil {
			logger.Errorf("[Notification] Retention cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("[Notification] Pruned %d read notifications older than %d days", deleted, retentionDays)
		}
	})
	if err != nil {
		logger.Errorf("[Notification] Failed to schedule retention cleanup: %v", err)
		return
	}
	retentionCron.Start()
}

// StopRetentionScheduler stops the nightly cleanup.
func StopRetentionScheduler() {
	if retentionCron != nil {
		retentionCron.Stop()
	}
}
