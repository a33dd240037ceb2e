package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/coradis/storefront/services/notification-service/models"
)

type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
	// Delivered reports whether recipient already got (or was deliberately
	// skipped for) the message of eventID on channel.
	Delivered(ctx context.Context, eventID, channel, recipient string) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationRepository) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	var logs []models.NotificationLog
	var total int64

	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.NotificationLog{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&logs).Error

	return logs, total, err
}

func (r *notificationRepository) Delivered(ctx context.Context, eventID, channel, recipient string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("event_id = ? AND channel = ? AND recipient = ?", eventID, channel, recipient).
		Where("status IN ?", []string{models.StatusSent, models.StatusSkipped}).
		Count(&n).Error
	return n > 0, err
}
