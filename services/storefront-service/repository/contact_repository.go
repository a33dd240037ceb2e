package repository

import (
	"context"

	"github.com/coradis/storefront/services/storefront-service/models"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, status models.ContactStatus, page, limit int) ([]models.ContactMessage, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error
}

type GormContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormContactRepository) List(ctx context.Context, status models.ContactStatus, page, limit int) ([]models.ContactMessage, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var msgs []models.ContactMessage
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&msgs).Error
	return msgs, total, err
}

func (r *GormContactRepository) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error {
	res := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
