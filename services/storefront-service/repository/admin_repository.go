package repository

import (
	"context"

	"github.com/coradis/storefront/services/storefront-service/models"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type GormAdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return translateGorm(r.db.WithContext(ctx).Create(admin).Error)
}

func (r *GormAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &admin, nil
}

func (r *GormAdminRepository) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &admin, nil
}

func (r *GormAdminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&n).Error
	return n, err
}
