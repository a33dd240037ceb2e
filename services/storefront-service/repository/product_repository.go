package repository

import (
	"context"

	"github.com/coradis/storefront/services/storefront-service/models"
	"gorm.io/gorm"
)

type ProductRepository interface {
	List(ctx context.Context, category models.Category) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	// SeedIfEmpty inserts products only when the table has no rows. It
	// reports how many were inserted.
	SeedIfEmpty(ctx context.Context, products []models.Product) (int, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) List(ctx context.Context, category models.Category) ([]models.Product, error) {
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var products []models.Product
	err := q.Order("category ASC").Order("price DESC").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translateGorm(r.db.WithContext(ctx).Create(p).Error)
}

func (r *GormProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) SeedIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 || len(products) == 0 {
			return nil
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		inserted = len(products)
		return nil
	})
	return inserted, err
}
