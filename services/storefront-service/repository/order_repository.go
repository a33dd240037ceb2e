package repository

import (
	"context"

	"github.com/coradis/storefront/services/storefront-service/models"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// Create stores the order and its items in one transaction.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
	Delete(ctx context.Context, id uint) error
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			order.Items = items
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				order.Items = items
				return err
			}
		}
		order.Items = items
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, translateGorm(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var orders []models.Order
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	return orders, total, err
}

func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	orders, _, err := r.List(ctx, models.OrderFilter{CustomerID: customerID})
	return orders, err
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the items first and then the order.
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
