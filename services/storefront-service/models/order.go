package models

import (
	"time"

	"github.com/coradis/storefront/services/common/contracts"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = contracts.OrderPending
	OrderStatusConfirmed  OrderStatus = contracts.OrderConfirmed
	OrderStatusInDelivery OrderStatus = contracts.OrderInDelivery
	OrderStatusDelivered  OrderStatus = contracts.OrderDelivered
	OrderStatusCancelled  OrderStatus = contracts.OrderCancelled
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order amounts are whole FCFA. TotalPrice is Subtotal minus DiscountAmount.
type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	CustomerID          *string     `gorm:"size:64;index" json:"customerId"`
	CustomerName        string      `gorm:"not null" json:"customerName"`
	CustomerPhone       string      `gorm:"size:32;not null" json:"customerPhone"`
	DeliveryAddress     string      `gorm:"not null" json:"deliveryAddress"`
	DeliveryDate        string      `gorm:"size:10;not null" json:"deliveryDate"`
	IsUrgent            bool        `gorm:"not null;default:false" json:"isUrgent"`
	Subtotal            int64       `gorm:"not null" json:"subtotal"`
	DiscountPercent     int         `gorm:"not null;default:0" json:"discountPercent"`
	DiscountAmount      int64       `gorm:"not null;default:0" json:"discountAmount"`
	TotalPrice          int64       `gorm:"not null" json:"totalPrice"`
	LoyaltyPointsEarned int64       `gorm:"not null;default:0" json:"loyaltyPointsEarned"`
	Status              OrderStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	StockRef            string      `gorm:"size:36" json:"-"`
	Notes               *string     `json:"notes"`
	CreatedAt           time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
	Items               []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"index;not null" json:"orderId"`
	ProductID    string    `gorm:"size:64" json:"productId,omitempty"`
	ProductName  string    `gorm:"not null" json:"productName"`
	ProductUnit  string    `gorm:"size:32;not null" json:"productUnit"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	PricePerUnit int64     `gorm:"not null" json:"pricePerUnit"`
	TotalPrice   int64     `gorm:"not null" json:"totalPrice"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Line bounds. They keep every order total far from int64 overflow.
const (
	MaxItemQuantity = 1000
	MaxUnitPrice    = 10_000_000
	MaxOrderLines   = 50
)

type OrderItemInput struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName" binding:"required"`
	ProductUnit  string `json:"productUnit" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,gt=0,lte=1000"`
	PricePerUnit int64  `json:"pricePerUnit" binding:"gte=0,lte=10000000"`
}

type CreateOrderRequest struct {
	CustomerName    string           `json:"customerName" binding:"required"`
	CustomerPhone   string           `json:"customerPhone" binding:"required,phone"`
	DeliveryAddress string           `json:"deliveryAddress" binding:"required"`
	DeliveryDate    string           `json:"deliveryDate" binding:"required,datetime=2006-01-02"`
	IsUrgent        bool             `json:"isUrgent"`
	Notes           string           `json:"notes"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,max=50,dive"`
	TotalPrice      *int64           `json:"totalPrice"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type OrderFilter struct {
	Status     OrderStatus
	CustomerID string
	Page       int
	Limit      int
}
