package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Phone         string             `bson:"phone" json:"phone"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash  string             `bson:"password" json:"-"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	LoyaltyPoints int64              `bson:"loyalty_points" json:"loyaltyPoints"`
	TotalSpent    int64              `bson:"total_spent" json:"totalSpent"`
	TotalOrders   int64              `bson:"total_orders" json:"totalOrders"`
	ReferralCode  string             `bson:"referral_code" json:"referralCode"`
	ReferredBy    string             `bson:"referred_by,omitempty" json:"referredBy,omitempty"`
	ReferralCount int64              `bson:"referral_count" json:"referralCount"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

type RegisterCustomerRequest struct {
	Name         string `json:"name" binding:"required,min=2"`
	Phone        string `json:"phone" binding:"required,min=10,phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Address      string `json:"address"`
	ReferralCode string `json:"referralCode"`
}

type CustomerLoginRequest struct {
	Phone    string `json:"phone" binding:"required,min=10,phone"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

type UseReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type AddFavoriteRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// CustomerSummary is what the storefront header and dashboard show.
type CustomerSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	LoyaltyPoints int64  `json:"loyaltyPoints"`
	TotalSpent    int64  `json:"totalSpent"`
	TotalOrders   int64  `json:"totalOrders"`
	ReferralCode  string `json:"referralCode"`
}

func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{
		ID:            c.ID.Hex(),
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		LoyaltyPoints: c.LoyaltyPoints,
		TotalSpent:    c.TotalSpent,
		TotalOrders:   c.TotalOrders,
		ReferralCode:  c.ReferralCode,
	}
}

// Discount is the loyalty discount a customer may apply to the next order.
type Discount struct {
	HasDiscount bool    `json:"hasDiscount"`
	Percent     int     `json:"discount"`
	Reason      *string `json:"reason"`
}
