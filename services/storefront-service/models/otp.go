package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OTPCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Phone     string             `bson:"phone"`
	Code      string             `bson:"code"`
	Verified  bool               `bson:"verified"`
	Attempts  int                `bson:"attempts"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required,min=8,phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,min=8,phone"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ClearOTPRequest must carry the pending code, so only its holder can
// withdraw it.
type ClearOTPRequest struct {
	Phone string `json:"phone" binding:"required,min=8,phone"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}
