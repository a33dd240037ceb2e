// Package contracts holds the events the storefront publishes and the
// notification service consumes.
package contracts

import "time"

const (
	EventOTPRequested       = "otp_requested"
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventReferralApplied    = "referral_applied"
	EventContactReceived    = "contact_received"
)

// Order statuses as they travel in OrderEventPayload.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderInDelivery = "in_delivery"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Event is the envelope published to the storefront topic.
type Event struct {
	// EventID is fixed at publish time and survives queue redelivery.
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

type OTPRequestedPayload struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OrderEventPayload struct {
	OrderID        uint   `json:"order_id"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	DeliveryDate   string `json:"delivery_date"`
	IsUrgent       bool   `json:"is_urgent"`
	TotalPrice     int64  `json:"total_price"`
	DiscountAmount int64  `json:"discount_amount"`
	PointsEarned   int64  `json:"points_earned"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	ItemCount      int    `json:"item_count"`
}

type ReferralPayload struct {
	RefereeName    string `json:"referee_name"`
	RefereePhone   string `json:"referee_phone"`
	ReferrerName   string `json:"referrer_name"`
	ReferrerPhone  string `json:"referrer_phone"`
	RefereeReward  string `json:"referee_reward"`
	ReferrerReward string `json:"referrer_reward"`
}

type ContactPayload struct {
	MessageID uint   `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}
