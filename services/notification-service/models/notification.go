package models

import (
	"encoding/json"
	"time"
)

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"

	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

type NotificationLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID    string    `json:"event_id,omitempty" gorm:"size:36;index"`
	Recipient  string    `json:"recipient" gorm:"size:255;not null"`
	Type       string    `json:"type" gorm:"size:64;index;not null"`
	Channel    string    `json:"channel" gorm:"size:16;index;not null"`
	Status     string    `json:"status" gorm:"size:16;index;not null"`
	Error      string    `json:"error,omitempty"`
	RetryCount int       `json:"retry_count"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

type NotificationFilter struct {
	Type     string
	Status   string
	Channel  string
	Page     int
	PageSize int
}

// Envelope is a storefront event as published on the topic; Payload is
// decoded once the event type is known.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}
