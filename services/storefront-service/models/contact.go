package models

import "time"

type ContactStatus string

const (
	ContactStatusNew     ContactStatus = "new"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

func (s ContactStatus) Valid() bool {
	return s == ContactStatusNew || s == ContactStatusRead || s == ContactStatusReplied
}

type ContactMessage struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	Email     string        `gorm:"not null" json:"email"`
	Phone     *string       `gorm:"size:32" json:"phone"`
	Subject   string        `gorm:"not null" json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    ContactStatus `gorm:"size:16;not null;default:new;index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type CreateContactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required,min=10"`
}

type UpdateContactStatusRequest struct {
	Status ContactStatus `json:"status" binding:"required"`
}
