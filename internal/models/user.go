package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TelegramID *string   `gorm:"size:50;uniqueIndex" json:"telegram_id,omitempty"`
	Email      *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Name       string    `gorm:"size:255" json:"name"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
