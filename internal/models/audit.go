package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string         `gorm:"size:100;index" json:"action"`
	EntityType *string        `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID   *string        `gorm:"size:50" json:"entity_id,omitempty"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	IPAddress  *string        `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  *string        `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
