package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a merchant (cari) in a user's catalog. NormalizedName is the
// resolution key for exact and alias matching and is unique per user.
type Vendor struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_vendors_user_normalized" json:"user_id"`
	DisplayName    string    `gorm:"size:255" json:"display_name"`
	NormalizedName string    `gorm:"size:255;uniqueIndex:idx_vendors_user_normalized" json:"normalized_name"`
	VKN            *string   `gorm:"size:11;index" json:"vkn,omitempty"`
	TCKN           *string   `gorm:"size:11;index" json:"tckn,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Phone          *string   `gorm:"size:20" json:"phone,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Aliases []VendorAlias `gorm:"constraint:OnDelete:CASCADE" json:"aliases,omitempty"`
}

// VendorAlias is an alternative spelling learned for a vendor.
type VendorAlias struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID        uuid.UUID `gorm:"type:uuid;index" json:"vendor_id"`
	Alias           string    `gorm:"size:255;index" json:"alias"`
	NormalizedAlias string    `gorm:"size:255;index" json:"normalized_alias"`
	CreatedAt       time.Time `json:"created_at"`
}
