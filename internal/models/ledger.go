package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryDirectionExpense = "expense"
	EntryDirectionIncome  = "income"
)

type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	ParentID  *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	Name      string     `gorm:"size:100" json:"name"`
	Icon      *string    `gorm:"size:50" json:"icon,omitempty"`
	Color     *string    `gorm:"size:7" json:"color,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// LedgerEntry is an immutable accounting record. The unique index on
// DocumentID guarantees at most one entry per confirmed document.
type LedgerEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	VendorID   *uuid.UUID `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	DocumentID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"document_id,omitempty"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`

	Direction string           `gorm:"size:20;default:expense" json:"direction"`
	Amount    decimal.Decimal  `gorm:"type:numeric(12,2)" json:"amount"`
	TaxAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax_amount,omitempty"`
	Currency  string           `gorm:"size:3;default:TRY" json:"currency"`
	EntryDate time.Time        `json:"entry_date"`
	Notes     *string          `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
