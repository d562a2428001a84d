package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DocumentStatusDraft     = "draft"
	DocumentStatusPosted    = "posted"
	DocumentStatusCancelled = "cancelled"
)

const (
	DocumentTypeReceipt = "receipt"
	DocumentTypeInvoice = "invoice"
	DocumentTypeOther   = "other"
)

// Document is a scanned receipt or invoice. It is created as a draft and only
// ever moves to posted or cancelled, both terminal.
type Document struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	VendorID *uuid.UUID `gorm:"type:uuid;index" json:"vendor_id,omitempty"`

	Status  string `gorm:"size:20;index;default:draft" json:"status"`
	DocType string `gorm:"size:20;default:receipt" json:"doc_type"`

	DocDate  *time.Time `gorm:"type:date" json:"doc_date,omitempty"`
	DocNo    *string    `gorm:"size:100" json:"doc_no,omitempty"`
	Currency string     `gorm:"size:3;default:TRY" json:"currency"`

	TotalGross *decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_gross,omitempty"`
	TotalTax   *decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_tax,omitempty"`
	TotalNet   *decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_net,omitempty"`

	RawOCRText      *string        `json:"raw_ocr_text,omitempty"`
	ExtractionJSON  datatypes.JSON `json:"extraction_json,omitempty"`
	ConfidenceScore *float64       `json:"confidence_score,omitempty"`

	ImageURL    *string `gorm:"size:500" json:"image_url,omitempty"`
	ImageSHA256 *string `gorm:"size:64" json:"image_sha256,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
