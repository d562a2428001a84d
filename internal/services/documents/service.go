package documents

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/extraction"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/ocr"
	"muhasebe-backend/internal/services/vendormatch"
)

// Store is the persistence surface the lifecycle controller needs.
// PostWithLedger must be atomic and must fail with common.ErrDuplicateEntry
// when a ledger entry already references the document.
type Store interface {
	CreateDocument(doc *models.Document) error
	GetDocument(id uuid.UUID) (*models.Document, error)
	SaveDocument(doc *models.Document) error
	HasLedgerEntry(docID uuid.UUID) (bool, error)
	PostWithLedger(doc *models.Document, entry *models.LedgerEntry) error
	CreateAudit(entry *models.AuditLog) error
}

// OCREngine is the external text-recognition collaborator.
type OCREngine interface {
	ExtractText(imagePath string) (*ocr.Result, error)
}

// Service owns the draft -> posted/cancelled state machine and orchestrates
// extraction and vendor resolution into reviewable drafts.
type Service struct {
	store     Store
	extractor *extraction.Extractor
	matcher   *vendormatch.Matcher
	engine    OCREngine
}

func NewService(store Store, extractor *extraction.Extractor, matcher *vendormatch.Matcher, engine OCREngine) *Service {
	return &Service{store: store, extractor: extractor, matcher: matcher, engine: engine}
}

// Overrides enumerates every field a caller may set on top of extracted
// values. Nil means "keep the current value".
type Overrides struct {
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	DocDate    *time.Time       `json:"doc_date,omitempty"`
	DocNo      *string          `json:"doc_no,omitempty"`
	DocType    *string          `json:"doc_type,omitempty"`
	TotalGross *decimal.Decimal `json:"total_gross,omitempty"`
	TotalTax   *decimal.Decimal `json:"total_tax,omitempty"`
	Currency   *string          `json:"currency,omitempty"`
	Direction  *string          `json:"direction,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// applyOverrides is the single merge point for caller-supplied values. Net
// is recomputed, never overridden directly.
func applyOverrides(doc *models.Document, ov Overrides) {
	if ov.VendorID != nil {
		doc.VendorID = ov.VendorID
	}
	if ov.DocDate != nil {
		doc.DocDate = ov.DocDate
	}
	if ov.DocNo != nil {
		doc.DocNo = ov.DocNo
	}
	if ov.DocType != nil {
		doc.DocType = *ov.DocType
	}
	if ov.TotalGross != nil {
		doc.TotalGross = ov.TotalGross
	}
	if ov.TotalTax != nil {
		doc.TotalTax = ov.TotalTax
	}
	if ov.Currency != nil {
		doc.Currency = *ov.Currency
	}
	if ov.Notes != nil {
		doc.Notes = ov.Notes
	}

	if doc.TotalGross != nil && doc.TotalTax != nil {
		net := doc.TotalGross.Sub(*doc.TotalTax)
		doc.TotalNet = &net
	} else {
		doc.TotalNet = nil
	}
}

// DraftInput carries everything needed to persist a draft document.
type DraftInput struct {
	UserID        uuid.UUID
	Extraction    extraction.Record
	Match         vendormatch.Match
	RawText       string
	OCRConfidence float64
	ImageURL      string
	ImageSHA256   string
}

// CreateDraft builds a draft document from an extraction record and a
// vendor match. It never validates field plausibility; that is the
// reviewer's job.
func (s *Service) CreateDraft(in DraftInput) (*models.Document, error) {
	doc := &models.Document{
		ID:         uuid.New(),
		UserID:     in.UserID,
		Status:     models.DocumentStatusDraft,
		DocType:    models.DocumentTypeReceipt,
		DocDate:    in.Extraction.DocDate,
		DocNo:      in.Extraction.DocNo,
		Currency:   in.Extraction.Currency,
		TotalGross: in.Extraction.TotalGross,
		TotalTax:   in.Extraction.TotalTax,
		TotalNet:   in.Extraction.TotalNet,
	}
	if !in.Match.IsNew {
		doc.VendorID = in.Match.VendorID
	}
	if in.RawText != "" {
		doc.RawOCRText = &in.RawText
	}
	if in.ImageURL != "" {
		doc.ImageURL = &in.ImageURL
	}
	if in.ImageSHA256 != "" {
		doc.ImageSHA256 = &in.ImageSHA256
	}

	confidence := in.Extraction.Confidence
	doc.ConfidenceScore = &confidence

	if payload, err := json.Marshal(in.Extraction); err == nil {
		doc.ExtractionJSON = datatypes.JSON(payload)
	}

	if err := s.store.CreateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Confirm transitions a draft to posted and creates its single ledger
// entry. The status change and the entry creation are atomic; a document
// that already has an entry is rejected outright.
func (s *Service) Confirm(userID, docID uuid.UUID, ov Overrides) (*models.Document, error) {
	doc, err := s.ownedDocument(userID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocumentStatusDraft {
		return nil, &StateError{Op: "confirm", Current: doc.Status}
	}

	exists, err := s.store.HasLedgerEntry(doc.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrLedgerExists
	}

	applyOverrides(doc, ov)
	if doc.TotalGross == nil {
		return nil, ErrMissingAmount
	}

	doc.Status = models.DocumentStatusPosted
	doc.UpdatedAt = time.Now()

	entry := s.buildLedgerEntry(doc, ov)
	if err := s.store.PostWithLedger(doc, entry); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return nil, ErrLedgerExists
		}
		return nil, err
	}

	s.audit(userID, "document.confirm", doc.ID)
	return doc, nil
}

// Cancel transitions a draft to cancelled. Posted documents cannot be
// cancelled; reversing a posting is a separate, explicit operation that
// this service does not offer.
func (s *Service) Cancel(userID, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.ownedDocument(userID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocumentStatusDraft {
		return nil, &StateError{Op: "cancel", Current: doc.Status}
	}

	doc.Status = models.DocumentStatusCancelled
	doc.UpdatedAt = time.Now()
	if err := s.store.SaveDocument(doc); err != nil {
		return nil, err
	}

	s.audit(userID, "document.cancel", doc.ID)
	return doc, nil
}

// Update applies field overrides to a draft without changing its status.
func (s *Service) Update(userID, docID uuid.UUID, ov Overrides) (*models.Document, error) {
	doc, err := s.ownedDocument(userID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocumentStatusDraft {
		return nil, &StateError{Op: "update", Current: doc.Status}
	}

	applyOverrides(doc, ov)
	doc.UpdatedAt = time.Now()
	if err := s.store.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Get(userID, docID uuid.UUID) (*models.Document, error) {
	return s.ownedDocument(userID, docID)
}

func (s *Service) ownedDocument(userID, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.store.GetDocument(docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, common.ErrNotFound
	}
	return doc, nil
}

func (s *Service) buildLedgerEntry(doc *models.Document, ov Overrides) *models.LedgerEntry {
	direction := models.EntryDirectionExpense
	if ov.Direction != nil {
		direction = *ov.Direction
	}

	entryDate := time.Now()
	if doc.DocDate != nil {
		entryDate = *doc.DocDate
	}

	docID := doc.ID
	return &models.LedgerEntry{
		ID:         uuid.New(),
		UserID:     doc.UserID,
		VendorID:   doc.VendorID,
		DocumentID: &docID,
		CategoryID: ov.CategoryID,
		Direction:  direction,
		Amount:     *doc.TotalGross,
		TaxAmount:  doc.TotalTax,
		Currency:   doc.Currency,
		EntryDate:  entryDate,
		CreatedAt:  time.Now(),
	}
}

func (s *Service) audit(userID uuid.UUID, action string, docID uuid.UUID) {
	entityType := "document"
	entityID := docID.String()
	err := s.store.CreateAudit(&models.AuditLog{
		ID:         uuid.New(),
		UserID:     &userID,
		Action:     action,
		EntityType: &entityType,
		EntityID:   &entityID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		log.Printf("audit write failed for %s on %s: %v", action, entityID, err)
	}
}
