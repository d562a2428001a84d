package documents

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"muhasebe-backend/internal/services/vendormatch"
)

const rawTextExcerptLen = 500

// Draft is the reviewable payload handed back after an upload: the
// extracted fields, the suggested vendor match and the confidence scores.
type Draft struct {
	DocumentID       uuid.UUID             `json:"document_id"`
	VendorName       *string               `json:"vendor_name,omitempty"`
	SuggestedVendor  *uuid.UUID            `json:"suggested_vendor_id,omitempty"`
	VendorMatchKind  vendormatch.MatchKind `json:"vendor_match_kind"`
	VendorConfidence float64               `json:"vendor_confidence"`
	IsNewVendor      bool                  `json:"is_new_vendor"`
	DocDate          *time.Time            `json:"doc_date,omitempty"`
	TotalGross       *decimal.Decimal      `json:"total_gross,omitempty"`
	TotalTax         *decimal.Decimal      `json:"total_tax,omitempty"`
	Currency         string                `json:"currency"`
	RawTextExcerpt   string                `json:"raw_text_excerpt,omitempty"`
	Confidence       float64               `json:"confidence_score"`
	OCRConfidence    float64               `json:"ocr_confidence"`
}

// ProcessImage runs the full pipeline for one uploaded image: OCR, field
// extraction, vendor resolution, draft creation. Steps are strictly
// ordered; extraction and resolution degrade gracefully while OCR and
// persistence failures propagate.
func (s *Service) ProcessImage(userID uuid.UUID, imagePath, imageSHA256 string) (*Draft, error) {
	result, err := s.engine.ExtractText(imagePath)
	if err != nil {
		return nil, fmt.Errorf("ocr failed for %s: %w", imagePath, err)
	}

	rec := s.extractor.Extract(result.Text)

	match, err := s.matcher.Resolve(userID, deref(rec.VendorName), deref(rec.VKN), deref(rec.TCKN))
	if err != nil {
		return nil, fmt.Errorf("vendor resolution failed: %w", err)
	}

	doc, err := s.CreateDraft(DraftInput{
		UserID:        userID,
		Extraction:    rec,
		Match:         match,
		RawText:       result.Text,
		OCRConfidence: result.Confidence,
		ImageURL:      imagePath,
		ImageSHA256:   imageSHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("draft creation failed: %w", err)
	}

	excerpt := result.Text
	if runes := []rune(excerpt); len(runes) > rawTextExcerptLen {
		excerpt = string(runes[:rawTextExcerptLen])
	}

	return &Draft{
		DocumentID:       doc.ID,
		VendorName:       rec.VendorName,
		SuggestedVendor:  match.VendorID,
		VendorMatchKind:  match.Kind,
		VendorConfidence: match.Similarity,
		IsNewVendor:      match.IsNew,
		DocDate:          rec.DocDate,
		TotalGross:       rec.TotalGross,
		TotalTax:         rec.TotalTax,
		Currency:         rec.Currency,
		RawTextExcerpt:   excerpt,
		Confidence:       rec.Confidence,
		OCRConfidence:    result.Confidence,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
