package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/models"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateDocument(doc *models.Document) error {
	return r.db.Create(doc).Error
}

func (r *DocumentRepository) GetDocument(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) SaveDocument(doc *models.Document) error {
	return r.db.Save(doc).Error
}

func (r *DocumentRepository) List(userID uuid.UUID, status string, limit, offset int) ([]models.Document, error) {
	var docs []models.Document
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Limit(limit).Offset(offset).Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) HasLedgerEntry(docID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.LedgerEntry{}).Where("document_id = ?", docID).Count(&count).Error
	return count > 0, err
}

// PostWithLedger persists the posted document and its ledger entry in one
// transaction: either both happen or neither does. The unique index on
// ledger_entries.document_id rejects a second posting of the same document
// even under concurrent confirms.
func (r *DocumentRepository) PostWithLedger(doc *models.Document, entry *models.LedgerEntry) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrDuplicateEntry
	}
	return err
}

func (r *DocumentRepository) CreateAudit(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}
