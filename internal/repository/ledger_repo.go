package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/models"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(entry *models.LedgerEntry) error {
	err := r.db.Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrDuplicateEntry
	}
	return err
}

func (r *LedgerRepository) GetByID(id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerRepository) List(userID uuid.UUID, from, to *time.Time, limit, offset int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	query := r.db.Where("user_id = ?", userID).Order("entry_date DESC")
	if from != nil {
		query = query.Where("entry_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("entry_date <= ?", *to)
	}
	err := query.Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

type PeriodTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Tax     decimal.Decimal
	Count   int64
}

func (r *LedgerRepository) TotalsForPeriod(userID uuid.UUID, from, to time.Time) (PeriodTotals, error) {
	var row struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
		Tax     decimal.Decimal
		Count   int64
	}
	err := r.db.Model(&models.LedgerEntry{}).
		Select(
			"COALESCE(SUM(amount) FILTER (WHERE direction = ?), 0) AS income, "+
				"COALESCE(SUM(amount) FILTER (WHERE direction = ?), 0) AS expense, "+
				"COALESCE(SUM(tax_amount), 0) AS tax, "+
				"COUNT(*) AS count",
			models.EntryDirectionIncome, models.EntryDirectionExpense,
		).
		Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, from, to).
		Scan(&row).Error
	return PeriodTotals{Income: row.Income, Expense: row.Expense, Tax: row.Tax, Count: row.Count}, err
}

// DeleteManual removes a manual entry. Entries backed by a document are
// immutable and can only be reversed through the document lifecycle.
func (r *LedgerRepository) DeleteManual(userID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ? AND document_id IS NULL", id, userID).
		Delete(&models.LedgerEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *LedgerRepository) ListCategories(userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *LedgerRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

type VendorTotal struct {
	VendorName string          `json:"vendor"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

func (r *LedgerRepository) ExpenseByVendor(userID uuid.UUID, from time.Time, limit int) ([]VendorTotal, error) {
	var rows []VendorTotal
	err := r.db.Model(&models.LedgerEntry{}).
		Select("vendors.display_name AS vendor_name, SUM(ledger_entries.amount) AS total, COUNT(ledger_entries.id) AS count").
		Joins("JOIN vendors ON vendors.id = ledger_entries.vendor_id").
		Where("ledger_entries.user_id = ? AND ledger_entries.entry_date >= ? AND ledger_entries.direction = ?",
			userID, from, models.EntryDirectionExpense).
		Group("vendors.id, vendors.display_name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
