package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/repository"
)

type LedgerHandler struct {
	repo *repository.LedgerRepository
}

func NewLedgerHandler(repo *repository.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{repo: repo}
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

func (h *LedgerHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.repo.List(uid, from, to, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createEntryRequest struct {
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	Direction  string           `json:"direction"`
	Amount     decimal.Decimal  `json:"amount" binding:"required"`
	TaxAmount  *decimal.Decimal `json:"tax_amount,omitempty"`
	Currency   string           `json:"currency"`
	EntryDate  *time.Time       `json:"entry_date,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// Create records a manual ledger entry with no backing document, for
// expenses that never had a receipt.
func (h *LedgerHandler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	direction := req.Direction
	switch direction {
	case "":
		direction = models.EntryDirectionExpense
	case models.EntryDirectionExpense, models.EntryDirectionIncome:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be expense or income"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "TRY"
	}
	entryDate := time.Now()
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}

	entry := &models.LedgerEntry{
		ID:         uuid.New(),
		UserID:     uid,
		VendorID:   req.VendorID,
		CategoryID: req.CategoryID,
		Direction:  direction,
		Amount:     req.Amount,
		TaxAmount:  req.TaxAmount,
		Currency:   currency,
		EntryDate:  entryDate,
		Notes:      req.Notes,
		CreatedAt:  time.Now(),
	}
	if err := h.repo.Create(entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Delete removes a manual entry. Document-backed entries are immutable, so
// the repository treats them as not found here.
func (h *LedgerHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteManual(uid, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *LedgerHandler) ListCategories(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	categories, err := h.repo.ListCategories(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

type createCategoryRequest struct {
	Name     string     `json:"name" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Icon     *string    `json:"icon,omitempty"`
	Color    *string    `json:"color,omitempty"`
}

func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	category := &models.Category{
		ID:        uuid.New(),
		UserID:    uid,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Icon:      req.Icon,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}
	if err := h.repo.CreateCategory(category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}
