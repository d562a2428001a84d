package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/repository"
	"muhasebe-backend/internal/services/vendormatch"
)

type VendorHandler struct {
	repo    *repository.VendorRepository
	matcher *vendormatch.Matcher
}

func NewVendorHandler(repo *repository.VendorRepository, matcher *vendormatch.Matcher) *VendorHandler {
	return &VendorHandler{repo: repo, matcher: matcher}
}

func (h *VendorHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vendors, err := h.repo.Search(uid, c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (h *VendorHandler) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	vendor, err := h.ownedVendor(uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if vendor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}
	c.JSON(http.StatusOK, vendor)
}

type createVendorRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	VKN         *string `json:"vkn,omitempty"`
	TCKN        *string `json:"tckn,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (h *VendorHandler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}

	normalized := vendormatch.NormalizeName(req.DisplayName)
	if normalized == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name normalizes to empty"})
		return
	}

	vendor := &models.Vendor{
		ID:             uuid.New(),
		UserID:         uid,
		DisplayName:    req.DisplayName,
		NormalizedName: normalized,
		VKN:            req.VKN,
		TCKN:           req.TCKN,
		Address:        req.Address,
		Phone:          req.Phone,
		Notes:          req.Notes,
		CreatedAt:      time.Now(),
	}
	if err := h.repo.Create(vendor); err != nil {
		respondError(c, err)
		return
	}

	entityType := "vendor"
	entityID := vendor.ID.String()
	if err := h.repo.CreateAudit(&models.AuditLog{
		ID:         uuid.New(),
		UserID:     &uid,
		Action:     "vendor.create",
		EntityType: &entityType,
		EntityID:   &entityID,
		CreatedAt:  time.Now(),
	}); err != nil {
		log.Printf("audit write failed for vendor.create on %s: %v", entityID, err)
	}

	c.JSON(http.StatusCreated, vendor)
}

type updateVendorRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	VKN         *string `json:"vkn,omitempty"`
	TCKN        *string `json:"tckn,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (h *VendorHandler) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	vendor, err := h.ownedVendor(uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if vendor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}

	if req.DisplayName != nil {
		normalized := vendormatch.NormalizeName(*req.DisplayName)
		if normalized == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name normalizes to empty"})
			return
		}
		vendor.DisplayName = *req.DisplayName
		vendor.NormalizedName = normalized
	}
	if req.VKN != nil {
		vendor.VKN = req.VKN
	}
	if req.TCKN != nil {
		vendor.TCKN = req.TCKN
	}
	if req.Address != nil {
		vendor.Address = req.Address
	}
	if req.Phone != nil {
		vendor.Phone = req.Phone
	}
	if req.Notes != nil {
		vendor.Notes = req.Notes
	}

	if err := h.repo.Save(vendor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

type addAliasRequest struct {
	Alias string `json:"alias" binding:"required"`
}

func (h *VendorHandler) AddAlias(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias is required"})
		return
	}

	vendor, err := h.ownedVendor(uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if vendor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}

	normalized := vendormatch.NormalizeName(req.Alias)
	if normalized == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias normalizes to empty"})
		return
	}
	for _, alias := range vendor.Aliases {
		if alias.NormalizedAlias == normalized {
			c.JSON(http.StatusOK, alias)
			return
		}
	}

	alias := &models.VendorAlias{
		ID:              uuid.New(),
		VendorID:        vendor.ID,
		Alias:           req.Alias,
		NormalizedAlias: normalized,
		CreatedAt:       time.Now(),
	}
	if err := h.repo.AddAlias(alias); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alias)
}

// Resolve previews how a name or tax ID would match against the catalog
// without creating anything.
func (h *VendorHandler) Resolve(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	name := c.Query("name")
	vkn := c.Query("vkn")
	tckn := c.Query("tckn")
	if name == "" && vkn == "" && tckn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, vkn or tckn query is required"})
		return
	}

	match, err := h.matcher.Resolve(uid, name, vkn, tckn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

func (h *VendorHandler) ownedVendor(uid, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := h.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil || vendor.UserID != uid {
		return nil, nil
	}
	return vendor, nil
}
