package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/repository"
	"muhasebe-backend/internal/services/documents"
)

var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type DocumentHandler struct {
	service       *documents.Service
	repo          *repository.DocumentRepository
	uploadDir     string
	maxUploadSize int64
}

func NewDocumentHandler(service *documents.Service, repo *repository.DocumentRepository, uploadDir string, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{service: service, repo: repo, uploadDir: uploadDir, maxUploadSize: maxUploadSize}
}

func (h *DocumentHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.repo.List(uid, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) ListDrafts(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	docs, err := h.repo.List(uid, models.DocumentStatusDraft, 50, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.Get(uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Upload accepts a receipt image, stores it under its content hash and runs
// the OCR -> extraction -> resolution pipeline, returning a reviewable
// draft.
func (h *DocumentHandler) Upload(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, allowed := allowedUploadTypes[contentType]
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file type %q not allowed", contentType)})
		return
	}
	if header.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large, max %d bytes", h.maxUploadSize)})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondError(c, err)
		return
	}
	path := filepath.Join(h.uploadDir, hash+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		respondError(c, err)
		return
	}

	draft, err := h.service.ProcessImage(uid, path, hash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DocumentHandler) Confirm(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var overrides documents.Overrides
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	doc, err := h.service.Confirm(uid, id, overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Cancel(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.Cancel(uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var overrides documents.Overrides
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	doc, err := h.service.Update(uid, id, overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
