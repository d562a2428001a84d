package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"muhasebe-backend/internal/services/reports"
)

type ReportHandler struct {
	service *reports.Service
}

func NewReportHandler(service *reports.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Summary(c *gin.Context) {
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

	summary, err := h.service.Summary(uid, c.DefaultQuery("period", "month"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) ByVendor(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	totals, err := h.service.ByVendor(uid, c.DefaultQuery("period", "month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func exportFilename(ext string) string {
	return fmt.Sprintf("defter-%s.%s", time.Now().Format("2006-01-02"), ext)
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
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

	data, err := h.service.ExportCSV(uid, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+exportFilename("csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *ReportHandler) ExportXLSX(c *gin.Context) {
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

	data, err := h.service.ExportXLSX(uid, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+exportFilename("xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
