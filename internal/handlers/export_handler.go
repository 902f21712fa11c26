package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/services/export"
	"github.com/estatelink/backend/internal/services/lead"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler streams xlsx downloads
type ExportHandler struct {
	exports *export.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports *export.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Leads streams the filtered lead list as a workbook
func (h *ExportHandler) Leads(c *gin.Context) {
	filter := lead.ListLeadsFilter{
		Status:       c.Query("status"),
		Country:      c.Query("country"),
		AmbassadorID: c.Query("ambassador_id"),
		DeveloperID:  c.Query("developer_id"),
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		filter.From = from
	} else {
		return
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		filter.To = to
	} else {
		return
	}

	workbook, err := h.exports.LeadsWorkbook(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	h.stream(c, workbook, "leads")
}

// Ambassadors streams the ambassador list as a workbook
func (h *ExportHandler) Ambassadors(c *gin.Context) {
	workbook, err := h.exports.AmbassadorsWorkbook(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.stream(c, workbook, "ambassadors")
}

// Developers streams the developer list as a workbook
func (h *ExportHandler) Developers(c *gin.Context) {
	workbook, err := h.exports.DevelopersWorkbook(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.stream(c, workbook, "developers")
}

func (h *ExportHandler) stream(c *gin.Context, workbook *excelize.File, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	if err := workbook.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
