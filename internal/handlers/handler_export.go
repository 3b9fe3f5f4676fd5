package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exportHandler handles file export requests.
type exportHandler struct {
	exportService portssvc.ExportSvc
}

// newExportHandler creates a new exportHandler.
func newExportHandler(exportService portssvc.ExportSvc) *exportHandler {
	return &exportHandler{exportService: exportService}
}

func (h *exportHandler) exportCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}

	params := dto.ListEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ExportCSV", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	data, filename, err := h.exportService.ExportCSV(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *exportHandler) exportSpreadsheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}

	params := dto.ListEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ExportSpreadsheet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	stream, contentType, filename, err := h.exportService.ExportSpreadsheet(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		logger.Error("Failed to stream spreadsheet", slog.String("error", err.Error()))
	}
}

// registerExportRoutes registers export routes.
func registerExportRoutes(group *gin.RouterGroup, exportService portssvc.ExportSvc) {
	h := newExportHandler(exportService)

	export := group.Group("/export")
	{
		export.GET("/csv", h.exportCSV)
		export.GET("/spreadsheet", h.exportSpreadsheet)
	}
}
