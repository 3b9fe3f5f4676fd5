package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests for entry listing and lifecycle
// transitions.
type entryHandler struct {
	lifecycleService  portssvc.LifecycleSvc
	suggestionService portssvc.SuggestionSvc
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(lifecycleService portssvc.LifecycleSvc, suggestionService portssvc.SuggestionSvc) *entryHandler {
	return &entryHandler{
		lifecycleService:  lifecycleService,
		suggestionService: suggestionService,
	}
}

func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}

	params := dto.ListEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.lifecycleService.ListEntries(c.Request.Context(), companyID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) getEntry(c *gin.Context) {
	resp, err := h.lifecycleService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.PostEntryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.lifecycleService.PostEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Entry posted", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) voidEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.VoidEntryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for VoidEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.lifecycleService.VoidEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) reactivateEntry(c *gin.Context) {
	resp, err := h.lifecycleService.ReactivateEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.CorrectionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.lifecycleService.ReverseEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) adjustEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	req := dto.CorrectionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for AdjustEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.lifecycleService.AdjustEntry(c.Request.Context(), entryID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) listTemplates(c *gin.Context) {
	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}
	resp, err := h.suggestionService.ListTemplates(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *entryHandler) suggestAccounts(c *gin.Context) {
	companyID := c.Query("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}
	resp, err := h.suggestionService.SuggestAccounts(c.Request.Context(), companyID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// registerEntryRoutes registers entry listing, lifecycle and lookup routes.
func registerEntryRoutes(group *gin.RouterGroup, lifecycleService portssvc.LifecycleSvc, suggestionService portssvc.SuggestionSvc) {
	h := newEntryHandler(lifecycleService, suggestionService)

	entries := group.Group("/entries")
	{
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/void", h.voidEntry)
		entries.POST("/:entryID/reactivate", h.reactivateEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
		entries.POST("/:entryID/adjust", h.adjustEntry)
	}

	group.GET("/templates", h.listTemplates)
	group.GET("/accounts/suggest", h.suggestAccounts)
}
