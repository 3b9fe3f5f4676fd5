package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// sessionHandler handles HTTP requests for editing sessions.
type sessionHandler struct {
	editorService     portssvc.EditorSvc
	suggestionService portssvc.SuggestionSvc
}

// newSessionHandler creates a new sessionHandler.
func newSessionHandler(editorService portssvc.EditorSvc, suggestionService portssvc.SuggestionSvc) *sessionHandler {
	return &sessionHandler{
		editorService:     editorService,
		suggestionService: suggestionService,
	}
}

func (h *sessionHandler) openSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.OpenSessionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for OpenSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.editorService.OpenSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *sessionHandler) getSession(c *gin.Context) {
	resp, err := h.editorService.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) closeSession(c *gin.Context) {
	if err := h.editorService.CloseSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *sessionHandler) updateHeader(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.UpdateHeaderRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateHeader", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.editorService.UpdateHeader(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) addLine(c *gin.Context) {
	resp, err := h.editorService.AddLine(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// lineIndex parses the :index path parameter.
func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line index"})
		return 0, false
	}
	return index, true
}

func (h *sessionHandler) duplicateLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	resp, err := h.editorService.DuplicateLine(c.Request.Context(), c.Param("sessionID"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) removeLine(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	resp, err := h.editorService.RemoveLine(c.Request.Context(), c.Param("sessionID"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) updateLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	index, ok := lineIndex(c)
	if !ok {
		return
	}

	req := dto.UpdateLineRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.editorService.UpdateLine(c.Request.Context(), c.Param("sessionID"), index, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) commitAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	index, ok := lineIndex(c)
	if !ok {
		return
	}

	req := dto.CommitAmountRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CommitAmount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.editorService.CommitAmount(c.Request.Context(), c.Param("sessionID"), index, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) save(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.editorService.Save(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Session saved", slog.String("entry_id", resp.EntryID))
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) applyDraft(c *gin.Context) {
	resp, err := h.editorService.ApplyDraft(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) discardDraft(c *gin.Context) {
	resp, err := h.editorService.DiscardDraft(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) applyTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ApplyTemplateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ApplyTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.suggestionService.ApplyTemplate(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) suggest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.SuggestRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for Suggest", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.suggestionService.SuggestLines(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) similar(c *gin.Context) {
	resp, err := h.suggestionService.SimilarEntries(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) applySimilar(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ApplySimilarRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ApplySimilar", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.suggestionService.ApplySimilar(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// registerSessionRoutes registers editing session routes.
func registerSessionRoutes(group *gin.RouterGroup, editorService portssvc.EditorSvc, suggestionService portssvc.SuggestionSvc) {
	h := newSessionHandler(editorService, suggestionService)

	sessions := group.Group("/sessions")
	{
		sessions.POST("", h.openSession)
		sessions.GET("/:sessionID", h.getSession)
		sessions.DELETE("/:sessionID", h.closeSession)
		sessions.PATCH("/:sessionID", h.updateHeader)
		sessions.POST("/:sessionID/save", h.save)

		sessions.POST("/:sessionID/lines", h.addLine)
		sessions.POST("/:sessionID/lines/:index/duplicate", h.duplicateLine)
		sessions.DELETE("/:sessionID/lines/:index", h.removeLine)
		sessions.PATCH("/:sessionID/lines/:index", h.updateLine)
		sessions.POST("/:sessionID/lines/:index/amount", h.commitAmount)

		sessions.POST("/:sessionID/draft/apply", h.applyDraft)
		sessions.POST("/:sessionID/draft/discard", h.discardDraft)

		sessions.POST("/:sessionID/template", h.applyTemplate)
		sessions.POST("/:sessionID/suggest", h.suggest)
		sessions.GET("/:sessionID/similar", h.similar)
		sessions.POST("/:sessionID/similar/apply", h.applySimilar)
	}
}
