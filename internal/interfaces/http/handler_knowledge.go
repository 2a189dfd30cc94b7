package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wabiz/internal/entities"
)

// writeDomainError maps domain errors to HTTP statuses so every
// handler reports them the same way.
func writeDomainError(c *gin.Context, err error) {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, entities.ErrTenantNotFound),
		errors.Is(err, entities.ErrEntryNotFound),
		errors.Is(err, entities.ErrConversationNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrEntryAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

type knowledgeRequest struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Tags     []string `json:"tags"`
	Priority int      `json:"priority"`
}

func (h *Handler) CreateKnowledge(c *gin.Context) {
	var req knowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	entry := &entities.KnowledgeEntry{
		TenantID: c.Param("tenantId"),
		Category: req.Category,
		Title:    SanitizeString(req.Title),
		Content:  SanitizeString(TruncateString(req.Content, MaxContentLength)),
		Keywords: req.Keywords,
		Tags:     req.Tags,
		Priority: req.Priority,
	}
	if err := h.knowledge.Create(c.Request.Context(), entry); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) GetKnowledge(c *gin.Context) {
	entry, err := h.knowledge.Get(c.Request.Context(), c.Param("tenantId"), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) ListKnowledge(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.knowledge.List(c.Request.Context(), c.Param("tenantId"),
		c.Query("category"), c.Query("search"), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

func (h *Handler) UpdateKnowledge(c *gin.Context) {
	var req knowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	entry := &entities.KnowledgeEntry{
		ID:       c.Param("id"),
		TenantID: c.Param("tenantId"),
		Category: req.Category,
		Title:    SanitizeString(req.Title),
		Content:  SanitizeString(TruncateString(req.Content, MaxContentLength)),
		Keywords: req.Keywords,
		Tags:     req.Tags,
		Priority: req.Priority,
	}
	if err := h.knowledge.Update(c.Request.Context(), entry); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeactivateKnowledge(c *gin.Context) {
	if err := h.knowledge.Deactivate(c.Request.Context(), c.Param("tenantId"), c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (h *Handler) ReactivateKnowledge(c *gin.Context) {
	entry, err := h.knowledge.Reactivate(c.Request.Context(), c.Param("tenantId"), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteKnowledgePermanent(c *gin.Context) {
	if err := h.knowledge.DeletePermanent(c.Request.Context(), c.Param("tenantId"), c.Param("id")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) BulkSetKnowledgeActive(c *gin.Context) {
	var req struct {
		IDs    []string `json:"ids"`
		Active bool     `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	updated, err := h.knowledge.BulkSetActive(c.Request.Context(), c.Param("tenantId"), req.IDs, req.Active)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *Handler) GetKnowledgeStats(c *gin.Context) {
	stats, err := h.knowledge.Stats(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
