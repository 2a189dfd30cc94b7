package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabiz/internal/entities"
)

func (h *Handler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	convs, err := h.conversations.List(c.Request.Context(), c.Param("tenantId"), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *Handler) GetConversation(c *gin.Context) {
	conv, err := h.conversations.Get(c.Request.Context(), c.Param("tenantId"), c.Param("phone"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *Handler) GetConversationHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	turns, err := h.conversations.History(c.Request.Context(), c.Param("tenantId"), c.Param("phone"), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

func (h *Handler) MarkConversationRead(c *gin.Context) {
	if err := h.conversations.MarkAsRead(c.Request.Context(), c.Param("tenantId"), c.Param("phone")); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) SetContactName(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.conversations.SetContactName(c.Request.Context(), c.Param("tenantId"), c.Param("phone"), SanitizeString(req.Name)); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// SetConversationOverride pins the per-conversation bot flags. Omitted
// (null) fields clear the override back to the tenant setting.
func (h *Handler) SetConversationOverride(c *gin.Context) {
	var req struct {
		AIEnabled           *bool `json:"ai_enabled"`
		AutoResponseEnabled *bool `json:"auto_response_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ov := entities.ConversationOverride{
		AIEnabled:           req.AIEnabled,
		AutoResponseEnabled: req.AutoResponseEnabled,
	}
	if err := h.conversations.SetOverride(c.Request.Context(), c.Param("tenantId"), c.Param("phone"), ov); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) GetConversationStats(c *gin.Context) {
	stats, err := h.conversations.Stats(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) SendManualMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	phone := NormalizePhoneNumber(c.Param("phone"))
	if !ValidPhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	err := h.conversations.SendManual(c.Request.Context(), c.Param("tenantId"), phone,
		SanitizeString(TruncateString(req.Text, MaxMessageLength)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// ComposeAssistedDraft generates an AI draft for the operator without
// sending it. Completion failures are reported, not hidden behind a
// fallback: the operator decides what to do.
func (h *Handler) ComposeAssistedDraft(c *gin.Context) {
	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	draft, err := h.conversations.ComposeAssisted(c.Request.Context(),
		c.Param("tenantId"), c.Param("phone"), SanitizeString(req.Question))
	if err != nil {
		var ce *entities.CompletionError
		if errors.As(err, &ce) {
			h.log.Warn("assisted draft failed", zap.String("kind", string(ce.Kind)), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Draft generation failed", "kind": string(ce.Kind)})
			return
		}
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (h *Handler) SendAssistedMessage(c *gin.Context) {
	var req struct {
		Text   string `json:"text"`
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	phone := NormalizePhoneNumber(c.Param("phone"))
	if !ValidPhoneNumber(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	err := h.conversations.SendAssisted(c.Request.Context(), c.Param("tenantId"), phone,
		SanitizeString(TruncateString(req.Text, MaxMessageLength)), req.Prompt)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
