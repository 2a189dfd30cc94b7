package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wabiz/internal/entities"
	"wabiz/internal/infrastructure"
	"wabiz/internal/interfaces"
	"wabiz/internal/usecases"
)

var errNoTransport = errors.New("no outbound transport available for tenant")

type Handler struct {
	inbound       *usecases.InboundService
	knowledge     *usecases.KnowledgeUsecase
	conversations *usecases.ConversationUsecase
	tenants       *usecases.TenantUsecase
	tenantRepo    interfaces.TenantRepository
	waManager     *infrastructure.WhatsAppManager
	cloudSender   interfaces.Messenger // nil when the Cloud API transport is not configured
	log           *zap.Logger
}

func NewHandler(
	inbound *usecases.InboundService,
	knowledge *usecases.KnowledgeUsecase,
	conversations *usecases.ConversationUsecase,
	tenants *usecases.TenantUsecase,
	tenantRepo interfaces.TenantRepository,
	waManager *infrastructure.WhatsAppManager,
	cloudSender interfaces.Messenger,
	log *zap.Logger,
) *Handler {
	return &Handler{
		inbound:       inbound,
		knowledge:     knowledge,
		conversations: conversations,
		tenants:       tenants,
		tenantRepo:    tenantRepo,
		waManager:     waManager,
		cloudSender:   cloudSender,
		log:           log,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, auth *usecases.AuthUsecase, middleware *Middleware) {
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size
	r.Use(middleware.CORSMiddleware())

	// Public Routes
	r.POST("/webhook/whatsapp", h.HandleWebhook)

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", func(c *gin.Context) {
			var loginReq struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&loginReq); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			token, err := auth.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}

	// Protected tenant-scoped routes
	api := r.Group("/api/tenants/:tenantId")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.TenantScoped())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("", h.GetTenant)
		api.PUT("", h.UpdateTenantProfile)
		api.PUT("/settings", h.UpdateTenantSettings)
		api.PUT("/toggles/ai", h.ToggleAI)
		api.PUT("/toggles/auto-response", h.ToggleAutoResponse)
		api.GET("/quota", h.GetQuotaStatus)
		api.GET("/usage", h.GetUsageHistory)

		// Additional dashboard accounts for this tenant
		api.POST("/users", func(c *gin.Context) {
			var req struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			if err := auth.Register(c.Request.Context(), req.Username, req.Password, c.Param("tenantId")); err != nil {
				writeDomainError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"status": "registered"})
		})

		// Knowledge authoring
		api.GET("/knowledge", h.ListKnowledge)
		api.POST("/knowledge", h.CreateKnowledge)
		api.GET("/knowledge/stats", h.GetKnowledgeStats)
		api.POST("/knowledge/bulk", h.BulkSetKnowledgeActive)
		api.GET("/knowledge/:id", h.GetKnowledge)
		api.PUT("/knowledge/:id", h.UpdateKnowledge)
		api.DELETE("/knowledge/:id", h.DeactivateKnowledge)
		api.POST("/knowledge/:id/reactivate", h.ReactivateKnowledge)
		api.DELETE("/knowledge/:id/permanent", h.DeleteKnowledgePermanent)

		// Conversations
		api.GET("/conversations", h.ListConversations)
		api.GET("/conversations/stats", h.GetConversationStats)
		api.GET("/conversations/:phone", h.GetConversation)
		api.GET("/conversations/:phone/history", h.GetConversationHistory)
		api.POST("/conversations/:phone/read", h.MarkConversationRead)
		api.PUT("/conversations/:phone/contact", h.SetContactName)
		api.PUT("/conversations/:phone/override", h.SetConversationOverride)
		api.POST("/conversations/:phone/messages", h.SendManualMessage)
		api.POST("/conversations/:phone/compose", h.ComposeAssistedDraft)
		api.POST("/conversations/:phone/send-assisted", h.SendAssistedMessage)

		// Linked-device session management
		api.POST("/whatsapp/connect", h.ConnectWhatsApp)
		api.GET("/whatsapp/qr", h.GetWhatsAppQR)
		api.GET("/whatsapp/status", h.GetWhatsAppStatus)
		api.POST("/whatsapp/logout", h.LogoutWhatsApp)
	}

	// Platform admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/tenants", h.ListTenants)
		admin.POST("/tenants", h.OnboardTenant)
		admin.DELETE("/tenants/:tenantId", h.DeleteTenant)
		admin.GET("/whatsapp/connected", h.ListConnectedSessions)
	}
}

// HandleWebhook receives an inbound message from the Cloud API
// transport. The business number it arrived on (To) selects the
// tenant; the pipeline decides whether to answer.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var payload struct {
		From     string `form:"From" json:"from"`
		To       string `form:"To" json:"to"`
		Body     string `form:"Body" json:"body"`
		MediaURL string `form:"MediaUrl" json:"media_url"`
		SID      string `form:"MessageSid" json:"message_sid"`
	}
	if err := c.ShouldBind(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	from := NormalizePhoneNumber(payload.From)
	to := NormalizePhoneNumber(payload.To)
	text := SanitizeString(TruncateString(payload.Body, MaxMessageLength))
	if from == "" || to == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "From, To and Body are required"})
		return
	}

	tenant, err := h.tenantRepo.GetByWhatsAppNumber(c.Request.Context(), to)
	if err != nil {
		// Unknown destination number. Acknowledge so the transport
		// does not retry forever, but do nothing.
		h.log.Warn("webhook for unknown business number", zap.String("to", to))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := entities.InboundMessage{
		TenantID:   tenant.ID,
		From:       from,
		To:         to,
		Text:       text,
		MediaURL:   payload.MediaURL,
		ProviderID: payload.SID,
	}

	result := h.inbound.HandleInbound(c.Request.Context(), msg)
	if result.ShouldReply {
		if err := h.sendReply(tenant.ID, from, result.ReplyText); err != nil {
			h.log.Error("failed to send auto-reply",
				zap.String("tenant_id", tenant.ID), zap.Error(err))
		} else {
			h.inbound.RecordAutoReply(c.Request.Context(), tenant.ID, from, result.ReplyText)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "received", "replied": result.ShouldReply})
}

// sendReply prefers the tenant's linked device and falls back to the
// Cloud API transport.
func (h *Handler) sendReply(tenantID, to, text string) error {
	if messenger, err := h.waManager.MessengerFor(tenantID); err == nil {
		return messenger.SendMessage(to, text)
	}
	if h.cloudSender != nil {
		return h.cloudSender.SendMessage(to, text)
	}
	return errNoTransport
}
