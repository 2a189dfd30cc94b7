package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wabiz/internal/entities"
)

func (h *Handler) GetTenant(c *gin.Context) {
	tenant, err := h.tenants.Get(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *Handler) UpdateTenantProfile(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Business       string `json:"business"`
		Email          string `json:"email"`
		PhoneNumber    string `json:"phone_number"`
		WelcomeMessage string `json:"welcome_message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	tenant.Name = SanitizeString(req.Name)
	tenant.Business = SanitizeString(req.Business)
	tenant.Email = req.Email
	tenant.PhoneNumber = NormalizePhoneNumber(req.PhoneNumber)
	tenant.Settings.WelcomeMessage = SanitizeString(req.WelcomeMessage)

	if err := h.tenants.UpdateProfile(c.Request.Context(), tenant); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *Handler) UpdateTenantSettings(c *gin.Context) {
	var settings entities.TenantSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.tenants.UpdateSettings(c.Request.Context(), c.Param("tenantId"), settings); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) ToggleAI(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.tenants.ToggleAI(c.Request.Context(), c.Param("tenantId"), req.Enabled); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ai_enabled": req.Enabled})
}

func (h *Handler) ToggleAutoResponse(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.tenants.ToggleAutoResponse(c.Request.Context(), c.Param("tenantId"), req.Enabled); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auto_response_enabled": req.Enabled})
}

func (h *Handler) GetQuotaStatus(c *gin.Context) {
	status, err := h.tenants.QuotaStatus(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) GetUsageHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	history, err := h.tenants.UsageHistory(c.Request.Context(), c.Param("tenantId"), days)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": history})
}

// Admin: platform-level tenant management.

func (h *Handler) ListTenants(c *gin.Context) {
	tenants, err := h.tenants.List(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (h *Handler) OnboardTenant(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Business       string `json:"business"`
		Email          string `json:"email"`
		PhoneNumber    string `json:"phone_number"`
		WhatsAppNumber string `json:"whatsapp_number"`
		WelcomeMessage string `json:"welcome_message"`
		AdminUsername  string `json:"admin_username"`
		AdminPassword  string `json:"admin_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	tenant := &entities.Tenant{
		Name:           SanitizeString(req.Name),
		Business:       SanitizeString(req.Business),
		Email:          req.Email,
		PhoneNumber:    NormalizePhoneNumber(req.PhoneNumber),
		WhatsAppNumber: NormalizePhoneNumber(req.WhatsAppNumber),
		Settings: entities.TenantSettings{
			WelcomeMessage: SanitizeString(req.WelcomeMessage),
		},
	}
	if err := h.tenants.Onboard(c.Request.Context(), tenant, req.AdminUsername, req.AdminPassword); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *Handler) DeleteTenant(c *gin.Context) {
	tenantID := c.Param("tenantId")
	h.waManager.DisconnectClient(tenantID)
	if err := h.tenants.Delete(c.Request.Context(), tenantID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ListConnectedSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connected": h.waManager.ConnectedTenants()})
}
