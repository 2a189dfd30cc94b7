package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// ConnectWhatsApp creates and connects the tenant's linked-device
// session. Pairing completes once the QR code is scanned.
func (h *Handler) ConnectWhatsApp(c *gin.Context) {
	tenantID := c.Param("tenantId")

	client, err := h.waManager.ConnectClient(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	phone, name := client.DeviceInfo()
	c.JSON(http.StatusOK, gin.H{
		"status":    "connecting",
		"connected": client.IsLoggedIn(),
		"phone":     phone,
		"name":      name,
	})
}

// GetWhatsAppQR returns the pairing QR code as a PNG.
func (h *Handler) GetWhatsAppQR(c *gin.Context) {
	tenantID := c.Param("tenantId")

	client, err := h.waManager.GetOrCreateClient(tenantID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to create client: "+err.Error())
		return
	}

	if client.Client.Store.ID == nil && !client.Client.IsConnected() {
		if err := client.Connect(); err != nil {
			c.String(http.StatusInternalServerError, "Failed to connect: "+err.Error())
			return
		}
	}

	qrCodeString := client.GetQR()
	if qrCodeString == "" {
		if client.IsLoggedIn() {
			c.String(http.StatusOK, "Already logged in")
			return
		}
		c.String(http.StatusAccepted, "QR code not yet available. Please wait...")
		return
	}

	png, err := qrcode.Encode(qrCodeString, qrcode.Medium, 256)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetWhatsAppStatus(c *gin.Context) {
	tenantID := c.Param("tenantId")

	client := h.waManager.GetClient(tenantID)
	if client == nil {
		client, _ = h.waManager.GetOrCreateClient(tenantID)
	}
	if client == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false, "initialized": false})
		return
	}

	phone, name := client.DeviceInfo()
	c.JSON(http.StatusOK, gin.H{
		"connected":   client.IsLoggedIn(),
		"initialized": true,
		"phone":       phone,
		"name":        name,
		"has_qr":      client.GetQR() != "",
	})
}

// LogoutWhatsApp unlinks the tenant's device. Logout errors mean the
// session is already gone, so the response is success either way.
func (h *Handler) LogoutWhatsApp(c *gin.Context) {
	tenantID := c.Param("tenantId")

	if err := h.waManager.LogoutClient(tenantID); err != nil {
		h.log.Warn("whatsapp logout", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
