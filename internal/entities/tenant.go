package entities

import "time"

// TenantSettings holds the tenant-level bot behavior switches.
// Both flags default to true for new tenants; per-conversation
// overrides (see ConversationOverride) take precedence.
type TenantSettings struct {
	AIEnabled           bool   `json:"ai_enabled"`
	AutoResponseEnabled bool   `json:"auto_response_enabled"`
	WelcomeMessage      string `json:"welcome_message"`
	DailyLimit          int    `json:"daily_limit"`   // Max auto-replies per day (0 = unlimited)
	MonthlyLimit        int    `json:"monthly_limit"` // Max auto-replies per month (0 = unlimited)
}

// Tenant is a business customer of the platform. It owns a knowledge
// base, a WhatsApp number and its own bot settings.
type Tenant struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Business       string         `json:"business"`
	Email          string         `json:"email"`
	PhoneNumber    string         `json:"phone_number"`
	WhatsAppNumber string         `json:"whatsapp_number"` // Business number inbound messages arrive on
	Settings       TenantSettings `json:"settings"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
