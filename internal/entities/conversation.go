package entities

import "time"

// TurnType discriminates the origin of a conversation turn.
type TurnType string

const (
	TurnReceived   TurnType = "received"    // Inbound message from the end user
	TurnSent       TurnType = "sent"        // Manual outbound message
	TurnAIAuto     TurnType = "ai-auto"     // Automatic reply generated by the pipeline
	TurnAIAssisted TurnType = "ai-assisted" // Operator-triggered AI-generated message
)

// ValidTurnType reports whether t is a known turn type.
func ValidTurnType(t TurnType) bool {
	switch t {
	case TurnReceived, TurnSent, TurnAIAuto, TurnAIAssisted:
		return true
	}
	return false
}

// ConversationTurn is one immutable exchange direction within a
// conversation. Turns are append-only: never mutated after creation,
// always retrievable in chronological order.
type ConversationTurn struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	PhoneNumber string    `json:"phone_number"`
	Text        string    `json:"text"`
	Type        TurnType  `json:"type"`
	ProviderID  string    `json:"provider_id,omitempty"` // Message SID from the transport, if any
	AIPrompt    string    `json:"ai_prompt,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationOverride is the per-conversation tri-state override of
// the tenant toggles. A nil field means "defer to the tenant setting".
type ConversationOverride struct {
	AIEnabled           *bool `json:"ai_enabled"`
	AutoResponseEnabled *bool `json:"auto_response_enabled"`
}

// Conversation is the thread between one tenant and one end-user
// phone number, with the last message denormalized for listing.
type Conversation struct {
	ID              string               `json:"id"`
	TenantID        string               `json:"tenant_id"`
	PhoneNumber     string               `json:"phone_number"`
	ContactName     string               `json:"contact_name,omitempty"`
	LastMessageText string               `json:"last_message_text,omitempty"`
	LastMessageType TurnType             `json:"last_message_type,omitempty"`
	LastMessageAt   time.Time            `json:"last_message_at"`
	UnreadCount     int                  `json:"unread_count"`
	Override        ConversationOverride `json:"override"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
