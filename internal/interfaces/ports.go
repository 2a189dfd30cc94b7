package interfaces

import (
	"context"

	"wabiz/internal/entities"
)

// TextCompletion is the black-box language-model call. Implementations
// return a *entities.CompletionError on failure so callers can
// classify auth/rate-limit/upstream conditions.
type TextCompletion interface {
	Generate(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Messenger sends an outbound WhatsApp message to a phone number.
type Messenger interface {
	SendMessage(to, content string) error
}

// TenantRepository is the read surface the pipeline needs on tenants.
type TenantRepository interface {
	Get(ctx context.Context, tenantID string) (*entities.Tenant, error)
	GetByWhatsAppNumber(ctx context.Context, number string) (*entities.Tenant, error)
}

// KnowledgeRepository supplies active knowledge entries for retrieval.
// filterQuery, when non-empty, restricts results to entries whose
// title, content, keywords or tags contain it (case-insensitive).
// Entries are ordered by priority descending, then most recently
// updated first. An unknown tenant yields an empty slice, not an error.
type KnowledgeRepository interface {
	FindActive(ctx context.Context, tenantID, filterQuery string) ([]entities.KnowledgeEntry, error)
}

// ConversationRepository is the pipeline's view of conversation state.
type ConversationRepository interface {
	// RecentTurns returns at most limit turns in chronological order,
	// taken from the tail of the history. Empty conversation = empty slice.
	RecentTurns(ctx context.Context, tenantID, phone string, limit int) ([]entities.ConversationTurn, error)
	GetOverride(ctx context.Context, tenantID, phone string) (entities.ConversationOverride, error)
	AppendTurn(ctx context.Context, turn *entities.ConversationTurn) error
}

// UsageTracker records message volume and enforces tenant quotas.
type UsageTracker interface {
	CanSend(ctx context.Context, tenantID string, dailyLimit, monthlyLimit int) (bool, string)
	IncrementSent(ctx context.Context, tenantID string) error
	IncrementReceived(ctx context.Context, tenantID string) error
	IncrementAIReply(ctx context.Context, tenantID string) error
}

// MessengerProvider hands out the outbound transport bound to a
// tenant's WhatsApp session.
type MessengerProvider interface {
	MessengerFor(tenantID string) (Messenger, error)
}
