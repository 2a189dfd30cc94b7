package usecases

import (
	"context"

	"go.uber.org/zap"

	"wabiz/internal/entities"
	"wabiz/internal/interfaces"
)

// conversationStore is the dashboard-facing surface over conversations.
// *repository.ConversationRepository satisfies it.
type conversationStore interface {
	interfaces.ConversationRepository
	Get(ctx context.Context, tenantID, phone string) (*entities.Conversation, error)
	GetAll(ctx context.Context, tenantID string, limit, offset int) ([]entities.Conversation, error)
	History(ctx context.Context, tenantID, phone string, limit, offset int) ([]entities.ConversationTurn, error)
	SetOverride(ctx context.Context, tenantID, phone string, ov entities.ConversationOverride) error
	MarkAsRead(ctx context.Context, tenantID, phone string) error
	SetContactName(ctx context.Context, tenantID, phone, name string) error
	Stats(ctx context.Context, tenantID string) (map[string]int, error)
}

// ConversationUsecase serves the dashboard: listing threads, reading
// history, pinning per-conversation bot overrides and sending outbound
// messages on behalf of an operator.
type ConversationUsecase struct {
	convs      conversationStore
	tenants    interfaces.TenantRepository
	knowledge  *KnowledgeStore
	completion interfaces.TextCompletion
	messengers interfaces.MessengerProvider
	usage      interfaces.UsageTracker
	log        *zap.Logger
}

func NewConversationUsecase(
	convs conversationStore,
	tenants interfaces.TenantRepository,
	knowledge *KnowledgeStore,
	completion interfaces.TextCompletion,
	messengers interfaces.MessengerProvider,
	usage interfaces.UsageTracker,
	log *zap.Logger,
) *ConversationUsecase {
	return &ConversationUsecase{
		convs:      convs,
		tenants:    tenants,
		knowledge:  knowledge,
		completion: completion,
		messengers: messengers,
		usage:      usage,
		log:        log,
	}
}

func (uc *ConversationUsecase) List(ctx context.Context, tenantID string, limit, offset int) ([]entities.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.convs.GetAll(ctx, tenantID, limit, offset)
}

func (uc *ConversationUsecase) Get(ctx context.Context, tenantID, phone string) (*entities.Conversation, error) {
	return uc.convs.Get(ctx, tenantID, phone)
}

func (uc *ConversationUsecase) History(ctx context.Context, tenantID, phone string, limit, offset int) ([]entities.ConversationTurn, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.convs.History(ctx, tenantID, phone, limit, offset)
}

func (uc *ConversationUsecase) MarkAsRead(ctx context.Context, tenantID, phone string) error {
	return uc.convs.MarkAsRead(ctx, tenantID, phone)
}

func (uc *ConversationUsecase) SetContactName(ctx context.Context, tenantID, phone, name string) error {
	return uc.convs.SetContactName(ctx, tenantID, phone, name)
}

// SetOverride pins the per-conversation bot flags. Nil fields clear
// the override so the conversation follows the tenant setting again.
func (uc *ConversationUsecase) SetOverride(ctx context.Context, tenantID, phone string, ov entities.ConversationOverride) error {
	return uc.convs.SetOverride(ctx, tenantID, phone, ov)
}

func (uc *ConversationUsecase) Stats(ctx context.Context, tenantID string) (map[string]int, error) {
	return uc.convs.Stats(ctx, tenantID)
}

// SendManual delivers an operator-written message and records it as a
// sent turn. Quota applies the same as to automatic replies.
func (uc *ConversationUsecase) SendManual(ctx context.Context, tenantID, phone, text string) error {
	if text == "" {
		return &entities.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	tenant, err := uc.tenants.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if ok, reason := uc.usage.CanSend(ctx, tenantID, tenant.Settings.DailyLimit, tenant.Settings.MonthlyLimit); !ok {
		return &entities.ValidationError{Field: "quota", Reason: reason}
	}

	messenger, err := uc.messengers.MessengerFor(tenantID)
	if err != nil {
		return err
	}
	if err := messenger.SendMessage(phone, text); err != nil {
		return err
	}

	turn := &entities.ConversationTurn{
		TenantID:    tenantID,
		PhoneNumber: phone,
		Text:        text,
		Type:        entities.TurnSent,
	}
	if err := uc.convs.AppendTurn(ctx, turn); err != nil {
		uc.log.Error("manual message sent but not persisted",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
	if err := uc.usage.IncrementSent(ctx, tenantID); err != nil {
		uc.log.Warn("failed to count sent message", zap.Error(err))
	}
	return nil
}

// ComposeAssisted generates a draft reply for the operator using the
// same retrieval and assembly as the automatic pipeline. Unlike the
// auto path it propagates completion errors: the operator is a
// dashboard user who can see and act on them.
func (uc *ConversationUsecase) ComposeAssisted(ctx context.Context, tenantID, phone, question string) (string, error) {
	tenant, err := uc.tenants.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	matches, err := uc.knowledge.Search(ctx, tenantID, question, searchTopK)
	if err != nil {
		uc.log.Warn("knowledge search failed for assisted draft", zap.Error(err))
		matches = nil
	}
	history, err := uc.convs.RecentTurns(ctx, tenantID, phone, historyDepth)
	if err != nil {
		uc.log.Warn("history read failed for assisted draft", zap.Error(err))
		history = nil
	}

	contextBlock := AssembleContext(tenant, question, matches, history)
	userContent := contextBlock + "\n\nPregunta: " + question
	return uc.completion.Generate(ctx, composerSystemPrompt, userContent)
}

// SendAssisted delivers an operator-approved AI draft and records it
// as an ai-assisted turn.
func (uc *ConversationUsecase) SendAssisted(ctx context.Context, tenantID, phone, text, prompt string) error {
	if text == "" {
		return &entities.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	messenger, err := uc.messengers.MessengerFor(tenantID)
	if err != nil {
		return err
	}
	if err := messenger.SendMessage(phone, text); err != nil {
		return err
	}

	turn := &entities.ConversationTurn{
		TenantID:    tenantID,
		PhoneNumber: phone,
		Text:        text,
		Type:        entities.TurnAIAssisted,
		AIPrompt:    prompt,
	}
	if err := uc.convs.AppendTurn(ctx, turn); err != nil {
		uc.log.Error("assisted message sent but not persisted",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
	if err := uc.usage.IncrementSent(ctx, tenantID); err != nil {
		uc.log.Warn("failed to count sent message", zap.Error(err))
	}
	if err := uc.usage.IncrementAIReply(ctx, tenantID); err != nil {
		uc.log.Warn("failed to count ai reply", zap.Error(err))
	}
	return nil
}
