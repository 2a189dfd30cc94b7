package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wabiz/internal/entities"
	"wabiz/internal/infrastructure"
	"wabiz/internal/interfaces"
)

// pipelineTimeout bounds the whole assemble-and-compose sequence so a
// slow completion call cannot hold a webhook open indefinitely.
const pipelineTimeout = 25 * time.Second

const (
	searchTopK   = 3
	historyDepth = 8
)

// InboundResult tells the transport layer what to do after the
// pipeline ran. When ShouldReply is false the message was still
// persisted; the bot just stays quiet.
type InboundResult struct {
	ShouldReply bool
	ReplyText   string
}

// InboundService runs the auto-reply pipeline for one inbound message:
// persist the turn, resolve the toggle chain, retrieve knowledge and
// history, assemble context and compose a reply. It degrades rather
// than fails: any internal error results in no auto-reply, never a
// dropped message or a panic up the webhook stack.
type InboundService struct {
	tenants   interfaces.TenantRepository
	convs     interfaces.ConversationRepository
	knowledge *KnowledgeStore
	composer  *ResponseComposer
	usage     interfaces.UsageTracker
	guard     *infrastructure.ConversationGuard
	limiter   *infrastructure.ReplyRateLimiter
	log       *zap.Logger
}

func NewInboundService(
	tenants interfaces.TenantRepository,
	convs interfaces.ConversationRepository,
	knowledge *KnowledgeStore,
	composer *ResponseComposer,
	usage interfaces.UsageTracker,
	guard *infrastructure.ConversationGuard,
	limiter *infrastructure.ReplyRateLimiter,
	log *zap.Logger,
) *InboundService {
	return &InboundService{
		tenants:   tenants,
		convs:     convs,
		knowledge: knowledge,
		composer:  composer,
		usage:     usage,
		guard:     guard,
		limiter:   limiter,
		log:       log,
	}
}

// HandleInbound processes one received message end to end and returns
// the reply decision. The caller owns actually sending the reply and
// must call RecordAutoReply afterwards so the turn log and usage
// counters stay consistent.
func (s *InboundService) HandleInbound(ctx context.Context, msg entities.InboundMessage) InboundResult {
	ctx, cancel := context.WithTimeout(ctx, pipelineTimeout)
	defer cancel()

	log := s.log.With(zap.String("tenant_id", msg.TenantID), zap.String("from", msg.From))

	tenant, err := s.tenants.Get(ctx, msg.TenantID)
	if err != nil {
		log.Warn("inbound message for unknown tenant", zap.Error(err))
		return InboundResult{}
	}

	turn := &entities.ConversationTurn{
		TenantID:    tenant.ID,
		PhoneNumber: msg.From,
		Text:        msg.Text,
		Type:        entities.TurnReceived,
		ProviderID:  msg.ProviderID,
		MediaURL:    msg.MediaURL,
	}
	if err := s.convs.AppendTurn(ctx, turn); err != nil {
		log.Error("failed to persist received turn", zap.Error(err))
	}
	if err := s.usage.IncrementReceived(ctx, tenant.ID); err != nil {
		log.Warn("failed to count received message", zap.Error(err))
	}

	override, err := s.convs.GetOverride(ctx, tenant.ID, msg.From)
	if err != nil {
		log.Warn("failed to read conversation override, using tenant settings", zap.Error(err))
		override = entities.ConversationOverride{}
	}
	toggles := ResolveToggles(override, tenant.Settings)
	if !toggles.AutoResponseEnabled || !toggles.AIEnabled {
		log.Debug("auto-reply disabled for conversation",
			zap.Bool("ai_enabled", toggles.AIEnabled),
			zap.Bool("auto_response_enabled", toggles.AutoResponseEnabled))
		return InboundResult{}
	}

	if ok, reason := s.usage.CanSend(ctx, tenant.ID, tenant.Settings.DailyLimit, tenant.Settings.MonthlyLimit); !ok {
		log.Warn("auto-reply suppressed by quota", zap.String("reason", reason))
		return InboundResult{}
	}

	convKey := tenant.ID + ":" + msg.From
	if !s.limiter.Allow(convKey) {
		log.Warn("auto-reply suppressed by rate limit")
		return InboundResult{}
	}
	if !s.guard.TryAcquire(convKey) {
		log.Debug("reply already in flight for conversation")
		return InboundResult{}
	}
	defer s.guard.Release(convKey)

	// Knowledge and history are snapshots taken now; turns appended
	// concurrently are simply not part of this reply.
	matches, err := s.knowledge.Search(ctx, tenant.ID, msg.Text, searchTopK)
	if err != nil {
		log.Warn("knowledge search failed, composing without matches", zap.Error(err))
		matches = nil
	}
	history, err := s.convs.RecentTurns(ctx, tenant.ID, msg.From, historyDepth)
	if err != nil {
		log.Warn("history read failed, composing without history", zap.Error(err))
		history = nil
	}

	contextBlock := AssembleContext(tenant, msg.Text, matches, history)
	reply := s.composer.Compose(ctx, tenant, msg.Text, contextBlock)

	return InboundResult{ShouldReply: true, ReplyText: reply}
}

// RecordAutoReply persists the generated reply as an ai-auto turn and
// updates the usage counters. Called by the transport after the send
// succeeded.
func (s *InboundService) RecordAutoReply(ctx context.Context, tenantID, phone, text string) {
	turn := &entities.ConversationTurn{
		TenantID:    tenantID,
		PhoneNumber: phone,
		Text:        text,
		Type:        entities.TurnAIAuto,
	}
	if err := s.convs.AppendTurn(ctx, turn); err != nil {
		s.log.Error("failed to persist auto-reply turn",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
	if err := s.usage.IncrementSent(ctx, tenantID); err != nil {
		s.log.Warn("failed to count sent message", zap.Error(err))
	}
	if err := s.usage.IncrementAIReply(ctx, tenantID); err != nil {
		s.log.Warn("failed to count ai reply", zap.Error(err))
	}
}
