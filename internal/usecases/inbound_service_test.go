package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"wabiz/internal/entities"
	"wabiz/internal/infrastructure"
)

type fakeTenantRepo struct {
	tenants map[string]*entities.Tenant
}

func (f *fakeTenantRepo) Get(_ context.Context, id string) (*entities.Tenant, error) {
	if t, ok := f.tenants[id]; ok {
		return t, nil
	}
	return nil, entities.ErrTenantNotFound
}

func (f *fakeTenantRepo) GetByWhatsAppNumber(_ context.Context, number string) (*entities.Tenant, error) {
	for _, t := range f.tenants {
		if t.WhatsAppNumber == number {
			return t, nil
		}
	}
	return nil, entities.ErrTenantNotFound
}

type fakeConvRepo struct {
	override entities.ConversationOverride
	history  []entities.ConversationTurn
	appended []entities.ConversationTurn
}

func (f *fakeConvRepo) RecentTurns(_ context.Context, _, _ string, limit int) ([]entities.ConversationTurn, error) {
	if len(f.history) > limit {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}

func (f *fakeConvRepo) GetOverride(_ context.Context, _, _ string) (entities.ConversationOverride, error) {
	return f.override, nil
}

func (f *fakeConvRepo) AppendTurn(_ context.Context, turn *entities.ConversationTurn) error {
	f.appended = append(f.appended, *turn)
	return nil
}

type fakeUsage struct {
	allowed  bool
	reason   string
	sent     int
	received int
	ai       int
}

func (f *fakeUsage) CanSend(_ context.Context, _ string, _, _ int) (bool, string) {
	return f.allowed, f.reason
}
func (f *fakeUsage) IncrementSent(_ context.Context, _ string) error     { f.sent++; return nil }
func (f *fakeUsage) IncrementReceived(_ context.Context, _ string) error { f.received++; return nil }
func (f *fakeUsage) IncrementAIReply(_ context.Context, _ string) error  { f.ai++; return nil }

func newTestInboundService(tenant *entities.Tenant, convs *fakeConvRepo, usage *fakeUsage, completion *fakeCompletion) *InboundService {
	tenants := &fakeTenantRepo{tenants: map[string]*entities.Tenant{}}
	if tenant != nil {
		tenants.tenants[tenant.ID] = tenant
	}
	store := NewKnowledgeStore(&fakeKnowledgeRepo{})
	composer := NewResponseComposer(completion, zap.NewNop())
	guard := infrastructure.NewConversationGuard(time.Millisecond)
	limiter := infrastructure.NewReplyRateLimiter(100, 100)
	return NewInboundService(tenants, convs, store, composer, usage, guard, limiter, zap.NewNop())
}

func enabledTenant() *entities.Tenant {
	t := testTenant()
	t.Settings.AIEnabled = true
	t.Settings.AutoResponseEnabled = true
	return t
}

func TestInboundService_RepliesWhenEnabled(t *testing.T) {
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{reply: "Claro, abrimos a las 9."}
	svc := newTestInboundService(enabledTenant(), convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+5491111111111", Text: "¿Horarios?",
	})
	if !result.ShouldReply {
		t.Fatal("expected a reply when both toggles are enabled")
	}
	if result.ReplyText != "Claro, abrimos a las 9." {
		t.Errorf("ReplyText = %q", result.ReplyText)
	}
	if len(convs.appended) != 1 || convs.appended[0].Type != entities.TurnReceived {
		t.Errorf("received turn not persisted: %+v", convs.appended)
	}
	if usage.received != 1 {
		t.Errorf("received counter = %d, want 1", usage.received)
	}
}

func TestInboundService_TenantToggleOffSuppressesReply(t *testing.T) {
	tenant := enabledTenant()
	tenant.Settings.AutoResponseEnabled = false
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{reply: "nope"}
	svc := newTestInboundService(tenant, convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+5491111111111", Text: "hola",
	})
	if result.ShouldReply {
		t.Error("expected no reply with auto-response disabled")
	}
	if completion.calls != 0 {
		t.Errorf("completion called %d times, want 0", completion.calls)
	}
	// The inbound message is still persisted.
	if len(convs.appended) != 1 {
		t.Errorf("received turn not persisted when bot is quiet: %+v", convs.appended)
	}
}

func TestInboundService_ConversationOverrideBeatsTenantSetting(t *testing.T) {
	tenant := enabledTenant()
	tenant.Settings.AutoResponseEnabled = false
	convs := &fakeConvRepo{override: entities.ConversationOverride{AutoResponseEnabled: boolPtr(true)}}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{reply: "respuesta"}
	svc := newTestInboundService(tenant, convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+5491111111111", Text: "hola",
	})
	if !result.ShouldReply {
		t.Error("conversation override true must re-enable the reply")
	}
}

func TestInboundService_OverrideFalseSilencesEnabledTenant(t *testing.T) {
	convs := &fakeConvRepo{override: entities.ConversationOverride{AIEnabled: boolPtr(false)}}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{reply: "respuesta"}
	svc := newTestInboundService(enabledTenant(), convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+5491111111111", Text: "hola",
	})
	if result.ShouldReply {
		t.Error("conversation override false must silence the bot")
	}
}

func TestInboundService_UnknownTenantIsQuiet(t *testing.T) {
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{reply: "x"}
	svc := newTestInboundService(nil, convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "missing", From: "+549", Text: "hola",
	})
	if result.ShouldReply {
		t.Error("unknown tenant must produce no reply")
	}
	if completion.calls != 0 {
		t.Errorf("completion called %d times, want 0", completion.calls)
	}
}

func TestInboundService_QuotaExhaustedSuppressesReply(t *testing.T) {
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: false, reason: "daily message limit reached"}
	completion := &fakeCompletion{reply: "x"}
	svc := newTestInboundService(enabledTenant(), convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+549", Text: "hola",
	})
	if result.ShouldReply {
		t.Error("exhausted quota must suppress the reply")
	}
}

func TestInboundService_CompletionFailureDegradesToFallback(t *testing.T) {
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: true}
	completion := &fakeCompletion{err: &entities.CompletionError{Kind: entities.CompletionUpstream}}
	svc := newTestInboundService(enabledTenant(), convs, usage, completion)

	result := svc.HandleInbound(context.Background(), entities.InboundMessage{
		TenantID: "t1", From: "+549", Text: "hola",
	})
	if !result.ShouldReply {
		t.Fatal("completion failure must still produce the fallback reply")
	}
	if !strings.Contains(result.ReplyText, "Gracias por tu mensaje") {
		t.Errorf("ReplyText = %q, want the canned fallback", result.ReplyText)
	}
}

func TestInboundService_RecordAutoReply(t *testing.T) {
	convs := &fakeConvRepo{}
	usage := &fakeUsage{allowed: true}
	svc := newTestInboundService(enabledTenant(), convs, usage, &fakeCompletion{})

	svc.RecordAutoReply(context.Background(), "t1", "+549", "respuesta")
	if len(convs.appended) != 1 || convs.appended[0].Type != entities.TurnAIAuto {
		t.Errorf("ai-auto turn not persisted: %+v", convs.appended)
	}
	if usage.sent != 1 || usage.ai != 1 {
		t.Errorf("usage counters sent=%d ai=%d, want 1/1", usage.sent, usage.ai)
	}
}
