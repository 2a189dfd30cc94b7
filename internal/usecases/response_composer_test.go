package usecases

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"wabiz/internal/entities"
)

type fakeCompletion struct {
	reply string
	err   error
	calls int
	// captured from the last call
	systemPrompt string
	userContent  string
}

func (f *fakeCompletion) Generate(_ context.Context, systemPrompt, userContent string) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	f.userContent = userContent
	return f.reply, f.err
}

func TestResponseComposer_Success(t *testing.T) {
	fake := &fakeCompletion{reply: "Abrimos de 9 a 18."}
	composer := NewResponseComposer(fake, zap.NewNop())

	got := composer.Compose(context.Background(), testTenant(), "¿Horarios?", "contexto")
	if got != "Abrimos de 9 a 18." {
		t.Errorf("Compose() = %q, want the completion reply", got)
	}
	if !strings.HasSuffix(fake.userContent, "\n\nPregunta: ¿Horarios?") {
		t.Errorf("user content must end with the question, got:\n%s", fake.userContent)
	}
	if !strings.HasPrefix(fake.userContent, "contexto") {
		t.Errorf("user content must start with the context, got:\n%s", fake.userContent)
	}
}

func TestResponseComposer_EmptyContextSendsBareMessage(t *testing.T) {
	fake := &fakeCompletion{reply: "ok"}
	composer := NewResponseComposer(fake, zap.NewNop())

	composer.Compose(context.Background(), testTenant(), "hola", "")
	if fake.userContent != "hola" {
		t.Errorf("user content = %q, want the bare message when context is empty", fake.userContent)
	}
}

func TestResponseComposer_AuthErrorFallsBack(t *testing.T) {
	fake := &fakeCompletion{err: &entities.CompletionError{Kind: entities.CompletionAuthInvalid}}
	composer := NewResponseComposer(fake, zap.NewNop())

	got := composer.Compose(context.Background(), testTenant(), "hola", "ctx")
	if !strings.Contains(got, "Panadería Luna") {
		t.Errorf("Compose() = %q, want the tenant-branded fallback", got)
	}
	if !strings.Contains(got, "Gracias por tu mensaje") {
		t.Errorf("Compose() = %q, want the canned fallback text", got)
	}
}

func TestResponseComposer_RateLimitFallsBack(t *testing.T) {
	fake := &fakeCompletion{err: &entities.CompletionError{Kind: entities.CompletionRateLimited}}
	composer := NewResponseComposer(fake, zap.NewNop())

	got := composer.Compose(context.Background(), nil, "hola", "ctx")
	if got != "Gracias por tu mensaje. Te responderemos pronto." {
		t.Errorf("Compose() = %q, want the generic fallback when no tenant is known", got)
	}
}

func TestResponseComposer_SingleAttempt(t *testing.T) {
	fake := &fakeCompletion{err: &entities.CompletionError{Kind: entities.CompletionUpstream}}
	composer := NewResponseComposer(fake, zap.NewNop())

	composer.Compose(context.Background(), testTenant(), "hola", "ctx")
	if fake.calls != 1 {
		t.Errorf("completion called %d times, want exactly 1 (no retries)", fake.calls)
	}
}

func TestResponseComposer_BlankReplyFallsBack(t *testing.T) {
	fake := &fakeCompletion{reply: "   \n"}
	composer := NewResponseComposer(fake, zap.NewNop())

	got := composer.Compose(context.Background(), testTenant(), "hola", "ctx")
	if !strings.Contains(got, "Gracias por tu mensaje") {
		t.Errorf("Compose() = %q, want fallback for a blank completion", got)
	}
}
