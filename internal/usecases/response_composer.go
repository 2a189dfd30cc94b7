package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wabiz/internal/entities"
	"wabiz/internal/interfaces"
)

const composerSystemPrompt = "Eres un asistente útil y amigable. Responde de manera clara y concisa."

// ResponseComposer turns an assembled context plus the inbound message
// into reply text. It never surfaces an error to the end user: on any
// completion failure it logs the classified cause and returns a
// tenant-branded fallback. One attempt per message, no retries.
type ResponseComposer struct {
	completion interfaces.TextCompletion
	log        *zap.Logger
}

func NewResponseComposer(completion interfaces.TextCompletion, log *zap.Logger) *ResponseComposer {
	return &ResponseComposer{completion: completion, log: log}
}

func (c *ResponseComposer) Compose(ctx context.Context, tenant *entities.Tenant, message, contextBlock string) string {
	userContent := message
	if contextBlock != "" {
		userContent = contextBlock + "\n\nPregunta: " + message
	}

	reply, err := c.completion.Generate(ctx, composerSystemPrompt, userContent)
	if err != nil {
		c.log.Warn("completion failed, using fallback reply",
			zap.String("kind", string(entities.CompletionKind(err))),
			zap.Error(err))
		return FallbackReply(tenant)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FallbackReply(tenant)
	}
	return reply
}

// FallbackReply is the canned response used when generation fails.
func FallbackReply(tenant *entities.Tenant) string {
	if tenant != nil && tenant.Name != "" {
		return fmt.Sprintf("Gracias por tu mensaje. En %s te responderemos pronto.", tenant.Name)
	}
	return "Gracias por tu mensaje. Te responderemos pronto."
}
