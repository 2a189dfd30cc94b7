package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"wabiz/internal/entities"
	"wabiz/internal/interfaces"
)

const (
	completionMaxTokens   = 500
	completionTemperature = 0.7
)

// OpenAIClient implements interfaces.TextCompletion against the OpenAI
// chat completions API. One attempt per call, no retries: retrying is a
// caller decision.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userContent,
			},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", classifyCompletionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &entities.CompletionError{
			Kind: entities.CompletionUpstream,
			Err:  fmt.Errorf("completion returned no choices"),
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyCompletionError maps API failures onto the error taxonomy.
func classifyCompletionError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	kind := entities.CompletionOther
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = entities.CompletionAuthInvalid
	case status == http.StatusTooManyRequests:
		kind = entities.CompletionRateLimited
	case status >= http.StatusInternalServerError:
		kind = entities.CompletionUpstream
	}

	return &entities.CompletionError{Kind: kind, Err: err}
}

var _ interfaces.TextCompletion = (*OpenAIClient)(nil)
