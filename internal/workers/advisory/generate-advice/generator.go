// internal/workers/advisory/generate-advice/generator.go
package generateadvice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/common/ollama"
	"advisory-workers/internal/models"
)

// Generator is a language-model backend.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
	Health(ctx context.Context) error
}

var _ Generator = (*ollama.Client)(nil)
var _ Generator = (*OpenAIGenerator)(nil)

// OpenAIGenerator serves generation from any OpenAI-compatible endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIGenerator(apiKey, baseURL, model string, temperature float64, maxTokens int) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Health(ctx context.Context) error {
	list, err := g.client.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range list.Models {
		if m.ID == g.model {
			return nil
		}
	}
	return fmt.Errorf("model %s not offered by endpoint", g.model)
}

// isPermanent reports errors a retry cannot fix: client-side HTTP errors other
// than rate limiting, and a missing model.
func isPermanent(err error) bool {
	if errors.Is(err, ollama.ErrModelNotFound) {
		return true
	}

	status := 0
	var statusErr *apphttp.StatusError
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &statusErr):
		status = statusErr.StatusCode
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
