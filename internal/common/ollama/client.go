// internal/common/ollama/client.go
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/models"
)

var (
	ErrModelNotFound = errors.New("model not pulled on ollama server")
	ErrEmptyResponse = errors.New("empty response from ollama")
)

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client talks to an Ollama server for generation, embeddings and health.
type Client struct {
	config *Config
	http   *apphttp.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		http:   apphttp.NewClient(config.Timeout),
	}
}

func (c *Client) Model() string { return c.config.Model }

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

func (c *Client) options() map[string]interface{} {
	opts := map[string]interface{}{"temperature": c.config.Temperature}
	if c.config.MaxTokens > 0 {
		opts["num_predict"] = c.config.MaxTokens
	}
	return opts
}

// Generate uses /api/chat when history is present and /api/generate otherwise.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if len(req.History) > 0 {
		return c.chat(ctx, req)
	}

	body := generateRequest{
		Model:   c.config.Model,
		Prompt:  req.Prompt,
		System:  req.SystemPrompt,
		Stream:  false,
		Options: c.options(),
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/api/generate", body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", ErrEmptyResponse
	}
	return out.Response, nil
}

func (c *Client) chat(ctx context.Context, req models.GenerationRequest) (string, error) {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(models.RoleSystem), Content: req.SystemPrompt})
	}
	for _, m := range req.History {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: string(models.RoleUser), Content: req.Prompt})

	var out struct {
		Message chatMessage `json:"message"`
	}
	err := c.post(ctx, "/api/chat", chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   false,
		Options:  c.options(),
	}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Message.Content, nil
}

// Embed returns the embedding of text under the configured model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	err := c.post(ctx, "/api/embeddings", map[string]string{
		"model":  c.config.Model,
		"prompt": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, ErrEmptyResponse
	}
	return out.Embedding, nil
}

// Health succeeds when the server answers and has the configured model family pulled.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := c.http.GetJSON(ctx, c.url("/api/tags"), &out); err != nil {
		return err
	}

	family := strings.SplitN(c.config.Model, ":", 2)[0]
	for _, m := range out.Models {
		if strings.HasPrefix(m.Name, family) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, c.config.Model)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.DoJSON(req, out)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}
