package generateadvice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/models"
)

func newOpenAIServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.Model == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"roles=` +
			body.Messages[0].Role + `,count=` + string(rune('0'+len(body.Messages))) + `"}}]}`))
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model","owned_by":"openai"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	srv := newOpenAIServer(t)
	g := NewOpenAIGenerator("test-key", srv.URL, "gpt-4o-mini", 0.7, 256)

	out, err := g.Generate(context.Background(), models.GenerationRequest{
		SystemPrompt: SystemPrompt,
		Prompt:       "hello",
		History:      []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}, {Role: models.RoleAssistant, Content: "hey"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "roles=system,count=4", out)
}

func TestOpenAIGenerator_ClientErrorIsPermanent(t *testing.T) {
	srv := newOpenAIServer(t)
	g := NewOpenAIGenerator("test-key", srv.URL, "missing", 0.7, 256)

	_, err := g.Generate(context.Background(), models.GenerationRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, isPermanent(err))
}

func TestOpenAIGenerator_Health(t *testing.T) {
	srv := newOpenAIServer(t)

	require.NoError(t, NewOpenAIGenerator("k", srv.URL, "gpt-4o-mini", 0, 0).Health(context.Background()))
	assert.Error(t, NewOpenAIGenerator("k", srv.URL, "llama3", 0, 0).Health(context.Background()))
}
