package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultOllamaURL = "http://localhost:11434"

type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend talks to the native Ollama API, so a trailing /v1 on
// baseURL is dropped.
func NewOllamaBackend(baseURL, model string, timeout time.Duration) (*OllamaBackend, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", baseURL, err)
	}

	client := api.NewClient(parsed, &http.Client{Timeout: timeout})
	return &OllamaBackend{client: client, model: model}, nil
}

func (b *OllamaBackend) Name() string  { return "ollama" }
func (b *OllamaBackend) Model() string { return b.model }

func (b *OllamaBackend) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: b.model,
		Messages: []api.Message{
			{Role: "system", Content: storytellerRole},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": temperature,
		},
	}

	var resp api.ChatResponse
	err := b.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("gen_ai.usage.input_tokens", resp.PromptEvalCount),
		attribute.Int("gen_ai.usage.output_tokens", resp.EvalCount),
	)

	return resp.Message.Content, nil
}
