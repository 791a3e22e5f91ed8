package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

type GeminiBackend struct {
	client *genai.Client
	model  string
}

func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Name() string  { return "gemini" }
func (b *GeminiBackend) Model() string { return b.model }

func (b *GeminiBackend) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	model := b.client.GenerativeModel(b.model)
	model.SetTemperature(float32(temperature))
	model.SystemInstruction = genai.NewUserContent(genai.Text(storytellerRole))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	if usage := resp.UsageMetadata; usage != nil {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", int(usage.PromptTokenCount)),
			attribute.Int("gen_ai.usage.output_tokens", int(usage.CandidatesTokenCount)),
		)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (b *GeminiBackend) Close() error {
	return b.client.Close()
}
