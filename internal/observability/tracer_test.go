package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracingDisabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), Config{ServiceName: "taleweaver"})
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNilTracerProvider(t *testing.T) {
	var tp *TracerProvider
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSessionIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, SessionIDFromContext(ctx))

	ctx = WithSessionID(ctx, "s-1")
	assert.Equal(t, "s-1", SessionIDFromContext(ctx))
}

func TestCreateGenAIAttributes(t *testing.T) {
	attrs := CreateGenAIAttributes("gemini", "gemini-2.0-flash", 0, 12, 0.7)

	assert.Contains(t, attrs, attribute.String("gen_ai.system", "gemini"))
	assert.Contains(t, attrs, attribute.String("gen_ai.request.model", "gemini-2.0-flash"))
	assert.Contains(t, attrs, attribute.Int("gen_ai.usage.output_tokens", 12))
	assert.Contains(t, attrs, attribute.Float64("gen_ai.request.temperature", 0.7))
	assert.Len(t, attrs, 5)
}

func TestCreateLangfuseAttributes(t *testing.T) {
	attrs := CreateLangfuseAttributes("story.choose", "s-1", "", []string{"Horror"})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("langfuse.trace.name", "story.choose"),
		attribute.String("langfuse.session.id", "s-1"),
		attribute.StringSlice("langfuse.trace.tags", []string{"Horror"}),
	}, attrs)
}
