package llm

import "context"

type contextKey string

const (
	operationTypeKey contextKey = "operation_type"
	storyIDKey       contextKey = "story_id"
)

// WithOperationType labels generations made with ctx (starters, choices,
// continuation, ending, recap) for spans, logs and the completion log.
func WithOperationType(ctx context.Context, opType string) context.Context {
	return context.WithValue(ctx, operationTypeKey, opType)
}

func WithStoryID(ctx context.Context, storyID string) context.Context {
	return context.WithValue(ctx, storyIDKey, storyID)
}

func OperationType(ctx context.Context) string {
	if opType, ok := ctx.Value(operationTypeKey).(string); ok && opType != "" {
		return opType
	}
	return "generate"
}

func StoryID(ctx context.Context) string {
	if id, ok := ctx.Value(storyIDKey).(string); ok {
		return id
	}
	return ""
}
