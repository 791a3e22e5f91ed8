package llm

import (
	"context"
	"errors"

	"taleweaver/internal/logging"
)

// FallbackText is returned once every attempt has failed.
const FallbackText = "Once upon a time, there was an error in the storytelling machine..."

var (
	ErrEmptyResponse   = errors.New("empty response from model")
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Backend produces text from a prompt with one call to a model.
type Backend interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

type CompletionRecorder interface {
	LogCompletion(ctx context.Context, c logging.Completion) error
}

const storytellerRole = `You are a master storyteller writing interactive fiction.

Rules:
- Write vivid, immersive second-person or close third-person prose
- Stay consistent with everything that has already happened
- Never break the fourth wall or address the reader as a player
- Never list options or ask the reader what to do next unless asked for a list`
