package services

import (
	"context"
	"errors"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// ErrLLMUnavailable wraps provider failures (credentials, network,
// vendor errors). The game manager degrades to a placeholder response
// when it sees this, so a flaky provider never kills a turn.
var ErrLLMUnavailable = errors.New("llm unavailable")

// LLMService is the vendor-agnostic contract for dialogue generation.
// Implementations must return a typed error on failure, never silently
// empty text.
type LLMService interface {
	// Name identifies the provider for logs.
	Name() string

	// GenerateResponse produces text from a system prompt plus a bounded
	// conversation.
	GenerateResponse(ctx context.Context, systemPrompt string, messages []chat.PromptMessage, maxTokens int, temperature float64) (string, error)
}

// HealthChecker is implemented by services with a connection to test.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
