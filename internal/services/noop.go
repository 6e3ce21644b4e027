package services

import (
	"context"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// NoopLLMService is the dev-mode backend used when no provider is
// configured. Dialogue is a canned placeholder in the expected tag
// format, so the rest of the turn pipeline runs unchanged offline.
type NoopLLMService struct{}

func NewNoopLLMService() *NoopLLMService {
	return &NoopLLMService{}
}

func (n *NoopLLMService) Name() string {
	return "none"
}

func (n *NoopLLMService) GenerateResponse(_ context.Context, _ string, _ []chat.PromptMessage, _ int, _ float64) (string, error) {
	return `<dialogue>They meet your eyes but say nothing of substance. (No LLM provider is configured; set LLM_PROVIDER to enable dialogue.)</dialogue>
<state_changes>{}</state_changes>`, nil
}
