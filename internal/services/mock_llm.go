package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// MockLLMService is a test double for LLMService. Responses can be
// scripted via Responses (consumed in order) or computed via
// GenerateFunc. Calls are recorded for assertions.
type MockLLMService struct {
	mu sync.Mutex

	// Responses is drained one entry per call. When exhausted (or
	// empty), DefaultResponse is returned.
	Responses       []string
	DefaultResponse string

	// GenerateFunc overrides canned responses entirely when set.
	GenerateFunc func(ctx context.Context, systemPrompt string, messages []chat.PromptMessage, maxTokens int, temperature float64) (string, error)

	// Err is returned from every call when set.
	Err error

	Calls []MockLLMCall
}

// MockLLMCall records the arguments of one GenerateResponse call.
type MockLLMCall struct {
	SystemPrompt string
	Messages     []chat.PromptMessage
	MaxTokens    int
	Temperature  float64
}

func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		DefaultResponse: "<dialogue>The detective waits in silence.</dialogue>",
	}
}

func (m *MockLLMService) Name() string {
	return "mock"
}

func (m *MockLLMService) GenerateResponse(ctx context.Context, systemPrompt string, messages []chat.PromptMessage, maxTokens int, temperature float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockLLMCall{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemPrompt, messages, maxTokens, temperature)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		return resp, nil
	}
	return m.DefaultResponse, nil
}

// CallCount returns the number of recorded calls.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent recorded call, or nil.
func (m *MockLLMService) LastCall() *MockLLMCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	c := m.Calls[len(m.Calls)-1]
	return &c
}
