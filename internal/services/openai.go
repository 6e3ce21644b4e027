package services

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

const DefaultOpenAIModel = openai.GPT4o

// OpenAIService implements LLMService via the OpenAI chat completions API.
type OpenAIService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

// NewOpenAIService creates an OpenAI-backed LLM service.
func NewOpenAIService(apiKey string, modelName string, logger *slog.Logger) *OpenAIService {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIService{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAIService) Name() string {
	return "openai"
}

func (o *OpenAIService) GenerateResponse(ctx context.Context, systemPrompt string, messages []chat.PromptMessage, maxTokens int, temperature float64) (string, error) {
	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == chat.PromptRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    reqMessages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrLLMUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
