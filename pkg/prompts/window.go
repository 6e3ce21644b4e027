package prompts

import (
	"fmt"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// MaxHistoryMessages caps how much chat history is sent to the LLM per
// turn. History beyond the cap is represented by the conversation
// summary instead.
const MaxHistoryMessages = 10

// pinnedMessages is how many opening messages survive trimming; the
// opening exchange establishes the tone of the scene.
const pinnedMessages = 2

// BuildWindow derives the bounded conversation sent to the LLM from the
// full chat history. When history exceeds the cap and a summary exists,
// a synthetic exchange injects the summary as acknowledged prior
// context. The first two historical messages are always pinned verbatim;
// the remainder of the window holds the most recent messages. The
// current player message goes last. The window is rebuilt from scratch
// every call.
func BuildWindow(history []chat.Message, summary string, currentMessage string) []chat.PromptMessage {
	messages := make([]chat.PromptMessage, 0, MaxHistoryMessages+3)

	if len(history) > MaxHistoryMessages && summary != "" {
		messages = append(messages,
			chat.PromptMessage{
				Role:    chat.PromptRoleUser,
				Content: fmt.Sprintf("[Earlier conversation summary: %s]", summary),
			},
			chat.PromptMessage{
				Role:    chat.PromptRoleAssistant,
				Content: "[Understood, continuing from where we left off.]",
			})
	}

	pinned := history
	if len(pinned) > pinnedMessages {
		pinned = history[:pinnedMessages]
	}

	var recent []chat.Message
	if len(history) > MaxHistoryMessages {
		recent = history[len(history)-(MaxHistoryMessages-pinnedMessages):]
	} else if len(history) > pinnedMessages {
		recent = history[pinnedMessages:]
	}

	for _, msg := range pinned {
		messages = append(messages, toPromptMessage(msg))
	}
	for _, msg := range recent {
		messages = append(messages, toPromptMessage(msg))
	}

	messages = append(messages, chat.PromptMessage{
		Role:    chat.PromptRoleUser,
		Content: currentMessage,
	})
	return messages
}

func toPromptMessage(msg chat.Message) chat.PromptMessage {
	role := chat.PromptRoleAssistant
	if msg.Role == chat.RolePlayer {
		role = chat.PromptRoleUser
	}
	return chat.PromptMessage{Role: role, Content: msg.Content}
}
