package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Roles for messages recorded in game chat history.
const (
	RolePlayer   = "player"
	RoleNPC      = "npc"
	RoleNarrator = "narrator"
)

// Roles for messages sent to the LLM. These follow the chat-completion
// convention shared by the supported providers.
const (
	PromptRoleSystem    = "system"
	PromptRoleUser      = "user"
	PromptRoleAssistant = "assistant"
)

// Message is a single entry in a game's chat history.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	NPCID     string    `json:"npc_id,omitempty"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// PromptMessage is a message in the bounded conversation sent to the LLM.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat turn submitted by the player.
type Request struct {
	GameID  uuid.UUID `json:"game_id"`
	Message string    `json:"message"`

	// TargetNPCID selects who the player is addressing. Empty means the
	// NPC present at the player's current location.
	TargetNPCID string `json:"target_npc_id,omitempty"`
}

// Validate checks the request for required fields.
func (r *Request) Validate() error {
	if r.GameID == uuid.Nil {
		return fmt.Errorf("game_id is required")
	}
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// Response is the result of one chat turn.
type Response struct {
	GameID       uuid.UUID   `json:"game_id"`
	Dialogue     string      `json:"dialogue"`
	StateChanges StateChange `json:"state_changes"`
	Message      Message     `json:"message"`
	Error        string      `json:"error,omitempty"`
}
