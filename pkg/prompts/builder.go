package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// Builder assembles the layered system prompt for one chat turn using a
// fluent interface. Layer order is significant: later layers reference
// constraints set up by earlier ones and must not be reordered.
type Builder struct {
	def *casefile.CaseDefinition
	gs  *state.GameState
	npc *casefile.NPC
}

// New creates an empty prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithCase sets the case definition.
func (b *Builder) WithCase(def *casefile.CaseDefinition) *Builder {
	b.def = def
	return b
}

// WithGameState sets the current game state.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithNPC sets the NPC being portrayed this turn.
func (b *Builder) WithNPC(npc *casefile.NPC) *Builder {
	b.npc = npc
	return b
}

// Build concatenates the seven layers into the system prompt.
func (b *Builder) Build() (string, error) {
	if b.def == nil {
		return "", fmt.Errorf("case definition is required")
	}
	if b.gs == nil {
		return "", fmt.Errorf("game state is required")
	}
	if b.npc == nil {
		return "", fmt.Errorf("target npc is required")
	}

	layers := []string{
		WorldFrame(b.def),
		CaseContext(b.def),
		NPCPersonality(b.npc),
		KnowledgeBoundaries(b.npc),
		CurrentGameState(b.gs),
		OutputFormat(),
		Guardrails(b.def),
	}
	return strings.Join(layers, LayerSeparator), nil
}

// BuildSystemPrompt is a convenience for the common case.
func BuildSystemPrompt(def *casefile.CaseDefinition, gs *state.GameState, npc *casefile.NPC) (string, error) {
	return New().WithCase(def).WithGameState(gs).WithNPC(npc).Build()
}
