package state

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// GameState is the complete mutable snapshot of one investigation. It is
// derived from a CaseDefinition at game creation and only ever advanced
// through the reducer in apply.go.
type GameState struct {
	ID     uuid.UUID `json:"id"`
	CaseID string    `json:"case_id"`

	// Turn increments once per completed chat turn. Never decreases.
	Turn int `json:"turn"`

	CurrentLocationID string `json:"current_location_id"`

	// Per-game copies of the case entities, carrying runtime state
	// (trust, moods, discovery and visit flags).
	NPCs      []casefile.NPC      `json:"npcs"`
	Clues     []casefile.Clue     `json:"clues"`
	Locations []casefile.Location `json:"locations"`

	// ChatHistory is append-only.
	ChatHistory []chat.Message `json:"chat_history"`

	// ConversationSummary condenses trimmed-off history for prompts.
	ConversationSummary string `json:"conversation_summary,omitempty"`

	// Solved is terminal: once true it never reverts.
	Solved bool `json:"solved"`

	Memory *NarrativeMemory `json:"memory,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates the starting state for a case. The player begins at the
// case's first location, which is marked visited; all locations not
// authored as locked start unlocked.
func New(c *casefile.CaseDefinition) *GameState {
	now := time.Now().UTC()
	gs := &GameState{
		ID:          uuid.New(),
		CaseID:      c.ID,
		NPCs:        make([]casefile.NPC, len(c.NPCs)),
		Clues:       make([]casefile.Clue, len(c.Clues)),
		Locations:   make([]casefile.Location, len(c.Locations)),
		ChatHistory: make([]chat.Message, 0),
		Memory:      NewNarrativeMemory(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	copy(gs.NPCs, c.NPCs)
	copy(gs.Clues, c.Clues)
	copy(gs.Locations, c.Locations)

	for i := range gs.Clues {
		gs.Clues[i].Discovered = false
		gs.Clues[i].DiscoveredAtTurn = 0
	}
	for i := range gs.Locations {
		gs.Locations[i].Unlocked = !gs.Locations[i].Locked
		gs.Locations[i].Visited = i == 0
	}
	if len(gs.Locations) > 0 {
		gs.CurrentLocationID = gs.Locations[0].ID
	}
	return gs
}

// NPC returns the game-state copy of an NPC by ID.
func (gs *GameState) NPC(id string) (*casefile.NPC, bool) {
	for i := range gs.NPCs {
		if gs.NPCs[i].ID == id {
			return &gs.NPCs[i], true
		}
	}
	return nil, false
}

// ResolveNPC finds an NPC by ID first, then by case-insensitive name.
// LLMs frequently answer with display names instead of IDs.
func (gs *GameState) ResolveNPC(key string) (*casefile.NPC, bool) {
	if npc, ok := gs.NPC(key); ok {
		return npc, true
	}
	for i := range gs.NPCs {
		if strings.EqualFold(gs.NPCs[i].Name, key) {
			return &gs.NPCs[i], true
		}
	}
	return nil, false
}

// Clue returns the game-state copy of a clue by ID.
func (gs *GameState) Clue(id string) (*casefile.Clue, bool) {
	for i := range gs.Clues {
		if gs.Clues[i].ID == id {
			return &gs.Clues[i], true
		}
	}
	return nil, false
}

// Location returns the game-state copy of a location by ID.
func (gs *GameState) Location(id string) (*casefile.Location, bool) {
	for i := range gs.Locations {
		if gs.Locations[i].ID == id {
			return &gs.Locations[i], true
		}
	}
	return nil, false
}

// DiscoveredClues returns the clues found so far, in case order.
func (gs *GameState) DiscoveredClues() []casefile.Clue {
	found := make([]casefile.Clue, 0)
	for _, c := range gs.Clues {
		if c.Discovered {
			found = append(found, c)
		}
	}
	return found
}

// NPCAtLocation returns the first NPC at the given location, if any.
func (gs *GameState) NPCAtLocation(locationID string) (*casefile.NPC, bool) {
	for i := range gs.NPCs {
		if gs.NPCs[i].LocationID == locationID {
			return &gs.NPCs[i], true
		}
	}
	return nil, false
}
