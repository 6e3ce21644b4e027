package state

import (
	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// Action is a discrete, replayable advance of the game state. Actions are
// the only way state changes; the reducer in apply.go interprets them.
type Action interface {
	isAction()
}

// DiscoverClue marks a clue discovered at a turn. Discovery is one-way.
type DiscoverClue struct {
	ClueID string
	Turn   int
}

// UpdateTrust shifts an NPC's trust by a signed delta. The result is
// clamped to 0-100 by the reducer.
type UpdateTrust struct {
	NPCID string
	Delta int
}

// UpdateMood replaces an NPC's mood.
type UpdateMood struct {
	NPCID string
	Mood  string
}

// IntroduceNPC marks an NPC as met.
type IntroduceNPC struct {
	NPCID string
}

// MoveLocation moves the player and marks the destination visited.
type MoveLocation struct {
	LocationID string
}

// UnlockLocation makes a location accessible. One-way.
type UnlockLocation struct {
	LocationID string
}

// AddMessage appends to the chat history.
type AddMessage struct {
	Message chat.Message
}

// UpdateSummary replaces the conversation summary.
type UpdateSummary struct {
	Summary string
}

// SolveCase marks the case solved. Terminal.
type SolveCase struct{}

// IncrementTurn advances the turn counter.
type IncrementTurn struct{}

// EstablishFact appends a fact to narrative memory.
type EstablishFact struct {
	Fact EstablishedFact
}

// RecordTheory appends a player theory to narrative memory.
type RecordTheory struct {
	Theory PlayerTheory
}

// Relationship directions for ShiftRelationship.
const (
	RelationshipTrust      = "trust"
	RelationshipAntagonize = "antagonize"
)

// ShiftRelationship moves an NPC onto the trusted or antagonized list,
// removing it from the opposite list.
type ShiftRelationship struct {
	NPCID     string
	Direction string
}

func (DiscoverClue) isAction()      {}
func (UpdateTrust) isAction()       {}
func (UpdateMood) isAction()        {}
func (IntroduceNPC) isAction()      {}
func (MoveLocation) isAction()      {}
func (UnlockLocation) isAction()    {}
func (AddMessage) isAction()        {}
func (UpdateSummary) isAction()     {}
func (SolveCase) isAction()         {}
func (IncrementTurn) isAction()     {}
func (EstablishFact) isAction()     {}
func (RecordTheory) isAction()      {}
func (ShiftRelationship) isAction() {}

// FromStateChange converts a sanitized StateChange into the actions that
// realize it. Only call this with deltas the coherence guard has passed.
func FromStateChange(sc chat.StateChange, turn int) []Action {
	actions := make([]Action, 0)
	for _, clueID := range sc.NewClues {
		actions = append(actions, DiscoverClue{ClueID: clueID, Turn: turn})
	}
	for npcID, delta := range sc.TrustChange {
		actions = append(actions, UpdateTrust{NPCID: npcID, Delta: delta})
	}
	for npcID, mood := range sc.NPCMoodShift {
		actions = append(actions, UpdateMood{NPCID: npcID, Mood: mood})
	}
	for _, locationID := range sc.LocationUnlock {
		actions = append(actions, UnlockLocation{LocationID: locationID})
	}
	return actions
}
