package casefile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode describes how a case adjudicates accusations.
type Mode int

const (
	// ModeFixed matches accusations against an authored solution string.
	ModeFixed Mode = iota
	// ModeEmergent scores accusations for narrative coherence against
	// the evidence the player has gathered.
	ModeEmergent
)

// DefaultCoherenceThreshold is the base accusation threshold used when a
// case file does not declare one.
const DefaultCoherenceThreshold = 60

// CaseDefinition is the authored template for one mystery. It is loaded
// once, shared between games, and never modified after loading.
type CaseDefinition struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`
	Setting    string `json:"setting"`
	Atmosphere string `json:"atmosphere"`

	// Solution is the authored answer for fixed-solution cases. Empty
	// when the case uses suspects instead.
	Solution string `json:"solution,omitempty"`

	// CoherenceThreshold is the base accusation threshold for emergent
	// cases. Zero means DefaultCoherenceThreshold.
	CoherenceThreshold int `json:"coherence_threshold,omitempty"`

	// Suspects enables emergent mode when non-empty.
	Suspects []Suspect `json:"suspects,omitempty"`

	NPCs            []NPC            `json:"npcs"`
	Locations       []Location       `json:"locations"`
	Clues           []Clue           `json:"clues"`
	ClueConnections []ClueConnection `json:"clue_connections,omitempty"`
}

// Mode reports whether the case resolves by fixed solution or by
// emergent coherence scoring.
func (c *CaseDefinition) Mode() Mode {
	if len(c.Suspects) > 0 {
		return ModeEmergent
	}
	return ModeFixed
}

// BaseThreshold returns the case's accusation threshold, applying the
// default when the case file omits one.
func (c *CaseDefinition) BaseThreshold() int {
	if c.CoherenceThreshold > 0 {
		return c.CoherenceThreshold
	}
	return DefaultCoherenceThreshold
}

// Clue returns the clue definition with the given ID.
func (c *CaseDefinition) Clue(id string) (*Clue, bool) {
	for i := range c.Clues {
		if c.Clues[i].ID == id {
			return &c.Clues[i], true
		}
	}
	return nil, false
}

// NPC returns the NPC definition with the given ID.
func (c *CaseDefinition) NPC(id string) (*NPC, bool) {
	for i := range c.NPCs {
		if c.NPCs[i].ID == id {
			return &c.NPCs[i], true
		}
	}
	return nil, false
}

// Location returns the location definition with the given ID.
func (c *CaseDefinition) Location(id string) (*Location, bool) {
	for i := range c.Locations {
		if c.Locations[i].ID == id {
			return &c.Locations[i], true
		}
	}
	return nil, false
}

// Suspect returns the suspect entry for an NPC ID, if the case declares one.
func (c *CaseDefinition) Suspect(npcID string) (*Suspect, bool) {
	for i := range c.Suspects {
		if c.Suspects[i].NPCID == npcID {
			return &c.Suspects[i], true
		}
	}
	return nil, false
}

var titleCaser = cases.Title(language.English)

// DisplayName derives a human-readable name from a kebab-case ID,
// e.g. "missing-heiress" -> "Missing Heiress". Used by CLI tooling when
// an entity has no authored name.
func DisplayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "-", " "))
}
