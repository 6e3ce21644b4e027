package casefile

// Personality describes how an NPC speaks and carries themselves. It is
// authored content and never changes during a game.
type Personality struct {
	Voice          string   `json:"voice"`
	SpeechPatterns []string `json:"speech_patterns,omitempty"`
	Backstory      string   `json:"backstory"`
	Mannerisms     []string `json:"mannerisms,omitempty"`
}

// KnowledgeBoundary gates a single clue behind a trust threshold for one
// NPC. Below the threshold the NPC deflects; at or above it the NPC may
// reveal the clue, guided by RevealGuidance.
type KnowledgeBoundary struct {
	ClueID          string `json:"clue_id"`
	RevealThreshold int    `json:"reveal_threshold"`
	DeflectionHint  string `json:"deflection_hint"`
	RevealGuidance  string `json:"reveal_guidance"`
}

// NPC is a non-player character. ID, Name, Role, LocationID, Personality
// and KnowledgeBoundaries are authored and immutable; TrustLevel, Mood and
// Introduced are runtime state carried on the game-state copy.
type NPC struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	LocationID  string      `json:"location_id"`
	Personality Personality `json:"personality"`

	KnowledgeBoundaries []KnowledgeBoundary `json:"knowledge_boundaries,omitempty"`

	// TrustLevel is the NPC's trust in the player, 0-100. In a case file
	// this is the starting value.
	TrustLevel int `json:"trust_level"`

	// Mood is the NPC's current emotional state, fed into prompts.
	Mood string `json:"mood"`

	// Introduced records whether the player has met this NPC.
	Introduced bool `json:"introduced,omitempty"`
}

// Boundary returns the NPC's knowledge boundary for a clue, if any.
func (n *NPC) Boundary(clueID string) (*KnowledgeBoundary, bool) {
	for i := range n.KnowledgeBoundaries {
		if n.KnowledgeBoundaries[i].ClueID == clueID {
			return &n.KnowledgeBoundaries[i], true
		}
	}
	return nil, false
}
