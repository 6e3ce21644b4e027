package casefile

// Clue is a single piece of evidence. Authored fields are immutable;
// Discovered and DiscoveredAtTurn are runtime state on the game-state
// copy. A clue is discovered at most once and never reverts.
type Clue struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// SourceID names the NPC or location that can reveal this clue.
	SourceID string `json:"source_id"`

	// TrustThreshold is the minimum trust needed to obtain this clue.
	TrustThreshold int `json:"trust_threshold"`

	// Prerequisites lists clue IDs that must be discovered first.
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Tags group clues for display, e.g. "testimony", "document".
	Tags []string `json:"tags,omitempty"`

	Discovered       bool `json:"discovered,omitempty"`
	DiscoveredAtTurn int  `json:"discovered_at_turn,omitempty"`
}

// ClueConnection is an informational edge between two clues, shown in the
// player's notebook. Connections never gate discovery.
type ClueConnection struct {
	FromClueID   string `json:"from_clue_id"`
	ToClueID     string `json:"to_clue_id"`
	Relationship string `json:"relationship"`
}
