package casefile

// Location is a place in the game world. Authored fields are immutable;
// Visited and Unlocked are runtime state on the game-state copy, both
// monotonic false-to-true.
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Atmosphere  string `json:"atmosphere,omitempty"`

	// NPCIDs lists NPCs present at this location.
	NPCIDs []string `json:"npc_ids,omitempty"`

	// SearchableClueIDs lists clues findable by investigating here.
	SearchableClueIDs []string `json:"searchable_clue_ids,omitempty"`

	// ConnectedLocationIDs lists locations reachable from here.
	ConnectedLocationIDs []string `json:"connected_location_ids,omitempty"`

	// Locked marks a location as initially inaccessible in a case file.
	// Game state tracks the inverse on Unlocked.
	Locked bool `json:"locked,omitempty"`

	Visited  bool `json:"visited,omitempty"`
	Unlocked bool `json:"unlocked,omitempty"`
}
