package chat

// StateChange is the compact set of game-state changes proposed by the
// LLM for one turn. It is untrusted as parsed and must pass the coherence
// guard before any of it is applied. A StateChange is consumed
// immediately; it is never persisted.
type StateChange struct {
	NewClues       []string          `json:"new_clues,omitempty"`
	NPCMoodShift   map[string]string `json:"npc_mood_shift,omitempty"`
	TrustChange    map[string]int    `json:"trust_change,omitempty"`
	LocationUnlock []string          `json:"location_unlock,omitempty"`
}

// IsEmpty reports whether the StateChange proposes nothing.
func (sc *StateChange) IsEmpty() bool {
	return sc == nil || (len(sc.NewClues) == 0 &&
		len(sc.NPCMoodShift) == 0 &&
		len(sc.TrustChange) == 0 &&
		len(sc.LocationUnlock) == 0)
}
