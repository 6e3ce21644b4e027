package casefile

// Suspect defines the possibility space around one NPC in an emergent
// case. Instead of a single authored culprit, each suspect carries the
// motives and methods a player might plausibly pin on them, plus the
// evidence that supports or undermines that theory.
type Suspect struct {
	NPCID string `json:"npc_id"`

	PossibleMotives []string `json:"possible_motives,omitempty"`
	PossibleMethods []string `json:"possible_methods,omitempty"`

	// SupportingClueIDs point toward this suspect's guilt.
	SupportingClueIDs []string `json:"supporting_clue_ids,omitempty"`

	// ExoneratingClueIDs suggest this suspect is innocent.
	ExoneratingClueIDs []string `json:"exonerating_clue_ids,omitempty"`
}
