package state

// EstablishedFact is a narrative truth created by NPC dialogue. Facts
// accumulate; they are never edited or removed.
type EstablishedFact struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	SourceNPCID string `json:"source_npc_id,omitempty"`
	Turn        int    `json:"turn"`

	SupportingClueIDs []string `json:"supporting_clue_ids,omitempty"`

	// Contradictable facts may be undercut by later dialogue; the fact
	// itself still stands in memory.
	Contradictable bool `json:"contradictable,omitempty"`
}

// PlayerTheory is a suspicion the player has voiced, recorded so later
// accusations can be scored against the case they have been building.
type PlayerTheory struct {
	Content      string `json:"content"`
	Turn         int    `json:"turn"`
	SuspectNPCID string `json:"suspect_npc_id,omitempty"`
}

// NarrativeMemory accumulates the emergent story: facts established
// through dialogue, theories the player has voiced, and which NPCs the
// player has befriended or antagonized. Facts and theories are
// append-only; an NPC ID moves between the trusted and antagonized lists
// but never appears in both.
type NarrativeMemory struct {
	EstablishedFacts []EstablishedFact `json:"established_facts"`
	PlayerTheories   []PlayerTheory    `json:"player_theories"`
	TrustedNPCs      []string          `json:"trusted_npcs"`
	AntagonizedNPCs  []string          `json:"antagonized_npcs"`
}

// NewNarrativeMemory returns an empty memory.
func NewNarrativeMemory() *NarrativeMemory {
	return &NarrativeMemory{
		EstablishedFacts: make([]EstablishedFact, 0),
		PlayerTheories:   make([]PlayerTheory, 0),
		TrustedNPCs:      make([]string, 0),
		AntagonizedNPCs:  make([]string, 0),
	}
}

// TheoriesAbout returns how many recorded theories implicate an NPC.
func (m *NarrativeMemory) TheoriesAbout(npcID string) int {
	if m == nil {
		return 0
	}
	count := 0
	for _, t := range m.PlayerTheories {
		if t.SuspectNPCID == npcID {
			count++
		}
	}
	return count
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
