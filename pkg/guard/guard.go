// Package guard sanitizes LLM-proposed state changes against the case
// definition and current game state. The LLM narrates; the guard decides
// what becomes fact.
package guard

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// Trust deltas outside this range are clamped per interaction.
const (
	MinTrustDelta = -5
	MaxTrustDelta = 5
)

// Result carries the sanitized delta plus every rejection or adjustment
// made, in human-readable form for logs. Violations never block the
// sanitized subset; callers apply Sanitized unconditionally.
type Result struct {
	Valid      bool             `json:"valid"`
	Sanitized  chat.StateChange `json:"sanitized"`
	Violations []string         `json:"violations,omitempty"`
}

// Validate filters a proposed StateChange down to the changes consistent
// with the case rules. Each field is validated independently; Validate
// never fails.
func Validate(proposed chat.StateChange, def *casefile.CaseDefinition, gs *state.GameState, target *casefile.NPC) Result {
	violations := make([]string, 0)
	sanitized := chat.StateChange{}

	if len(proposed.NewClues) > 0 {
		validClues := make([]string, 0, len(proposed.NewClues))
		for _, clueID := range proposed.NewClues {
			clueDef, ok := def.Clue(clueID)
			if !ok {
				violations = append(violations, fmt.Sprintf("rejected fabricated clue: %q", clueID))
				continue
			}
			if current, ok := gs.Clue(clueID); ok && current.Discovered {
				violations = append(violations, fmt.Sprintf("clue already discovered: %q", clueID))
				continue
			}
			if boundary, ok := target.Boundary(clueID); ok && target.TrustLevel < boundary.RevealThreshold {
				violations = append(violations, fmt.Sprintf("trust too low for clue %q: %d/%d",
					clueID, target.TrustLevel, boundary.RevealThreshold))
				continue
			}
			if !prerequisitesMet(clueDef, gs) {
				violations = append(violations, fmt.Sprintf("prerequisites not met for clue %q", clueID))
				continue
			}
			validClues = append(validClues, clueID)
		}
		if len(validClues) > 0 {
			sanitized.NewClues = validClues
		}
	}

	if len(proposed.TrustChange) > 0 {
		validTrust := make(map[string]int)
		for _, npcKey := range sortedKeys(proposed.TrustChange) {
			delta := proposed.TrustChange[npcKey]
			npc, ok := gs.ResolveNPC(npcKey)
			if !ok {
				violations = append(violations, fmt.Sprintf("unknown NPC for trust change: %q", npcKey))
				continue
			}
			capped := clamp(delta, MinTrustDelta, MaxTrustDelta)
			if capped != delta {
				violations = append(violations, fmt.Sprintf("trust delta capped for %q: %d -> %d", npc.ID, delta, capped))
			}
			validTrust[npc.ID] = capped
		}
		if len(validTrust) > 0 {
			sanitized.TrustChange = validTrust
		}
	}

	if len(proposed.NPCMoodShift) > 0 {
		validMoods := make(map[string]string)
		for _, npcKey := range sortedKeys(proposed.NPCMoodShift) {
			npc, ok := gs.ResolveNPC(npcKey)
			if !ok {
				violations = append(violations, fmt.Sprintf("unknown NPC for mood shift: %q", npcKey))
				continue
			}
			// Mood is free text; resolution is the only check.
			validMoods[npc.ID] = proposed.NPCMoodShift[npcKey]
		}
		if len(validMoods) > 0 {
			sanitized.NPCMoodShift = validMoods
		}
	}

	if len(proposed.LocationUnlock) > 0 {
		validLocations := make([]string, 0, len(proposed.LocationUnlock))
		for _, locID := range proposed.LocationUnlock {
			if _, ok := def.Location(locID); !ok {
				violations = append(violations, fmt.Sprintf("unknown location: %q", locID))
				continue
			}
			validLocations = append(validLocations, locID)
		}
		if len(validLocations) > 0 {
			sanitized.LocationUnlock = validLocations
		}
	}

	return Result{
		Valid:      len(violations) == 0,
		Sanitized:  sanitized,
		Violations: violations,
	}
}

func prerequisitesMet(clue *casefile.Clue, gs *state.GameState) bool {
	for _, pid := range clue.Prerequisites {
		prereq, ok := gs.Clue(pid)
		if !ok || !prereq.Discovered {
			return false
		}
	}
	return true
}

// sortedKeys keeps violation ordering deterministic across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
