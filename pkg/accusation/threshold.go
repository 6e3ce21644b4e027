package accusation

import (
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// Threshold bounds. No combination of adjustments can push the required
// score outside this range.
const (
	MinThreshold = 25
	MaxThreshold = 85
)

// DynamicThreshold computes the coherence score an accusation must reach
// to succeed. All adjustments compose on one running value:
//
//   - -2 per discovered clue (thorough investigation pays off)
//   - -5 per discovered clue supporting the accused suspect
//   - +8 per discovered clue exonerating the accused suspect
//   - -3 per prior theory naming this suspect, at most -10
//   - -3 per full 5 turns past turn 15, at most -15 (anti-frustration)
//
// The result is clamped to [MinThreshold, MaxThreshold].
func DynamicThreshold(base int, gs *state.GameState, acc Accusation, suspect *casefile.Suspect) int {
	threshold := base

	discovered := 0
	for _, c := range gs.Clues {
		if c.Discovered {
			discovered++
		}
	}
	threshold -= discovered * 2

	if suspect != nil {
		supporting := 0
		for _, id := range suspect.SupportingClueIDs {
			if c, ok := gs.Clue(id); ok && c.Discovered {
				supporting++
			}
		}
		threshold -= supporting * 5

		exonerating := 0
		for _, id := range suspect.ExoneratingClueIDs {
			if c, ok := gs.Clue(id); ok && c.Discovered {
				exonerating++
			}
		}
		threshold += exonerating * 8
	}

	theoryBonus := gs.Memory.TheoriesAbout(acc.SuspectNPCID) * 3
	if theoryBonus > 10 {
		theoryBonus = 10
	}
	threshold -= theoryBonus

	if gs.Turn > 15 {
		lateBonus := (gs.Turn - 15) / 5 * 3
		if lateBonus > 15 {
			lateBonus = 15
		}
		threshold -= lateBonus
	}

	if threshold < MinThreshold {
		return MinThreshold
	}
	if threshold > MaxThreshold {
		return MaxThreshold
	}
	return threshold
}
