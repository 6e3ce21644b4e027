package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// LayerSeparator joins the system-prompt layers. Keeping it stable keeps
// token budgets predictable.
const LayerSeparator = "\n\n---\n\n"

// WorldFrame is layer 1: the immutable character constraint.
func WorldFrame(def *casefile.CaseDefinition) string {
	return fmt.Sprintf(`You are a character in a mystery set in: %s
You must NEVER break character. All language, references, and knowledge must be period and setting-appropriate.
Never reference anything that wouldn't exist in this time and place.`, def.Setting)
}

// CaseContext is layer 2: the specific mystery being investigated.
func CaseContext(def *casefile.CaseDefinition) string {
	return fmt.Sprintf(`CASE: %q
SYNOPSIS: %s
SETTING: %s
ATMOSPHERE: %s

Maintain this atmosphere in every response. The world should feel dangerous, beautiful, and morally complex.`,
		def.Title, def.Synopsis, def.Setting, def.Atmosphere)
}

// NPCPersonality is layer 3: the character being portrayed, including
// current mood from game state.
func NPCPersonality(npc *casefile.NPC) string {
	return fmt.Sprintf(`You are playing %s, %s.
VOICE: %s
SPEECH PATTERNS: %s
BACKSTORY: %s
MANNERISMS: %s
CURRENT MOOD: %s

Stay in character as %s at all times. Your speech should reflect your voice and patterns.`,
		npc.Name, npc.Role,
		npc.Personality.Voice,
		strings.Join(npc.Personality.SpeechPatterns, "; "),
		npc.Personality.Backstory,
		strings.Join(npc.Personality.Mannerisms, "; "),
		npc.Mood, npc.Name)
}

// KnowledgeBoundaries is layer 4: for every boundary on this NPC, state
// whether it is unlocked (with reveal guidance) or locked (with the
// deflection hint and the numeric trust gap). This is the primary lever
// against premature reveals.
func KnowledgeBoundaries(npc *casefile.NPC) string {
	var sb strings.Builder
	for _, kb := range npc.KnowledgeBoundaries {
		if npc.TrustLevel >= kb.RevealThreshold {
			fmt.Fprintf(&sb, "- Clue %q: UNLOCKED — you may reveal: %s\n", kb.ClueID, kb.RevealGuidance)
		} else {
			fmt.Fprintf(&sb, "- Clue %q: LOCKED (trust %d/%d) — deflect with: %s\n",
				kb.ClueID, npc.TrustLevel, kb.RevealThreshold, kb.DeflectionHint)
		}
	}

	return fmt.Sprintf(`KNOWLEDGE BOUNDARIES (current trust level: %d/100):
%s
You must NEVER reveal information from LOCKED clues. Use the deflection hints to redirect.
If the player pushes, you can hint that trust must be earned, but never reveal specifics.`,
		npc.TrustLevel, sb.String())
}

// CurrentGameState is layer 5: turn, location, discovered clues, trust
// levels, narrative memory, and any running conversation summary.
func CurrentGameState(gs *state.GameState) string {
	discovered := make([]string, 0)
	for _, c := range gs.Clues {
		if c.Discovered {
			discovered = append(discovered, c.Name)
		}
	}

	locationName := "Unknown"
	if loc, ok := gs.Location(gs.CurrentLocationID); ok {
		locationName = loc.Name
	}

	trust := make([]string, 0, len(gs.NPCs))
	for _, n := range gs.NPCs {
		trust = append(trust, fmt.Sprintf("%s: %d/100", n.Name, n.TrustLevel))
	}

	clueList := strings.Join(discovered, ", ")
	if clueList == "" {
		clueList = "None"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `CURRENT GAME STATE (Turn %d):
LOCATION: %s
CLUES DISCOVERED (%d/%d): %s
NPC TRUST LEVELS: %s`,
		gs.Turn, locationName, len(discovered), len(gs.Clues), clueList, strings.Join(trust, ", "))

	if mem := gs.Memory; mem != nil {
		if len(mem.EstablishedFacts) > 0 {
			sb.WriteString("\n\nESTABLISHED FACTS (treat as true):")
			for _, f := range mem.EstablishedFacts {
				fmt.Fprintf(&sb, "\n- %s", f.Content)
			}
		}
		if len(mem.PlayerTheories) > 0 {
			sb.WriteString("\n\nPLAYER'S RECENT THEORIES:")
			theories := mem.PlayerTheories
			if len(theories) > 3 {
				theories = theories[len(theories)-3:]
			}
			for _, t := range theories {
				fmt.Fprintf(&sb, "\n- %s", t.Content)
			}
		}
	}

	if gs.ConversationSummary != "" {
		fmt.Fprintf(&sb, "\n\nEARLIER CONVERSATION SUMMARY:\n%s", gs.ConversationSummary)
	}

	return sb.String()
}

// OutputFormat is layer 6: the structural contract the response parser
// expects. It assumes the knowledge-boundary layer has already limited
// what is revealable.
func OutputFormat() string {
	return `FORMAT your response as:
<dialogue>[In-character response]</dialogue>
<state_changes>{"new_clues":[],"trust_change":{},"npc_mood_shift":{},"location_unlock":[]}</state_changes>

state_changes: new_clues=discovered clue IDs, trust_change=NPC ID to delta, npc_mood_shift=NPC ID to new mood, location_unlock=newly accessible location IDs. Never invent clue IDs. Only include changed fields.`
}

// Guardrails is layer 7: hard constraints, varying by case mode.
func Guardrails(def *casefile.CaseDefinition) string {
	secrecy := "Never fabricate clues, characters, or locations."
	if def.Mode() == casefile.ModeFixed {
		solution := def.Solution
		if len(solution) > 50 {
			solution = solution[:50]
		}
		secrecy = fmt.Sprintf("Never reveal the solution (%q...). Never fabricate clues, characters, or locations.", solution)
	}
	return fmt.Sprintf(`RULES: %s Stay in period. Never break character or acknowledge being an AI. Keep responses under 200 words. Trust changes: +1 to +3 (good interactions), -1 to -5 (bad interactions).`, secrecy)
}
