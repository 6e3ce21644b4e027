// Package accusation adjudicates the end-game: a player's formal
// accusation either resolves the case or returns actionable feedback.
package accusation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// Generator is the slice of the LLM capability the evaluator needs.
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt string, messages []chat.PromptMessage, maxTokens int, temperature float64) (string, error)
}

// Accusation is the player's formal charge.
type Accusation struct {
	SuspectNPCID string `json:"suspect_npc_id"`
	Motive       string `json:"motive"`
	Method       string `json:"method"`
	Reasoning    string `json:"reasoning"`
}

// Result is the evaluator's judgment of one accusation.
type Result struct {
	Coherent           bool     `json:"coherent"`
	CoherenceScore     int      `json:"coherence_score"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Contradictions     []string `json:"contradictions"`
	Gaps               []string `json:"gaps"`
	Resolution         string   `json:"resolution,omitempty"`
}

// DefaultScoreOnParseFailure is the score granted when the LLM's
// evaluation cannot be parsed. The policy is accept-by-default: an
// unreadable verdict should never punish the player.
const DefaultScoreOnParseFailure = 60

const evaluatorSystemPrompt = `You are a narrative coherence evaluator for a mystery game.

Your job is to assess whether a player's accusation is COHERENT with the evidence they've gathered.
This is NOT about matching a predetermined answer — it's about narrative logic.

An accusation is coherent if:
1. The evidence supports the suspect having means, motive, and opportunity
2. There are no major contradictions with established facts
3. The reasoning follows logically from the clues

Be GENEROUS with coherence. Mystery stories work when player theories become truth.
Only reject accusations that are truly unsupported or contradicted.

Respond in this exact format:
<evaluation>
{
  "coherent": true/false,
  "coherence_score": 0-100,
  "supporting_evidence": ["evidence point 1", "evidence point 2"],
  "contradictions": ["contradiction 1 if any"],
  "gaps": ["gap in reasoning if any"],
  "resolution": "If coherent, write 2-3 sentences describing how this accusation becomes the narrative truth"
}
</evaluation>`

var evaluationPattern = regexp.MustCompile(`(?s)<evaluation>(.*?)</evaluation>`)

// EvaluateFixed adjudicates an accusation against a fixed-solution case:
// success iff the accused NPC's name appears in the solution text,
// case-insensitively.
func EvaluateFixed(acc Accusation, def *casefile.CaseDefinition, gs *state.GameState) Result {
	suspect, ok := gs.NPC(acc.SuspectNPCID)
	if !ok {
		return Result{
			Coherent:       false,
			Contradictions: []string{fmt.Sprintf("unknown suspect: %s", acc.SuspectNPCID)},
		}
	}
	if strings.Contains(strings.ToLower(def.Solution), strings.ToLower(suspect.Name)) {
		return Result{
			Coherent:       true,
			CoherenceScore: 100,
			Resolution:     def.Solution,
		}
	}
	return Result{
		Coherent: false,
		Gaps:     []string{"your accusation doesn't match the evidence; keep investigating"},
	}
}

// Evaluate asks the LLM whether an accusation is coherent with the
// evidence gathered so far. The response is parsed leniently: if the
// evaluation block is missing or malformed, the accusation is accepted
// with DefaultScoreOnParseFailure.
func Evaluate(ctx context.Context, gen Generator, acc Accusation, def *casefile.CaseDefinition, gs *state.GameState) (Result, error) {
	suspect, ok := gs.NPC(acc.SuspectNPCID)
	if !ok {
		return Result{
			Coherent:           false,
			SupportingEvidence: []string{},
			Contradictions:     []string{fmt.Sprintf("unknown suspect: %s", acc.SuspectNPCID)},
			Gaps:               []string{},
		}, nil
	}

	prompt := buildEvaluationPrompt(acc, suspect.Name, def, gs)
	content, err := gen.GenerateResponse(ctx, evaluatorSystemPrompt,
		[]chat.PromptMessage{{Role: chat.PromptRoleUser, Content: prompt}},
		1024, 0.3)
	if err != nil {
		return Result{}, fmt.Errorf("accusation evaluation failed: %w", err)
	}

	return ParseEvaluation(content, acc), nil
}

// ParseEvaluation extracts the structured judgment from the LLM's
// response, accepting by default when parsing fails.
func ParseEvaluation(content string, acc Accusation) Result {
	fallback := Result{
		Coherent:           true,
		CoherenceScore:     DefaultScoreOnParseFailure,
		SupportingEvidence: []string{"evaluation could not be parsed — accepting by default"},
		Contradictions:     []string{},
		Gaps:               []string{},
		Resolution:         fmt.Sprintf("%s was indeed responsible. The truth emerges.", acc.SuspectNPCID),
	}

	m := evaluationPattern.FindStringSubmatch(content)
	if m == nil {
		return fallback
	}

	var parsed Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &parsed); err != nil {
		return fallback
	}
	if parsed.SupportingEvidence == nil {
		parsed.SupportingEvidence = []string{}
	}
	if parsed.Contradictions == nil {
		parsed.Contradictions = []string{}
	}
	if parsed.Gaps == nil {
		parsed.Gaps = []string{}
	}
	return parsed
}

func buildEvaluationPrompt(acc Accusation, suspectName string, def *casefile.CaseDefinition, gs *state.GameState) string {
	var clues strings.Builder
	for _, c := range gs.DiscoveredClues() {
		fmt.Fprintf(&clues, "- %s: %s\n", c.Name, c.Description)
	}
	clueList := strings.TrimRight(clues.String(), "\n")
	if clueList == "" {
		clueList = "(No clues discovered)"
	}

	factList := "(No facts established yet)"
	if gs.Memory != nil && len(gs.Memory.EstablishedFacts) > 0 {
		var facts strings.Builder
		for _, f := range gs.Memory.EstablishedFacts {
			fmt.Fprintf(&facts, "- %s\n", f.Content)
		}
		factList = strings.TrimRight(facts.String(), "\n")
	}

	motives, methods := "unknown", "unknown"
	if suspect, ok := def.Suspect(acc.SuspectNPCID); ok {
		if len(suspect.PossibleMotives) > 0 {
			motives = strings.Join(suspect.PossibleMotives, ", ")
		}
		if len(suspect.PossibleMethods) > 0 {
			methods = strings.Join(suspect.PossibleMethods, ", ")
		}
	}

	return fmt.Sprintf(`CASE: %s
SETTING: %s

PLAYER'S ACCUSATION:
- Suspect: %s
- Motive: %s
- Method: %s
- Reasoning: %s

DISCOVERED CLUES:
%s

ESTABLISHED FACTS (from NPC conversations):
%s

SUSPECT'S POSSIBLE MOTIVES (per case design): %s
SUSPECT'S POSSIBLE METHODS (per case design): %s

Evaluate whether this accusation is coherent with the evidence.`,
		def.Title, def.Setting,
		suspectName, acc.Motive, acc.Method, acc.Reasoning,
		clueList, factList, motives, methods)
}

// GenerateResolution writes the closing scene after a successful
// accusation, weaving the player's theory into the narrative truth.
func GenerateResolution(ctx context.Context, gen Generator, acc Accusation, result Result, def *casefile.CaseDefinition, gs *state.GameState) (string, error) {
	suspectName := acc.SuspectNPCID
	if suspect, ok := gs.NPC(acc.SuspectNPCID); ok {
		suspectName = suspect.Name
	}

	var evidence strings.Builder
	for _, e := range result.SupportingEvidence {
		fmt.Fprintf(&evidence, "- %s\n", e)
	}

	prompt := fmt.Sprintf(`Write a satisfying 3-4 paragraph narrative resolution for this mystery.

CASE: %s
SETTING: %s
ATMOSPHERE: %s

THE ACCUSATION (now truth):
- Culprit: %s
- Motive: %s
- Method: %s
- Player's reasoning: %s

KEY EVIDENCE THAT SUPPORTED THIS:
%s
Write in the noir style of the setting. Make the player feel like a brilliant detective.
Weave in specific clues they discovered. End with a sense of closure.`,
		def.Title, def.Setting, def.Atmosphere,
		suspectName, acc.Motive, acc.Method, acc.Reasoning,
		evidence.String())

	systemPrompt := `You are a noir mystery writer crafting the final revelation scene.
Write atmospheric, satisfying conclusions that honor the player's detective work.
Stay in the period and setting. Be dramatic but not overwrought.`

	content, err := gen.GenerateResponse(ctx, systemPrompt,
		[]chat.PromptMessage{{Role: chat.PromptRoleUser, Content: prompt}},
		512, 0.8)
	if err != nil {
		return "", fmt.Errorf("resolution generation failed: %w", err)
	}
	return content, nil
}
