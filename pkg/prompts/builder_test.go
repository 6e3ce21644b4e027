package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

func promptFixture() (*casefile.CaseDefinition, *state.GameState, *casefile.NPC) {
	def := &casefile.CaseDefinition{
		ID:         "missing-heiress",
		Title:      "The Missing Heiress",
		Synopsis:   "An heiress vanishes from a gala.",
		Setting:    "A 1947 port city",
		Atmosphere: "Rain and old money",
		Suspects:   []casefile.Suspect{{NPCID: "harold"}},
		NPCs: []casefile.NPC{
			{
				ID: "harold", Name: "Harold Finch", Role: "Butler of Ashcroft Manor",
				LocationID: "manor-study", TrustLevel: 30, Mood: "guarded",
				Personality: casefile.Personality{
					Voice:          "Measured and formal",
					SpeechPatterns: []string{"Answers questions with questions"},
					Backstory:      "Thirty years of service.",
					Mannerisms:     []string{"Polishes his spectacles"},
				},
				KnowledgeBoundaries: []casefile.KnowledgeBoundary{
					{ClueID: "vivian-argument", RevealThreshold: 20, DeflectionHint: "We do not discuss family matters.", RevealGuidance: "He admits he overheard the argument."},
					{ClueID: "shipping-records", RevealThreshold: 80, DeflectionHint: "The accounts are in order.", RevealGuidance: "He produces the duplicate records."},
				},
			},
		},
		Locations: []casefile.Location{{ID: "manor-study", Name: "The Manor Study"}},
		Clues: []casefile.Clue{
			{ID: "vivian-argument", Name: "The Argument", SourceID: "harold"},
			{ID: "shipping-records", Name: "Shipping Records", SourceID: "harold"},
		},
	}
	gs := state.New(def)
	npc, _ := gs.NPC("harold")
	return def, gs, npc
}

func TestBuild_LayerOrder(t *testing.T) {
	def, gs, npc := promptFixture()

	prompt, err := BuildSystemPrompt(def, gs, npc)
	require.NoError(t, err)

	layers := strings.Split(prompt, LayerSeparator)
	require.Len(t, layers, 7)

	assert.Contains(t, layers[0], "NEVER break character")
	assert.Contains(t, layers[1], `CASE: "The Missing Heiress"`)
	assert.Contains(t, layers[2], "You are playing Harold Finch")
	assert.Contains(t, layers[3], "KNOWLEDGE BOUNDARIES")
	assert.Contains(t, layers[4], "CURRENT GAME STATE")
	assert.Contains(t, layers[5], "<dialogue>")
	assert.Contains(t, layers[6], "RULES:")
}

func TestBuild_MissingInputs(t *testing.T) {
	def, gs, npc := promptFixture()

	_, err := New().WithGameState(gs).WithNPC(npc).Build()
	assert.Error(t, err)

	_, err = New().WithCase(def).WithNPC(npc).Build()
	assert.Error(t, err)

	_, err = New().WithCase(def).WithGameState(gs).Build()
	assert.Error(t, err)
}

func TestKnowledgeBoundaries_LockedAndUnlocked(t *testing.T) {
	_, _, npc := promptFixture()

	layer := KnowledgeBoundaries(npc)

	// Trust 30: the argument (20) is unlocked, the records (80) are not.
	assert.Contains(t, layer, `Clue "vivian-argument": UNLOCKED`)
	assert.Contains(t, layer, "He admits he overheard the argument.")
	assert.Contains(t, layer, `Clue "shipping-records": LOCKED (trust 30/80)`)
	assert.Contains(t, layer, "The accounts are in order.")
	assert.NotContains(t, layer, "He produces the duplicate records.")
}

func TestCurrentGameState_IncludesMemoryAndSummary(t *testing.T) {
	_, gs, _ := promptFixture()
	gs = state.ApplyAll(gs, []state.Action{
		state.DiscoverClue{ClueID: "vivian-argument", Turn: 1},
		state.EstablishFact{Fact: state.EstablishedFact{ID: "f1", Content: "The sisters argued about money."}},
		state.RecordTheory{Theory: state.PlayerTheory{Content: "Margaret wanted the inheritance.", SuspectNPCID: "margaret"}},
		state.UpdateSummary{Summary: "Opening interviews done."},
	})

	layer := CurrentGameState(gs)

	assert.Contains(t, layer, "CLUES DISCOVERED (1/2): The Argument")
	assert.Contains(t, layer, "Harold Finch: 30/100")
	assert.Contains(t, layer, "The sisters argued about money.")
	assert.Contains(t, layer, "Margaret wanted the inheritance.")
	assert.Contains(t, layer, "EARLIER CONVERSATION SUMMARY:\nOpening interviews done.")
}

func TestGuardrails_ByMode(t *testing.T) {
	def, _, _ := promptFixture()

	// Emergent mode: no solution to protect.
	emergent := Guardrails(def)
	assert.Contains(t, emergent, "Never fabricate clues")
	assert.NotContains(t, emergent, "Never reveal the solution")

	fixed := &casefile.CaseDefinition{
		Solution: "Edith Calloway cut the painting free during her late conservation session and walked out.",
	}
	rules := Guardrails(fixed)
	assert.Contains(t, rules, "Never reveal the solution")
	// Only a truncated fragment of the solution may appear.
	assert.NotContains(t, rules, "walked out")
}
