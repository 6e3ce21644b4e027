// Package game orchestrates complete turns: it owns the sequencing of
// load, prompt, LLM call, guard, reduce, and save that every chat or
// accusation request flows through.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/internal/services"
	"github.com/jwebster45206/mystery-engine/internal/storage"
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/guard"
	"github.com/jwebster45206/mystery-engine/pkg/prompts"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

const (
	// llmTimeout bounds one dialogue generation. The HTTP handler's
	// request context still applies underneath.
	llmTimeout = 90 * time.Second

	dialogueMaxTokens   = 1024
	dialogueTemperature = 0.7

	summaryMaxTokens   = 512
	summaryTemperature = 0.3

	// summarizeEvery controls how often the conversation summary is
	// refreshed once history exceeds the prompt window.
	summarizeEvery = 5
)

// Manager coordinates game lifecycle and turn processing. All state
// transitions go through the reducer; the manager itself holds no
// per-game state beyond the lock table.
type Manager struct {
	cases  map[string]*casefile.CaseDefinition
	store  storage.Store
	llm    services.LLMService
	locks  *gameLocks
	logger *slog.Logger
}

// NewManager creates a Manager over a loaded case catalog.
func NewManager(cases map[string]*casefile.CaseDefinition, store storage.Store, llm services.LLMService, logger *slog.Logger) *Manager {
	return &Manager{
		cases:  cases,
		store:  store,
		llm:    llm,
		locks:  newGameLocks(),
		logger: logger,
	}
}

// CaseSummary is a catalog listing entry.
type CaseSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Setting  string `json:"setting"`
	Emergent bool   `json:"emergent"`
}

// ListCases returns catalog entries sorted by ID.
func (m *Manager) ListCases() []CaseSummary {
	summaries := make([]CaseSummary, 0, len(m.cases))
	for _, c := range m.cases {
		summaries = append(summaries, CaseSummary{
			ID:       c.ID,
			Title:    c.Title,
			Synopsis: c.Synopsis,
			Setting:  c.Setting,
			Emergent: c.Mode() == casefile.ModeEmergent,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Case returns a case definition from the catalog.
func (m *Manager) Case(caseID string) (*casefile.CaseDefinition, error) {
	c, ok := m.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	return c, nil
}

// NewGame creates and persists the starting state for a case.
func (m *Manager) NewGame(ctx context.Context, caseID string) (*state.GameState, error) {
	c, err := m.Case(caseID)
	if err != nil {
		return nil, err
	}

	gs := state.New(c)
	if err := m.store.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save new game: %w", err)
	}

	m.logger.Info("game created", "game_id", gs.ID, "case_id", caseID)
	return gs, nil
}

// GetState loads a game state.
func (m *Manager) GetState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if gs == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return gs, nil
}

// Chat processes one player turn end to end. Turns for the same game
// run strictly one at a time; the per-game lock covers the whole
// load-generate-apply-save sequence so no turn ever reads a stale
// snapshot.
func (m *Manager) Chat(ctx context.Context, req *chat.Request) (*chat.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := m.locks.acquire(req.GameID)
	defer unlock()

	gs, err := m.GetState(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if gs.Solved {
		return nil, ErrGameSolved
	}

	def, err := m.Case(gs.CaseID)
	if err != nil {
		return nil, err
	}

	turn := gs.Turn + 1
	actions := []state.Action{state.IncrementTurn{}}

	playerMsg := chat.Message{
		ID:        uuid.New(),
		Role:      chat.RolePlayer,
		Content:   req.Message,
		Turn:      turn,
		Timestamp: time.Now().UTC(),
	}
	actions = append(actions, state.AddMessage{Message: playerMsg})

	npc := m.resolveTarget(gs, req.TargetNPCID)
	if npc == nil {
		// Nobody to talk to: the narrator answers without an LLM round
		// trip and the turn still advances.
		response := m.narratorResponse(gs, turn, actions, "The room is empty. Your words hang in the stale air, unanswered.")
		if err := m.saveResponse(ctx, gs, response.gs); err != nil {
			return nil, err
		}
		return response.resp, nil
	}

	if !npc.Introduced {
		actions = append(actions, state.IntroduceNPC{NPCID: npc.ID})
	}

	dialogue, sanitized := m.generateTurn(ctx, def, gs, npc, req.Message)

	actions = append(actions, state.FromStateChange(sanitized, turn)...)
	actions = append(actions, m.memoryActions(gs, npc, sanitized, turn)...)

	npcMsg := chat.Message{
		ID:        uuid.New(),
		Role:      chat.RoleNPC,
		Content:   dialogue,
		NPCID:     npc.ID,
		Turn:      turn,
		Timestamp: time.Now().UTC(),
	}
	actions = append(actions, state.AddMessage{Message: npcMsg})

	next := state.ApplyAll(gs, actions)
	next = m.maybeSummarize(ctx, next)

	if err := m.saveResponse(ctx, gs, next); err != nil {
		return nil, err
	}

	return &chat.Response{
		GameID:       gs.ID,
		Dialogue:     dialogue,
		StateChanges: sanitized,
		Message:      npcMsg,
	}, nil
}

// resolveTarget picks the NPC the player is addressing: the explicit
// target if given, otherwise whoever is at the current location.
func (m *Manager) resolveTarget(gs *state.GameState, targetID string) *casefile.NPC {
	if targetID != "" {
		if npc, ok := gs.ResolveNPC(targetID); ok {
			return npc
		}
		return nil
	}
	if npc, ok := gs.NPCAtLocation(gs.CurrentLocationID); ok {
		return npc
	}
	return nil
}

// generateTurn builds the prompt, calls the LLM, parses the reply, and
// runs the coherence guard. Provider failures degrade to an in-fiction
// placeholder with no state changes rather than failing the turn.
func (m *Manager) generateTurn(ctx context.Context, def *casefile.CaseDefinition, gs *state.GameState, npc *casefile.NPC, playerMessage string) (string, chat.StateChange) {
	systemPrompt, err := prompts.BuildSystemPrompt(def, gs, npc)
	if err != nil {
		m.logger.Error("prompt build failed", "game_id", gs.ID, "error", err)
		return m.placeholderDialogue(npc), chat.StateChange{}
	}

	window := prompts.BuildWindow(gs.ChatHistory, gs.ConversationSummary, playerMessage)

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	raw, err := m.llm.GenerateResponse(llmCtx, systemPrompt, window, dialogueMaxTokens, dialogueTemperature)
	if err != nil {
		m.logger.Warn("llm generation failed, using placeholder",
			"game_id", gs.ID, "provider", m.llm.Name(), "error", err)
		return m.placeholderDialogue(npc), chat.StateChange{}
	}

	parsed := chat.ParseResponse(raw)
	result := guard.Validate(parsed.StateChanges, def, gs, npc)
	if !result.Valid {
		m.logger.Info("state changes sanitized",
			"game_id", gs.ID, "npc_id", npc.ID, "violations", result.Violations)
	}
	return parsed.Dialogue, result.Sanitized
}

// placeholderDialogue keeps the fiction intact when generation fails.
func (m *Manager) placeholderDialogue(npc *casefile.NPC) string {
	return fmt.Sprintf("%s studies you in silence for a long moment, lost in thought. \"Give me a minute. Ask me again.\"", npc.Name)
}

// memoryActions derives narrative-memory updates from a sanitized
// delta: clue discoveries become established facts attributed to the
// speaking NPC, and large trust swings move the NPC onto the trusted or
// antagonized list.
func (m *Manager) memoryActions(gs *state.GameState, npc *casefile.NPC, sanitized chat.StateChange, turn int) []state.Action {
	actions := make([]state.Action, 0)

	for _, clueID := range sanitized.NewClues {
		clue, ok := gs.Clue(clueID)
		if !ok {
			continue
		}
		actions = append(actions, state.EstablishFact{Fact: state.EstablishedFact{
			ID:                fmt.Sprintf("fact-%s-turn-%d", clueID, turn),
			Content:           clue.Description,
			SourceNPCID:       npc.ID,
			Turn:              turn,
			SupportingClueIDs: []string{clueID},
		}})
	}

	for npcID, delta := range sanitized.TrustChange {
		if delta >= 4 {
			actions = append(actions, state.ShiftRelationship{NPCID: npcID, Direction: state.RelationshipTrust})
		} else if delta <= -4 {
			actions = append(actions, state.ShiftRelationship{NPCID: npcID, Direction: state.RelationshipAntagonize})
		}
	}
	return actions
}

// maybeSummarize refreshes the conversation summary once history has
// outgrown the prompt window, every few turns. Failures are logged and
// skipped; the previous summary keeps serving.
func (m *Manager) maybeSummarize(ctx context.Context, gs *state.GameState) *state.GameState {
	if len(gs.ChatHistory) <= prompts.MaxHistoryMessages || gs.Turn%summarizeEvery != 0 {
		return gs
	}

	summary, err := m.summarize(ctx, gs)
	if err != nil {
		m.logger.Warn("summarization failed", "game_id", gs.ID, "error", err)
		return gs
	}
	return state.Apply(gs, state.UpdateSummary{Summary: summary})
}

func (m *Manager) summarize(ctx context.Context, gs *state.GameState) (string, error) {
	var transcript string
	for _, msg := range gs.ChatHistory {
		speaker := "Detective"
		if msg.Role != chat.RolePlayer {
			speaker = msg.NPCID
			if speaker == "" {
				speaker = "Narrator"
			}
		}
		transcript += fmt.Sprintf("%s: %s\n", speaker, msg.Content)
	}

	prompt := fmt.Sprintf(`Summarize this detective-game conversation in 3-5 sentences.
Preserve: who was questioned, what was learned, what remains unresolved.

%s`, transcript)

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	return m.llm.GenerateResponse(llmCtx, "You summarize game conversations concisely and factually.",
		[]chat.PromptMessage{{Role: chat.PromptRoleUser, Content: prompt}},
		summaryMaxTokens, summaryTemperature)
}

type narratedTurn struct {
	gs   *state.GameState
	resp *chat.Response
}

func (m *Manager) narratorResponse(gs *state.GameState, turn int, actions []state.Action, text string) narratedTurn {
	msg := chat.Message{
		ID:        uuid.New(),
		Role:      chat.RoleNarrator,
		Content:   text,
		Turn:      turn,
		Timestamp: time.Now().UTC(),
	}
	actions = append(actions, state.AddMessage{Message: msg})
	next := state.ApplyAll(gs, actions)
	return narratedTurn{
		gs: next,
		resp: &chat.Response{
			GameID:   gs.ID,
			Dialogue: text,
			Message:  msg,
		},
	}
}

func (m *Manager) saveResponse(ctx context.Context, prev, next *state.GameState) error {
	if err := m.store.SaveGameState(ctx, prev.ID, next); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}
