package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/pkg/accusation"
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// AccuseRequest is a player's formal accusation against a suspect.
type AccuseRequest struct {
	GameID       uuid.UUID `json:"game_id"`
	SuspectNPCID string    `json:"suspect_npc_id"`
	Motive       string    `json:"motive"`
	Method       string    `json:"method"`
	Reasoning    string    `json:"reasoning"`
}

// Validate checks required fields.
func (r *AccuseRequest) Validate() error {
	if r.GameID == uuid.Nil {
		return fmt.Errorf("game_id is required")
	}
	if r.SuspectNPCID == "" {
		return fmt.Errorf("suspect_npc_id is required")
	}
	return nil
}

// AccuseResult is the outcome of one accusation attempt.
type AccuseResult struct {
	Success bool `json:"success"`

	// Score and Threshold are set for emergent-mode cases.
	Score     int `json:"score,omitempty"`
	Threshold int `json:"threshold,omitempty"`

	Resolution         string   `json:"resolution,omitempty"`
	SupportingEvidence []string `json:"supporting_evidence,omitempty"`
	Contradictions     []string `json:"contradictions,omitempty"`
	Gaps               []string `json:"gaps,omitempty"`
	Feedback           string   `json:"feedback,omitempty"`
}

// Accuse adjudicates a formal accusation. Fixed-solution cases match
// the accused against the authored solution; emergent cases score the
// accusation for coherence against gathered evidence, with a threshold
// that drops as the investigation deepens. Every attempt, successful or
// not, is recorded as a player theory and consumes a turn.
func (m *Manager) Accuse(ctx context.Context, req *AccuseRequest) (*AccuseResult, error) {
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

	acc := accusation.Accusation{
		SuspectNPCID: req.SuspectNPCID,
		Motive:       req.Motive,
		Method:       req.Method,
		Reasoning:    req.Reasoning,
	}

	turn := gs.Turn + 1
	actions := []state.Action{
		state.IncrementTurn{},
		state.RecordTheory{Theory: state.PlayerTheory{
			Content:      fmt.Sprintf("Accused %s: motive %q, method %q", req.SuspectNPCID, req.Motive, req.Method),
			Turn:         turn,
			SuspectNPCID: req.SuspectNPCID,
		}},
	}

	var result *AccuseResult
	if def.Mode() == casefile.ModeFixed {
		result = m.accuseFixed(acc, def, gs)
	} else {
		result, err = m.accuseEmergent(ctx, acc, def, gs)
		if err != nil {
			return nil, err
		}
	}

	if result.Success {
		actions = append(actions, state.SolveCase{})
		actions = append(actions, state.AddMessage{Message: chat.Message{
			ID:        uuid.New(),
			Role:      chat.RoleNarrator,
			Content:   result.Resolution,
			Turn:      turn,
			Timestamp: time.Now().UTC(),
		}})
	}

	next := state.ApplyAll(gs, actions)
	if err := m.saveResponse(ctx, gs, next); err != nil {
		return nil, err
	}

	m.logger.Info("accusation evaluated",
		"game_id", gs.ID, "suspect", req.SuspectNPCID,
		"success", result.Success, "score", result.Score, "threshold", result.Threshold)
	return result, nil
}

func (m *Manager) accuseFixed(acc accusation.Accusation, def *casefile.CaseDefinition, gs *state.GameState) *AccuseResult {
	eval := accusation.EvaluateFixed(acc, def, gs)
	if eval.Coherent {
		return &AccuseResult{
			Success:    true,
			Resolution: eval.Resolution,
		}
	}
	return &AccuseResult{
		Success:        false,
		Contradictions: eval.Contradictions,
		Gaps:           eval.Gaps,
		Feedback:       "The accusation doesn't hold up. Keep digging.",
	}
}

func (m *Manager) accuseEmergent(ctx context.Context, acc accusation.Accusation, def *casefile.CaseDefinition, gs *state.GameState) (*AccuseResult, error) {
	suspect, _ := def.Suspect(acc.SuspectNPCID)
	threshold := accusation.DynamicThreshold(def.BaseThreshold(), gs, acc, suspect)

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	eval, err := accusation.Evaluate(llmCtx, m.llm, acc, def, gs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate accusation: %w", err)
	}

	if eval.Coherent && eval.CoherenceScore >= threshold {
		resolution := eval.Resolution
		if text, err := accusation.GenerateResolution(llmCtx, m.llm, acc, eval, def, gs); err == nil {
			resolution = text
		} else {
			m.logger.Warn("resolution generation failed, using evaluator text",
				"game_id", gs.ID, "error", err)
		}
		return &AccuseResult{
			Success:            true,
			Score:              eval.CoherenceScore,
			Threshold:          threshold,
			Resolution:         resolution,
			SupportingEvidence: eval.SupportingEvidence,
		}, nil
	}

	return &AccuseResult{
		Success:        false,
		Score:          eval.CoherenceScore,
		Threshold:      threshold,
		Contradictions: eval.Contradictions,
		Gaps:           eval.Gaps,
		Feedback: fmt.Sprintf("Your case scored %d against a required %d. The pieces don't fit yet.",
			eval.CoherenceScore, threshold),
	}, nil
}

// GameSummary is a listing entry for active and finished games.
type GameSummary struct {
	ID        uuid.UUID `json:"id"`
	CaseID    string    `json:"case_id"`
	Turn      int       `json:"turn"`
	Solved    bool      `json:"solved"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListGames returns summaries of all stored games, most recent first.
func (m *Manager) ListGames(ctx context.Context) ([]GameSummary, error) {
	states, err := m.store.ListGameStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	summaries := make([]GameSummary, 0, len(states))
	for _, gs := range states {
		summaries = append(summaries, GameSummary{
			ID:        gs.ID,
			CaseID:    gs.CaseID,
			Turn:      gs.Turn,
			Solved:    gs.Solved,
			UpdatedAt: gs.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Move relocates the player to an unlocked location.
func (m *Manager) Move(ctx context.Context, gameID uuid.UUID, locationID string) (*state.GameState, error) {
	unlock := m.locks.acquire(gameID)
	defer unlock()

	gs, err := m.GetState(ctx, gameID)
	if err != nil {
		return nil, err
	}

	loc, ok := gs.Location(locationID)
	if !ok {
		return nil, fmt.Errorf("unknown location: %s", locationID)
	}
	if !loc.Unlocked {
		return nil, fmt.Errorf("location is locked: %s", locationID)
	}

	next := state.Apply(gs, state.MoveLocation{LocationID: locationID})
	if err := m.saveResponse(ctx, gs, next); err != nil {
		return nil, err
	}
	return next, nil
}
