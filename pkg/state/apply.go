package state

import (
	"slices"
	"time"
)

// Apply advances the game state by one action and returns the next
// state. The input state is never mutated: collections touched by the
// action are cloned, untouched ones are shared. Unknown actions return
// the input state unchanged.
func Apply(gs *GameState, action Action) *GameState {
	switch a := action.(type) {
	case DiscoverClue:
		next := touched(gs)
		next.Clues = slices.Clone(gs.Clues)
		for i := range next.Clues {
			if next.Clues[i].ID == a.ClueID && !next.Clues[i].Discovered {
				next.Clues[i].Discovered = true
				next.Clues[i].DiscoveredAtTurn = a.Turn
			}
		}
		return next

	case UpdateTrust:
		next := touched(gs)
		next.NPCs = slices.Clone(gs.NPCs)
		for i := range next.NPCs {
			if next.NPCs[i].ID == a.NPCID {
				next.NPCs[i].TrustLevel = clamp(next.NPCs[i].TrustLevel+a.Delta, 0, 100)
			}
		}
		return next

	case UpdateMood:
		next := touched(gs)
		next.NPCs = slices.Clone(gs.NPCs)
		for i := range next.NPCs {
			if next.NPCs[i].ID == a.NPCID {
				next.NPCs[i].Mood = a.Mood
			}
		}
		return next

	case IntroduceNPC:
		next := touched(gs)
		next.NPCs = slices.Clone(gs.NPCs)
		for i := range next.NPCs {
			if next.NPCs[i].ID == a.NPCID {
				next.NPCs[i].Introduced = true
			}
		}
		return next

	case MoveLocation:
		if _, ok := gs.Location(a.LocationID); !ok {
			return gs
		}
		next := touched(gs)
		next.CurrentLocationID = a.LocationID
		next.Locations = slices.Clone(gs.Locations)
		for i := range next.Locations {
			if next.Locations[i].ID == a.LocationID {
				next.Locations[i].Visited = true
			}
		}
		return next

	case UnlockLocation:
		next := touched(gs)
		next.Locations = slices.Clone(gs.Locations)
		for i := range next.Locations {
			if next.Locations[i].ID == a.LocationID {
				next.Locations[i].Unlocked = true
			}
		}
		return next

	case AddMessage:
		next := touched(gs)
		next.ChatHistory = append(slices.Clone(gs.ChatHistory), a.Message)
		return next

	case UpdateSummary:
		next := touched(gs)
		next.ConversationSummary = a.Summary
		return next

	case SolveCase:
		next := touched(gs)
		next.Solved = true
		return next

	case IncrementTurn:
		next := touched(gs)
		next.Turn = gs.Turn + 1
		return next

	case EstablishFact:
		next := touched(gs)
		mem := cloneMemory(gs.Memory)
		mem.EstablishedFacts = append(mem.EstablishedFacts, a.Fact)
		next.Memory = mem
		return next

	case RecordTheory:
		next := touched(gs)
		mem := cloneMemory(gs.Memory)
		mem.PlayerTheories = append(mem.PlayerTheories, a.Theory)
		next.Memory = mem
		return next

	case ShiftRelationship:
		next := touched(gs)
		mem := cloneMemory(gs.Memory)
		switch a.Direction {
		case RelationshipTrust:
			mem.AntagonizedNPCs = remove(mem.AntagonizedNPCs, a.NPCID)
			if !contains(mem.TrustedNPCs, a.NPCID) {
				mem.TrustedNPCs = append(mem.TrustedNPCs, a.NPCID)
			}
		case RelationshipAntagonize:
			mem.TrustedNPCs = remove(mem.TrustedNPCs, a.NPCID)
			if !contains(mem.AntagonizedNPCs, a.NPCID) {
				mem.AntagonizedNPCs = append(mem.AntagonizedNPCs, a.NPCID)
			}
		default:
			return gs
		}
		next.Memory = mem
		return next

	default:
		return gs
	}
}

// ApplyAll folds actions left to right through Apply.
func ApplyAll(gs *GameState, actions []Action) *GameState {
	next := gs
	for _, a := range actions {
		next = Apply(next, a)
	}
	return next
}

// touched shallow-copies the state and stamps UpdatedAt. Callers clone
// whichever collections their action modifies.
func touched(gs *GameState) *GameState {
	next := *gs
	next.UpdatedAt = time.Now().UTC()
	return &next
}

func cloneMemory(m *NarrativeMemory) *NarrativeMemory {
	if m == nil {
		return NewNarrativeMemory()
	}
	return &NarrativeMemory{
		EstablishedFacts: slices.Clone(m.EstablishedFacts),
		PlayerTheories:   slices.Clone(m.PlayerTheories),
		TrustedNPCs:      slices.Clone(m.TrustedNPCs),
		AntagonizedNPCs:  slices.Clone(m.AntagonizedNPCs),
	}
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
