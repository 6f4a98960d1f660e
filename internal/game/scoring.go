package game

import (
	"sort"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

// MetadataResultKey is the state metadata key holding the final MatchResult.
const MetadataResultKey = "result"

// MatchResult is the final outcome stored when a match ends.
type MatchResult struct {
	Scores    map[string]int `json:"scores"`
	WinnerIDs []string       `json:"winnerIds"`
	Tie       bool           `json:"tie"`
	Turns     int            `json:"turns"`
}

// ComputeResult tallies victory points from each player's score pile. Cards
// without an explicit VP value are worth one point.
func ComputeResult(state *GameState, registry *cards.Registry) MatchResult {
	result := MatchResult{
		Scores: make(map[string]int, len(state.Players)),
		Turns:  state.TurnCounter,
	}

	best := -1
	for _, p := range state.Players {
		score := 0
		for _, scored := range p.ScorePile {
			score += scoreValue(registry, scored.DefinitionID)
		}
		result.Scores[p.ID] = score
		if score > best {
			best = score
		}
	}

	for _, p := range state.Players {
		if result.Scores[p.ID] == best {
			result.WinnerIDs = append(result.WinnerIDs, p.ID)
		}
	}
	sort.Strings(result.WinnerIDs)
	result.Tie = len(result.WinnerIDs) > 1
	return result
}

func scoreValue(registry *cards.Registry, definitionID int) int {
	def, ok := registry.Card(definitionID)
	if !ok || def.VictoryPoints <= 0 {
		return 1
	}
	return def.VictoryPoints
}
