package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeResult(t *testing.T) {
	registry := testRegistry(t)

	tests := []struct {
		name    string
		piles   map[string][]int
		winners []string
		tie     bool
	}{
		{
			name:    "clear winner",
			piles:   map[string][]int{"alice": {cardFox}, "bob": {cardGrass}},
			winners: []string{"alice"},
		},
		{
			name:    "tie on equal points",
			piles:   map[string][]int{"alice": {cardRabbit}, "bob": {cardGrass, cardGrass}},
			winners: []string{"alice", "bob"},
			tie:     true,
		},
		{
			name:    "empty piles tie at zero",
			piles:   map[string][]int{"alice": nil, "bob": nil},
			winners: []string{"alice", "bob"},
			tie:     true,
		},
		{
			name:    "unknown definitions score one point",
			piles:   map[string][]int{"alice": {99999, 99999}, "bob": {cardGrass}},
			winners: []string{"alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &GameState{TurnCounter: 7}
			for _, id := range []string{"alice", "bob"} {
				p := &Player{ID: id, Name: id}
				for _, defID := range tt.piles[id] {
					p.ScorePile = append(p.ScorePile, GridCard{DefinitionID: defID})
				}
				state.Players = append(state.Players, p)
			}

			result := ComputeResult(state, registry)
			assert.Equal(t, tt.winners, result.WinnerIDs)
			assert.Equal(t, tt.tie, result.Tie)
			assert.Equal(t, 7, result.Turns)
		})
	}
}
