package game

import "github.com/trophicgame/trophic-server-go/internal/game/effects"

// Clone deep-copies the game state. Every mutating action works on a clone
// so the action boundary stays atomic and callers can keep prior snapshots.
func (s *GameState) Clone() *GameState {
	clone := &GameState{
		ID:                   s.ID,
		Players:              make([]*Player, len(s.Players)),
		CurrentPlayerIndex:   s.CurrentPlayerIndex,
		Phase:                s.Phase,
		TurnPhase:            s.TurnPhase,
		ActionsRemaining:     s.ActionsRemaining,
		TurnCounter:          s.TurnCounter,
		FinalTurnTriggeredBy: s.FinalTurnTriggeredBy,
		Board:                make(map[Position]*GridCard, len(s.Board)),
		Settings:             s.Settings,
	}

	if s.FinalTurnPending != nil {
		clone.FinalTurnPending = make([]string, len(s.FinalTurnPending))
		copy(clone.FinalTurnPending, s.FinalTurnPending)
	}

	for i, p := range s.Players {
		clone.Players[i] = p.clone()
	}
	for pos, card := range s.Board {
		clone.Board[pos] = card.clone()
	}
	if s.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(s.Metadata))
		for k, v := range s.Metadata {
			clone.Metadata[k] = v
		}
	}

	return clone
}

func (p *Player) clone() *Player {
	out := &Player{
		ID:     p.ID,
		Name:   p.Name,
		Energy: p.Energy,
		Ready:  p.Ready,
	}
	if p.Hand != nil {
		out.Hand = make([]int, len(p.Hand))
		copy(out.Hand, p.Hand)
	}
	if p.Deck != nil {
		out.Deck = make([]int, len(p.Deck))
		copy(out.Deck, p.Deck)
	}
	if p.ScorePile != nil {
		out.ScorePile = make([]GridCard, len(p.ScorePile))
		for i := range p.ScorePile {
			out.ScorePile[i] = *p.ScorePile[i].clone()
		}
	}
	return out
}

func (g *GridCard) clone() *GridCard {
	out := &GridCard{
		InstanceID:   g.InstanceID,
		DefinitionID: g.DefinitionID,
		OwnerID:      g.OwnerID,
		Position:     g.Position,
		Exhausted:    g.Exhausted,
		Detritus:     g.Detritus,
		Home:         g.Home,
	}
	if g.Attachments != nil {
		out.Attachments = make([]*GridCard, len(g.Attachments))
		for i, attached := range g.Attachments {
			out.Attachments[i] = attached.clone()
		}
	}
	out.StatusEffects = effects.Clone(g.StatusEffects)
	return out
}
