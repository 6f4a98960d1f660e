package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/game/effects"
	"github.com/trophicgame/trophic-server-go/internal/game/rules"
)

// runTriggers fires every ability of the card matching the trigger kind.
func (e *TrophicEngine) runTriggers(state *GameState, card *GridCard, kind cards.TriggerKind) {
	e.runTriggersWithTarget(state, card, kind, "")
}

func (e *TrophicEngine) runTriggersWithTarget(state *GameState, card *GridCard, kind cards.TriggerKind, targetID string) {
	def, ok := e.registry.Card(card.DefinitionID)
	if !ok {
		return
	}
	for _, abilityID := range def.AbilityIDs {
		ability, ok := e.registry.Ability(abilityID)
		if !ok || ability.Trigger != kind {
			continue
		}
		e.processAbilityEffects(state, card, targetID, ability)
	}
}

// processAbilityEffects resolves an ability's effects in order. A failing
// effect aborts the remaining effects of this ability only; unknown
// selector or action kinds are skipped.
func (e *TrophicEngine) processAbilityEffects(state *GameState, source *GridCard, targetID string, ability *cards.AbilityDefinition) {
	for i, effect := range ability.Effects {
		if err := e.applyEffect(state, source, targetID, effect); err != nil {
			if e.logger != nil {
				e.logger.Warn("ability effect failed",
					zap.String("ability", ability.Name),
					zap.Int("effect_index", i),
					zap.Error(err))
			}
			return
		}
	}
}

func (e *TrophicEngine) applyEffect(state *GameState, source *GridCard, targetID string, effect cards.Effect) error {
	targets := e.selectTargets(state, source, targetID, effect.Selector)
	targets = e.filterTargets(targets, effect.Filters)
	return e.performAction(state, source, targets, effect)
}

// selectTargets gathers candidate cards for an effect. Detritus markers and
// HOME cells are excluded unless the selector asks for them explicitly.
func (e *TrophicEngine) selectTargets(state *GameState, source *GridCard, targetID string, selector cards.SelectorKind) []*GridCard {
	switch selector {
	case cards.SelectorNone:
		if targetID != "" {
			if card, _, ok := state.FindInstance(targetID); ok {
				return []*GridCard{card}
			}
			return nil
		}
		return []*GridCard{source}

	case cards.SelectorAdjacent:
		var out []*GridCard
		for _, n := range state.NeighborsOf(source.Position) {
			if n.Home || n.Detritus {
				continue
			}
			out = append(out, n)
		}
		return out

	case cards.SelectorAmphibiousBridge:
		// Reach cards two steps away through an adjacent bridge organism.
		seen := map[string]bool{source.InstanceID: true}
		var out []*GridCard
		for _, bridge := range state.NeighborsOf(source.Position) {
			if bridge.Home || bridge.Detritus {
				continue
			}
			bridgeDef, ok := e.registry.Card(bridge.DefinitionID)
			if !ok || !rules.IsBridgeDomain(bridgeDef.Domain) {
				continue
			}
			for _, beyond := range state.NeighborsOf(bridge.Position) {
				if beyond.Home || beyond.Detritus || seen[beyond.InstanceID] {
					continue
				}
				seen[beyond.InstanceID] = true
				out = append(out, beyond)
			}
		}
		return out

	case cards.SelectorAllDetritus:
		var out []*GridCard
		for _, card := range state.Board {
			if card.Detritus {
				out = append(out, card)
			}
		}
		return out

	case cards.SelectorHost:
		if _, host, ok := state.FindInstance(source.InstanceID); ok && host != nil {
			return []*GridCard{host}
		}
		return nil

	case cards.SelectorAllCards:
		return allLivingCards(state)

	case cards.SelectorRandomCard:
		pool := allLivingCards(state)
		if len(pool) == 0 {
			return nil
		}
		return []*GridCard{pool[e.rng.Intn(len(pool))]}

	default:
		if e.logger != nil {
			e.logger.Warn("unknown effect selector", zap.Int("selector", int(selector)))
		}
		return nil
	}
}

func allLivingCards(state *GameState) []*GridCard {
	var out []*GridCard
	for _, card := range state.Board {
		if card.Home || card.Detritus {
			continue
		}
		out = append(out, card)
		out = append(out, card.Attachments...)
	}
	return out
}

func (e *TrophicEngine) filterTargets(targets []*GridCard, filters []cards.Filter) []*GridCard {
	if len(filters) == 0 {
		return targets
	}
	var out []*GridCard
	for _, target := range targets {
		def, ok := e.registry.Card(target.DefinitionID)
		if !ok {
			continue
		}
		if matchesFilters(def, filters) {
			out = append(out, target)
		}
	}
	return out
}

func matchesFilters(def *cards.CardDefinition, filters []cards.Filter) bool {
	for _, f := range filters {
		switch f.Kind {
		case cards.FilterKeyword:
			found := false
			for _, k := range def.Keywords {
				if k == f.Keyword {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case cards.FilterCategory:
			if def.Category != f.Category {
				return false
			}
		case cards.FilterLevel:
			if def.Level != f.Level {
				return false
			}
		}
	}
	return true
}

func (e *TrophicEngine) performAction(state *GameState, source *GridCard, targets []*GridCard, effect cards.Effect) error {
	owner, ownerOK := state.PlayerByID(source.OwnerID)

	switch effect.Action {
	case cards.ActionExhaust:
		for _, t := range targets {
			t.Exhausted = true
			e.bus.Publish(rules.NewEvent(rules.EventCardExhausted, state.ID, source.OwnerID, t.InstanceID))
		}

	case cards.ActionReady:
		for _, t := range targets {
			if t.hasPreventReady() {
				continue
			}
			t.Exhausted = false
			e.bus.Publish(rules.NewEvent(rules.EventCardReadied, state.ID, source.OwnerID, t.InstanceID))
		}

	case cards.ActionMoveToHand:
		for _, t := range targets {
			targetOwner, ok := state.PlayerByID(t.OwnerID)
			if !ok || len(targetOwner.Hand) >= state.Settings.MaxHandSize {
				continue
			}
			card, host, ok := state.FindInstance(t.InstanceID)
			if !ok {
				continue
			}
			e.detachOrDelete(state, card, host)
			targetOwner.Hand = append(targetOwner.Hand, card.DefinitionID)
			e.bus.Publish(rules.NewEvent(rules.EventCardRemoved, state.ID, t.OwnerID, t.InstanceID))
		}

	case cards.ActionMoveToDetritus:
		for _, t := range targets {
			card, host, ok := state.FindInstance(t.InstanceID)
			if !ok || card.Home || card.Detritus {
				continue
			}
			e.killInstance(state, card, host)
		}

	case cards.ActionPreventReady:
		duration := effect.Duration
		if duration <= 0 {
			duration = 1
		}
		for _, t := range targets {
			t.StatusEffects = append(t.StatusEffects, effects.New(effects.TypePreventReady, duration, source.InstanceID))
		}

	case cards.ActionGainEnergy:
		if !ownerOK {
			return fmt.Errorf("owner %s not found", source.OwnerID)
		}
		owner.Energy += effect.Amount
		e.bus.Publish(rules.NewEvent(rules.EventEnergyChanged, state.ID, owner.ID, source.InstanceID))

	case cards.ActionLoseEnergy:
		for _, t := range targets {
			targetOwner, ok := state.PlayerByID(t.OwnerID)
			if !ok {
				continue
			}
			targetOwner.Energy -= effect.Amount
			if targetOwner.Energy < 0 {
				targetOwner.Energy = 0
			}
			e.bus.Publish(rules.NewEvent(rules.EventEnergyChanged, state.ID, targetOwner.ID, source.InstanceID))
		}

	case cards.ActionDrawCards:
		if !ownerOK {
			return fmt.Errorf("owner %s not found", source.OwnerID)
		}
		for i := 0; i < effect.Amount; i++ {
			if len(owner.Deck) == 0 || len(owner.Hand) >= state.Settings.MaxHandSize {
				break
			}
			owner.Hand = append(owner.Hand, owner.drawFromDeck())
			e.bus.Publish(rules.NewEvent(rules.EventCardDrawn, state.ID, owner.ID, source.InstanceID))
		}

	case cards.ActionDiscardCard:
		if !ownerOK {
			return fmt.Errorf("owner %s not found", source.OwnerID)
		}
		for i, id := range owner.Hand {
			if id == effect.Card {
				owner.Hand = append(owner.Hand[:i], owner.Hand[i+1:]...)
				break
			}
		}

	case cards.ActionGainVictoryPoints:
		if !ownerOK {
			return fmt.Errorf("owner %s not found", source.OwnerID)
		}
		for _, t := range targets {
			card, host, ok := state.FindInstance(t.InstanceID)
			if !ok {
				continue
			}
			snapshot := *card.clone()
			if card.Detritus {
				delete(state.Board, card.Position)
			} else {
				e.detachOrDelete(state, card, host)
			}
			owner.ScorePile = append(owner.ScorePile, snapshot)
			e.bus.Publish(rules.NewEvent(rules.EventScoreChanged, state.ID, owner.ID, card.InstanceID))
		}

	case cards.ActionApplyStatus:
		duration := effect.Duration
		if duration <= 0 {
			duration = 1
		}
		for _, t := range targets {
			t.StatusEffects = append(t.StatusEffects, effects.New(effect.Status, duration, source.InstanceID))
		}

	default:
		if e.logger != nil {
			e.logger.Warn("unknown effect action", zap.Int("action", int(effect.Action)))
		}
	}
	return nil
}
