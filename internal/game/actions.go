package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/game/cost"
	"github.com/trophicgame/trophic-server-go/internal/game/rules"
)

// handlePlayCard validates placement, then cost, then instantiates the card.
// Ordering matters for atomicity: nothing is mutated until both checks pass.
func (e *TrophicEngine) handlePlayCard(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	if action.Position == nil {
		return fmt.Errorf("missing target position")
	}
	def, ok := e.registry.Card(action.CardID)
	if !ok {
		return fmt.Errorf("unknown card %d", action.CardID)
	}
	handIdx := -1
	for i, id := range player.Hand {
		if id == action.CardID {
			handIdx = i
			break
		}
	}
	if handIdx < 0 {
		return fmt.Errorf("card %d is not in your hand", action.CardID)
	}

	pos := *action.Position
	checker := rules.NewPlacementChecker(boardAccessor{state: state, registry: e.registry}, e.registry)
	placement := checker.Check(def, player.ID, pos.X, pos.Y)
	if !placement.Legal {
		return fmt.Errorf("%s", placement.Reason)
	}

	var credit *cost.DetritusCredit
	if placement.ReplacesDetritus {
		marker := state.Board[pos]
		if markerDef, ok := e.registry.Card(marker.DefinitionID); ok {
			credit = &cost.DetritusCredit{
				Category: markerDef.Category,
				Level:    markerDef.Level,
			}
		}
	}
	payment := cost.CalculatePayment(def.Cost, e.costCandidates(state, player.ID), credit, action.PayWith)
	if !payment.Success {
		return fmt.Errorf("%s", payment.Reason)
	}

	// All checks passed; mutate the clone.
	for _, id := range payment.Plan.ExhaustIDs {
		if paying, _, ok := state.FindInstance(id); ok {
			paying.Exhausted = true
			e.bus.Publish(rules.NewEvent(rules.EventCardExhausted, state.ID, player.ID, id))
		}
	}

	if placement.ReplacesDetritus {
		marker := state.Board[pos]
		delete(state.Board, pos)
		player.ScorePile = append(player.ScorePile, *marker.clone())
		e.bus.Publish(rules.NewEvent(rules.EventDetritusConsumed, state.ID, player.ID, marker.InstanceID))
		e.bus.Publish(rules.NewEvent(rules.EventScoreChanged, state.ID, player.ID, marker.InstanceID))
	}

	player.Hand = append(player.Hand[:handIdx], player.Hand[handIdx+1:]...)

	played := &GridCard{
		InstanceID:   uuid.NewString(),
		DefinitionID: def.ID,
		OwnerID:      player.ID,
		Position:     pos,
		Exhausted:    true,
	}

	if placement.HostID != "" {
		host, _, ok := state.FindInstance(placement.HostID)
		if !ok {
			return fmt.Errorf("host %s vanished during placement", placement.HostID)
		}
		played.Position = host.Position
		host.Attachments = append(host.Attachments, played)
		e.bus.Publish(rules.NewEvent(rules.EventCardAttached, state.ID, player.ID, played.InstanceID))
	} else {
		state.Board[pos] = played
	}
	e.bus.Publish(rules.NewEvent(rules.EventCardPlayed, state.ID, player.ID, played.InstanceID))

	// On-play abilities fire before the synergy bonus check.
	e.runTriggersWithTarget(state, played, cards.TriggerOnPlay, action.TargetInstanceID)

	if e.synergyMet(state, played, def) {
		played.Exhausted = false
		e.bus.Publish(rules.NewEvent(rules.EventCardReadied, state.ID, player.ID, played.InstanceID))
	}

	e.consumeAction(state)
	return nil
}

// costCandidates lists the player's ready, non-HOME cards able to pay costs.
func (e *TrophicEngine) costCandidates(state *GameState, playerID string) []cost.Candidate {
	var out []cost.Candidate
	for _, card := range state.BoardCardsOwnedBy(playerID, true) {
		if card.Home || card.Exhausted {
			continue
		}
		def, ok := e.registry.Card(card.DefinitionID)
		if !ok {
			continue
		}
		out = append(out, cost.Candidate{
			InstanceID: card.InstanceID,
			Category:   def.Category,
			Level:      def.Level,
		})
	}
	return out
}

// synergyMet implements the preferred-diet tempo bonus: the freshly placed
// card enters play ready instead of exhausted.
func (e *TrophicEngine) synergyMet(state *GameState, card *GridCard, def *cards.CardDefinition) bool {
	if len(def.PreferredDiet) == 0 {
		return false
	}
	neighbors := state.NeighborsOf(card.Position)

	dietAdjacent := false
	producerAdjacent := false
	for _, n := range neighbors {
		if n.Home || n.Detritus || n.InstanceID == card.InstanceID {
			continue
		}
		ndef, ok := e.registry.Card(n.DefinitionID)
		if !ok {
			continue
		}
		if ndef.Level == cards.LevelProducer {
			producerAdjacent = true
		}
		if keywordOverlap(ndef.Keywords, def.PreferredDiet) {
			dietAdjacent = true
		}
	}

	if def.Category.IsProducer() {
		// Mixotrophic producers need both a producer source and prey.
		return e.registry.HasKeyword(def, cards.KeywordMixotroph) && producerAdjacent && dietAdjacent
	}
	if def.Level.IsConsumer() {
		return dietAdjacent
	}
	return false
}

func keywordOverlap(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// handleActivateAbility resolves an explicitly activated ability, exhausting
// the acting card and spending its energy cost.
func (e *TrophicEngine) handleActivateAbility(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	card, _, ok := state.FindInstance(action.InstanceID)
	if !ok {
		return fmt.Errorf("card %s is not on the board", action.InstanceID)
	}
	if card.OwnerID != player.ID {
		return fmt.Errorf("you do not control card %s", action.InstanceID)
	}
	if card.Home || card.Detritus {
		return fmt.Errorf("card %s has no activatable abilities", action.InstanceID)
	}
	def, ok := e.registry.Card(card.DefinitionID)
	if !ok {
		return fmt.Errorf("card %s has no definition", action.InstanceID)
	}
	hasAbility := false
	for _, id := range def.AbilityIDs {
		if id == action.AbilityID {
			hasAbility = true
			break
		}
	}
	if !hasAbility {
		return fmt.Errorf("card %s lacks ability %d", def.Name, action.AbilityID)
	}
	ability, ok := e.registry.Ability(action.AbilityID)
	if !ok {
		return fmt.Errorf("ability %d not found", action.AbilityID)
	}
	if ability.Trigger != cards.TriggerActivated {
		return fmt.Errorf("ability %s cannot be activated manually", ability.Name)
	}
	if card.Exhausted {
		return fmt.Errorf("card %s is exhausted", def.Name)
	}
	if player.Energy < ability.EnergyCost {
		return fmt.Errorf("insufficient energy: need %d, have %d", ability.EnergyCost, player.Energy)
	}
	if action.TargetInstanceID != "" {
		if _, _, ok := state.FindInstance(action.TargetInstanceID); !ok {
			return fmt.Errorf("target %s is not on the board", action.TargetInstanceID)
		}
	}

	player.Energy -= ability.EnergyCost
	card.Exhausted = true
	e.bus.Publish(rules.NewEvent(rules.EventAbilityActivated, state.ID, player.ID, card.InstanceID))
	e.bus.Publish(rules.NewEvent(rules.EventCardExhausted, state.ID, player.ID, card.InstanceID))

	// Effect failures abort the remaining effects but not the action.
	e.processAbilityEffects(state, card, action.TargetInstanceID, ability)

	e.consumeAction(state)
	return nil
}

// handlePassTurn ends the turn voluntarily; it never costs an action.
func (e *TrophicEngine) handlePassTurn(state *GameState, action PlayerAction) error {
	e.endTurn(state)
	return nil
}

// handleMoveCard relocates an un-exhausted card to an empty cell where its
// own placement rules still hold. The move exhausts the card.
func (e *TrophicEngine) handleMoveCard(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	if action.ToPosition == nil {
		return fmt.Errorf("missing destination position")
	}
	card, host, ok := state.FindInstance(action.InstanceID)
	if !ok {
		return fmt.Errorf("card %s is not on the board", action.InstanceID)
	}
	if host != nil {
		return fmt.Errorf("attachments cannot move on their own")
	}
	if card.OwnerID != player.ID {
		return fmt.Errorf("you do not control card %s", action.InstanceID)
	}
	if card.Home {
		return fmt.Errorf("HOME cannot move")
	}
	if card.Detritus {
		return fmt.Errorf("detritus markers cannot move")
	}
	if card.Exhausted {
		return fmt.Errorf("card %s is exhausted", action.InstanceID)
	}
	to := *action.ToPosition
	if !state.InBounds(to) {
		return fmt.Errorf("position %s is out of bounds", to)
	}
	if _, occupied := state.CardAt(to); occupied {
		return fmt.Errorf("position %s is already occupied", to)
	}
	def, ok := e.registry.Card(card.DefinitionID)
	if !ok {
		return fmt.Errorf("card %s has no definition", action.InstanceID)
	}

	// Check destination legality with the card lifted off its origin cell.
	delete(state.Board, card.Position)
	checker := rules.NewPlacementChecker(boardAccessor{state: state, registry: e.registry}, e.registry)
	placement := checker.Check(def, player.ID, to.X, to.Y)
	if !placement.Legal {
		return fmt.Errorf("%s", placement.Reason)
	}

	card.Position = to
	for _, attached := range card.Attachments {
		attached.Position = to
	}
	card.Exhausted = true
	state.Board[to] = card
	e.bus.Publish(rules.NewEvent(rules.EventCardMoved, state.ID, player.ID, card.InstanceID))

	e.consumeAction(state)
	return nil
}

// handleChallenge lets an un-exhausted consumer consume an adjacent opposing
// card one trophic level below it. The victim dies in place.
func (e *TrophicEngine) handleChallenge(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	attacker, attackerHost, ok := state.FindInstance(action.InstanceID)
	if !ok {
		return fmt.Errorf("card %s is not on the board", action.InstanceID)
	}
	if attackerHost != nil {
		return fmt.Errorf("attachments cannot challenge")
	}
	if attacker.OwnerID != player.ID {
		return fmt.Errorf("you do not control card %s", action.InstanceID)
	}
	if attacker.Home || attacker.Detritus {
		return fmt.Errorf("card %s cannot challenge", action.InstanceID)
	}
	if attacker.Exhausted {
		return fmt.Errorf("card %s is exhausted", action.InstanceID)
	}
	attackerDef, ok := e.registry.Card(attacker.DefinitionID)
	if !ok {
		return fmt.Errorf("card %s has no definition", action.InstanceID)
	}
	if !attackerDef.Level.IsConsumer() {
		return fmt.Errorf("only consumers can challenge")
	}

	target, targetHost, ok := state.FindInstance(action.TargetInstanceID)
	if !ok {
		return fmt.Errorf("target %s is not on the board", action.TargetInstanceID)
	}
	if targetHost != nil {
		return fmt.Errorf("attachments cannot be challenged directly")
	}
	if target.OwnerID == player.ID {
		return fmt.Errorf("cannot challenge your own card")
	}
	if target.Home {
		return fmt.Errorf("HOME cannot be challenged")
	}
	if target.Detritus {
		return fmt.Errorf("detritus markers cannot be challenged")
	}
	if manhattan(attacker.Position, target.Position) != 1 {
		return fmt.Errorf("challenge target must be orthogonally adjacent")
	}
	targetDef, ok := e.registry.Card(target.DefinitionID)
	if !ok {
		return fmt.Errorf("target %s has no definition", action.TargetInstanceID)
	}
	if targetDef.Level != attackerDef.Level-1 {
		return fmt.Errorf("challenge requires prey of level %s, target is %s", attackerDef.Level-1, targetDef.Level)
	}
	if !rules.DomainCompatible(attackerDef.Domain, targetDef.Domain) {
		return fmt.Errorf("domain %s cannot hunt in %s", attackerDef.Domain, targetDef.Domain)
	}

	e.bus.Publish(rules.NewEvent(rules.EventChallenge, state.ID, player.ID, target.InstanceID))
	e.runTriggers(state, attacker, cards.TriggerOnAttack)
	e.runTriggers(state, target, cards.TriggerOnDamage)

	e.killInstance(state, target, nil)
	attacker.Exhausted = true
	e.bus.Publish(rules.NewEvent(rules.EventCardExhausted, state.ID, player.ID, attacker.InstanceID))

	e.consumeAction(state)
	return nil
}

func manhattan(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// handleRemoveCard removes one of the acting player's own cards, either
// dying in place (leaving detritus) or returning to hand.
func (e *TrophicEngine) handleRemoveCard(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	card, host, ok := state.FindInstance(action.InstanceID)
	if !ok {
		return fmt.Errorf("card %s is not on the board", action.InstanceID)
	}
	if card.OwnerID != player.ID {
		return fmt.Errorf("you can only remove your own cards")
	}
	if card.Home {
		return fmt.Errorf("HOME cannot be removed")
	}
	if card.Detritus {
		return fmt.Errorf("detritus markers cannot be removed")
	}

	switch action.Reason {
	case RemoveReasonDeath, "":
		e.killInstance(state, card, host)
	case RemoveReasonReturn:
		if len(player.Hand) >= state.Settings.MaxHandSize {
			return fmt.Errorf("hand is full")
		}
		e.detachOrDelete(state, card, host)
		player.Hand = append(player.Hand, card.DefinitionID)
		e.bus.Publish(rules.NewEvent(rules.EventCardRemoved, state.ID, player.ID, card.InstanceID))
	default:
		return fmt.Errorf("unknown removal reason %q", action.Reason)
	}

	e.consumeAction(state)
	return nil
}

// handleMetamorphosis replaces a juvenile board card with an adult form
// from hand. Position, exhaustion, attachments and statuses carry over.
func (e *TrophicEngine) handleMetamorphosis(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	juvenile, host, ok := state.FindInstance(action.JuvenileInstanceID)
	if !ok {
		return fmt.Errorf("card %s is not on the board", action.JuvenileInstanceID)
	}
	if host != nil {
		return fmt.Errorf("attachments cannot metamorphose")
	}
	if juvenile.OwnerID != player.ID {
		return fmt.Errorf("you do not control card %s", action.JuvenileInstanceID)
	}
	if juvenile.Home || juvenile.Detritus {
		return fmt.Errorf("card %s cannot metamorphose", action.JuvenileInstanceID)
	}
	juvenileDef, ok := e.registry.Card(juvenile.DefinitionID)
	if !ok {
		return fmt.Errorf("card %s has no definition", action.JuvenileInstanceID)
	}
	if !e.registry.HasKeyword(juvenileDef, cards.KeywordJuvenile) {
		return fmt.Errorf("%s is not a juvenile", juvenileDef.Name)
	}
	adultDef, ok := e.registry.Card(action.AdultCardID)
	if !ok {
		return fmt.Errorf("unknown card %d", action.AdultCardID)
	}
	if !e.registry.HasKeyword(adultDef, cards.KeywordMetamorphosis) {
		return fmt.Errorf("%s has no metamorphosis form", adultDef.Name)
	}
	if !sharesSpeciesKeyword(e.registry, juvenileDef, adultDef) {
		return fmt.Errorf("%s cannot metamorphose into %s", juvenileDef.Name, adultDef.Name)
	}
	handIdx := -1
	for i, id := range player.Hand {
		if id == action.AdultCardID {
			handIdx = i
			break
		}
	}
	if handIdx < 0 {
		return fmt.Errorf("card %d is not in your hand", action.AdultCardID)
	}

	player.Hand = append(player.Hand[:handIdx], player.Hand[handIdx+1:]...)

	adult := &GridCard{
		InstanceID:    uuid.NewString(),
		DefinitionID:  adultDef.ID,
		OwnerID:       player.ID,
		Position:      juvenile.Position,
		Exhausted:     juvenile.Exhausted,
		Attachments:   juvenile.Attachments,
		StatusEffects: juvenile.StatusEffects,
	}
	state.Board[juvenile.Position] = adult
	e.bus.Publish(rules.NewEvent(rules.EventMetamorphosis, state.ID, player.ID, adult.InstanceID))

	e.consumeAction(state)
	return nil
}

// sharesSpeciesKeyword checks that the two forms share a keyword besides the
// Juvenile/Metamorphosis markers themselves.
func sharesSpeciesKeyword(registry *cards.Registry, a, b *cards.CardDefinition) bool {
	for _, ka := range a.Keywords {
		name, _ := registry.KeywordName(ka)
		if name == cards.KeywordJuvenile || name == cards.KeywordMetamorphosis {
			continue
		}
		for _, kb := range b.Keywords {
			if ka == kb {
				return true
			}
		}
	}
	return false
}

// killInstance runs on-death triggers and converts the card into a detritus
// marker in place. Attachments die with their host and leave no marker, as
// they never occupied a cell.
func (e *TrophicEngine) killInstance(state *GameState, card *GridCard, host *GridCard) {
	e.runTriggers(state, card, cards.TriggerOnDeath)

	for _, attached := range card.Attachments {
		e.runTriggers(state, attached, cards.TriggerOnDeath)
		e.bus.Publish(rules.NewEvent(rules.EventCardDied, state.ID, attached.OwnerID, attached.InstanceID))
	}
	card.Attachments = nil

	if host != nil {
		removeAttachment(host, card.InstanceID)
		e.bus.Publish(rules.NewEvent(rules.EventCardDied, state.ID, card.OwnerID, card.InstanceID))
		return
	}

	card.Detritus = true
	card.Exhausted = false
	card.StatusEffects = nil
	e.bus.Publish(rules.NewEvent(rules.EventCardDied, state.ID, card.OwnerID, card.InstanceID))
}

// detachOrDelete removes the card from the board (or its host) without a
// detritus conversion. Its attachments die.
func (e *TrophicEngine) detachOrDelete(state *GameState, card *GridCard, host *GridCard) {
	for _, attached := range card.Attachments {
		e.runTriggers(state, attached, cards.TriggerOnDeath)
		e.bus.Publish(rules.NewEvent(rules.EventCardDied, state.ID, attached.OwnerID, attached.InstanceID))
	}
	card.Attachments = nil

	if host != nil {
		removeAttachment(host, card.InstanceID)
		return
	}
	delete(state.Board, card.Position)
}

func removeAttachment(host *GridCard, instanceID string) {
	for i, attached := range host.Attachments {
		if attached.InstanceID == instanceID {
			host.Attachments = append(host.Attachments[:i], host.Attachments[i+1:]...)
			return
		}
	}
}
