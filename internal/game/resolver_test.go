package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trophicgame/trophic-server-go/internal/game/effects"
)

func TestActivateAbility_ExhaustsTarget(t *testing.T) {
	h := NewEngineTestHarness(t, "ability-match", []string{"alice", "bob"}, nil)
	foxID := h.PlaceCard(cardFox, "alice", Position{X: 5, Y: 5}, false)
	rabbitID := h.PlaceCard(cardRabbit, "bob", Position{X: 2, Y: 2}, false)
	h.SetEnergy("alice", 3)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice",
		InstanceID: foxID, AbilityID: abilityStun, TargetInstanceID: rabbitID,
	})

	rabbit, _, _ := state.FindInstance(rabbitID)
	assert.True(t, rabbit.Exhausted)
	fox, _, _ := state.FindInstance(foxID)
	assert.True(t, fox.Exhausted, "activating exhausts the acting card")
	alice, _ := state.PlayerByID("alice")
	assert.Equal(t, 2, alice.Energy)
}

func TestActivateAbility_Rejections(t *testing.T) {
	h := NewEngineTestHarness(t, "ability-reject-match", []string{"alice", "bob"}, nil)
	foxID := h.PlaceCard(cardFox, "alice", Position{X: 5, Y: 5}, false)
	enemyFoxID := h.PlaceCard(cardFox, "bob", Position{X: 2, Y: 2}, false)
	h.SetTurn("alice")

	h.SetEnergy("alice", 0)
	result := h.Submit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: foxID, AbilityID: abilityStun,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Error, "energy")

	h.SetEnergy("alice", 3)
	result = h.Submit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: enemyFoxID, AbilityID: abilityStun,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Error, "control")

	result = h.Submit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: foxID, AbilityID: abilityDeathDraw,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Error, "lacks")

	h.Mutate(func(s *GameState) {
		card, _, _ := s.FindInstance(foxID)
		card.Exhausted = true
	})
	result = h.Submit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: foxID, AbilityID: abilityStun,
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Error, "exhausted")
}

func TestAdjacencySelectorWithCategoryFilter(t *testing.T) {
	h := NewEngineTestHarness(t, "rally-match", []string{"alice", "bob"}, nil)
	eagleID := h.PlaceCard(cardEagle, "alice", Position{X: 4, Y: 4}, false)
	rabbitID := h.PlaceCard(cardRabbit, "alice", Position{X: 4, Y: 5}, true)
	foxID := h.PlaceCard(cardFox, "alice", Position{X: 4, Y: 3}, true)
	h.SetEnergy("alice", 3)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: eagleID, AbilityID: abilityRally,
	})

	rabbit, _, _ := state.FindInstance(rabbitID)
	assert.False(t, rabbit.Exhausted, "adjacent herbivore is readied")
	fox, _, _ := state.FindInstance(foxID)
	assert.True(t, fox.Exhausted, "the category filter skips the carnivore")
}

func TestBridgeSelectorReachesThroughBridgeOrganism(t *testing.T) {
	h := NewEngineTestHarness(t, "bridge-match", []string{"alice", "bob"}, nil)
	heronID := h.PlaceCard(cardHeron, "alice", Position{X: 4, Y: 4}, false)
	frogID := h.PlaceCard(cardFrog, "bob", Position{X: 4, Y: 5}, false)
	minnowID := h.PlaceCard(cardMinnow, "bob", Position{X: 4, Y: 6}, false)
	rabbitID := h.PlaceCard(cardRabbit, "bob", Position{X: 5, Y: 4}, false)
	grassID := h.PlaceCard(cardGrass, "bob", Position{X: 6, Y: 4}, false)
	h.SetEnergy("alice", 3)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: heronID, AbilityID: abilityBridgeStrike,
	})

	// The minnow sits one step beyond the amphibious frog and is reached.
	minnow, _, _ := state.FindInstance(minnowID)
	assert.True(t, minnow.Exhausted)
	// The bridge itself is a conduit, not a target.
	frog, _, _ := state.FindInstance(frogID)
	assert.False(t, frog.Exhausted)
	// The terrestrial rabbit is no bridge, so the grass behind it is safe.
	rabbit, _, _ := state.FindInstance(rabbitID)
	assert.False(t, rabbit.Exhausted)
	grass, _, _ := state.FindInstance(grassID)
	assert.False(t, grass.Exhausted)
}

func TestAllDetritusSelectorBanksEveryMarker(t *testing.T) {
	h := NewEngineTestHarness(t, "decompose-match", []string{"alice", "bob"}, nil)
	fungusID := h.PlaceCard(cardFungus, "alice", Position{X: 3, Y: 3}, false)
	firstMarker := h.PlaceDetritus(cardRabbit, "bob", Position{X: 7, Y: 7})
	secondMarker := h.PlaceDetritus(cardMinnow, "bob", Position{X: 1, Y: 8})
	h.SetEnergy("alice", 2)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: fungusID, AbilityID: abilityDecompose,
	})

	// Both markers leave the board and land in the activator's score pile,
	// wherever they sat on the grid.
	_, _, found := state.FindInstance(firstMarker)
	assert.False(t, found)
	_, _, found = state.FindInstance(secondMarker)
	assert.False(t, found)
	alice, _ := state.PlayerByID("alice")
	require.Len(t, alice.ScorePile, 2)
}

func TestHostSelectorReachesTheCarrier(t *testing.T) {
	h := NewEngineTestHarness(t, "host-match", []string{"alice", "bob"}, nil)
	rabbitID := h.PlaceCard(cardRabbit, "bob", Position{X: 5, Y: 5}, false)
	tickID := h.AttachCard(cardTick, "alice", rabbitID)
	h.SetEnergy("alice", 2)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: tickID, AbilityID: abilityHostDrain,
	})

	rabbit, _, _ := state.FindInstance(rabbitID)
	assert.True(t, rabbit.Exhausted, "the parasite drains its carrier")
	tick, _, _ := state.FindInstance(tickID)
	assert.True(t, tick.Exhausted, "activating exhausts the parasite itself")
}

func TestRandomSelectorMarksExactlyOneCard(t *testing.T) {
	h := NewEngineTestHarness(t, "panic-match", []string{"alice", "bob"}, nil)
	eagleID := h.PlaceCard(cardEagle, "alice", Position{X: 4, Y: 4}, false)
	h.PlaceCard(cardRabbit, "bob", Position{X: 7, Y: 7}, false)
	h.PlaceCard(cardGrass, "bob", Position{X: 1, Y: 8}, false)
	h.SetEnergy("alice", 2)
	h.SetTurn("alice")

	state := h.MustSubmit(PlayerAction{
		Type: ActionActivateAbility, PlayerID: "alice", InstanceID: eagleID, AbilityID: abilityPanic,
	})

	marked := 0
	for _, card := range state.Board {
		if effects.HasType(card.StatusEffects, statusPanicked) {
			marked++
		}
		for _, attached := range card.Attachments {
			if effects.HasType(attached.StatusEffects, statusPanicked) {
				marked++
			}
		}
	}
	assert.Equal(t, 1, marked, "exactly one living card draws the random effect")
}

func TestOnDeathTriggerDrawsCards(t *testing.T) {
	h := NewEngineTestHarness(t, "death-trigger-match", []string{"alice", "bob"}, nil)
	minnowID := h.PlaceCard(cardMinnow, "bob", Position{X: 5, Y: 5}, false)
	frogID := h.PlaceCard(cardFrog, "alice", Position{X: 5, Y: 6}, false)
	h.SetTurn("alice")

	before := h.State()
	bobBefore, _ := before.PlayerByID("bob")
	handBefore := len(bobBefore.Hand)

	state := h.MustSubmit(PlayerAction{
		Type: ActionChallenge, PlayerID: "alice", InstanceID: frogID, TargetInstanceID: minnowID,
	})

	bob, _ := state.PlayerByID("bob")
	assert.Len(t, bob.Hand, handBefore+1, "the dying minnow's owner draws a card")
	marker, ok := state.CardAt(Position{X: 5, Y: 5})
	require.True(t, ok)
	assert.True(t, marker.Detritus)
}

func TestPreventReadyStatusHoldsCardExhausted(t *testing.T) {
	h := NewEngineTestHarness(t, "status-match", []string{"alice", "bob"}, nil)
	grassID := h.PlaceCard(cardGrass, "alice", Position{X: 2, Y: 5}, true)
	h.Mutate(func(s *GameState) {
		card, _, _ := s.FindInstance(grassID)
		card.StatusEffects = append(card.StatusEffects,
			effects.New(effects.TypePreventReady, 2, ""))
	})

	// Cycle one: the status ticks at alice's turn end and still holds at
	// her next ready phase.
	h.MustSubmit(PlayerAction{Type: ActionPassTurn, PlayerID: "alice"})
	h.MustSubmit(PlayerAction{Type: ActionPassTurn, PlayerID: "bob"})
	card, _, _ := h.State().FindInstance(grassID)
	assert.True(t, card.Exhausted, "prevent-ready blocks the ready phase")

	// Cycle two: the status expires and the card readies normally.
	h.MustSubmit(PlayerAction{Type: ActionPassTurn, PlayerID: "alice"})
	h.MustSubmit(PlayerAction{Type: ActionPassTurn, PlayerID: "bob"})
	card, _, _ = h.State().FindInstance(grassID)
	assert.False(t, card.Exhausted)
	assert.Empty(t, card.StatusEffects)
}

func TestMixotrophSynergyNeedsProducerAndPrey(t *testing.T) {
	h := NewEngineTestHarness(t, "mixotroph-match", []string{"alice", "bob"}, nil)
	h.PlaceCard(cardGrass, "alice", Position{X: 4, Y: 5}, false)
	h.GiveHand("alice", cardSundew, cardSundew)
	h.SetTurn("alice")

	// Producer neighbor alone is not enough for the mixotroph bonus.
	first := Position{X: 4, Y: 6}
	state := h.MustSubmit(PlayerAction{
		Type: ActionPlayCard, PlayerID: "alice", CardID: cardSundew, Position: &first,
	})
	sundew, _ := state.CardAt(first)
	assert.True(t, sundew.Exhausted)

	// With an insect in reach as well, the second sundew enters play ready.
	beetlePos := Position{X: 5, Y: 5}
	fungusPos := Position{X: 6, Y: 5}
	h.PlaceCard(cardFungus, "alice", fungusPos, false)
	h.PlaceCard(cardBeetle, "alice", beetlePos, false)
	second := Position{X: 5, Y: 6}
	state = h.MustSubmit(PlayerAction{
		Type: ActionPlayCard, PlayerID: "alice", CardID: cardSundew, Position: &second,
	})
	sundew, _ = state.CardAt(second)
	assert.False(t, sundew.Exhausted, "mixotroph bonus needs both producer and prey")
}
