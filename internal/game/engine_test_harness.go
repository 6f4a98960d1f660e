package game

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/game/rules"
)

// Fixture card ids shared by the engine tests.
const (
	cardGrass   = 101 // terrestrial producer
	cardAlgae   = 102 // freshwater producer
	cardKelp    = 103 // marine producer
	cardSundew  = 110 // mixotrophic producer, eats insects
	cardVentMat = 120 // marine chemoautotroph with ChemicalOpportunist
	cardRabbit  = 201 // terrestrial herbivore, prefers grasses
	cardTadpole = 210 // freshwater juvenile, frog species
	cardMinnow  = 220 // freshwater herbivore
	cardFox     = 301 // terrestrial carnivore
	cardFrog    = 310 // amphibious carnivore, adult frog form
	cardHeron   = 320 // amphibious carnivore hunting through bridge organisms
	cardEagle   = 401 // terrestrial apex predator
	cardFungus  = 501 // terrestrial saprotroph
	cardMold    = 502 // terrestrial saprotroph with a primary-consumer cost
	cardBeetle  = 601 // terrestrial detritivore, insect
	cardTick    = 701 // parasite
	cardBee     = 801 // mutualist
)

// Fixture keyword ids.
const (
	kwMixotroph = iota + 1
	kwMetamorphosis
	kwJuvenile
	kwGrasses
	kwInsect
	kwFrogSpecies
)

// Fixture ability ids.
const (
	abilityStun         = 1 // activated: exhaust the target
	abilityVentFeed     = 2 // passive marker enabling saprotroph-adjacent placement
	abilityDeathDraw    = 3 // on death: owner draws a card
	abilityRally        = 4 // activated: ready adjacent herbivores
	abilityBridgeStrike = 5 // activated: exhaust cards reached through a bridge organism
	abilityDecompose    = 6 // activated: bank every detritus marker on the board
	abilityHostDrain    = 7 // activated: exhaust the carrying host
	abilityPanic        = 8 // activated: mark one random living card panicked
)

// statusPanicked is applied by the random-target fixture ability.
const statusPanicked = "panicked"

// testRegistry builds the fixture data tables used by every engine test.
func testRegistry(t *testing.T) *cards.Registry {
	t.Helper()

	keywords := map[int]string{
		kwMixotroph:     cards.KeywordMixotroph,
		kwMetamorphosis: cards.KeywordMetamorphosis,
		kwJuvenile:      cards.KeywordJuvenile,
		kwGrasses:       "Grasses",
		kwInsect:        "Insect",
		kwFrogSpecies:   "Frog",
	}

	abilities := []cards.AbilityDefinition{
		{
			ID:         abilityStun,
			Name:       "StunAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{Selector: cards.SelectorNone, Action: cards.ActionExhaust},
			},
		},
		{
			ID:      abilityVentFeed,
			Name:    cards.AbilityChemicalOpportunist,
			Trigger: cards.TriggerPassive,
		},
		{
			ID:      abilityDeathDraw,
			Name:    "DeathDrawAbility",
			Trigger: cards.TriggerOnDeath,
			Effects: []cards.Effect{
				{Selector: cards.SelectorNone, Action: cards.ActionDrawCards, Amount: 1},
			},
		},
		{
			ID:         abilityRally,
			Name:       "RallyAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{
					Selector: cards.SelectorAdjacent,
					Filters:  []cards.Filter{{Kind: cards.FilterCategory, Category: cards.CategoryHerbivore}},
					Action:   cards.ActionReady,
				},
			},
		},
		{
			ID:         abilityBridgeStrike,
			Name:       "BridgeStrikeAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{Selector: cards.SelectorAmphibiousBridge, Action: cards.ActionExhaust},
			},
		},
		{
			ID:         abilityDecompose,
			Name:       "DecomposeAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{Selector: cards.SelectorAllDetritus, Action: cards.ActionGainVictoryPoints},
			},
		},
		{
			ID:         abilityHostDrain,
			Name:       "HostDrainAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{Selector: cards.SelectorHost, Action: cards.ActionExhaust},
			},
		},
		{
			ID:         abilityPanic,
			Name:       "PanicAbility",
			Trigger:    cards.TriggerActivated,
			EnergyCost: 1,
			Effects: []cards.Effect{
				{Selector: cards.SelectorRandomCard, Action: cards.ActionApplyStatus, Status: statusPanicked, Duration: 1},
			},
		},
	}

	defs := []cards.CardDefinition{
		{ID: cardGrass, Name: "Meadow Grass", Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph,
			Domain: cards.DomainTerrestrial, Keywords: []int{kwGrasses}, VictoryPoints: 1},
		{ID: cardAlgae, Name: "Green Algae", Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph,
			Domain: cards.DomainFreshwater, VictoryPoints: 1},
		{ID: cardKelp, Name: "Giant Kelp", Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph,
			Domain: cards.DomainMarine, VictoryPoints: 1},
		{ID: cardSundew, Name: "Sundew", Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph,
			Domain: cards.DomainTerrestrial, Keywords: []int{kwMixotroph}, PreferredDiet: []int{kwInsect}, VictoryPoints: 2},
		{ID: cardVentMat, Name: "Vent Bacterial Mat", Level: cards.LevelProducer, Category: cards.CategoryChemoautotroph,
			Domain: cards.DomainMarine, AbilityIDs: []int{abilityVentFeed}, VictoryPoints: 2},
		{ID: cardRabbit, Name: "Cottontail Rabbit", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore,
			Domain: cards.DomainTerrestrial, PreferredDiet: []int{kwGrasses},
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelProducer}},
			VictoryPoints: 2},
		{ID: cardTadpole, Name: "Tadpole", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore,
			Domain: cards.DomainFreshwater, Keywords: []int{kwFrogSpecies, kwJuvenile},
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelProducer}},
			VictoryPoints: 1},
		{ID: cardMinnow, Name: "Fathead Minnow", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore,
			Domain: cards.DomainFreshwater,
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelProducer}},
			AbilityIDs:    []int{abilityDeathDraw},
			VictoryPoints: 2},
		{ID: cardFox, Name: "Red Fox", Level: cards.LevelSecondary, Category: cards.CategoryCarnivore,
			Domain: cards.DomainTerrestrial,
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelPrimary}},
			AbilityIDs:    []int{abilityStun},
			VictoryPoints: 3},
		{ID: cardFrog, Name: "Leopard Frog", Level: cards.LevelSecondary, Category: cards.CategoryCarnivore,
			Domain: cards.DomainAmphibiousFreshwater, Keywords: []int{kwFrogSpecies, kwMetamorphosis},
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelPrimary}},
			VictoryPoints: 3},
		{ID: cardHeron, Name: "Great Heron", Level: cards.LevelSecondary, Category: cards.CategoryCarnivore,
			Domain: cards.DomainAmphibiousFreshwater,
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelPrimary}},
			AbilityIDs:    []int{abilityBridgeStrike},
			VictoryPoints: 3},
		{ID: cardEagle, Name: "Golden Eagle", Level: cards.LevelApex, Category: cards.CategoryCarnivore,
			Domain: cards.DomainTerrestrial,
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelSecondary}},
			AbilityIDs:    []int{abilityRally, abilityPanic},
			VictoryPoints: 4},
		{ID: cardFungus, Name: "Bracket Fungus", Level: cards.LevelSaprotroph, Category: cards.CategorySaprotroph,
			Domain: cards.DomainTerrestrial, AbilityIDs: []int{abilityDecompose}, VictoryPoints: 1},
		{ID: cardMold, Name: "Slime Mold", Level: cards.LevelSaprotroph, Category: cards.CategorySaprotroph,
			Domain: cards.DomainTerrestrial,
			Cost:          []cards.CostRequirement{{Count: 1, Level: cards.LevelPrimary}},
			VictoryPoints: 1},
		{ID: cardBeetle, Name: "Burying Beetle", Level: cards.LevelDetritivore, Category: cards.CategoryDetritivore,
			Domain: cards.DomainTerrestrial, Keywords: []int{kwInsect}, VictoryPoints: 1},
		{ID: cardTick, Name: "Deer Tick", Level: cards.LevelPrimary, Category: cards.CategoryParasite,
			Domain: cards.DomainTerrestrial, Keywords: []int{kwInsect}, AbilityIDs: []int{abilityHostDrain},
			VictoryPoints: 1},
		{ID: cardBee, Name: "Bumblebee", Level: cards.LevelProducer, Category: cards.CategoryMutualist,
			Domain: cards.DomainTerrestrial, Keywords: []int{kwInsect}, VictoryPoints: 1},
	}

	registry, err := cards.NewRegistry(defs, abilities, keywords)
	if err != nil {
		t.Fatalf("failed to build fixture registry: %v", err)
	}
	return registry
}

// EngineTestHarness wires a two-or-more player match through setup so tests
// can manipulate the board directly and submit actions.
type EngineTestHarness struct {
	t       *testing.T
	engine  *TrophicEngine
	matchID string
	players []string
}

// NewEngineTestHarness starts a match with the given decks and readies every
// player. A nil deck defaults to twenty grasses so the draw phase never
// triggers the final turn by accident.
func NewEngineTestHarness(t *testing.T, matchID string, players []string, decks map[string][]int) *EngineTestHarness {
	t.Helper()

	engine := NewTrophicEngine(testRegistry(t), zaptest.NewLogger(t))

	setups := make([]PlayerSetup, len(players))
	for i, id := range players {
		deck := decks[id]
		if deck == nil {
			deck = make([]int, 20)
			for j := range deck {
				deck[j] = cardGrass
			}
		}
		setups[i] = PlayerSetup{ID: id, Name: id, Deck: deck}
	}

	if _, err := engine.NewMatch(MatchConfig{MatchID: matchID, Players: setups}); err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	for _, id := range players {
		result := engine.ProcessAction(PlayerAction{Type: ActionPlayerReady, PlayerID: id})
		if !result.Valid {
			t.Fatalf("player %s failed to ready: %s", id, result.Error)
		}
	}

	return &EngineTestHarness{t: t, engine: engine, matchID: matchID, players: players}
}

// State returns the authoritative snapshot.
func (h *EngineTestHarness) State() *GameState {
	return h.engine.CurrentState()
}

// Mutate edits the live state directly under the engine lock. Tests use it to
// arrange board positions that would take many turns to reach through actions.
func (h *EngineTestHarness) Mutate(mutate func(state *GameState)) {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	mutate(h.engine.state)
}

// PlaceCard puts a card instance straight onto the board.
func (h *EngineTestHarness) PlaceCard(definitionID int, ownerID string, pos Position, exhausted bool) string {
	instanceID := uuid.NewString()
	h.Mutate(func(state *GameState) {
		state.Board[pos] = &GridCard{
			InstanceID:   instanceID,
			DefinitionID: definitionID,
			OwnerID:      ownerID,
			Position:     pos,
			Exhausted:    exhausted,
		}
	})
	return instanceID
}

// AttachCard rides a parasite or mutualist instance on an existing board card.
func (h *EngineTestHarness) AttachCard(definitionID int, ownerID, hostID string) string {
	instanceID := uuid.NewString()
	h.Mutate(func(state *GameState) {
		host, _, ok := state.FindInstance(hostID)
		if !ok {
			h.t.Fatalf("no host %s to attach to", hostID)
		}
		host.Attachments = append(host.Attachments, &GridCard{
			InstanceID:   instanceID,
			DefinitionID: definitionID,
			OwnerID:      ownerID,
			Position:     host.Position,
		})
	})
	return instanceID
}

// PlaceDetritus puts a detritus marker for the given definition on the board.
func (h *EngineTestHarness) PlaceDetritus(definitionID int, ownerID string, pos Position) string {
	instanceID := uuid.NewString()
	h.Mutate(func(state *GameState) {
		state.Board[pos] = &GridCard{
			InstanceID:   instanceID,
			DefinitionID: definitionID,
			OwnerID:      ownerID,
			Position:     pos,
			Detritus:     true,
		}
	})
	return instanceID
}

// SetTurn hands the action phase to the given player with a full budget.
func (h *EngineTestHarness) SetTurn(playerID string) {
	h.Mutate(func(state *GameState) {
		for i, p := range state.Players {
			if p.ID == playerID {
				state.CurrentPlayerIndex = i
				break
			}
		}
		state.TurnPhase = rules.TurnPhaseAction
		state.ActionsRemaining = state.Settings.ActionsPerTurn
	})
}

// GiveHand replaces the player's hand.
func (h *EngineTestHarness) GiveHand(playerID string, cardIDs ...int) {
	h.Mutate(func(state *GameState) {
		if p, ok := state.PlayerByID(playerID); ok {
			p.Hand = append([]int(nil), cardIDs...)
		}
	})
}

// SetEnergy sets the player's energy pool.
func (h *EngineTestHarness) SetEnergy(playerID string, energy int) {
	h.Mutate(func(state *GameState) {
		if p, ok := state.PlayerByID(playerID); ok {
			p.Energy = energy
		}
	})
}

// Submit processes an action and returns the result.
func (h *EngineTestHarness) Submit(action PlayerAction) ActionResult {
	return h.engine.ProcessAction(action)
}

// MustSubmit processes an action and fails the test if it is rejected.
func (h *EngineTestHarness) MustSubmit(action PlayerAction) *GameState {
	h.t.Helper()
	result := h.engine.ProcessAction(action)
	if !result.Valid {
		h.t.Fatalf("action %s by %s rejected: %s", action.Type, action.PlayerID, result.Error)
	}
	return result.State
}

// HomeOf returns the player's HOME position.
func (h *EngineTestHarness) HomeOf(playerID string) Position {
	state := h.State()
	for pos, card := range state.Board {
		if card.Home && card.OwnerID == playerID {
			return pos
		}
	}
	h.t.Fatalf("no HOME found for player %s", playerID)
	return Position{}
}
