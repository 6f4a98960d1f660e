package game

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ActionType identifies a player action.
type ActionType string

const (
	ActionPlayerReady     ActionType = "PLAYER_READY"
	ActionPlayCard        ActionType = "PLAY_CARD"
	ActionActivateAbility ActionType = "ACTIVATE_ABILITY"
	ActionPassTurn        ActionType = "PASS_TURN"
	ActionMoveCard        ActionType = "MOVE_CARD"
	ActionChallenge       ActionType = "CHALLENGE"
	ActionRemoveCard      ActionType = "REMOVE_CARD"
	ActionMetamorphosis   ActionType = "METAMORPHOSIS"
)

// Removal reasons accepted by REMOVE_CARD.
const (
	RemoveReasonDeath  = "death"
	RemoveReasonReturn = "return"
)

// PlayerAction is the discriminated action record submitted by callers.
type PlayerAction struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId"`

	// PLAY_CARD
	CardID   int       `json:"cardId,omitempty"`
	Position *Position `json:"position,omitempty"`
	PayWith  []string  `json:"payWith,omitempty"`

	// ACTIVATE_ABILITY / CHALLENGE / MOVE_CARD / REMOVE_CARD
	InstanceID       string    `json:"instanceId,omitempty"`
	AbilityID        int       `json:"abilityId,omitempty"`
	TargetInstanceID string    `json:"targetInstanceId,omitempty"`
	ExtraTargets     []string  `json:"extraTargets,omitempty"`
	ToPosition       *Position `json:"toPosition,omitempty"`
	Reason           string    `json:"reason,omitempty"`

	// METAMORPHOSIS
	JuvenileInstanceID string `json:"juvenileInstanceId,omitempty"`
	AdultCardID        int    `json:"adultCardId,omitempty"`
}

// ActionResult reports the outcome of processing one action. On success
// State holds the fresh snapshot; on failure the prior state is unchanged
// and Error carries the reason.
type ActionResult struct {
	Valid bool       `json:"isValid"`
	State *GameState `json:"newState,omitempty"`
	Error string     `json:"errorMessage,omitempty"`
}

func invalid(format string, args ...interface{}) ActionResult {
	return ActionResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// GameNotification carries a real-time update for UI/websocket clients.
type GameNotification struct {
	Type      string
	MatchID   string
	PlayerID  string // empty for broadcast
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler is a function that handles game notifications.
type NotificationHandler func(notification GameNotification)

// PlayerSetup describes one participant at match creation.
type PlayerSetup struct {
	ID   string
	Name string
	Deck []int // card definition ids, drawn from the end
}

// MatchConfig is the initialization input for a match.
type MatchConfig struct {
	MatchID  string
	Players  []PlayerSetup
	Settings Settings
}

// TrophicEngine is the authoritative rules engine for one match. It owns
// exactly one GameState, processes actions synchronously, and clones the
// state on every successful mutation so callers can keep prior snapshots.
type TrophicEngine struct {
	logger   *zap.Logger
	registry *cards.Registry

	mu                  sync.Mutex
	state               *GameState
	rng                 *rand.Rand
	bus                 *rules.EventBus
	notificationHandler NotificationHandler
	replay              *Replay
}

// NewTrophicEngine creates an engine bound to the injected data tables.
func NewTrophicEngine(registry *cards.Registry, logger *zap.Logger) *TrophicEngine {
	e := &TrophicEngine{
		logger:   logger,
		registry: registry,
		bus:      rules.NewEventBus(),
	}
	e.bus.Subscribe(func(event rules.Event) {
		if e.logger != nil {
			e.logger.Debug("match event",
				zap.String("match_id", event.MatchID),
				zap.String("event_type", string(event.Type)),
				zap.String("player_id", event.PlayerID),
				zap.String("target_id", event.TargetID),
			)
		}
	})
	return e
}

// SetNotificationHandler sets the handler for game notifications so external
// systems (UI, websockets) receive real-time updates.
func (e *TrophicEngine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// Subscribe registers a listener on the match event bus.
func (e *TrophicEngine) Subscribe(listener rules.Listener) int {
	return e.bus.Subscribe(listener)
}

// AttachReplay records every committed snapshot into the replay, starting
// with the current state.
func (e *TrophicEngine) AttachReplay(replay *Replay) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replay = replay
	if replay != nil && e.state != nil {
		replay.RecordState(e.state)
	}
}

func (e *TrophicEngine) emitNotification(n GameNotification) {
	handler := e.notificationHandler
	if handler != nil {
		// Run asynchronously so handlers can call back into the engine.
		go handler(n)
	}
}

func (e *TrophicEngine) notify(notificationType string, data map[string]interface{}) {
	matchID := ""
	if e.state != nil {
		matchID = e.state.ID
	}
	e.emitNotification(GameNotification{
		Type:      notificationType,
		MatchID:   matchID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// NewMatch initializes the match. HOME anchors are created here and persist
// for the whole game; hands and energy are dealt when setup completes.
func (e *TrophicEngine) NewMatch(cfg MatchConfig) (*GameState, error) {
	if cfg.MatchID == "" {
		cfg.MatchID = uuid.NewString()
	}
	if len(cfg.Players) < 2 {
		return nil, fmt.Errorf("at least 2 players required")
	}
	if len(cfg.Players) > 4 {
		return nil, fmt.Errorf("at most 4 players supported")
	}

	settings := cfg.Settings
	if settings.GridWidth == 0 || settings.GridHeight == 0 {
		settings = DefaultSettings(len(cfg.Players))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != nil {
		return nil, fmt.Errorf("engine already serves match %s", e.state.ID)
	}

	state := &GameState{
		ID:        cfg.MatchID,
		Players:   make([]*Player, len(cfg.Players)),
		Phase:     rules.PhaseSetup,
		TurnPhase: rules.TurnPhaseReady,
		Board:     make(map[Position]*GridCard),
		Settings:  settings,
		Metadata:  make(map[string]interface{}),
	}

	seen := make(map[string]bool, len(cfg.Players))
	for i, setup := range cfg.Players {
		if setup.ID == "" {
			return nil, fmt.Errorf("player %d has no id", i)
		}
		if seen[setup.ID] {
			return nil, fmt.Errorf("duplicate player id %s", setup.ID)
		}
		seen[setup.ID] = true
		for _, cardID := range setup.Deck {
			if _, ok := e.registry.Card(cardID); !ok {
				return nil, fmt.Errorf("player %s deck contains unknown card %d", setup.ID, cardID)
			}
		}
		deck := make([]int, len(setup.Deck))
		copy(deck, setup.Deck)
		state.Players[i] = &Player{
			ID:   setup.ID,
			Name: setup.Name,
			Deck: deck,
		}
	}

	homes := homePositions(settings, len(cfg.Players))
	for i, p := range state.Players {
		pos := homes[i%len(homes)]
		state.Board[pos] = &GridCard{
			InstanceID: uuid.NewString(),
			OwnerID:    p.ID,
			Position:   pos,
			Home:       true,
		}
	}

	e.state = state
	e.rng = rand.New(rand.NewSource(seedFromMatchID(cfg.MatchID)))

	e.bus.Publish(rules.NewEvent(rules.EventGameStarted, state.ID, "", ""))
	e.notify("GAME_STATE_CHANGE", map[string]interface{}{"state": "created"})

	if e.logger != nil {
		e.logger.Info("match initialized",
			zap.String("match_id", state.ID),
			zap.Int("players", len(state.Players)),
			zap.Int("grid_width", settings.GridWidth),
			zap.Int("grid_height", settings.GridHeight),
		)
	}

	return state, nil
}

// seedFromMatchID derives a deterministic RNG seed so replays of the same
// match id resolve random selectors identically.
func seedFromMatchID(matchID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(matchID))
	return int64(h.Sum64())
}

// CurrentState returns the authoritative snapshot. Callers must treat it as
// read-only; mutations happen only through ProcessAction.
func (e *TrophicEngine) CurrentState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ProcessAction validates and applies one player action. It is the single
// mutating entry point: either a fresh state snapshot is committed and
// returned, or the prior state stays untouched and the error explains why.
func (e *TrophicEngine) ProcessAction(action PlayerAction) ActionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.state
	if state == nil {
		return invalid("no match initialized")
	}
	if state.Phase == rules.PhaseEnded {
		return invalid("match %s has ended", state.ID)
	}
	if action.PlayerID == "" {
		return invalid("missing player id")
	}
	if _, ok := state.PlayerByID(action.PlayerID); !ok {
		return invalid("unknown player %s", action.PlayerID)
	}

	// Phase/turn validation happens before any clone; handlers below work
	// on a clone and commit only on success.
	if action.Type == ActionPlayerReady {
		if state.Phase != rules.PhaseSetup {
			return invalid("PLAYER_READY is only valid during setup")
		}
		return e.commit(action, e.handlePlayerReady)
	}

	if state.Phase == rules.PhaseSetup {
		return invalid("match has not started yet")
	}
	if active := state.ActivePlayer(); active == nil || active.ID != action.PlayerID {
		return invalid("it is not %s's turn", action.PlayerID)
	}

	switch action.Type {
	case ActionPassTurn:
		return e.commit(action, e.handlePassTurn)
	case ActionPlayCard, ActionActivateAbility, ActionMoveCard, ActionChallenge, ActionRemoveCard, ActionMetamorphosis:
		if state.TurnPhase != rules.TurnPhaseAction {
			return invalid("%s is only valid during the action phase", action.Type)
		}
		if state.ActionsRemaining <= 0 {
			return invalid("no actions remaining this turn")
		}
	default:
		return invalid("unknown action type %q", action.Type)
	}

	switch action.Type {
	case ActionPlayCard:
		return e.commit(action, e.handlePlayCard)
	case ActionActivateAbility:
		return e.commit(action, e.handleActivateAbility)
	case ActionMoveCard:
		return e.commit(action, e.handleMoveCard)
	case ActionChallenge:
		return e.commit(action, e.handleChallenge)
	case ActionRemoveCard:
		return e.commit(action, e.handleRemoveCard)
	case ActionMetamorphosis:
		return e.commit(action, e.handleMetamorphosis)
	}
	return invalid("unknown action type %q", action.Type)
}

// commit runs a handler against a clone of the current state and swaps it in
// when the handler succeeds. A failing handler leaves the prior state as the
// authoritative snapshot.
func (e *TrophicEngine) commit(action PlayerAction, handler func(*GameState, PlayerAction) error) ActionResult {
	next := e.state.Clone()
	if err := handler(next, action); err != nil {
		if e.logger != nil {
			e.logger.Debug("action rejected",
				zap.String("match_id", e.state.ID),
				zap.String("action", string(action.Type)),
				zap.String("player_id", action.PlayerID),
				zap.Error(err),
			)
		}
		return ActionResult{Valid: false, Error: err.Error()}
	}

	e.state = next
	if e.replay != nil {
		e.replay.RecordState(next)
	}
	e.notify("PLAYER_ACTION", map[string]interface{}{
		"action":    string(action.Type),
		"player_id": action.PlayerID,
		"phase":     next.Phase.String(),
	})
	if next.Phase == rules.PhaseEnded {
		e.notify("GAME_ENDED", map[string]interface{}{"result": next.Metadata[MetadataResultKey]})
	}
	if e.logger != nil {
		e.logger.Info("action applied",
			zap.String("match_id", next.ID),
			zap.String("action", string(action.Type)),
			zap.String("player_id", action.PlayerID),
			zap.Int("turn", next.TurnCounter),
			zap.Int("actions_remaining", next.ActionsRemaining),
		)
	}
	return ActionResult{Valid: true, State: next}
}

// handlePlayerReady records the setup ready signal and starts the game once
// every player has signaled.
func (e *TrophicEngine) handlePlayerReady(state *GameState, action PlayerAction) error {
	player, _ := state.PlayerByID(action.PlayerID)
	if player.Ready {
		return fmt.Errorf("player %s is already ready", action.PlayerID)
	}
	player.Ready = true

	for _, p := range state.Players {
		if !p.Ready {
			return nil
		}
	}
	e.startPlaying(state)
	return nil
}

// startPlaying deals starting hands and energy and begins player 0's turn.
func (e *TrophicEngine) startPlaying(state *GameState) {
	state.Phase = rules.PhasePlaying
	state.TurnCounter = 1
	state.CurrentPlayerIndex = 0

	for _, p := range state.Players {
		for i := 0; i < state.Settings.StartingHandSize && len(p.Deck) > 0; i++ {
			p.Hand = append(p.Hand, p.drawFromDeck())
		}
		p.Energy = state.Settings.StartingEnergy
	}

	e.bus.Publish(rules.NewEvent(rules.EventPhaseChanged, state.ID, "", ""))
	e.notify("PHASE_CHANGE", map[string]interface{}{"phase": state.Phase.String()})
	e.beginTurn(state)
}

func (p *Player) drawFromDeck() int {
	cardID := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	return cardID
}

// beginTurn runs the Ready and Draw phases for the active player and leaves
// the state resting in the Action phase. Deck exhaustion during Draw opens
// or continues the final-turn window.
func (e *TrophicEngine) beginTurn(state *GameState) {
	active := state.ActivePlayer()
	state.TurnPhase = rules.TurnPhaseReady
	e.bus.Publish(rules.NewEvent(rules.EventTurnStarted, state.ID, active.ID, ""))

	// Ready phase: un-exhaust everything not held down by prevent-ready,
	// fire turn-start and passive abilities, grant energy.
	for _, card := range state.BoardCardsOwnedBy(active.ID, true) {
		if card.Home {
			continue
		}
		if card.Exhausted && !card.hasPreventReady() {
			card.Exhausted = false
			e.bus.Publish(rules.NewEvent(rules.EventCardReadied, state.ID, active.ID, card.InstanceID))
		}
	}
	for _, card := range state.BoardCardsOwnedBy(active.ID, true) {
		e.runTriggers(state, card, cards.TriggerOnTurnStart)
		e.runTriggers(state, card, cards.TriggerPassive)
	}
	active.Energy++
	e.bus.Publish(rules.NewEvent(rules.EventEnergyChanged, state.ID, active.ID, ""))

	// Draw phase: mandatory draw of exactly one card.
	state.TurnPhase = rules.TurnPhaseDraw
	if len(active.Deck) == 0 {
		if state.Phase == rules.PhasePlaying {
			state.Phase = rules.PhaseFinalTurn
			state.FinalTurnTriggeredBy = active.ID
			state.FinalTurnPending = nil
			for _, p := range state.Players {
				if p.ID != active.ID {
					state.FinalTurnPending = append(state.FinalTurnPending, p.ID)
				}
			}
			e.bus.Publish(rules.NewEvent(rules.EventPhaseChanged, state.ID, active.ID, ""))
			e.notify("PHASE_CHANGE", map[string]interface{}{"phase": state.Phase.String()})
			if e.logger != nil {
				e.logger.Info("final turn triggered",
					zap.String("match_id", state.ID),
					zap.String("player_id", active.ID),
				)
			}
		}
		// No Action phase for a player who cannot draw.
		e.endTurn(state)
		return
	}

	drawn := active.drawFromDeck()
	if len(active.Hand) >= state.Settings.MaxHandSize {
		// Hand is full: the drawn card is lost.
		if e.logger != nil {
			e.logger.Debug("draw discarded over hand limit",
				zap.String("match_id", state.ID),
				zap.String("player_id", active.ID),
				zap.Int("card_id", drawn),
			)
		}
	} else {
		active.Hand = append(active.Hand, drawn)
	}
	e.bus.Publish(rules.NewEvent(rules.EventCardDrawn, state.ID, active.ID, ""))

	state.TurnPhase = rules.TurnPhaseAction
	state.ActionsRemaining = state.Settings.ActionsPerTurn
}

// endTurn fires turn-end triggers, ages status effects, advances the final
// turn bookkeeping and hands the turn to the next player.
func (e *TrophicEngine) endTurn(state *GameState) {
	active := state.ActivePlayer()
	for _, card := range state.BoardCardsOwnedBy(active.ID, true) {
		e.runTriggers(state, card, cards.TriggerOnTurnEnd)
	}
	for _, card := range state.BoardCardsOwnedBy(active.ID, true) {
		card.tickStatusEffects()
	}
	e.bus.Publish(rules.NewEvent(rules.EventTurnEnded, state.ID, active.ID, ""))

	if state.Phase == rules.PhaseFinalTurn {
		state.removeFinalTurnPending(active.ID)
		if len(state.FinalTurnPending) == 0 {
			e.endGame(state)
			return
		}
	}

	state.CurrentPlayerIndex = (state.CurrentPlayerIndex + 1) % len(state.Players)
	if state.CurrentPlayerIndex == 0 {
		state.TurnCounter++
	}
	e.beginTurn(state)
}

func (s *GameState) removeFinalTurnPending(playerID string) {
	for i, id := range s.FinalTurnPending {
		if id == playerID {
			s.FinalTurnPending = append(s.FinalTurnPending[:i], s.FinalTurnPending[i+1:]...)
			return
		}
	}
}

// consumeAction spends one unit of the turn budget and auto-passes the turn
// when it reaches zero.
func (e *TrophicEngine) consumeAction(state *GameState) {
	state.ActionsRemaining--
	if state.ActionsRemaining <= 0 {
		e.endTurn(state)
	}
}

// endGame computes the final result into state metadata.
func (e *TrophicEngine) endGame(state *GameState) {
	state.Phase = rules.PhaseEnded
	result := ComputeResult(state, e.registry)
	state.Metadata[MetadataResultKey] = result
	e.bus.Publish(rules.NewEvent(rules.EventGameEnded, state.ID, "", ""))
	if e.logger != nil {
		e.logger.Info("match ended",
			zap.String("match_id", state.ID),
			zap.Strings("winners", result.WinnerIDs),
			zap.Int("turns", state.TurnCounter),
		)
	}
}
