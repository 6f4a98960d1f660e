package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	EventGameStarted      EventType = "GAME_STARTED"
	EventGameEnded        EventType = "GAME_ENDED"
	EventPhaseChanged     EventType = "PHASE_CHANGED"
	EventTurnStarted      EventType = "TURN_STARTED"
	EventTurnEnded        EventType = "TURN_ENDED"
	EventCardPlayed       EventType = "CARD_PLAYED"
	EventCardMoved        EventType = "CARD_MOVED"
	EventCardDied         EventType = "CARD_DIED"
	EventCardRemoved      EventType = "CARD_REMOVED"
	EventCardExhausted    EventType = "CARD_EXHAUSTED"
	EventCardReadied      EventType = "CARD_READIED"
	EventCardAttached     EventType = "CARD_ATTACHED"
	EventDetritusConsumed EventType = "DETRITUS_CONSUMED"
	EventChallenge        EventType = "CHALLENGE"
	EventMetamorphosis    EventType = "METAMORPHOSIS"
	EventAbilityActivated EventType = "ABILITY_ACTIVATED"
	EventEnergyChanged    EventType = "ENERGY_CHANGED"
	EventCardDrawn        EventType = "CARD_DRAWN"
	EventScoreChanged     EventType = "SCORE_CHANGED"
)

// Event describes something that happened inside a match.
type Event struct {
	Type      EventType
	MatchID   string
	PlayerID  string
	TargetID  string // instance id of the card the event concerns
	SourceID  string // instance id of the card or ability that caused it
	Amount    int
	Data      string
	Timestamp time.Time
}

// Listener receives published events.
type Listener func(Event)

// EventBus provides a synchronous publish/subscribe implementation.
type EventBus struct {
	mu         sync.RWMutex
	listeners  map[int]Listener
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[int]Listener)}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, listener := range bus.listeners {
		listener(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, matchID, playerID, targetID string) Event {
	return Event{
		Type:      eventType,
		MatchID:   matchID,
		PlayerID:  playerID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
}
