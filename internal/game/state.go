package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/game/effects"
	"github.com/trophicgame/trophic-server-go/internal/game/rules"
)

// Position is an integer board coordinate.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MarshalText lets Position act as a JSON map key for the sparse board.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)), nil
}

// UnmarshalText parses the "x,y" key form.
func (p *Position) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid position %q", text)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", text, err)
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", text, err)
	}
	p.X, p.Y = x, y
	return nil
}

// Settings holds the per-match configuration.
type Settings struct {
	MaxPlayers       int
	GridWidth        int
	GridHeight       int
	StartingHandSize int
	MaxHandSize      int
	StartingEnergy   int
	ActionsPerTurn   int
	// TurnTimeLimit is stored for external clock enforcement only; the
	// engine never acts on it.
	TurnTimeLimit time.Duration
}

// DefaultSettings returns the standard settings for a player count.
// Grid size follows player count: 2 players get 9x10, more get 10x10.
func DefaultSettings(playerCount int) Settings {
	s := Settings{
		MaxPlayers:       playerCount,
		GridWidth:        10,
		GridHeight:       10,
		StartingHandSize: 5,
		MaxHandSize:      8,
		StartingEnergy:   2,
		ActionsPerTurn:   3,
	}
	if playerCount <= 2 {
		s.GridWidth = 9
	}
	return s
}

// GridCard is a board occupant, exclusively owned by its GameState.
type GridCard struct {
	InstanceID   string
	DefinitionID int
	OwnerID      string
	Position     Position
	Exhausted    bool
	// Attachments are parasites/mutualists riding on this card; they do
	// not occupy a board cell of their own.
	Attachments   []*GridCard
	StatusEffects []effects.StatusEffect
	// Detritus marks a face-down dead-creature marker occupying the cell.
	Detritus bool
	// Home marks the permanent per-player anchor created at game start.
	Home bool
}

// hasPreventReady reports whether a prevent-ready status is holding the
// card exhausted.
func (g *GridCard) hasPreventReady() bool {
	return effects.HasType(g.StatusEffects, effects.TypePreventReady)
}

// tickStatusEffects ages the card's status effects by one turn cycle.
func (g *GridCard) tickStatusEffects() {
	g.StatusEffects = effects.Tick(g.StatusEffects)
}

// Player holds one participant's mutable state.
type Player struct {
	ID        string
	Name      string
	Hand      []int // card definition ids, order irrelevant
	Deck      []int // ordered, drawn from the end
	ScorePile []GridCard
	Energy    int
	// Ready is the setup-phase ready signal only.
	Ready bool
}

// GameState is the authoritative state of one match. The engine clones it on
// every successful mutating action; callers treat the returned snapshot as
// canonical and may keep prior snapshots for inspection.
type GameState struct {
	ID                   string
	Players              []*Player
	CurrentPlayerIndex   int
	Phase                rules.GamePhase
	TurnPhase            rules.TurnPhase
	ActionsRemaining     int
	TurnCounter          int
	FinalTurnTriggeredBy string
	// FinalTurnPending lists the players still owed one final turn.
	FinalTurnPending []string
	Board            map[Position]*GridCard
	Settings         Settings
	Metadata         map[string]interface{}
}

// InBounds reports whether the position is on the grid.
func (s *GameState) InBounds(p Position) bool {
	return p.X >= 0 && p.X < s.Settings.GridWidth && p.Y >= 0 && p.Y < s.Settings.GridHeight
}

// CardAt returns the occupant of a cell.
func (s *GameState) CardAt(p Position) (*GridCard, bool) {
	card, ok := s.Board[p]
	return card, ok
}

var orthogonalOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// NeighborsOf returns the occupants of the four orthogonal neighbor cells.
func (s *GameState) NeighborsOf(p Position) []*GridCard {
	var out []*GridCard
	for _, d := range orthogonalOffsets {
		if card, ok := s.Board[Position{p.X + d[0], p.Y + d[1]}]; ok {
			out = append(out, card)
		}
	}
	return out
}

// FindInstance locates a card by instance id on the board, searching cell
// occupants and their attachments. The second return is the host when the
// found card is an attachment.
func (s *GameState) FindInstance(instanceID string) (card, host *GridCard, ok bool) {
	for _, occupant := range s.Board {
		if occupant.InstanceID == instanceID {
			return occupant, nil, true
		}
		for _, attached := range occupant.Attachments {
			if attached.InstanceID == instanceID {
				return attached, occupant, true
			}
		}
	}
	return nil, nil, false
}

// PlayerByID returns the player with the given id.
func (s *GameState) PlayerByID(playerID string) (*Player, bool) {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

// ActivePlayer returns the player whose turn it is.
func (s *GameState) ActivePlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// BoardCardsOwnedBy returns all cell occupants owned by the player,
// excluding detritus markers. Attachments are included when withAttachments
// is set.
func (s *GameState) BoardCardsOwnedBy(playerID string, withAttachments bool) []*GridCard {
	var out []*GridCard
	for _, occupant := range s.Board {
		if occupant.Detritus {
			continue
		}
		if occupant.OwnerID == playerID {
			out = append(out, occupant)
		}
		if withAttachments {
			for _, attached := range occupant.Attachments {
				if attached.OwnerID == playerID {
					out = append(out, attached)
				}
			}
		}
	}
	return out
}

// homePositions returns the HOME anchor cells for the given player count:
// centered near opposite edges for two players, quadrant centers for more.
func homePositions(settings Settings, playerCount int) []Position {
	w, h := settings.GridWidth, settings.GridHeight
	if playerCount <= 2 {
		return []Position{
			{X: w / 2, Y: 1},
			{X: w / 2, Y: h - 2},
		}
	}
	return []Position{
		{X: w / 4, Y: h / 4},
		{X: 3 * w / 4, Y: h / 4},
		{X: w / 4, Y: 3 * h / 4},
		{X: 3 * w / 4, Y: 3 * h / 4},
	}
}

// stubFor adapts a board card into the shape placement rules consume.
func stubFor(card *GridCard, registry *cards.Registry) rules.CardStub {
	stub := rules.CardStub{
		InstanceID:   card.InstanceID,
		DefinitionID: card.DefinitionID,
		OwnerID:      card.OwnerID,
		Home:         card.Home,
		Detritus:     card.Detritus,
	}
	if card.Home {
		stub.Domain = cards.DomainHome
		return stub
	}
	if def, ok := registry.Card(card.DefinitionID); ok {
		stub.Level = def.Level
		stub.Category = def.Category
		stub.Domain = def.Domain
	}
	return stub
}

// boardAccessor adapts GameState to rules.BoardAccessor.
type boardAccessor struct {
	state    *GameState
	registry *cards.Registry
}

func (b boardAccessor) CardAt(x, y int) (rules.CardStub, bool) {
	card, ok := b.state.Board[Position{X: x, Y: y}]
	if !ok {
		return rules.CardStub{}, false
	}
	return stubFor(card, b.registry), true
}

func (b boardAccessor) InBounds(x, y int) bool {
	return b.state.InBounds(Position{X: x, Y: y})
}
