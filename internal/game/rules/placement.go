package rules

import (
	"fmt"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

// CardStub provides the board information placement checks need about an
// occupant. The engine adapts its own GridCard into this shape.
type CardStub struct {
	InstanceID   string
	DefinitionID int
	OwnerID      string
	Level        cards.TrophicLevel
	Category     cards.TrophicCategory
	Domain       cards.Domain
	Home         bool
	Detritus     bool
}

// BoardAccessor provides access to board state needed for placement checks.
type BoardAccessor interface {
	// CardAt returns the occupant of a cell, if any.
	CardAt(x, y int) (CardStub, bool)
	// InBounds reports whether the coordinates are on the grid.
	InBounds(x, y int) bool
}

// PlacementResult represents the result of a placement legality check.
type PlacementResult struct {
	Legal bool
	// Reason explains the failure when Legal is false.
	Reason string
	// HostID is set when the card must enter play as an attachment on the
	// identified host instead of occupying the cell.
	HostID string
	// ReplacesDetritus is set when a saprotroph consumes the detritus
	// marker at the target cell.
	ReplacesDetritus bool
}

func legal() PlacementResult {
	return PlacementResult{Legal: true}
}

func illegal(format string, args ...interface{}) PlacementResult {
	return PlacementResult{Legal: false, Reason: fmt.Sprintf(format, args...)}
}

// PlacementChecker validates card placement against the food-chain and
// habitat-domain rules.
type PlacementChecker struct {
	board    BoardAccessor
	registry *cards.Registry
}

// NewPlacementChecker creates a new placement checker.
func NewPlacementChecker(board BoardAccessor, registry *cards.Registry) *PlacementChecker {
	return &PlacementChecker{board: board, registry: registry}
}

var orthogonal = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func (pc *PlacementChecker) neighbors(x, y int) []CardStub {
	var out []CardStub
	for _, d := range orthogonal {
		if stub, ok := pc.board.CardAt(x+d[0], y+d[1]); ok {
			out = append(out, stub)
		}
	}
	return out
}

// Check decides whether the card may be placed at the target cell by its
// owner, and how it enters play (occupying the cell, replacing a detritus
// marker, or attaching to a host).
func (pc *PlacementChecker) Check(def *cards.CardDefinition, ownerID string, x, y int) PlacementResult {
	if def == nil {
		return illegal("no card definition")
	}
	if !pc.board.InBounds(x, y) {
		return illegal("position (%d,%d) is out of bounds", x, y)
	}

	if occupant, ok := pc.board.CardAt(x, y); ok {
		return pc.checkOccupied(def, occupant)
	}
	return pc.checkEmpty(def, ownerID, x, y)
}

// checkOccupied handles targets that already hold a card: saprotrophs
// replacing detritus and attachments targeting their host.
func (pc *PlacementChecker) checkOccupied(def *cards.CardDefinition, occupant CardStub) PlacementResult {
	if occupant.Detritus {
		if def.Category == cards.CategorySaprotroph {
			return PlacementResult{Legal: true, ReplacesDetritus: true}
		}
		return illegal("only saprotrophs may be placed on a detritus marker")
	}

	if def.Category.IsAttachment() {
		if reason := pc.hostMismatch(def, occupant); reason != "" {
			return illegal("%s", reason)
		}
		return PlacementResult{Legal: true, HostID: occupant.InstanceID}
	}

	return illegal("position is already occupied")
}

// checkEmpty handles placement onto a free cell.
func (pc *PlacementChecker) checkEmpty(def *cards.CardDefinition, ownerID string, x, y int) PlacementResult {
	adjacent := pc.neighbors(x, y)

	switch {
	case def.Category == cards.CategorySaprotroph:
		return illegal("saprotrophs must be placed on a detritus marker")

	case def.Category.IsAttachment():
		for _, n := range adjacent {
			if pc.hostMismatch(def, n) == "" {
				return PlacementResult{Legal: true, HostID: n.InstanceID}
			}
		}
		return illegal("%s must attach to a valid host", def.Category)

	case def.Category == cards.CategoryDetritivore:
		for _, n := range adjacent {
			if !n.Detritus && n.Category == cards.CategorySaprotroph {
				return legal()
			}
		}
		return illegal("detritivores must be adjacent to a saprotroph")

	case def.Level == cards.LevelProducer:
		return pc.checkProducer(def, ownerID, adjacent)

	case def.Level.IsConsumer():
		return pc.checkConsumer(def, adjacent)
	}

	return illegal("card has no placement rule for level %s", def.Level)
}

// checkProducer validates producer placement: rooted against the player's
// HOME or another producer, with the chemoautotroph special cases.
func (pc *PlacementChecker) checkProducer(def *cards.CardDefinition, ownerID string, adjacent []CardStub) PlacementResult {
	for _, n := range adjacent {
		if n.Home && n.OwnerID == ownerID {
			return legal()
		}
		if n.Detritus || n.Home {
			continue
		}
		if n.Level == cards.LevelProducer {
			return legal()
		}
		if def.Category == cards.CategoryChemoautotroph {
			if n.Category == cards.CategorySaprotroph && pc.registry.HasAbilityNamed(def, cards.AbilityChemicalOpportunist) {
				return legal()
			}
			if n.Category == cards.CategoryDetritivore && pc.registry.HasAbilityNamed(def, cards.AbilityDetritalSpecialist) {
				return legal()
			}
		}
	}
	return illegal("producers must be placed adjacent to your HOME or another producer")
}

// checkConsumer validates the trophic chain: at least one neighbor exactly
// one level below, with a compatible domain. HOME never feeds a consumer.
func (pc *PlacementChecker) checkConsumer(def *cards.CardDefinition, adjacent []CardStub) PlacementResult {
	preyLevel := def.Level - 1
	sawPreyLevel := false
	for _, n := range adjacent {
		if n.Home || n.Detritus {
			continue
		}
		if n.Level != preyLevel {
			continue
		}
		sawPreyLevel = true
		if DomainCompatible(def.Domain, n.Domain) {
			return legal()
		}
	}
	if sawPreyLevel {
		return illegal("no domain-compatible prey: %s cannot hunt adjacent %s prey", def.Domain, preyLevel)
	}
	return illegal("consumers of level %s require an adjacent card of level %s", def.Level, preyLevel)
}

// hostMismatch reports why the occupant cannot host the attachment, or ""
// when it can. Parasites require a consumer host, mutualists a producer.
func (pc *PlacementChecker) hostMismatch(def *cards.CardDefinition, host CardStub) string {
	if host.Home {
		return "cannot attach to a HOME card"
	}
	if host.Detritus {
		return "cannot attach to a detritus marker"
	}
	if !DomainCompatible(def.Domain, host.Domain) {
		return fmt.Sprintf("host domain %s is incompatible with %s", host.Domain, def.Domain)
	}
	switch def.Category {
	case cards.CategoryParasite:
		if host.Level <= cards.LevelProducer {
			return "parasites require a consumer host"
		}
	case cards.CategoryMutualist:
		if host.Level != cards.LevelProducer {
			return "mutualists require a producer host"
		}
	}
	return ""
}
