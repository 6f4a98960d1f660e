package rules

import (
	"strings"
	"testing"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

// fakeBoard is a minimal BoardAccessor backed by a map.
type fakeBoard struct {
	width, height int
	cells         map[[2]int]CardStub
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{width: 9, height: 10, cells: make(map[[2]int]CardStub)}
}

func (b *fakeBoard) put(x, y int, stub CardStub) {
	b.cells[[2]int{x, y}] = stub
}

func (b *fakeBoard) CardAt(x, y int) (CardStub, bool) {
	stub, ok := b.cells[[2]int{x, y}]
	return stub, ok
}

func (b *fakeBoard) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func testRegistry(t *testing.T) *cards.Registry {
	t.Helper()
	abilities := []cards.AbilityDefinition{
		{ID: 1, Name: cards.AbilityChemicalOpportunist, Trigger: cards.TriggerPassive},
		{ID: 2, Name: cards.AbilityDetritalSpecialist, Trigger: cards.TriggerPassive},
	}
	r, err := cards.NewRegistry(nil, abilities, nil)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return r
}

func homeStub(owner string) CardStub {
	return CardStub{InstanceID: "home-" + owner, OwnerID: owner, Home: true, Domain: cards.DomainHome}
}

func producerStub(id string, domain cards.Domain) CardStub {
	return CardStub{InstanceID: id, Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph, Domain: domain}
}

func TestCheckProducerPlacement(t *testing.T) {
	registry := testRegistry(t)
	photo := &cards.CardDefinition{ID: 1, Name: "Reed", Level: cards.LevelProducer, Category: cards.CategoryPhotoautotroph, Domain: cards.DomainFreshwater}

	board := newFakeBoard()
	board.put(4, 4, homeStub("p1"))
	checker := NewPlacementChecker(board, registry)

	if res := checker.Check(photo, "p1", 4, 5); !res.Legal {
		t.Errorf("expected producer adjacent to own HOME to be legal: %s", res.Reason)
	}
	if res := checker.Check(photo, "p2", 4, 5); res.Legal {
		t.Error("expected producer adjacent to opposing HOME to be illegal")
	}
	if res := checker.Check(photo, "p1", 0, 0); res.Legal {
		t.Error("expected producer with no anchor to be illegal")
	}
	if res := checker.Check(photo, "p1", -1, 0); res.Legal || !strings.Contains(res.Reason, "out of bounds") {
		t.Errorf("expected out-of-bounds error, got %+v", res)
	}

	// A producer may also root against another producer.
	board.put(0, 1, producerStub("prod-1", cards.DomainFreshwater))
	if res := checker.Check(photo, "p1", 0, 0); !res.Legal {
		t.Errorf("expected producer adjacent to producer to be legal: %s", res.Reason)
	}
}

func TestCheckChemoautotrophSpecialCases(t *testing.T) {
	registry := testRegistry(t)
	plain := &cards.CardDefinition{ID: 2, Name: "Sulfur Mat", Level: cards.LevelProducer, Category: cards.CategoryChemoautotroph, Domain: cards.DomainMarine}
	opportunist := &cards.CardDefinition{ID: 3, Name: "Vent Mat", Level: cards.LevelProducer, Category: cards.CategoryChemoautotroph, Domain: cards.DomainMarine, AbilityIDs: []int{1}}
	specialist := &cards.CardDefinition{ID: 4, Name: "Fall Mat", Level: cards.LevelProducer, Category: cards.CategoryChemoautotroph, Domain: cards.DomainMarine, AbilityIDs: []int{2}}

	board := newFakeBoard()
	board.put(2, 2, CardStub{InstanceID: "sap-1", Level: cards.LevelSaprotroph, Category: cards.CategorySaprotroph, Domain: cards.DomainMarine})
	board.put(6, 6, CardStub{InstanceID: "det-1", Level: cards.LevelDetritivore, Category: cards.CategoryDetritivore, Domain: cards.DomainMarine})
	checker := NewPlacementChecker(board, registry)

	if res := checker.Check(plain, "p1", 2, 3); res.Legal {
		t.Error("plain chemoautotroph should not root against a saprotroph")
	}
	if res := checker.Check(opportunist, "p1", 2, 3); !res.Legal {
		t.Errorf("chemical opportunist should root against a saprotroph: %s", res.Reason)
	}
	if res := checker.Check(opportunist, "p1", 6, 5); res.Legal {
		t.Error("chemical opportunist should not root against a detritivore")
	}
	if res := checker.Check(specialist, "p1", 6, 5); !res.Legal {
		t.Errorf("detrital specialist should root against a detritivore: %s", res.Reason)
	}
}

func TestCheckConsumerChain(t *testing.T) {
	registry := testRegistry(t)
	herbivore := &cards.CardDefinition{ID: 5, Name: "Snail", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore, Domain: cards.DomainFreshwater}
	apex := &cards.CardDefinition{ID: 6, Name: "Pike", Level: cards.LevelApex, Category: cards.CategoryCarnivore, Domain: cards.DomainFreshwater}
	marineHerbivore := &cards.CardDefinition{ID: 7, Name: "Urchin", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore, Domain: cards.DomainMarine}

	board := newFakeBoard()
	board.put(3, 3, producerStub("prod-1", cards.DomainFreshwater))
	board.put(7, 7, homeStub("p1"))
	checker := NewPlacementChecker(board, registry)

	if res := checker.Check(herbivore, "p1", 3, 4); !res.Legal {
		t.Errorf("herbivore next to producer should be legal: %s", res.Reason)
	}
	// HOME never satisfies the trophic chain for consumers.
	if res := checker.Check(herbivore, "p1", 7, 8); res.Legal {
		t.Error("herbivore next to HOME only should be illegal")
	}
	// Apex next to a producer skips two levels.
	if res := checker.Check(apex, "p1", 3, 4); res.Legal {
		t.Error("apex next to producer should be illegal")
	}
	// Prey at the right level but in an incompatible domain.
	if res := checker.Check(marineHerbivore, "p1", 3, 4); res.Legal {
		t.Error("marine herbivore should not hunt freshwater producer")
	} else if !strings.Contains(res.Reason, "domain") {
		t.Errorf("expected a domain error, got %q", res.Reason)
	}
}

func TestCheckSaprotrophAndDetritivore(t *testing.T) {
	registry := testRegistry(t)
	saprotroph := &cards.CardDefinition{ID: 8, Name: "Mold", Level: cards.LevelSaprotroph, Category: cards.CategorySaprotroph, Domain: cards.DomainTerrestrial}
	detritivore := &cards.CardDefinition{ID: 9, Name: "Woodlouse", Level: cards.LevelDetritivore, Category: cards.CategoryDetritivore, Domain: cards.DomainTerrestrial}
	herbivore := &cards.CardDefinition{ID: 10, Name: "Deer", Level: cards.LevelPrimary, Category: cards.CategoryHerbivore, Domain: cards.DomainTerrestrial}

	board := newFakeBoard()
	board.put(2, 2, CardStub{InstanceID: "detritus-1", Detritus: true, DefinitionID: 42})
	board.put(5, 5, CardStub{InstanceID: "sap-1", Level: cards.LevelSaprotroph, Category: cards.CategorySaprotroph, Domain: cards.DomainTerrestrial})
	checker := NewPlacementChecker(board, registry)

	res := checker.Check(saprotroph, "p1", 2, 2)
	if !res.Legal || !res.ReplacesDetritus {
		t.Errorf("saprotroph on detritus should be legal and consume it: %+v", res)
	}
	if res := checker.Check(saprotroph, "p1", 5, 4); res.Legal {
		t.Error("saprotroph on an empty cell should be illegal")
	}
	if res := checker.Check(herbivore, "p1", 2, 2); res.Legal {
		t.Error("non-saprotroph on a detritus cell should be illegal")
	}
	if res := checker.Check(detritivore, "p1", 5, 4); !res.Legal {
		t.Errorf("detritivore next to saprotroph should be legal: %s", res.Reason)
	}
	if res := checker.Check(detritivore, "p1", 0, 0); res.Legal {
		t.Error("detritivore with no adjacent saprotroph should be illegal")
	}
}

func TestCheckAttachmentHosts(t *testing.T) {
	registry := testRegistry(t)
	parasite := &cards.CardDefinition{ID: 11, Name: "Lamprey", Level: cards.LevelPrimary, Category: cards.CategoryParasite, Domain: cards.DomainFreshwater}
	mutualist := &cards.CardDefinition{ID: 12, Name: "Cleaner Shrimp", Level: cards.LevelPrimary, Category: cards.CategoryMutualist, Domain: cards.DomainFreshwater}

	consumer := CardStub{InstanceID: "fish-1", Level: cards.LevelSecondary, Category: cards.CategoryCarnivore, Domain: cards.DomainFreshwater}
	producer := producerStub("weed-1", cards.DomainFreshwater)

	board := newFakeBoard()
	board.put(3, 3, consumer)
	board.put(6, 6, producer)
	checker := NewPlacementChecker(board, registry)

	// Direct targeting of an occupied, valid host cell.
	res := checker.Check(parasite, "p1", 3, 3)
	if !res.Legal || res.HostID != "fish-1" {
		t.Errorf("parasite onto consumer cell should attach to fish-1: %+v", res)
	}
	// Parasites cannot ride producers.
	if res := checker.Check(parasite, "p1", 6, 6); res.Legal {
		t.Error("parasite onto producer cell should be illegal")
	}
	// Mutualists require producers.
	res = checker.Check(mutualist, "p1", 6, 6)
	if !res.Legal || res.HostID != "weed-1" {
		t.Errorf("mutualist onto producer cell should attach to weed-1: %+v", res)
	}
	// Empty cell with an orthogonal host.
	res = checker.Check(parasite, "p1", 3, 4)
	if !res.Legal || res.HostID != "fish-1" {
		t.Errorf("parasite on empty cell should attach to the adjacent consumer: %+v", res)
	}
	// Empty cell with no host anywhere.
	res = checker.Check(parasite, "p1", 0, 0)
	if res.Legal || !strings.Contains(res.Reason, "host") {
		t.Errorf("parasite with no host should fail with a host error, got %+v", res)
	}
}

func TestCheckAttachmentDomainMismatch(t *testing.T) {
	registry := testRegistry(t)
	parasite := &cards.CardDefinition{ID: 13, Name: "Sea Louse", Level: cards.LevelPrimary, Category: cards.CategoryParasite, Domain: cards.DomainMarine}

	board := newFakeBoard()
	board.put(3, 3, CardStub{InstanceID: "trout-1", Level: cards.LevelSecondary, Category: cards.CategoryCarnivore, Domain: cards.DomainFreshwater})
	checker := NewPlacementChecker(board, registry)

	if res := checker.Check(parasite, "p1", 3, 3); res.Legal {
		t.Error("marine parasite should not attach to freshwater host")
	}
}
