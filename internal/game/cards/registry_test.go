package cards

import "testing"

func TestNewRegistryConsistency(t *testing.T) {
	tests := []struct {
		name string
		def  CardDefinition
		err  bool
	}{
		{"photoautotroph producer", CardDefinition{ID: 1, Name: "Algae", Category: CategoryPhotoautotroph, Level: LevelProducer, Domain: DomainFreshwater}, false},
		{"photoautotroph wrong level", CardDefinition{ID: 2, Name: "Bad Algae", Category: CategoryPhotoautotroph, Level: LevelPrimary, Domain: DomainFreshwater}, true},
		{"saprotroph matching level", CardDefinition{ID: 3, Name: "Bracket Fungus", Category: CategorySaprotroph, Level: LevelSaprotroph, Domain: DomainTerrestrial}, false},
		{"saprotroph wrong level", CardDefinition{ID: 4, Name: "Bad Fungus", Category: CategorySaprotroph, Level: LevelProducer, Domain: DomainTerrestrial}, true},
		{"detritivore matching level", CardDefinition{ID: 5, Name: "Earthworm", Category: CategoryDetritivore, Level: LevelDetritivore, Domain: DomainTerrestrial}, false},
		{"herbivore consumer level", CardDefinition{ID: 6, Name: "Vole", Category: CategoryHerbivore, Level: LevelPrimary, Domain: DomainTerrestrial}, false},
		{"herbivore producer level", CardDefinition{ID: 7, Name: "Bad Vole", Category: CategoryHerbivore, Level: LevelProducer, Domain: DomainTerrestrial}, true},
		{"carnivore apex level", CardDefinition{ID: 8, Name: "Eagle", Category: CategoryCarnivore, Level: LevelApex, Domain: DomainTerrestrial}, false},
		{"parasite any level", CardDefinition{ID: 9, Name: "Tick", Category: CategoryParasite, Level: LevelPrimary, Domain: DomainTerrestrial}, false},
		{"unknown category", CardDefinition{ID: 10, Name: "Mystery", Category: CategoryNone, Level: LevelProducer, Domain: DomainTerrestrial}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry([]CardDefinition{tt.def}, nil, nil)
			if tt.err && err == nil {
				t.Errorf("expected error for %s, got nil", tt.name)
			}
			if !tt.err && err != nil {
				t.Errorf("unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defs := []CardDefinition{
		{ID: 1, Name: "Algae", Category: CategoryPhotoautotroph, Level: LevelProducer, Domain: DomainFreshwater},
		{ID: 1, Name: "Algae Again", Category: CategoryPhotoautotroph, Level: LevelProducer, Domain: DomainFreshwater},
	}
	if _, err := NewRegistry(defs, nil, nil); err == nil {
		t.Fatal("expected duplicate card id error, got nil")
	}
}

func TestNewRegistryRejectsUnknownAbility(t *testing.T) {
	defs := []CardDefinition{
		{ID: 1, Name: "Algae", Category: CategoryPhotoautotroph, Level: LevelProducer, Domain: DomainFreshwater, AbilityIDs: []int{99}},
	}
	if _, err := NewRegistry(defs, nil, nil); err == nil {
		t.Fatal("expected unknown ability id error, got nil")
	}
}

func TestRegistryLookups(t *testing.T) {
	defs := []CardDefinition{
		{ID: 1, Name: "Sulfur Mat", Category: CategoryChemoautotroph, Level: LevelProducer, Domain: DomainMarine, Keywords: []int{7}, AbilityIDs: []int{20}},
	}
	abilities := []AbilityDefinition{
		{ID: 20, Name: AbilityChemicalOpportunist, Trigger: TriggerPassive},
	}
	keywords := map[int]string{7: KeywordMixotroph}

	r, err := NewRegistry(defs, abilities, keywords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	card, ok := r.Card(1)
	if !ok {
		t.Fatal("expected card 1 to be present")
	}
	if !r.HasKeyword(card, KeywordMixotroph) {
		t.Error("expected card to carry Mixotroph keyword")
	}
	if r.HasKeyword(card, KeywordMetamorphosis) {
		t.Error("did not expect Metamorphosis keyword")
	}
	if !r.HasAbilityNamed(card, AbilityChemicalOpportunist) {
		t.Error("expected card to carry ChemicalOpportunistAbility")
	}
	if r.HasAbilityNamed(card, AbilityDetritalSpecialist) {
		t.Error("did not expect DetritalSpecialistAbility")
	}
	if name, _ := r.KeywordName(7); name != KeywordMixotroph {
		t.Errorf("expected keyword name %q, got %q", KeywordMixotroph, name)
	}
	if _, ok := r.Ability(20); !ok {
		t.Error("expected ability 20 to be present")
	}
	if _, ok := r.Card(42); ok {
		t.Error("did not expect card 42")
	}
}
