package cards

// Well-known ability names checked by the placement rules.
// Per the keyword-ability constants used across card data.
const (
	AbilityChemicalOpportunist = "ChemicalOpportunistAbility"
	AbilityDetritalSpecialist  = "DetritalSpecialistAbility"
)

// Well-known keyword names resolved through the keyword table.
const (
	KeywordMixotroph     = "Mixotroph"
	KeywordMetamorphosis = "Metamorphosis"
	KeywordJuvenile      = "Juvenile"
)

// CostRequirement specifies one line of a structured cost: the player must
// exhaust Count ready board cards matching the optional filters.
type CostRequirement struct {
	Count    int
	Category TrophicCategory // CategoryNone matches any category
	Level    TrophicLevel    // LevelNone matches any level
}

// Matches reports whether a card with the given category and level can pay
// toward this requirement.
func (r CostRequirement) Matches(category TrophicCategory, level TrophicLevel) bool {
	if r.Category != CategoryNone && r.Category != category {
		return false
	}
	if r.Level != LevelNone && r.Level != level {
		return false
	}
	return true
}

// CardDefinition is the immutable static definition of a card, loaded once
// from the external data tables and never mutated by the engine.
type CardDefinition struct {
	ID            int
	Name          string
	NameKey       string // localization reference, resolved by external collaborators
	Level         TrophicLevel
	Category      TrophicCategory
	Domain        Domain
	Cost          []CostRequirement
	Keywords      []int
	PreferredDiet []int // keyword ids that grant the synergy bonus when adjacent
	AbilityIDs    []int
	VictoryPoints int
}

// Filter narrows an effect's selected targets.
type Filter struct {
	Kind     FilterKind
	Keyword  int
	Category TrophicCategory
	Level    TrophicLevel
}

// Effect is one step of an ability: resolve targets via the selector, narrow
// via filters, then apply the action.
type Effect struct {
	Selector SelectorKind
	Filters  []Filter
	Action   ActionKind
	Amount   int    // count for energy/draw/prevent-ready durations
	Card     int    // card definition id for discard effects
	Status   string // status type tag for APPLY_STATUS
	Duration int    // status duration in full turn cycles
}

// AbilityDefinition is the immutable static definition of an ability.
type AbilityDefinition struct {
	ID         int
	Name       string
	Trigger    TriggerKind
	EnergyCost int // only meaningful for activated abilities
	Effects    []Effect
}
