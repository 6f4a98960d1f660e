package cards

import "fmt"

// TrophicLevel represents a card's position in the food chain.
// Levels 1-4 form the normal chain; saprotrophs and detritivores sit on
// special levels outside it.
type TrophicLevel int

const (
	LevelNone        TrophicLevel = 0
	LevelProducer    TrophicLevel = 1
	LevelPrimary     TrophicLevel = 2
	LevelSecondary   TrophicLevel = 3
	LevelApex        TrophicLevel = 4
	LevelSaprotroph  TrophicLevel = 10
	LevelDetritivore TrophicLevel = 11
)

var levelNames = map[TrophicLevel]string{
	LevelNone:        "NONE",
	LevelProducer:    "PRODUCER",
	LevelPrimary:     "PRIMARY_CONSUMER",
	LevelSecondary:   "SECONDARY_CONSUMER",
	LevelApex:        "APEX",
	LevelSaprotroph:  "SAPROTROPH",
	LevelDetritivore: "DETRITIVORE",
}

func (l TrophicLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL_%d", int(l))
}

// IsConsumer reports whether the level belongs to the normal consumer chain
// (trophic level above producer, excluding the special levels).
func (l TrophicLevel) IsConsumer() bool {
	return l > LevelProducer && l <= LevelApex
}

// TrophicCategory represents a card's nutritional strategy.
type TrophicCategory int

const (
	CategoryNone TrophicCategory = iota
	CategoryPhotoautotroph
	CategoryChemoautotroph
	CategoryHerbivore
	CategoryCarnivore
	CategoryOmnivore
	CategorySaprotroph
	CategoryDetritivore
	CategoryParasite
	CategoryMutualist
)

var categoryNames = map[TrophicCategory]string{
	CategoryNone:           "NONE",
	CategoryPhotoautotroph: "PHOTOAUTOTROPH",
	CategoryChemoautotroph: "CHEMOAUTOTROPH",
	CategoryHerbivore:      "HERBIVORE",
	CategoryCarnivore:      "CARNIVORE",
	CategoryOmnivore:       "OMNIVORE",
	CategorySaprotroph:     "SAPROTROPH",
	CategoryDetritivore:    "DETRITIVORE",
	CategoryParasite:       "PARASITE",
	CategoryMutualist:      "MUTUALIST",
}

func (c TrophicCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// IsAttachment reports whether cards of this category ride on a host instead
// of occupying their own board cell.
func (c TrophicCategory) IsAttachment() bool {
	return c == CategoryParasite || c == CategoryMutualist
}

// IsProducer reports whether the category is a producer strategy.
func (c TrophicCategory) IsProducer() bool {
	return c == CategoryPhotoautotroph || c == CategoryChemoautotroph
}

// Domain represents a card's habitat compatibility class.
type Domain int

const (
	DomainNone Domain = iota
	DomainTerrestrial
	DomainFreshwater
	DomainMarine
	DomainAmphibiousFreshwater
	DomainAmphibiousMarine
	DomainEuryhaline
	// DomainHome is the universal anchor domain carried only by HOME cards.
	DomainHome
)

var domainNames = map[Domain]string{
	DomainNone:                 "NONE",
	DomainTerrestrial:          "TERRESTRIAL",
	DomainFreshwater:           "FRESHWATER",
	DomainMarine:               "MARINE",
	DomainAmphibiousFreshwater: "AMPHIBIOUS_FRESHWATER",
	DomainAmphibiousMarine:     "AMPHIBIOUS_MARINE",
	DomainEuryhaline:           "EURYHALINE",
	DomainHome:                 "HOME",
}

func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DOMAIN_%d", int(d))
}

// TriggerKind identifies when an ability fires.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerOnPlay
	TriggerActivated
	TriggerPassive
	TriggerOnDeath
	TriggerOnTurnStart
	TriggerOnTurnEnd
	TriggerOnAttack
	TriggerOnDamage
)

var triggerNames = map[TriggerKind]string{
	TriggerNone:        "NONE",
	TriggerOnPlay:      "ON_PLAY",
	TriggerActivated:   "ACTIVATED",
	TriggerPassive:     "PASSIVE",
	TriggerOnDeath:     "ON_DEATH",
	TriggerOnTurnStart: "ON_TURN_START",
	TriggerOnTurnEnd:   "ON_TURN_END",
	TriggerOnAttack:    "ON_ATTACK",
	TriggerOnDamage:    "ON_DAMAGE",
}

func (t TriggerKind) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TRIGGER_%d", int(t))
}

// SelectorKind identifies how an effect resolves its targets.
type SelectorKind int

const (
	// SelectorNone applies the effect to the explicit target when one was
	// provided, otherwise to the acting card itself.
	SelectorNone SelectorKind = iota
	SelectorAdjacent
	// SelectorAmphibiousBridge selects cards adjacent to an amphibious or
	// euryhaline neighbor of the acting card, reaching through the bridge.
	SelectorAmphibiousBridge
	SelectorAllDetritus
	SelectorHost
	SelectorAllCards
	SelectorRandomCard
)

var selectorNames = map[SelectorKind]string{
	SelectorNone:             "NONE",
	SelectorAdjacent:         "ADJACENT",
	SelectorAmphibiousBridge: "AMPHIBIOUS_BRIDGE",
	SelectorAllDetritus:      "ALL_DETRITUS",
	SelectorHost:             "HOST",
	SelectorAllCards:         "ALL_CARDS",
	SelectorRandomCard:       "RANDOM_CARD",
}

func (s SelectorKind) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SELECTOR_%d", int(s))
}

// FilterKind identifies how selected targets are narrowed.
type FilterKind int

const (
	FilterKeyword FilterKind = iota + 1
	FilterCategory
	FilterLevel
)

var filterNames = map[FilterKind]string{
	FilterKeyword:  "KEYWORD",
	FilterCategory: "CATEGORY",
	FilterLevel:    "LEVEL",
}

func (f FilterKind) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FILTER_%d", int(f))
}

// ActionKind identifies the mutation an effect applies to its targets.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionExhaust
	ActionReady
	ActionMoveToHand
	ActionMoveToDetritus
	ActionPreventReady
	ActionGainEnergy
	ActionLoseEnergy
	ActionDrawCards
	ActionDiscardCard
	ActionGainVictoryPoints
	ActionApplyStatus
)

var actionNames = map[ActionKind]string{
	ActionNone:              "NONE",
	ActionExhaust:           "EXHAUST",
	ActionReady:             "READY",
	ActionMoveToHand:        "MOVE_TO_HAND",
	ActionMoveToDetritus:    "MOVE_TO_DETRITUS",
	ActionPreventReady:      "PREVENT_READY",
	ActionGainEnergy:        "GAIN_ENERGY",
	ActionLoseEnergy:        "LOSE_ENERGY",
	ActionDrawCards:         "DRAW_CARDS",
	ActionDiscardCard:       "DISCARD_CARD",
	ActionGainVictoryPoints: "GAIN_VICTORY_POINTS",
	ActionApplyStatus:       "APPLY_STATUS",
}

func (a ActionKind) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}
