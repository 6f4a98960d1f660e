package cards

import "fmt"

// Registry holds the injected read-only data tables: card definitions,
// ability definitions and keyword names. It is built once at startup from
// externally loaded data and shared by every engine for the process
// lifetime; the engine never mutates it.
type Registry struct {
	cards     map[int]*CardDefinition
	abilities map[int]*AbilityDefinition
	keywords  map[int]string
}

// NewRegistry builds a registry from the loaded tables and validates the
// joint trophic level/category invariant of every card.
func NewRegistry(defs []CardDefinition, abilities []AbilityDefinition, keywords map[int]string) (*Registry, error) {
	r := &Registry{
		cards:     make(map[int]*CardDefinition, len(defs)),
		abilities: make(map[int]*AbilityDefinition, len(abilities)),
		keywords:  make(map[int]string, len(keywords)),
	}

	for i := range abilities {
		a := abilities[i]
		if _, exists := r.abilities[a.ID]; exists {
			return nil, fmt.Errorf("duplicate ability id %d", a.ID)
		}
		r.abilities[a.ID] = &a
	}
	for id, name := range keywords {
		r.keywords[id] = name
	}

	for i := range defs {
		d := defs[i]
		if _, exists := r.cards[d.ID]; exists {
			return nil, fmt.Errorf("duplicate card id %d", d.ID)
		}
		if err := checkConsistency(&d); err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", d.ID, d.Name, err)
		}
		for _, abilityID := range d.AbilityIDs {
			if _, ok := r.abilities[abilityID]; !ok {
				return nil, fmt.Errorf("card %d (%s): unknown ability id %d", d.ID, d.Name, abilityID)
			}
		}
		r.cards[d.ID] = &d
	}

	return r, nil
}

// checkConsistency enforces the invariant that a card's trophic level and
// category agree.
func checkConsistency(d *CardDefinition) error {
	switch d.Category {
	case CategoryPhotoautotroph, CategoryChemoautotroph:
		if d.Level != LevelProducer {
			return fmt.Errorf("%s requires trophic level %s, got %s", d.Category, LevelProducer, d.Level)
		}
	case CategorySaprotroph:
		if d.Level != LevelSaprotroph {
			return fmt.Errorf("%s requires trophic level %s, got %s", d.Category, LevelSaprotroph, d.Level)
		}
	case CategoryDetritivore:
		if d.Level != LevelDetritivore {
			return fmt.Errorf("%s requires trophic level %s, got %s", d.Category, LevelDetritivore, d.Level)
		}
	case CategoryHerbivore, CategoryCarnivore, CategoryOmnivore:
		if !d.Level.IsConsumer() {
			return fmt.Errorf("%s requires a consumer trophic level, got %s", d.Category, d.Level)
		}
	case CategoryParasite, CategoryMutualist:
		// Attachments carry the level of the chain they interact with; any
		// level is valid.
	default:
		return fmt.Errorf("unknown trophic category %s", d.Category)
	}
	return nil
}

// Card returns the card definition for the given id.
func (r *Registry) Card(id int) (*CardDefinition, bool) {
	d, ok := r.cards[id]
	return d, ok
}

// Ability returns the ability definition for the given id.
func (r *Registry) Ability(id int) (*AbilityDefinition, bool) {
	a, ok := r.abilities[id]
	return a, ok
}

// KeywordName returns the display name for a keyword id.
func (r *Registry) KeywordName(id int) (string, bool) {
	name, ok := r.keywords[id]
	return name, ok
}

// HasKeyword reports whether the card carries a keyword with the given name.
func (r *Registry) HasKeyword(d *CardDefinition, name string) bool {
	if d == nil {
		return false
	}
	for _, id := range d.Keywords {
		if r.keywords[id] == name {
			return true
		}
	}
	return false
}

// HasAbilityNamed reports whether the card carries an ability with the given
// name. Placement rules use this for the chemoautotroph special cases.
func (r *Registry) HasAbilityNamed(d *CardDefinition, name string) bool {
	if d == nil {
		return false
	}
	for _, id := range d.AbilityIDs {
		if a, ok := r.abilities[id]; ok && a.Name == name {
			return true
		}
	}
	return false
}

// CardCount returns the number of card definitions loaded.
func (r *Registry) CardCount() int {
	return len(r.cards)
}

// AllCards returns every card definition, in unspecified order.
func (r *Registry) AllCards() []*CardDefinition {
	out := make([]*CardDefinition, 0, len(r.cards))
	for _, d := range r.cards {
		out = append(out, d)
	}
	return out
}
