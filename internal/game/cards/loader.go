package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// dataFile is the on-disk card data layout. Keyword ids are JSON object keys
// and therefore strings.
type dataFile struct {
	Keywords  map[string]string `json:"keywords"`
	Abilities []abilityData     `json:"abilities"`
	Cards     []cardData        `json:"cards"`
}

type cardData struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	NameKey       string       `json:"nameKey"`
	Level         int          `json:"level"`
	Category      int          `json:"category"`
	Domain        int          `json:"domain"`
	Cost          []costData   `json:"cost"`
	Keywords      []int        `json:"keywords"`
	PreferredDiet []int        `json:"preferredDiet"`
	AbilityIDs    []int        `json:"abilityIds"`
	VictoryPoints int          `json:"victoryPoints"`
}

type costData struct {
	Count    int `json:"count"`
	Category int `json:"category"`
	Level    int `json:"level"`
}

type abilityData struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Trigger    int          `json:"trigger"`
	EnergyCost int          `json:"energyCost"`
	Effects    []effectData `json:"effects"`
}

type effectData struct {
	Selector int          `json:"selector"`
	Filters  []filterData `json:"filters"`
	Action   int          `json:"action"`
	Amount   int          `json:"amount"`
	Card     int          `json:"card"`
	Status   string       `json:"status"`
	Duration int          `json:"duration"`
}

type filterData struct {
	Kind     int `json:"kind"`
	Keyword  int `json:"keyword"`
	Category int `json:"category"`
	Level    int `json:"level"`
}

// LoadFile reads a card data file and builds a validated registry.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card data %s: %w", path, err)
	}
	return LoadBytes(raw)
}

// LoadBytes builds a validated registry from raw card data JSON.
func LoadBytes(raw []byte) (*Registry, error) {
	var file dataFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse card data: %w", err)
	}

	keywords := make(map[int]string, len(file.Keywords))
	for key, name := range file.Keywords {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid keyword id %q: %w", key, err)
		}
		keywords[id] = name
	}

	abilities := make([]AbilityDefinition, len(file.Abilities))
	for i, a := range file.Abilities {
		effects := make([]Effect, len(a.Effects))
		for j, eff := range a.Effects {
			filters := make([]Filter, len(eff.Filters))
			for k, f := range eff.Filters {
				filters[k] = Filter{
					Kind:     FilterKind(f.Kind),
					Keyword:  f.Keyword,
					Category: TrophicCategory(f.Category),
					Level:    TrophicLevel(f.Level),
				}
			}
			effects[j] = Effect{
				Selector: SelectorKind(eff.Selector),
				Filters:  filters,
				Action:   ActionKind(eff.Action),
				Amount:   eff.Amount,
				Card:     eff.Card,
				Status:   eff.Status,
				Duration: eff.Duration,
			}
		}
		abilities[i] = AbilityDefinition{
			ID:         a.ID,
			Name:       a.Name,
			Trigger:    TriggerKind(a.Trigger),
			EnergyCost: a.EnergyCost,
			Effects:    effects,
		}
	}

	defs := make([]CardDefinition, len(file.Cards))
	for i, c := range file.Cards {
		cost := make([]CostRequirement, len(c.Cost))
		for j, req := range c.Cost {
			cost[j] = CostRequirement{
				Count:    req.Count,
				Category: TrophicCategory(req.Category),
				Level:    TrophicLevel(req.Level),
			}
		}
		defs[i] = CardDefinition{
			ID:            c.ID,
			Name:          c.Name,
			NameKey:       c.NameKey,
			Level:         TrophicLevel(c.Level),
			Category:      TrophicCategory(c.Category),
			Domain:        Domain(c.Domain),
			Cost:          cost,
			Keywords:      c.Keywords,
			PreferredDiet: c.PreferredDiet,
			AbilityIDs:    c.AbilityIDs,
			VictoryPoints: c.VictoryPoints,
		}
	}

	return NewRegistry(defs, abilities, keywords)
}
