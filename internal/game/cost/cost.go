// Package cost validates and plans payment of structured card costs against
// a player's ready board cards, with the saprotroph detritus credit.
package cost

import (
	"fmt"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

// Candidate is a ready, non-HOME board card owned by the paying player.
type Candidate struct {
	InstanceID string
	Category   cards.TrophicCategory
	Level      cards.TrophicLevel
}

// DetritusCredit describes the detritus marker at the target cell when a
// saprotroph is being played onto it. The marker pays one unit of a matching
// requirement before any ready card is exhausted.
type DetritusCredit struct {
	Category cards.TrophicCategory
	Level    cards.TrophicLevel
}

// PaymentPlan lists the candidate cards payment will exhaust. Consuming the
// detritus marker itself is a placement concern, not part of the plan: the
// credit only reduces how many ready cards the plan needs.
type PaymentPlan struct {
	ExhaustIDs []string
}

// PaymentResult represents the result of a payment attempt.
type PaymentResult struct {
	Success bool
	Plan    *PaymentPlan
	Reason  string
}

func failure(format string, args ...interface{}) *PaymentResult {
	return &PaymentResult{Success: false, Reason: fmt.Sprintf(format, args...)}
}

// CalculatePayment calculates a payment plan for a structured cost. When
// explicit is non-empty the player has chosen the paying cards and each must
// match an unsatisfied requirement; otherwise candidates are auto-selected
// in order. The plan does not mutate anything; the engine applies it.
func CalculatePayment(reqs []cards.CostRequirement, candidates []Candidate, detritus *DetritusCredit, explicit []string) *PaymentResult {
	if len(reqs) == 0 {
		return &PaymentResult{Success: true, Plan: &PaymentPlan{}}
	}

	// Remaining units per requirement.
	remaining := make([]int, len(reqs))
	total := 0
	for i, req := range reqs {
		remaining[i] = req.Count
		total += req.Count
	}

	plan := &PaymentPlan{}

	if detritus != nil {
		for i, req := range reqs {
			if remaining[i] > 0 && req.Matches(detritus.Category, detritus.Level) {
				remaining[i]--
				total--
				break
			}
		}
	}

	if len(explicit) > 0 {
		return payExplicit(reqs, remaining, total, candidates, explicit, plan)
	}
	return payGreedy(reqs, remaining, total, candidates, plan)
}

// payGreedy selects candidates in order for each requirement.
func payGreedy(reqs []cards.CostRequirement, remaining []int, total int, candidates []Candidate, plan *PaymentPlan) *PaymentResult {
	used := make(map[string]bool, len(candidates))
	for i, req := range reqs {
		for _, c := range candidates {
			if remaining[i] == 0 {
				break
			}
			if used[c.InstanceID] || !req.Matches(c.Category, c.Level) {
				continue
			}
			used[c.InstanceID] = true
			plan.ExhaustIDs = append(plan.ExhaustIDs, c.InstanceID)
			remaining[i]--
			total--
		}
		if remaining[i] > 0 {
			return failure("insufficient ready cards: requirement %s needs %d more", describeRequirement(req), remaining[i])
		}
	}
	return &PaymentResult{Success: true, Plan: plan}
}

// payExplicit validates a player-chosen payment set against the
// requirements.
func payExplicit(reqs []cards.CostRequirement, remaining []int, total int, candidates []Candidate, explicit []string, plan *PaymentPlan) *PaymentResult {
	byID := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.InstanceID] = c
	}

	used := make(map[string]bool, len(explicit))
	for _, id := range explicit {
		c, ok := byID[id]
		if !ok {
			return failure("card %s is not a ready card you control", id)
		}
		if used[id] {
			return failure("card %s selected twice for payment", id)
		}
		matched := false
		for i, req := range reqs {
			if remaining[i] > 0 && req.Matches(c.Category, c.Level) {
				remaining[i]--
				total--
				matched = true
				break
			}
		}
		if !matched {
			return failure("card %s does not match any unpaid requirement", id)
		}
		used[id] = true
		plan.ExhaustIDs = append(plan.ExhaustIDs, id)
	}

	if total > 0 {
		return failure("insufficient payment: %d requirement units unpaid", total)
	}
	return &PaymentResult{Success: true, Plan: plan}
}

// Validate checks whether the cost could be paid without producing a plan.
func Validate(reqs []cards.CostRequirement, candidates []Candidate, detritus *DetritusCredit) *PaymentResult {
	return CalculatePayment(reqs, candidates, detritus, nil)
}

func describeRequirement(req cards.CostRequirement) string {
	switch {
	case req.Category != cards.CategoryNone && req.Level != cards.LevelNone:
		return fmt.Sprintf("%d %s/%s", req.Count, req.Category, req.Level)
	case req.Category != cards.CategoryNone:
		return fmt.Sprintf("%d %s", req.Count, req.Category)
	case req.Level != cards.LevelNone:
		return fmt.Sprintf("%d %s", req.Count, req.Level)
	}
	return fmt.Sprintf("%d ready cards", req.Count)
}
