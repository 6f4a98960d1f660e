package cost

import (
	"testing"

	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

func candidate(id string, category cards.TrophicCategory, level cards.TrophicLevel) Candidate {
	return Candidate{InstanceID: id, Category: category, Level: level}
}

func TestCalculatePayment(t *testing.T) {
	ready := []Candidate{
		candidate("algae-1", cards.CategoryPhotoautotroph, cards.LevelProducer),
		candidate("algae-2", cards.CategoryPhotoautotroph, cards.LevelProducer),
		candidate("snail-1", cards.CategoryHerbivore, cards.LevelPrimary),
		candidate("perch-1", cards.CategoryCarnivore, cards.LevelSecondary),
	}

	tests := []struct {
		name       string
		reqs       []cards.CostRequirement
		candidates []Candidate
		success    bool
		exhausts   int
	}{
		{"free card", nil, ready, true, 0},
		{"one producer", []cards.CostRequirement{{Count: 1, Category: cards.CategoryPhotoautotroph}}, ready, true, 1},
		{"two producers", []cards.CostRequirement{{Count: 2, Category: cards.CategoryPhotoautotroph}}, ready, true, 2},
		{"three producers short", []cards.CostRequirement{{Count: 3, Category: cards.CategoryPhotoautotroph}}, ready, false, 0},
		{"one carnivore", []cards.CostRequirement{{Count: 1, Category: cards.CategoryCarnivore}}, ready, true, 1},
		{"carnivore missing", []cards.CostRequirement{{Count: 1, Category: cards.CategoryCarnivore}}, ready[:3], false, 0},
		{"level filter", []cards.CostRequirement{{Count: 1, Level: cards.LevelPrimary}}, ready, true, 1},
		{"any two cards", []cards.CostRequirement{{Count: 2}}, ready, true, 2},
		{"mixed requirements", []cards.CostRequirement{{Count: 1, Category: cards.CategoryPhotoautotroph}, {Count: 1, Category: cards.CategoryHerbivore}}, ready, true, 2},
		{"no candidates", []cards.CostRequirement{{Count: 1}}, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePayment(tt.reqs, tt.candidates, nil, nil)
			if result.Success != tt.success {
				t.Fatalf("expected success=%v, got %v (%s)", tt.success, result.Success, result.Reason)
			}
			if tt.success && len(result.Plan.ExhaustIDs) != tt.exhausts {
				t.Errorf("expected %d exhausted cards, got %d", tt.exhausts, len(result.Plan.ExhaustIDs))
			}
			if !tt.success && result.Reason == "" {
				t.Error("expected a failure reason")
			}
		})
	}
}

func TestCalculatePaymentNoDoubleSpend(t *testing.T) {
	// A single producer cannot pay both requirement lines.
	reqs := []cards.CostRequirement{
		{Count: 1, Category: cards.CategoryPhotoautotroph},
		{Count: 1, Level: cards.LevelProducer},
	}
	one := []Candidate{candidate("algae-1", cards.CategoryPhotoautotroph, cards.LevelProducer)}
	if result := CalculatePayment(reqs, one, nil, nil); result.Success {
		t.Fatal("expected payment to fail with a single candidate for two requirements")
	}

	two := append(one, candidate("algae-2", cards.CategoryPhotoautotroph, cards.LevelProducer))
	result := CalculatePayment(reqs, two, nil, nil)
	if !result.Success {
		t.Fatalf("expected payment to succeed with two candidates: %s", result.Reason)
	}
	if len(result.Plan.ExhaustIDs) != 2 {
		t.Errorf("expected both candidates exhausted, got %v", result.Plan.ExhaustIDs)
	}
}

func TestCalculatePaymentDetritusCredit(t *testing.T) {
	reqs := []cards.CostRequirement{{Count: 1, Category: cards.CategoryHerbivore}}
	detritus := &DetritusCredit{Category: cards.CategoryHerbivore, Level: cards.LevelPrimary}

	// The marker alone satisfies the requirement; no ready card is touched.
	result := CalculatePayment(reqs, nil, detritus, nil)
	if !result.Success {
		t.Fatalf("expected detritus credit to pay the cost: %s", result.Reason)
	}
	if len(result.Plan.ExhaustIDs) != 0 {
		t.Errorf("expected no ready cards exhausted, got %v", result.Plan.ExhaustIDs)
	}

	// A non-matching marker gives no credit.
	mismatched := &DetritusCredit{Category: cards.CategoryCarnivore, Level: cards.LevelSecondary}
	if result := CalculatePayment(reqs, nil, mismatched, nil); result.Success {
		t.Fatal("expected non-matching detritus to leave the cost unpaid")
	}

	// The credit covers one unit; the rest comes from ready cards.
	reqs = []cards.CostRequirement{{Count: 2, Category: cards.CategoryHerbivore}}
	ready := []Candidate{candidate("snail-1", cards.CategoryHerbivore, cards.LevelPrimary)}
	result = CalculatePayment(reqs, ready, detritus, nil)
	if !result.Success {
		t.Fatalf("expected detritus plus one ready card to pay: %s", result.Reason)
	}
	if len(result.Plan.ExhaustIDs) != 1 || result.Plan.ExhaustIDs[0] != "snail-1" {
		t.Errorf("expected snail-1 exhausted, got %v", result.Plan.ExhaustIDs)
	}
}

func TestCalculatePaymentExplicit(t *testing.T) {
	reqs := []cards.CostRequirement{{Count: 1, Category: cards.CategoryPhotoautotroph}}
	ready := []Candidate{
		candidate("algae-1", cards.CategoryPhotoautotroph, cards.LevelProducer),
		candidate("algae-2", cards.CategoryPhotoautotroph, cards.LevelProducer),
		candidate("snail-1", cards.CategoryHerbivore, cards.LevelPrimary),
	}

	// The player picks the second producer.
	result := CalculatePayment(reqs, ready, nil, []string{"algae-2"})
	if !result.Success {
		t.Fatalf("expected explicit payment to succeed: %s", result.Reason)
	}
	if len(result.Plan.ExhaustIDs) != 1 || result.Plan.ExhaustIDs[0] != "algae-2" {
		t.Errorf("expected algae-2 exhausted, got %v", result.Plan.ExhaustIDs)
	}

	// A chosen card that matches nothing fails.
	if result := CalculatePayment(reqs, ready, nil, []string{"snail-1"}); result.Success {
		t.Fatal("expected mismatched explicit payment to fail")
	}
	// Unknown instance fails.
	if result := CalculatePayment(reqs, ready, nil, []string{"ghost-1"}); result.Success {
		t.Fatal("expected unknown explicit payment to fail")
	}
	// Double selection fails.
	twoReqs := []cards.CostRequirement{{Count: 2, Category: cards.CategoryPhotoautotroph}}
	if result := CalculatePayment(twoReqs, ready, nil, []string{"algae-1", "algae-1"}); result.Success {
		t.Fatal("expected duplicate explicit payment to fail")
	}
	// Underpayment fails.
	if result := CalculatePayment(twoReqs, ready, nil, []string{"algae-1"}); result.Success {
		t.Fatal("expected underpayment to fail")
	}
}
