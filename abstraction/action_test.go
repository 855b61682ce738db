package abstraction

import (
	"math/rand"
	"testing"

	"github.com/lox/holdem-cfr/game"
)

func TestLegalActionsExactlyOneOfCheckFold(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s, err := game.NewHand(rng, 2, 200)
	if err != nil {
		t.Fatalf("NewHand: %v", err)
	}

	actions, err := LegalActions(s, DefaultActionConfig())
	if err != nil {
		t.Fatalf("LegalActions: %v", err)
	}

	hasCheck, hasFold := false, false
	for _, a := range actions {
		switch a.Kind {
		case game.Check:
			hasCheck = true
		case game.Fold:
			hasFold = true
		}
	}
	if hasCheck == hasFold {
		t.Errorf("expected exactly one of Check/Fold, check=%v fold=%v", hasCheck, hasFold)
	}
}

func TestLegalActionsNoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	s, err := game.NewHand(rng, 2, 200)
	if err != nil {
		t.Fatalf("NewHand: %v", err)
	}
	actions, err := LegalActions(s, DefaultActionConfig())
	if err != nil {
		t.Fatalf("LegalActions: %v", err)
	}

	seen := make(map[game.Action]bool)
	for _, a := range actions {
		if seen[a] {
			t.Fatalf("duplicate abstract action %v", a)
		}
		seen[a] = true
	}
}

func TestSnapToAbstractPassesThroughSimpleActions(t *testing.T) {
	legal := []game.Action{{Kind: game.Fold}, {Kind: game.Check}}
	for _, a := range []game.Action{{Kind: game.Fold}, {Kind: game.Check}} {
		got, err := SnapToAbstract(a, legal)
		if err != nil {
			t.Fatalf("SnapToAbstract(%v): %v", a, err)
		}
		if got != a {
			t.Errorf("SnapToAbstract(%v) = %v, want unchanged", a, got)
		}
	}
}

func TestSnapToAbstractPicksNearestAmount(t *testing.T) {
	legal := []game.Action{
		{Kind: game.Bet, Amount: 5},
		{Kind: game.Bet, Amount: 20},
	}
	got, err := SnapToAbstract(game.Action{Kind: game.Bet, Amount: 7}, legal)
	if err != nil {
		t.Fatalf("SnapToAbstract: %v", err)
	}
	if got.Amount != 5 {
		t.Errorf("snapped amount = %d, want 5", got.Amount)
	}
}

func TestSnapToAbstractTiesBreakSmaller(t *testing.T) {
	legal := []game.Action{
		{Kind: game.Bet, Amount: 5},
		{Kind: game.Bet, Amount: 15},
	}
	got, err := SnapToAbstract(game.Action{Kind: game.Bet, Amount: 10}, legal)
	if err != nil {
		t.Fatalf("SnapToAbstract: %v", err)
	}
	if got.Amount != 5 {
		t.Errorf("tie should break toward smaller amount, got %d", got.Amount)
	}
}
