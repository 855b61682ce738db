package poker

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewDeckPanicsOnNilRNG(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil rng")
		}
	}()
	NewDeck(nil)
}

func TestDeckDealsWithoutRepeats(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDeck(rng)

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		c, err := d.DealOne()
		if err != nil {
			t.Fatalf("DealOne: %v", err)
		}
		if seen[c] {
			t.Fatalf("card %s dealt twice", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Errorf("dealt %d distinct cards, want 52", len(seen))
	}
}

func TestDeckExhaustionReturnsErrInsufficientCards(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDeck(rng)
	if _, err := d.Deal(52); err != nil {
		t.Fatalf("Deal(52): %v", err)
	}
	if _, err := d.DealOne(); !errors.Is(err, ErrInsufficientCards) {
		t.Errorf("got %v, want ErrInsufficientCards", err)
	}
}

func TestNewDeckExcludingOmitsDeadCards(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dead, err := ParseHand("As Kh")
	if err != nil {
		t.Fatalf("ParseHand: %v", err)
	}
	d := NewDeckExcluding(rng, dead)
	if d.CardsRemaining() != 50 {
		t.Fatalf("CardsRemaining() = %d, want 50", d.CardsRemaining())
	}

	cards, err := d.Deal(50)
	if err != nil {
		t.Fatalf("Deal(50): %v", err)
	}
	for _, c := range cards {
		if dead.HasCard(c) {
			t.Errorf("dealt excluded card %s", c)
		}
	}
}

func TestDeckExcludeRemovesUndealtCards(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := NewDeck(rng)
	dealt, err := d.Deal(2)
	if err != nil {
		t.Fatalf("Deal(2): %v", err)
	}

	var dead Hand
	if _, err := d.Deal(1); err != nil {
		t.Fatalf("Deal(1): %v", err)
	}
	excluded := d.Remaining()[0]
	dead.AddCard(excluded)
	d.Exclude(dead)

	if d.CardsRemaining() != 52-len(dealt)-1-1 {
		t.Errorf("CardsRemaining() = %d, want %d", d.CardsRemaining(), 52-len(dealt)-1-1)
	}
	left := d.CardsRemaining()
	for i := 0; i < left; i++ {
		c, err := d.DealOne()
		if err != nil {
			t.Fatalf("DealOne: %v", err)
		}
		if c == excluded {
			t.Error("excluded card was still dealt")
		}
	}
}

func TestDeckResetReshufflesFullDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	d := NewDeck(rng)
	if _, err := d.Deal(10); err != nil {
		t.Fatalf("Deal(10): %v", err)
	}
	d.Reset()
	if d.CardsRemaining() != 52 {
		t.Errorf("CardsRemaining() after Reset = %d, want 52", d.CardsRemaining())
	}
}
