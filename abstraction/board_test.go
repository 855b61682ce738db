package abstraction

import (
	"math/rand"
	"testing"

	"github.com/lox/holdem-cfr/game"
	"github.com/lox/holdem-cfr/poker"
)

func TestAnalyzeBoardTextureDryVsVeryWet(t *testing.T) {
	dry := poker.NewHand(poker.MustParseCard("2h"), poker.MustParseCard("7c"), poker.MustParseCard("Ks"))
	if got := AnalyzeBoardTexture(dry); got != Dry {
		t.Errorf("rainbow disconnected board texture = %v, want Dry", got)
	}

	wet := poker.NewHand(poker.MustParseCard("9h"), poker.MustParseCard("Th"), poker.MustParseCard("Jh"))
	if got := AnalyzeBoardTexture(wet); got < Wet {
		t.Errorf("monotone connected board texture = %v, want >= Wet", got)
	}
}

func TestRefineBucketByTextureVariesWithWetness(t *testing.T) {
	dry := poker.NewHand(poker.MustParseCard("2h"), poker.MustParseCard("7c"), poker.MustParseCard("Ks"))
	wet := poker.NewHand(poker.MustParseCard("9h"), poker.MustParseCard("Th"), poker.MustParseCard("Jh"))

	if RefineBucketByTexture(3, dry) == RefineBucketByTexture(3, wet) {
		t.Error("expected texture refinement to distinguish a dry board from a very wet one")
	}
}

func TestBucketRefineTextureStaysWithinConfiguredRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	hole := poker.NewHand(poker.MustParseCard("Ah"), poker.MustParseCard("Kh"))
	board := poker.NewHand(poker.MustParseCard("9h"), poker.MustParseCard("Th"), poker.MustParseCard("Jh"))

	cfg := Config{PreflopBuckets: NumPreflopClasses, PostflopBuckets: 12, EquitySamples: 100, RefineTexture: true}
	bucket, err := Bucket(hole, board, game.Flop, cfg, rng)
	if err != nil {
		t.Fatalf("Bucket: %v", err)
	}
	if bucket < 0 || bucket >= cfg.PostflopBuckets {
		t.Errorf("bucket %d out of [0,%d) after texture refinement", bucket, cfg.PostflopBuckets)
	}
}
