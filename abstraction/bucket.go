package abstraction

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdem-cfr/game"
	"github.com/lox/holdem-cfr/poker"
)

// Config holds the bucket counts and sampling parameters the solver needs
// to turn a game state into an infoset bucket (spec.md §4.2).
type Config struct {
	PreflopBuckets  int
	PostflopBuckets int
	EquitySamples   int

	// OpponentRange, when set, constrains postflop equity sampling to draw
	// the opponent's hole cards from this range instead of uniformly from
	// the full deck — the range-constrained opponent-modeling refinement.
	OpponentRange *Range

	// RefineTexture, when set, folds the board's wetness into the postflop
	// equity bucket via RefineBucketByTexture.
	RefineTexture bool
}

// DefaultConfig matches the defaults spec.md §4.2 names: the full 169-entry
// preflop table and 1000 Monte Carlo samples postflop.
func DefaultConfig() Config {
	return Config{
		PreflopBuckets:  NumPreflopClasses,
		PostflopBuckets: 50,
		EquitySamples:   DefaultEquitySamples,
	}
}

// Bucket maps an actor's hole cards plus the board into [0, B) for the
// current street: the fixed preflop table before the flop, Monte Carlo
// equity buckets afterward. Dead cards for the equity sampler are exactly
// hole ∪ board — never the opponent's hand, per spec.md §6's "known dead
// cards" rule.
func Bucket(hole, board poker.Hand, street game.Street, cfg Config, rng *rand.Rand) (int, error) {
	if street == game.Preflop {
		return PreflopBucket(hole, cfg.PreflopBuckets)
	}
	if rng == nil {
		return 0, fmt.Errorf("%w: postflop bucketing requires a non-nil rng", poker.ErrInvalidInput)
	}

	var (
		bucket int
		err    error
	)
	if cfg.OpponentRange != nil {
		bucket, err = PostflopBucketVsRange(hole, board, cfg.OpponentRange, cfg.PostflopBuckets, cfg.EquitySamples, rng)
	} else {
		bucket, err = PostflopBucket(hole, board, cfg.PostflopBuckets, cfg.EquitySamples, rng)
	}
	if err != nil {
		return 0, err
	}

	if cfg.RefineTexture {
		bucket = RefineBucketByTexture(bucket, board)
		if bucket >= cfg.PostflopBuckets {
			bucket = cfg.PostflopBuckets - 1
		}
	}
	return bucket, nil
}

// RefineBucketByTexture folds the board's wetness into an existing
// equity-based bucket, giving the solver a finer-grained key on
// coordinated boards without changing the base equity computation. Called
// from Bucket when Config.RefineTexture opts in.
func RefineBucketByTexture(equityBucket int, board poker.Hand) int {
	return equityBucket*4 + int(AnalyzeBoardTexture(board))
}
