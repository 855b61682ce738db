package abstraction

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdem-cfr/poker"
)

// DefaultEquitySamples is the postflop Monte Carlo sample count spec.md
// §4.2 names as the configurable default.
const DefaultEquitySamples = 1000

// EquityResult is the outcome of a Monte Carlo equity simulation against a
// single uniformly random opposing hand, ported from the teacher's
// analysis.EquityResult for the heads-up (single-opponent) case this
// solver targets.
type EquityResult struct {
	Wins, Ties, Samples int
}

// Equity returns (wins + ties/2) / samples, per spec.md §4.2.
func (r EquityResult) Equity() float64 {
	if r.Samples == 0 {
		return 0
	}
	return (float64(r.Wins) + float64(r.Ties)/2) / float64(r.Samples)
}

// CalculateEquity estimates hole's equity against one uniformly random
// opposing hand, with a uniformly random runout of however many board cards
// are missing. Dead cards (hole ∪ board) are excluded from both the
// opponent's hole cards and the runout, per spec.md §4.2's correctness
// invariant. board may hold 0, 3, 4, or 5 cards.
func CalculateEquity(hole, board poker.Hand, samples int, rng *rand.Rand) (EquityResult, error) {
	if hole.CountCards() != 2 {
		return EquityResult{}, fmt.Errorf("%w: hole must have exactly 2 cards, got %d", poker.ErrInvalidInput, hole.CountCards())
	}
	boardCount := board.CountCards()
	if boardCount != 0 && boardCount != 3 && boardCount != 4 && boardCount != 5 {
		return EquityResult{}, fmt.Errorf("%w: board must have 0, 3, 4, or 5 cards, got %d", poker.ErrInvalidInput, boardCount)
	}
	if rng == nil {
		return EquityResult{}, fmt.Errorf("%w: CalculateEquity requires a non-nil rng", poker.ErrInvalidInput)
	}

	dead := hole | board
	needed := 5 - boardCount

	var wins, ties int
	for i := 0; i < samples; i++ {
		deck := poker.NewDeckExcluding(rng, dead)

		oppCards, err := deck.Deal(2)
		if err != nil {
			return EquityResult{}, err
		}
		oppHole := poker.NewHand(oppCards...)

		runoutCards, err := deck.Deal(needed)
		if err != nil {
			return EquityResult{}, err
		}
		finalBoard := board
		for _, c := range runoutCards {
			finalBoard.AddCard(c)
		}

		heroResult, err := poker.Evaluate7(hole | finalBoard)
		if err != nil {
			return EquityResult{}, err
		}
		oppResult, err := poker.Evaluate7(oppHole | finalBoard)
		if err != nil {
			return EquityResult{}, err
		}

		switch {
		case heroResult.Rank > oppResult.Rank:
			wins++
		case heroResult.Rank == oppResult.Rank:
			ties++
		}
	}

	return EquityResult{Wins: wins, Ties: ties, Samples: samples}, nil
}

// PostflopBucket buckets (hole, board) by Monte Carlo equity into
// [0, numBuckets), per spec.md §4.2: bucket = min(floor(equity *
// numBuckets), numBuckets - 1).
func PostflopBucket(hole, board poker.Hand, numBuckets, samples int, rng *rand.Rand) (int, error) {
	result, err := CalculateEquity(hole, board, samples, rng)
	if err != nil {
		return 0, err
	}
	return equityToBucket(result, numBuckets), nil
}

// CalculateEquityVsRange estimates hole's equity the same way CalculateEquity
// does, except the opponent's hole cards are drawn from opponentRange's
// weighted combinations instead of uniformly from the full deck — the
// range-constrained refinement Config.OpponentRange opts into. Samples whose
// drawn combination collides with a dead card are skipped rather than
// retried indefinitely, so the returned Samples count may be below the
// requested samples if opponentRange is small relative to dead cards.
func CalculateEquityVsRange(hole, board poker.Hand, opponentRange *Range, samples int, rng *rand.Rand) (EquityResult, error) {
	if hole.CountCards() != 2 {
		return EquityResult{}, fmt.Errorf("%w: hole must have exactly 2 cards, got %d", poker.ErrInvalidInput, hole.CountCards())
	}
	if opponentRange == nil || opponentRange.Size() == 0 {
		return EquityResult{}, fmt.Errorf("%w: opponent range must be non-empty", poker.ErrInvalidInput)
	}
	boardCount := board.CountCards()
	if boardCount != 0 && boardCount != 3 && boardCount != 4 && boardCount != 5 {
		return EquityResult{}, fmt.Errorf("%w: board must have 0, 3, 4, or 5 cards, got %d", poker.ErrInvalidInput, boardCount)
	}
	if rng == nil {
		return EquityResult{}, fmt.Errorf("%w: CalculateEquityVsRange requires a non-nil rng", poker.ErrInvalidInput)
	}

	dead := hole | board
	candidates := opponentRange.Hands()
	needed := 5 - boardCount

	var wins, ties, drawn int
	for i := 0; i < samples; i++ {
		oppHole, ok := sampleDisjointHand(candidates, dead, rng)
		if !ok {
			continue
		}

		deck := poker.NewDeckExcluding(rng, dead|oppHole)
		runoutCards, err := deck.Deal(needed)
		if err != nil {
			return EquityResult{}, err
		}
		finalBoard := board
		for _, c := range runoutCards {
			finalBoard.AddCard(c)
		}

		heroResult, err := poker.Evaluate7(hole | finalBoard)
		if err != nil {
			return EquityResult{}, err
		}
		oppResult, err := poker.Evaluate7(oppHole | finalBoard)
		if err != nil {
			return EquityResult{}, err
		}

		switch {
		case heroResult.Rank > oppResult.Rank:
			wins++
		case heroResult.Rank == oppResult.Rank:
			ties++
		}
		drawn++
	}

	return EquityResult{Wins: wins, Ties: ties, Samples: drawn}, nil
}

// sampleDisjointHand picks a uniformly random candidate hand disjoint from
// dead, retrying up to len(candidates) times before giving up.
func sampleDisjointHand(candidates []poker.Hand, dead poker.Hand, rng *rand.Rand) (poker.Hand, bool) {
	n := len(candidates)
	for attempt := 0; attempt < n; attempt++ {
		h := candidates[rng.Intn(n)]
		if h&dead == 0 {
			return h, true
		}
	}
	return 0, false
}

// PostflopBucketVsRange is PostflopBucket's range-constrained counterpart,
// used by Bucket when Config.OpponentRange is set.
func PostflopBucketVsRange(hole, board poker.Hand, opponentRange *Range, numBuckets, samples int, rng *rand.Rand) (int, error) {
	result, err := CalculateEquityVsRange(hole, board, opponentRange, samples, rng)
	if err != nil {
		return 0, err
	}
	return equityToBucket(result, numBuckets), nil
}

func equityToBucket(result EquityResult, numBuckets int) int {
	bucket := int(result.Equity() * float64(numBuckets))
	if bucket >= numBuckets {
		bucket = numBuckets - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	return bucket
}
