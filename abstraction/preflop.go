// Package abstraction implements the hand-bucketing and action-abstraction
// layer that collapses the full game tree into one small enough for CFR to
// solve: a 169-entry canonical preflop table, Monte Carlo postflop equity
// bucketing, board-texture refinement, and pot-fraction/BB-multiplier bet
// sizing (spec.md §4.2, §4.3).
package abstraction

import (
	"fmt"
	"sort"

	"github.com/lox/holdem-cfr/poker"
)

// NumPreflopClasses is the size of the canonical starting-hand table
// (spec.md §4.2): 13 pocket pairs + 78 suited + 78 offsuit combinations.
const NumPreflopClasses = 169

// canonicalHand identifies a starting-hand class by its two ranks (High >=
// Low) and whether the hole cards are suited. Pocket pairs have no suited
// variant.
type canonicalHand struct {
	High, Low uint8
	Suited    bool
}

// chenScore approximates starting-hand strength with the classic
// Chen-formula heuristic: face value of the high card (doubled for pairs),
// plus a suited bonus, minus a gap penalty, plus a small connector bonus.
// It is used only to derive the fixed 169-entry ordering once at init time,
// not at bucketing time, so the table itself stays data rather than a
// per-call computation.
func chenScore(h canonicalHand) float64 {
	faceValue := func(rank uint8) float64 {
		switch rank {
		case poker.Ace:
			return 10
		case poker.King:
			return 8
		case poker.Queen:
			return 7
		case poker.Jack:
			return 6
		default:
			return float64(rank+2) / 2
		}
	}

	if h.High == h.Low {
		score := faceValue(h.High) * 2
		if score < 5 {
			score = 5
		}
		return score
	}

	score := faceValue(h.High)
	if h.Suited {
		score += 2
	}

	gap := int(h.High) - int(h.Low) - 1
	switch {
	case gap == 0:
		// Connector, no penalty.
	case gap == 1:
		score -= 1
	case gap == 2:
		score -= 2
	case gap == 3:
		score -= 4
	default:
		score -= 5
	}
	if gap <= 1 && h.High < poker.Queen {
		score += 1
	}
	return score
}

// preflopOrder maps a canonicalHand to its rank (0 = strongest) in the
// fixed 169-entry table. Built once at init from chenScore so the ordering
// is deterministic data, not a live computation over card strength.
var preflopOrder map[canonicalHand]int

func init() {
	hands := make([]canonicalHand, 0, NumPreflopClasses)
	for high := int(poker.Ace); high >= int(poker.Two); high-- {
		for low := high; low >= int(poker.Two); low-- {
			h := canonicalHand{High: uint8(high), Low: uint8(low)}
			if high == low {
				hands = append(hands, h)
				continue
			}
			hands = append(hands, canonicalHand{High: uint8(high), Low: uint8(low), Suited: true})
			hands = append(hands, canonicalHand{High: uint8(high), Low: uint8(low), Suited: false})
		}
	}

	sort.SliceStable(hands, func(i, j int) bool {
		si, sj := chenScore(hands[i]), chenScore(hands[j])
		if si != sj {
			return si > sj
		}
		// Stable deterministic tiebreak: higher top card, then higher low
		// card, then suited first.
		if hands[i].High != hands[j].High {
			return hands[i].High > hands[j].High
		}
		if hands[i].Low != hands[j].Low {
			return hands[i].Low > hands[j].Low
		}
		return hands[i].Suited
	})

	preflopOrder = make(map[canonicalHand]int, len(hands))
	for i, h := range hands {
		preflopOrder[h] = i
	}
}

// CanonicalizeHole reduces a two-card hole hand to its canonical class:
// ranks sorted descending, tagged suited or offsuit.
func CanonicalizeHole(hole poker.Hand) (canonicalHand, error) {
	cards := hole.Cards()
	if len(cards) != 2 {
		return canonicalHand{}, fmt.Errorf("%w: hole hand must have exactly 2 cards, got %d", poker.ErrInvalidInput, len(cards))
	}
	a, b := cards[0], cards[1]
	high, low := a.Rank(), b.Rank()
	suited := a.Suit() == b.Suit()
	if low > high {
		high, low = low, high
	}
	return canonicalHand{High: high, Low: low, Suited: suited}, nil
}

// PreflopIndex returns the 0..168 index of hole's canonical class in the
// fixed strength ordering (0 = strongest, AA; 168 = weakest, 72o).
func PreflopIndex(hole poker.Hand) (int, error) {
	c, err := CanonicalizeHole(hole)
	if err != nil {
		return 0, err
	}
	idx, ok := preflopOrder[c]
	if !ok {
		return 0, fmt.Errorf("%w: no canonical class for hole hand", poker.ErrInvalidInput)
	}
	return idx, nil
}

// PreflopBucket maps hole's canonical class into [0, numBuckets) per
// spec.md §4.2: if numBuckets < 169, buckets are assigned by
// floor(index * numBuckets / 169); otherwise the index is used directly.
func PreflopBucket(hole poker.Hand, numBuckets int) (int, error) {
	if numBuckets <= 0 {
		return 0, fmt.Errorf("%w: numBuckets must be positive, got %d", poker.ErrInvalidInput, numBuckets)
	}
	idx, err := PreflopIndex(hole)
	if err != nil {
		return 0, err
	}
	if numBuckets >= NumPreflopClasses {
		return idx, nil
	}
	bucket := idx * numBuckets / NumPreflopClasses
	if bucket >= numBuckets {
		bucket = numBuckets - 1
	}
	return bucket, nil
}
