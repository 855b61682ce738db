package poker

import (
	"fmt"
	"math/bits"
	"sort"
)

// Category is one of the nine poker hand categories, ordered weakest to
// strongest.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	}
	return "Unknown"
}

// categoryRange gives the inclusive [low, high] absolute-rank bounds for a
// category, fixed by spec.md §3.
var categoryRange = map[Category][2]int{
	HighCard:      {1, 1277},
	OnePair:       {1278, 4137},
	TwoPair:       {4138, 4995},
	ThreeOfAKind:  {4996, 5853},
	Straight:      {5854, 5863},
	Flush:         {5864, 7140},
	FullHouse:     {7141, 7296},
	FourOfAKind:   {7297, 7452},
	StraightFlush: {7453, 7462},
}

var categoryOrder = []Category{HighCard, OnePair, TwoPair, ThreeOfAKind, Straight, Flush, FullHouse, FourOfAKind, StraightFlush}

// CategoryOf returns the category a given absolute rank falls in. Panics if
// rank is outside [1, 7462]; callers should only ever see ranks produced by
// Evaluate5/Evaluate7.
func CategoryOf(rank int) Category {
	for _, cat := range categoryOrder {
		r := categoryRange[cat]
		if rank >= r[0] && rank <= r[1] {
			return cat
		}
	}
	panic(fmt.Sprintf("poker: absolute rank %d outside [1,7462]", rank))
}

// HandResult is the outcome of evaluating a 5-to-7 card hand: an absolute
// rank in [1, 7462] that totally orders all possible 5-card hands, and the
// category it falls in (spec.md §3).
type HandResult struct {
	Rank     int
	Category Category
}

func (r HandResult) String() string {
	return r.Category.String()
}

// Compare returns -1, 0, or 1 as a compares below, equal to, or above b.
func (a HandResult) Compare(b HandResult) int {
	switch {
	case a.Rank < b.Rank:
		return -1
	case a.Rank > b.Rank:
		return 1
	default:
		return 0
	}
}

// straightHighRanks lists the high-card rank (0..12) of each of the 10
// straights, ascending by strength: the wheel (A2345, high card Five) is
// weakest, Broadway (TJQKA) is strongest.
var straightHighRanks = []int{int(Five), int(Six), int(Seven), int(Eight), int(Nine), int(Ten), int(Jack), int(Queen), int(King), int(Ace)}

// straightAscendingRanks returns the 5 real card ranks (ascending, 0..12)
// making up the straight with the given high card. The wheel is {2,3,4,5,A}
// with the ace counted at its real bit position (12), not as a low card.
func straightAscendingRanks(high int) []int {
	if high == int(Five) {
		return []int{int(Two), int(Three), int(Four), int(Five), int(Ace)}
	}
	asc := make([]int, 5)
	for i := 0; i < 5; i++ {
		asc[i] = high - 4 + i
	}
	return asc
}

// straightHighFromRankMask returns the high-card rank (0..12) of the best
// straight present in mask (which must already include the ace-low bit 13
// set by Hand.RankMask when an ace is present), or -1 if there is none.
func straightHighFromRankMask(mask uint16) int {
	for i := len(straightHighRanks) - 1; i >= 0; i-- {
		high := straightHighRanks[i]
		var need uint16
		if high == int(Five) {
			need = 1<<Two | 1<<Three | 1<<Four | 1<<Five | 1<<NumRanks // wheel: ace as virtual low bit 13
		} else {
			for r := high - 4; r <= high; r++ {
				need |= 1 << uint(r)
			}
		}
		if mask&need == need {
			return high
		}
	}
	return -1
}

// rankCounts returns, for each rank 0..12, how many of the 4 suits hold it.
func rankCounts(h Hand) [NumRanks]int {
	var counts [NumRanks]int
	for suit := uint8(0); suit < 4; suit++ {
		mask := h.SuitMask(suit)
		for rank := 0; rank < NumRanks; rank++ {
			if mask&(1<<uint(rank)) != 0 {
				counts[rank]++
			}
		}
	}
	return counts
}

// descendingRanksWithCount returns all ranks (descending) whose multiplicity
// equals count.
func descendingRanksWithCount(counts [NumRanks]int, count int) []int {
	var ranks []int
	for r := NumRanks - 1; r >= 0; r-- {
		if counts[r] == count {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

// Evaluate5 evaluates exactly 5 cards.
func Evaluate5(hand Hand) (HandResult, error) {
	return evaluate(hand, 5)
}

// Evaluate7 evaluates 5, 6, or 7 cards, returning the best 5-card subhand's
// result (spec.md §4.1).
func Evaluate7(hand Hand) (HandResult, error) {
	n := hand.CountCards()
	if n < 5 || n > 7 {
		return HandResult{}, fmt.Errorf("%w: evaluator requires 5-7 cards, got %d", ErrInvalidInput, n)
	}
	if n == 5 {
		return evaluate(hand, 5)
	}

	cards := hand.Cards()
	best := HandResult{Rank: -1}
	var combo func(start int, chosen []Card)
	combo = func(start int, chosen []Card) {
		if len(chosen) == 5 {
			sub := NewHand(chosen...)
			res, err := evaluate(sub, 5)
			if err == nil && res.Rank > best.Rank {
				best = res
			}
			return
		}
		for i := start; i < len(cards); i++ {
			combo(i+1, append(chosen, cards[i]))
		}
	}
	combo(0, nil)
	return best, nil
}

func evaluate(hand Hand, expected int) (HandResult, error) {
	if hand.CountCards() != expected {
		return HandResult{}, fmt.Errorf("%w: expected exactly %d cards, got %d", ErrInvalidInput, expected, hand.CountCards())
	}

	counts := rankCounts(hand)
	rankMask := hand.RankMask()

	flushSuit := -1
	var flushMask uint16
	for suit := uint8(0); suit < 4; suit++ {
		m := hand.SuitMask(suit)
		if bits.OnesCount16(m) >= 5 {
			flushSuit = int(suit)
			flushMask = m
			break
		}
	}

	if flushSuit >= 0 {
		flushRankMaskWithWheel := flushMask
		if flushMask&(1<<Ace) != 0 {
			flushRankMaskWithWheel |= 1 << NumRanks
		}
		if high := straightHighFromRankMask(flushRankMaskWithWheel); high >= 0 {
			return encodeStraightLike(StraightFlush, high), nil
		}
	}

	quads := descendingRanksWithCount(counts, 4)
	trips := descendingRanksWithCount(counts, 3)
	pairs := descendingRanksWithCount(counts, 2)
	singles := descendingRanksWithCount(counts, 1)

	if len(quads) == 1 {
		kicker := topRankExcluding(singles, quads[0])
		return encodeFourOfAKind(quads[0], kicker), nil
	}

	if len(trips) == 1 && len(pairs) >= 1 {
		return encodeFullHouse(trips[0], pairs[0]), nil
	}

	if flushSuit >= 0 {
		ranks := topNRanksInMask(flushMask, 5)
		return encodeHighCardLike(Flush, ranks), nil
	}

	if high := straightHighFromRankMask(rankMask); high >= 0 {
		return encodeStraightLike(Straight, high), nil
	}

	if len(trips) == 1 {
		kickers := topNExcluding(append(append([]int{}, singles...), pairs...), trips[0], 2)
		return encodeThreeOfAKind(trips[0], kickers), nil
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		kicker := topRankExcluding(append(append([]int{}, singles...), pairs[2:]...), hi, lo)
		return encodeTwoPair(hi, lo, kicker), nil
	}

	if len(pairs) == 1 {
		kickers := topNExcluding(singles, pairs[0], 3)
		return encodeOnePair(pairs[0], kickers), nil
	}

	top5 := singles[:5]
	return encodeHighCardLike(HighCard, top5), nil
}

// topRankExcluding returns the highest rank present in candidates that is
// not itself one of excluded.
func topRankExcluding(candidates []int, excluded ...int) int {
	best := -1
	for _, r := range candidates {
		skip := false
		for _, e := range excluded {
			if e == r {
				skip = true
				break
			}
		}
		if !skip && r > best {
			best = r
		}
	}
	return best
}

// topNExcluding returns the top n ranks from candidates, descending, with
// excludeRank filtered out.
func topNExcluding(candidates []int, excludeRank int, n int) []int {
	filtered := make([]int, 0, len(candidates))
	for _, r := range candidates {
		if r != excludeRank {
			filtered = append(filtered, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(filtered)))
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

// topNRanksInMask returns the n highest ranks set in mask, descending.
func topNRanksInMask(mask uint16, n int) []int {
	var ranks []int
	for r := NumRanks - 1; r >= 0 && len(ranks) < n; r-- {
		if mask&(1<<uint(r)) != 0 {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

// --- combinatorial encoders: map a category's distinguishing rank tuple to
// an absolute rank within its fixed category range (spec.md §4.1). Each
// uses the colex ranking in combinatorics.go so that a strictly stronger
// tuple always yields a strictly greater absolute rank (spec.md §8
// property 5). ---

func encodeStraightLike(cat Category, high int) HandResult {
	idx := 0
	for i, h := range straightHighRanks {
		if h == high {
			idx = i
			break
		}
	}
	r := categoryRange[cat]
	return HandResult{Rank: r[0] + idx, Category: cat}
}

// encodeHighCardLike handles both HighCard and Flush: both select 5 ranks
// from 13 with no pairing constraint, and both exclude the 10 straight
// patterns (those are reserved for Straight/StraightFlush).
func encodeHighCardLike(cat Category, ranksDesc []int) HandResult {
	asc := make([]int, len(ranksDesc))
	for i, r := range ranksDesc {
		asc[len(ranksDesc)-1-i] = r
	}
	idx := colexRank(asc)

	removed := 0
	for _, high := range straightHighRanks {
		sIdx := colexRank(straightAscendingRanks(high))
		if sIdx < idx {
			removed++
		}
	}

	r := categoryRange[cat]
	return HandResult{Rank: r[0] + idx - removed, Category: cat}
}

func encodeOnePair(pairRank int, kickers []int) HandResult {
	compressed := make([]int, len(kickers))
	for i, k := range kickers {
		compressed[len(kickers)-1-i] = compressExcluding(k, pairRank)
	}
	kickerIdx := colexRank(compressed)
	idx := pairRank*choose(12, 3) + kickerIdx
	r := categoryRange[OnePair]
	return HandResult{Rank: r[0] + idx, Category: OnePair}
}

func encodeTwoPair(hi, lo, kicker int) HandResult {
	pairIdx := colexRank([]int{lo, hi})
	kickerIdx := compressExcluding(kicker, lo, hi)
	idx := pairIdx*11 + kickerIdx
	r := categoryRange[TwoPair]
	return HandResult{Rank: r[0] + idx, Category: TwoPair}
}

func encodeThreeOfAKind(tripRank int, kickers []int) HandResult {
	compressed := make([]int, len(kickers))
	for i, k := range kickers {
		compressed[len(kickers)-1-i] = compressExcluding(k, tripRank)
	}
	kickerIdx := colexRank(compressed)
	idx := tripRank*choose(12, 2) + kickerIdx
	r := categoryRange[ThreeOfAKind]
	return HandResult{Rank: r[0] + idx, Category: ThreeOfAKind}
}

func encodeFullHouse(tripRank, pairRank int) HandResult {
	idx := tripRank*12 + compressExcluding(pairRank, tripRank)
	r := categoryRange[FullHouse]
	return HandResult{Rank: r[0] + idx, Category: FullHouse}
}

func encodeFourOfAKind(quadRank, kicker int) HandResult {
	idx := quadRank*12 + compressExcluding(kicker, quadRank)
	r := categoryRange[FourOfAKind]
	return HandResult{Rank: r[0] + idx, Category: FourOfAKind}
}
