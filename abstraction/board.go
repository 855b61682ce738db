package abstraction

import (
	"math/bits"

	"github.com/lox/holdem-cfr/poker"
)

// BoardTexture grades how coordinated (dangerous to one-pair-type hands) a
// board is, from Dry to VeryWet. This refines the plain equity bucket with
// a signal the Monte Carlo sampler alone doesn't expose directly: two
// boards can produce similar average equity for a given hole while
// presenting very different ranges of opponent hands that beat it.
type BoardTexture int

const (
	Dry BoardTexture = iota
	SemiWet
	Wet
	VeryWet
)

func (bt BoardTexture) String() string {
	switch bt {
	case Dry:
		return "dry"
	case SemiWet:
		return "semi-wet"
	case Wet:
		return "wet"
	case VeryWet:
		return "very wet"
	default:
		return "unknown"
	}
}

// FlushInfo describes flush potential on a board.
type FlushInfo struct {
	MaxSuitCount int
	DominantSuit *uint8
	IsMonotone   bool
	IsRainbow    bool
}

// StraightInfo describes straight potential on a board.
type StraightInfo struct {
	ConnectedCards int
	Gaps           int
	HasAce         bool
	BroadwayCards  int
}

// AnalyzeBoardTexture scores a board's wetness from its flush, straight,
// pairing, and high-card signals.
func AnalyzeBoardTexture(board poker.Hand) BoardTexture {
	if board.CountCards() < 3 {
		return Dry
	}

	var wetness int

	flushInfo := AnalyzeFlushPotential(board)
	switch {
	case flushInfo.IsMonotone && board.CountCards() >= 3:
		wetness += 4
	case flushInfo.MaxSuitCount >= 4:
		wetness += 4
	case flushInfo.MaxSuitCount == 3:
		wetness += 3
	case flushInfo.MaxSuitCount == 2:
		wetness += 1
	}

	straightInfo := AnalyzeStraightPotential(board)
	switch {
	case straightInfo.ConnectedCards >= 4:
		wetness += 4
	case straightInfo.ConnectedCards == 3:
		wetness += 3
	case straightInfo.ConnectedCards == 2:
		wetness += 1
	}

	if countBoardPairs(board) >= 1 {
		wetness += 1
	}
	if countHighCards(board) >= 3 {
		wetness += 1
	}

	switch {
	case wetness <= 0:
		return Dry
	case wetness <= 3:
		return SemiWet
	case wetness <= 5:
		return Wet
	default:
		return VeryWet
	}
}

// AnalyzeFlushPotential reports the board's suit concentration.
func AnalyzeFlushPotential(board poker.Hand) FlushInfo {
	var suitCounts [4]int
	var suitMasks [4]uint16
	for suit := uint8(0); suit < 4; suit++ {
		mask := board.SuitMask(suit)
		suitCounts[suit] = bits.OnesCount16(mask)
		suitMasks[suit] = mask
	}

	var maxCount int
	var dominantSuit *uint8
	bestRankForSuit := -1
	nonZeroSuits := 0

	for suit := len(suitCounts) - 1; suit >= 0; suit-- {
		count := suitCounts[suit]
		if count == 0 {
			continue
		}
		nonZeroSuits++

		highestRank := bits.Len16(suitMasks[suit]) - 1
		if count > maxCount || (count == maxCount && highestRank > bestRankForSuit) {
			maxCount = count
			bestRankForSuit = highestRank
			suitCopy := uint8(suit)
			dominantSuit = &suitCopy
		}
	}

	cardCount := board.CountCards()
	return FlushInfo{
		MaxSuitCount: maxCount,
		DominantSuit: dominantSuit,
		IsMonotone:   nonZeroSuits == 1 && cardCount >= 3,
		IsRainbow:    nonZeroSuits == cardCount && cardCount >= 3,
	}
}

// AnalyzeStraightPotential reports the board's rank connectivity, treating
// the wheel (A-2-3-4-5) as connected the same way the hand evaluator does.
func AnalyzeStraightPotential(board poker.Hand) StraightInfo {
	cardCount := board.CountCards()
	if cardCount == 0 {
		return StraightInfo{}
	}

	rankMask := board.RankMask() &^ (1 << poker.NumRanks) // drop the virtual ace-low bit
	hasAce := rankMask&(1<<poker.Ace) != 0

	broadwayCount := 0
	for rank := poker.Ten; rank <= poker.Ace; rank++ {
		if rankMask&(1<<rank) != 0 {
			broadwayCount++
		}
	}

	var ranks []int
	for rank := 0; rank < poker.NumRanks; rank++ {
		if rankMask&(1<<rank) != 0 {
			ranks = append(ranks, rank)
		}
	}
	if len(ranks) == 0 {
		return StraightInfo{}
	}

	maxConnected, currentConnected, totalGaps := 1, 1, 0
	for i := 1; i < len(ranks); i++ {
		gap := ranks[i] - ranks[i-1] - 1
		if gap == 0 {
			currentConnected++
			continue
		}
		if currentConnected > maxConnected {
			maxConnected = currentConnected
		}
		currentConnected = 1
		totalGaps += gap
	}
	if currentConnected > maxConnected {
		maxConnected = currentConnected
	}

	if hasAce {
		var lowRanks []int
		for _, rank := range ranks {
			if rank <= 3 {
				lowRanks = append(lowRanks, rank)
			}
		}
		if len(lowRanks) >= 2 {
			wheelRanks := append([]int{-1}, lowRanks...)
			wheelConnected, wheelMax := 1, 1
			for i := 1; i < len(wheelRanks); i++ {
				if wheelRanks[i]-wheelRanks[i-1] == 1 {
					wheelConnected++
				} else {
					if wheelConnected > wheelMax {
						wheelMax = wheelConnected
					}
					wheelConnected = 1
				}
			}
			if wheelConnected > wheelMax {
				wheelMax = wheelConnected
			}
			if wheelMax > maxConnected {
				maxConnected = wheelMax
			}
		}
	}

	return StraightInfo{
		ConnectedCards: maxConnected,
		Gaps:           totalGaps,
		HasAce:         hasAce,
		BroadwayCards:  broadwayCount,
	}
}

func countBoardPairs(board poker.Hand) int {
	var rankCounts [poker.NumRanks]int
	for suit := uint8(0); suit < 4; suit++ {
		mask := board.SuitMask(suit)
		for rank := uint8(0); rank < poker.NumRanks; rank++ {
			if mask&(1<<rank) != 0 {
				rankCounts[rank]++
			}
		}
	}
	pairs := 0
	for _, c := range rankCounts {
		if c >= 2 {
			pairs++
		}
	}
	return pairs
}

func countHighCards(board poker.Hand) int {
	count := 0
	for suit := uint8(0); suit < 4; suit++ {
		mask := board.SuitMask(suit) & 0x1F00 // ranks T..A
		count += bits.OnesCount16(mask)
	}
	return count
}
