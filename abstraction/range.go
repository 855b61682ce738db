package abstraction

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/holdem-cfr/poker"
)

// Range is a weighted set of starting hands, as used when seeding an
// opponent model or reporting a strategy over a subset of hole cards
// (e.g. "TT+,AKs,AKo"). Hands are stored keyed by their combined poker.Hand
// bitset so duplicate combinations collapse naturally.
type Range struct {
	hands map[poker.Hand]float64
}

// NewRange creates a new empty range.
func NewRange() *Range {
	return &Range{hands: make(map[poker.Hand]float64)}
}

// ParseRange builds a Range from standard poker notation, e.g. "AA,KK",
// "AKs,AKo", "TT+", "A5s-A2s", "22-66".
func ParseRange(notation string) (*Range, error) {
	r := NewRange()
	for _, part := range strings.Split(notation, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := r.addRangePart(part); err != nil {
			return nil, fmt.Errorf("%w: invalid range part %q: %v", poker.ErrInvalidInput, part, err)
		}
	}
	return r, nil
}

func (r *Range) addRangePart(part string) error {
	if strings.Contains(part, "+") {
		return r.addPlusRange(part)
	}
	if strings.Contains(part, "-") {
		return r.addDashRange(part)
	}
	return r.addSingleHand(part, 1.0)
}

func (r *Range) addSingleHand(notation string, weight float64) error {
	if len(notation) < 2 || len(notation) > 3 {
		return fmt.Errorf("invalid notation length: %s", notation)
	}

	rank1 := parseRank(notation[0])
	rank2 := parseRank(notation[1])
	if rank1 == 0 || rank2 == 0 {
		return fmt.Errorf("invalid rank in: %s", notation)
	}

	if rank1 == rank2 {
		if len(notation) == 3 {
			return fmt.Errorf("pocket pairs cannot have suited/offsuit modifier: %s", notation)
		}
		return r.addPocketPair(rank1, weight)
	}

	if len(notation) == 2 {
		if err := r.addSuitedCombos(rank1, rank2, weight); err != nil {
			return err
		}
		return r.addOffsuitCombos(rank1, rank2, weight)
	}

	switch notation[2] {
	case 's':
		return r.addSuitedCombos(rank1, rank2, weight)
	case 'o':
		return r.addOffsuitCombos(rank1, rank2, weight)
	default:
		return fmt.Errorf("invalid modifier: %c", notation[2])
	}
}

func (r *Range) addPlusRange(notation string) error {
	plusIdx := strings.Index(notation, "+")
	if plusIdx == -1 {
		return fmt.Errorf("no + found")
	}

	base := notation[:plusIdx]
	if len(base) < 2 || len(base) > 3 {
		return fmt.Errorf("invalid base notation: %s", base)
	}

	rank1 := parseRank(base[0])
	rank2 := parseRank(base[1])
	if rank1 == 0 || rank2 == 0 {
		return fmt.Errorf("invalid rank")
	}

	if rank1 == rank2 {
		for rank := rank1; rank <= 14; rank++ {
			if err := r.addPocketPair(rank, 1.0); err != nil {
				return err
			}
		}
		return nil
	}

	suited, offsuit := false, false
	switch {
	case len(base) == 2:
		suited, offsuit = true, true
	case base[2] == 's':
		suited = true
	case base[2] == 'o':
		offsuit = true
	default:
		return fmt.Errorf("invalid modifier")
	}

	for rank := rank2; rank < rank1; rank++ {
		if suited {
			if err := r.addSuitedCombos(rank1, rank, 1.0); err != nil {
				return err
			}
		}
		if offsuit {
			if err := r.addOffsuitCombos(rank1, rank, 1.0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Range) addDashRange(notation string) error {
	parts := strings.Split(notation, "-")
	if len(parts) != 2 {
		return fmt.Errorf("invalid dash range format")
	}

	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	if len(start) < 2 || len(end) < 2 {
		return fmt.Errorf("invalid notation in range")
	}

	startRank1 := parseRank(start[0])
	startRank2 := parseRank(start[1])
	endRank1 := parseRank(end[0])
	endRank2 := parseRank(end[1])
	if startRank1 == 0 || startRank2 == 0 || endRank1 == 0 || endRank2 == 0 {
		return fmt.Errorf("invalid ranks in range")
	}

	if startRank1 == startRank2 && endRank1 == endRank2 {
		lower, upper := min(startRank1, endRank1), max(startRank1, endRank1)
		for rank := lower; rank <= upper; rank++ {
			if err := r.addPocketPair(rank, 1.0); err != nil {
				return err
			}
		}
		return nil
	}

	if startRank1 == endRank1 {
		suited := len(start) == 3 && start[2] == 's'
		offsuit := len(start) == 3 && start[2] == 'o'
		if len(start) == 2 {
			suited, offsuit = true, true
		}

		lower, upper := min(startRank2, endRank2), max(startRank2, endRank2)
		for rank := lower; rank <= upper; rank++ {
			if suited {
				if err := r.addSuitedCombos(startRank1, rank, 1.0); err != nil {
					return err
				}
			}
			if offsuit {
				if err := r.addOffsuitCombos(startRank1, rank, 1.0); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return fmt.Errorf("unsupported range format: %s", notation)
}

func (r *Range) addPocketPair(rank int, weight float64) error {
	pRank := uint8(rank - 2)
	for suit1 := range uint8(4) {
		for suit2 := suit1 + 1; suit2 < 4; suit2++ {
			hand := poker.Hand(poker.NewCard(pRank, suit1)) | poker.Hand(poker.NewCard(pRank, suit2))
			r.hands[hand] = weight
		}
	}
	return nil
}

func (r *Range) addSuitedCombos(rank1, rank2 int, weight float64) error {
	if rank1 == rank2 {
		return fmt.Errorf("cannot have suited pocket pair")
	}
	pRank1, pRank2 := uint8(rank1-2), uint8(rank2-2)
	for suit := range uint8(4) {
		hand := poker.Hand(poker.NewCard(pRank1, suit)) | poker.Hand(poker.NewCard(pRank2, suit))
		r.hands[hand] = weight
	}
	return nil
}

func (r *Range) addOffsuitCombos(rank1, rank2 int, weight float64) error {
	if rank1 == rank2 {
		return fmt.Errorf("cannot have offsuit pocket pair")
	}
	pRank1, pRank2 := uint8(rank1-2), uint8(rank2-2)
	for suit1 := range uint8(4) {
		for suit2 := range uint8(4) {
			if suit1 != suit2 {
				hand := poker.Hand(poker.NewCard(pRank1, suit1)) | poker.Hand(poker.NewCard(pRank2, suit2))
				r.hands[hand] = weight
			}
		}
	}
	return nil
}

// Contains reports whether the two given card notations are in the range.
func (r *Range) Contains(card1, card2 string) bool {
	c1, err1 := poker.ParseCard(card1)
	c2, err2 := poker.ParseCard(card2)
	if err1 != nil || err2 != nil {
		return false
	}
	_, ok := r.hands[poker.Hand(c1)|poker.Hand(c2)]
	return ok
}

// ContainsHand reports whether hand is in the range.
func (r *Range) ContainsHand(hand poker.Hand) bool {
	_, ok := r.hands[hand]
	return ok
}

// Size returns the number of hand combinations in the range.
func (r *Range) Size() int {
	return len(r.hands)
}

// Hands returns every hand in the range, sorted for deterministic iteration.
func (r *Range) Hands() []poker.Hand {
	hands := make([]poker.Hand, 0, len(r.hands))
	for hand := range r.hands {
		hands = append(hands, hand)
	}
	slices.Sort(hands)
	return hands
}

// Weight returns the weight of hand in the range, or 0 if absent.
func (r *Range) Weight(hand poker.Hand) float64 {
	return r.hands[hand]
}

func parseRank(c byte) int {
	switch c {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return int(c - '0')
	case 'T':
		return 10
	case 'J':
		return 11
	case 'Q':
		return 12
	case 'K':
		return 13
	case 'A':
		return 14
	default:
		return 0
	}
}
