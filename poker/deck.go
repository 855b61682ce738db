package poker

import (
	"fmt"
	"math/rand"
)

// Deck is a finite, ordered sequence of distinct cards, initially the full
// 52-card universe minus any excluded dead cards. Cards are dealt from the
// front; Shuffle permutes all of the deck's cards in place, dealt ones
// included, and restarts dealing from the front. RNG discipline
// follows spec.md §5: each deck owns a non-shared *rand.Rand supplied by the
// caller, never a package-global source, so parallel workers and Monte
// Carlo equity sampling never race on shared state.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a freshly shuffled 52-card deck.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("poker: NewDeck requires a non-nil rng")
	}
	d := &Deck{cards: make([]Card, 0, 52), rng: rng}
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < NumRanks; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
	return d
}

// NewDeckExcluding creates a shuffled deck over the 52-card universe minus
// every card set in dead. Used for street runouts and Monte Carlo equity
// sampling, where known hole/board cards must not recur.
func NewDeckExcluding(rng *rand.Rand, dead Hand) *Deck {
	if rng == nil {
		panic("poker: NewDeckExcluding requires a non-nil rng")
	}
	d := &Deck{cards: make([]Card, 0, 52-dead.CountCards()), rng: rng}
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < NumRanks; rank++ {
			c := NewCard(rank, suit)
			if !dead.HasCard(c) {
				d.cards = append(d.cards, c)
			}
		}
	}
	d.Shuffle()
	return d
}

// Shuffle re-permutes every card in the deck, including already-dealt ones,
// via Fisher-Yates and resets the deal cursor to the start.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the next n cards from the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrInsufficientCards, n, d.CardsRemaining())
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards, nil
}

// DealOne removes and returns the next single card.
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return 0, err
	}
	return cards[0], nil
}

// Exclude removes any remaining, undealt cards present in dead from the
// deck. Already-dealt cards are unaffected.
func (d *Deck) Exclude(dead Hand) {
	remaining := d.cards[d.next:]
	kept := remaining[:0]
	for _, c := range remaining {
		if !dead.HasCard(c) {
			kept = append(kept, c)
		}
	}
	d.cards = append(d.cards[:d.next], kept...)
}

// CardsRemaining returns the number of undealt cards.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// Reset reshuffles the deck back to its full starting contents.
func (d *Deck) Reset() {
	d.Shuffle()
}

// Remaining returns a copy of the undealt cards, in deal order. Callers that
// need to branch a deck into multiple independent continuations (such as a
// CFR traversal exploring several actions from one game state) should take
// a Remaining snapshot once and slice off the front of it per branch,
// rather than share a single mutable *Deck across branches.
func (d *Deck) Remaining() []Card {
	out := make([]Card, d.CardsRemaining())
	copy(out, d.cards[d.next:])
	return out
}
