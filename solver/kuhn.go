package solver

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdem-cfr/game"
)

// Kuhn poker is a 3-card, 2-player betting game used purely as the
// correctness harness spec.md §8 requires (Testable Properties #12/#13,
// scenario E6): it is small enough that its exact Nash equilibrium is
// known in closed form, so it validates the same regret-matching+
// machinery (RegretTable, RegretEntry.Accumulate/UpdateRegrets) the full hold'em CFR+ solver
// uses, independent of the game/abstraction packages.
const (
	kuhnJack = iota
	kuhnQueen
	kuhnKing
)

const (
	kuhnPass = iota
	kuhnBet
)

var kuhnActionTokens = [2]string{"p", "b"}

// KuhnTrainer runs CFR+ over the Kuhn poker game tree.
type KuhnTrainer struct {
	regrets *RegretTable
	gameVal runningAverage
}

// NewKuhnTrainer returns a trainer with an empty regret table.
func NewKuhnTrainer() *KuhnTrainer {
	return &KuhnTrainer{regrets: NewRegretTable()}
}

// Train runs n CFR+ iterations, each dealing a fresh random permutation of
// the three cards, and returns the running estimate of player 0's root
// game value.
func (t *KuhnTrainer) Train(n int, rng *rand.Rand) (float64, error) {
	if rng == nil {
		return 0, fmt.Errorf("%w: Train requires a non-nil rng", game.ErrInconsistentState)
	}
	cards := [3]int{kuhnJack, kuhnQueen, kuhnKing}
	for i := 0; i < n; i++ {
		rng.Shuffle(3, func(a, b int) { cards[a], cards[b] = cards[b], cards[a] })
		deal := [2]int{cards[0], cards[1]}
		u, err := t.traverse(deal, "", [2]float64{1, 1})
		if err != nil {
			return 0, err
		}
		t.gameVal.add(u)
	}
	return t.gameVal.value(), nil
}

// GameValue returns the running average root utility for player 0
// (Testable Property #12: converges to −1/18 ≈ −0.0556 by T = 100,000).
func (t *KuhnTrainer) GameValue() float64 { return t.gameVal.value() }

// NumInfosets returns the number of distinct Kuhn information sets visited.
func (t *KuhnTrainer) NumInfosets() int { return t.regrets.Size() }

// BetFrequency returns the average probability of betting (immediately, at
// the first decision) holding the given card, used by Testable Property
// #13. history selects the infoset: "" is player 0's opening decision and
// "p" is player 1's decision after a pass, both of which offer a bet option.
func (t *KuhnTrainer) BetFrequency(card int, history string) (float64, bool) {
	key := InfoSetKey{Bucket: card, Street: game.Preflop, History: history}
	entry, ok := t.regrets.Lookup(key)
	if !ok {
		return 0, false
	}
	avg := entry.AverageStrategy()
	return avg[kuhnBet], true
}

// traverse mirrors the tabular CFR+ traverse contract of spec.md §4.6 over
// Kuhn poker's tiny two-action game tree. Kuhn alternates the acting player
// every node, so unlike the fixed-traversing-player hold'em solver, this
// updates whichever player is acting at each node on every call — genuine
// two-player self-play CFR, not a single-perspective traversal.
func (t *KuhnTrainer) traverse(deal [2]int, history string, reach [2]float64) (float64, error) {
	if terminal, util := kuhnTerminalUtility(deal, history); terminal {
		return util, nil
	}

	p := len(history) % 2
	opp := 1 - p

	key := InfoSetKey{Bucket: deal[p], Street: game.Preflop, History: history}
	entry := t.regrets.Get(key, 2)
	strategy := entry.Strategy()
	entry.Accumulate(strategy, reach[p], RegretUpdateOptions{})

	util := make([]float64, 2) // player 0's perspective, per action
	v := 0.0
	for a := 0; a < 2; a++ {
		nextReach := reach
		nextReach[p] = reach[p] * strategy[a]
		u, err := t.traverse(deal, history+kuhnActionTokens[a], nextReach)
		if err != nil {
			return 0, err
		}
		util[a] = u
		v += strategy[a] * u
	}

	sign := 1.0
	if p == 1 {
		sign = -1.0
	}
	regrets := make([]float64, 2)
	cfReach := reach[opp]
	for a := 0; a < 2; a++ {
		regrets[a] = cfReach * sign * (util[a] - v)
	}
	entry.UpdateRegrets(regrets, RegretUpdateOptions{CFRPlus: true})

	return v, nil
}

// kuhnTerminalUtility reports whether history ends the hand and, if so,
// player 0's utility (ante 1 each; a bet costs 1 more chip; showdown pays
// the pot to the higher card).
func kuhnTerminalUtility(deal [2]int, history string) (bool, float64) {
	switch history {
	case "pp":
		return true, float64(kuhnShowdownSign(deal)) * 1
	case "bp":
		return true, 1 // player 0 bet, player 1 folded
	case "pbp":
		return true, -1 // player 0 folded to a bet
	case "bb", "pbb":
		return true, float64(kuhnShowdownSign(deal)) * 2
	default:
		return false, 0
	}
}

// kuhnShowdownSign returns +1 if player 0's card beats player 1's, else −1.
func kuhnShowdownSign(deal [2]int) int {
	if deal[0] > deal[1] {
		return 1
	}
	return -1
}
