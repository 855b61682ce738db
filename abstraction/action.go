package abstraction

import (
	"fmt"

	"github.com/lox/holdem-cfr/game"
	"github.com/lox/holdem-cfr/poker"
)

// ActionConfig controls bet-sizing abstraction (spec.md §4.3).
type ActionConfig struct {
	PreflopMultipliers []float64 // of the big blind, default {2.5, 3.0}
	PostflopFractions  []float64 // of the pot, default {0.33, 0.67, 1.0}
	AllInEnabled       bool
}

// DefaultActionConfig matches spec.md §4.3's defaults.
func DefaultActionConfig() ActionConfig {
	return ActionConfig{
		PreflopMultipliers: []float64{2.5, 3.0},
		PostflopFractions:  []float64{0.33, 0.67, 1.0},
		AllInEnabled:       true,
	}
}

// LegalActions enumerates the abstract actions available at s, in a stable
// order, with duplicates by (kind, amount) collapsed to their first
// insertion (spec.md §4.3).
func LegalActions(s game.GameState, cfg ActionConfig) ([]game.Action, error) {
	if s.Terminal {
		return nil, fmt.Errorf("%w: LegalActions called on terminal state", game.ErrInconsistentState)
	}

	p := s.CurrentPlayer
	toCall := s.ToCall(p)
	stack := s.Stacks[p]

	var actions []game.Action
	seen := make(map[game.Action]bool)
	add := func(a game.Action) {
		if !seen[a] {
			seen[a] = true
			actions = append(actions, a)
		}
	}

	if toCall > 0 {
		add(game.Action{Kind: game.Fold})
	} else {
		add(game.Action{Kind: game.Check})
	}

	if toCall > 0 && toCall < stack {
		add(game.Action{Kind: game.Call})
	}

	sizes := bettingSizes(s, cfg)
	for _, amount := range sizes {
		if toCall == 0 {
			// amount is the additional contribution of a fresh Bet.
			if amount > 0 && amount < stack && amount >= s.MinRaise {
				add(game.Action{Kind: game.Bet, Amount: amount})
			}
			continue
		}
		// amount is a raise-to total.
		delta := amount - s.RoundBets[p]
		raiseSize := amount - s.CurrentBet
		if delta > 0 && delta < stack && raiseSize >= s.MinRaise {
			add(game.Action{Kind: game.Raise, Amount: amount})
		}
	}

	if cfg.AllInEnabled && stack > 0 && stack > toCall {
		add(game.Action{Kind: game.AllIn, Amount: stack})
	} else if stack > 0 && toCall >= stack {
		// A call that would exhaust the stack is only offered as AllIn.
		add(game.Action{Kind: game.AllIn, Amount: stack})
	}

	return actions, nil
}

// bettingSizes returns the raw chip sizes for the configured multipliers or
// fractions: a Bet's additional contribution if nobody has bet this round,
// otherwise the Raise's new total commitment.
func bettingSizes(s game.GameState, cfg ActionConfig) []int {
	var sizes []int
	if s.Street == game.Preflop {
		for _, m := range cfg.PreflopMultipliers {
			additional := int(m * float64(s.BigBlind))
			sizes = append(sizes, sizeForStreet(s, additional)...)
		}
		return sizes
	}
	for _, f := range cfg.PostflopFractions {
		amount := int(f * float64(s.Pot))
		if amount < s.BigBlind {
			amount = s.BigBlind
		}
		sizes = append(sizes, sizeForStreet(s, amount)...)
	}
	return sizes
}

// sizeForStreet converts a raw chip size into either a Bet's additional
// contribution (facing no bet) or a Raise's new total (facing a bet, added
// on top of the opponent's round commitment), per spec.md §4.3.
func sizeForStreet(s game.GameState, amount int) []int {
	p := s.CurrentPlayer
	if s.ToCall(p) == 0 {
		return []int{amount}
	}
	opp := 1 - p
	return []int{s.RoundBets[opp] + amount}
}

// SnapToAbstract maps a concrete action onto the closest currently legal
// abstract action, per spec.md §4.3: Fold/Check/Call/AllIn pass through
// unchanged; Bet/Raise snap to the nearest legal Bet/Raise/AllIn by
// absolute chip amount, ties breaking toward the smaller amount.
func SnapToAbstract(concrete game.Action, legal []game.Action) (game.Action, error) {
	switch concrete.Kind {
	case game.Fold, game.Check, game.Call, game.AllIn:
		return concrete, nil
	}

	var best game.Action
	found := false
	bestDist := 0
	for _, a := range legal {
		if a.Kind != game.Bet && a.Kind != game.Raise && a.Kind != game.AllIn {
			continue
		}
		dist := concrete.Amount - a.Amount
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist || (dist == bestDist && a.Amount < best.Amount) {
			best, bestDist, found = a, dist, true
		}
	}
	if !found {
		return game.Action{}, fmt.Errorf("%w: no legal Bet/Raise/AllIn to snap to", poker.ErrInvalidInput)
	}
	return best, nil
}
