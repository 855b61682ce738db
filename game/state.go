// Package game implements the heads-up no-limit Texas Hold'em betting state
// machine. GameState is immutable: Apply is a pure function from (state,
// action) to a fresh state, in the style of internal reference engines that
// model apply_action as value semantics rather than in-place mutation, so a
// CFR traversal can branch freely from any node without the branches
// observing each other's effects.
package game

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdem-cfr/poker"
)

// Street identifies a betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// GameState is a single point in a heads-up hand. Player 0 is the small
// blind, player 1 the big blind, for the hand's whole duration (unlike a
// ring game, heads-up position does not rotate mid-hand).
type GameState struct {
	Hole   [2]poker.Hand
	Board  poker.Hand
	Pot    int
	Stacks [2]int

	CurrentPlayer int
	Street        Street
	History       []Action

	RoundBets      [2]int
	ActedThisRound [2]bool
	CurrentBet     int
	MinRaise       int
	BigBlind       int
	FacingBet      bool

	Terminal bool
	Winner   int // -1 undetermined, 0 or 1, 2 = split

	deck []poker.Card // undealt cards remaining after hole cards and board
}

// NewHand deals hole cards from a freshly shuffled deck and posts blinds,
// producing the initial state of spec.md §4.4: player 0 posts the small
// blind (bigBlind/2), player 1 posts the big blind; player 0 acts first.
func NewHand(rng *rand.Rand, bigBlind, startStack int) (GameState, error) {
	if rng == nil {
		return GameState{}, fmt.Errorf("%w: NewHand requires a non-nil rng", poker.ErrInvalidInput)
	}
	if bigBlind <= 0 {
		return GameState{}, fmt.Errorf("%w: bigBlind must be positive, got %d", poker.ErrInvalidInput, bigBlind)
	}
	smallBlind := bigBlind / 2
	if startStack < bigBlind {
		return GameState{}, fmt.Errorf("%w: startStack %d smaller than bigBlind %d", poker.ErrInvalidInput, startStack, bigBlind)
	}

	deck := poker.NewDeck(rng)
	hole0, err := deck.Deal(2)
	if err != nil {
		return GameState{}, err
	}
	hole1, err := deck.Deal(2)
	if err != nil {
		return GameState{}, err
	}

	s := GameState{
		Hole:           [2]poker.Hand{poker.NewHand(hole0...), poker.NewHand(hole1...)},
		Stacks:         [2]int{startStack - smallBlind, startStack - bigBlind},
		Pot:            smallBlind + bigBlind,
		CurrentPlayer:  0,
		Street:         Preflop,
		RoundBets:      [2]int{smallBlind, bigBlind},
		ActedThisRound: [2]bool{false, false},
		CurrentBet:     bigBlind,
		MinRaise:       bigBlind,
		BigBlind:       bigBlind,
		FacingBet:      true,
		Winner:         -1,
		deck:           deck.Remaining(),
	}
	return s, nil
}

// ToCall returns the chips player p must add to match the current bet.
func (s GameState) ToCall(p int) int {
	toCall := s.CurrentBet - s.RoundBets[p]
	if toCall < 0 {
		return 0
	}
	return toCall
}

// opponent returns the other heads-up seat.
func opponent(p int) int { return 1 - p }

// ValidActionKinds returns the kinds of action legal for the current player,
// per spec.md §4.4 ("fold facing a bet; check otherwise; call while
// solvent; bet/raise while solvent and respecting the minimum raise; all-in
// available whenever chips remain"). It does not enumerate concrete
// sizes — that is the abstraction package's job.
func (s GameState) ValidActionKinds() ([]ActionKind, error) {
	if s.Terminal {
		return nil, fmt.Errorf("%w: ValidActionKinds called on terminal state", ErrInconsistentState)
	}
	p := s.CurrentPlayer
	toCall := s.ToCall(p)
	stack := s.Stacks[p]

	var kinds []ActionKind
	if toCall > 0 {
		kinds = append(kinds, Fold)
	}
	if toCall == 0 {
		kinds = append(kinds, Check)
	} else if stack > 0 {
		if toCall < stack {
			kinds = append(kinds, Call)
		}
		// If toCall >= stack, calling is only possible as an all-in.
	}

	if stack > 0 {
		if toCall == 0 && stack > s.MinRaise {
			kinds = append(kinds, Bet)
		} else if toCall > 0 && stack > toCall+s.MinRaise {
			kinds = append(kinds, Raise)
		}
		kinds = append(kinds, AllIn)
	}
	return kinds, nil
}

// Apply evaluates a single action against s and returns the resulting
// state. s is never mutated. rng is only consulted when the hand must run
// out the board because a player is all-in (spec.md §4.4: "run out
// remaining community cards from a fresh deck excluding all known cards");
// it may be nil otherwise.
func (s GameState) Apply(a Action, rng *rand.Rand) (GameState, error) {
	if s.Terminal {
		return GameState{}, fmt.Errorf("%w: Apply called on terminal state", ErrInconsistentState)
	}

	next := s
	next.History = append(append([]Action(nil), s.History...), a)
	p := s.CurrentPlayer

	switch a.Kind {
	case Fold:
		if s.ToCall(p) == 0 {
			return GameState{}, fmt.Errorf("%w: fold submitted while not facing a bet", ErrIllegalAction)
		}
		next.Terminal = true
		next.Winner = opponent(p)
		return next, nil

	case Check:
		if s.ToCall(p) != 0 {
			return GameState{}, fmt.Errorf("%w: check submitted while facing a bet of %d", ErrIllegalAction, s.ToCall(p))
		}
		next.ActedThisRound[p] = true
		return finishAction(next, p, rng)

	case Call:
		toCall := s.ToCall(p)
		if toCall <= 0 {
			return GameState{}, fmt.Errorf("%w: call submitted with nothing to call", ErrIllegalAction)
		}
		if toCall >= s.Stacks[p] {
			return GameState{}, fmt.Errorf("%w: call amount %d would be an all-in, submit AllIn", ErrIllegalAction, toCall)
		}
		commit(&next, p, toCall)
		next.ActedThisRound[p] = true
		return finishAction(next, p, rng)

	case Bet:
		if s.ToCall(p) != 0 {
			return GameState{}, fmt.Errorf("%w: bet submitted while facing a bet", ErrIllegalAction)
		}
		if a.Amount < s.MinRaise || a.Amount >= s.Stacks[p] {
			return GameState{}, fmt.Errorf("%w: bet amount %d out of legal range (min %d, stack %d)", ErrIllegalAction, a.Amount, s.MinRaise, s.Stacks[p])
		}
		commit(&next, p, a.Amount)
		next.CurrentBet = next.RoundBets[p]
		next.MinRaise = a.Amount
		next.FacingBet = true
		next.ActedThisRound = [2]bool{false, false}
		next.ActedThisRound[p] = true
		next.CurrentPlayer = opponent(p)
		return next, nil

	case Raise:
		toCall := s.ToCall(p)
		if toCall <= 0 {
			return GameState{}, fmt.Errorf("%w: raise submitted while not facing a bet", ErrIllegalAction)
		}
		delta := a.Amount - s.RoundBets[p]
		raiseSize := a.Amount - s.CurrentBet
		if delta >= s.Stacks[p] || raiseSize < s.MinRaise {
			return GameState{}, fmt.Errorf("%w: raise to %d illegal (min raise size %d, stack %d)", ErrIllegalAction, a.Amount, s.MinRaise, s.Stacks[p])
		}
		commit(&next, p, delta)
		next.CurrentBet = a.Amount
		next.MinRaise = raiseSize
		next.FacingBet = true
		next.ActedThisRound = [2]bool{false, false}
		next.ActedThisRound[p] = true
		next.CurrentPlayer = opponent(p)
		return next, nil

	case AllIn:
		stack := s.Stacks[p]
		if stack <= 0 {
			return GameState{}, fmt.Errorf("%w: all-in submitted with no chips remaining", ErrIllegalAction)
		}
		commit(&next, p, stack)
		next.ActedThisRound[p] = true
		newTotal := next.RoundBets[p]
		if newTotal > s.CurrentBet {
			// Raising all-in: opponent must respond.
			next.CurrentBet = newTotal
			raiseSize := newTotal - s.CurrentBet
			if raiseSize > next.MinRaise {
				next.MinRaise = raiseSize
			}
			next.FacingBet = true
			next.CurrentPlayer = opponent(p)
			return next, nil
		}
		// Under-call (or exact-call) all-in: no further action is possible
		// for this player, so the round ends regardless of the opponent's
		// acted flag.
		return advanceStreet(next, rng)

	default:
		return GameState{}, fmt.Errorf("%w: unknown action kind %v", poker.ErrInvalidInput, a.Kind)
	}
}

// commit moves amount chips from player p's stack into the pot and their
// round commitment.
func commit(s *GameState, p, amount int) {
	s.Stacks[p] -= amount
	s.RoundBets[p] += amount
	s.Pot += amount
}

// finishAction applies the heads-up round-completion rule shared by Check
// and Call: the round ends once both round commitments match and both
// players have acted at least once this round (spec.md §4.4, Design Notes
// re: the preflop SB-limp/BB-option edge case — captured here without a
// dedicated flag because natural turn order already gives the big blind
// the closing action).
func finishAction(s GameState, actor int, rng *rand.Rand) (GameState, error) {
	if s.RoundBets[0] == s.RoundBets[1] && s.ActedThisRound[0] && s.ActedThisRound[1] {
		return advanceStreet(s, rng)
	}
	s.CurrentPlayer = opponent(actor)
	s.FacingBet = s.RoundBets[0] != s.RoundBets[1]
	return s, nil
}

// advanceStreet resets the betting round and deals the next street's
// community cards, or runs the board to showdown if a player is all-in or
// the river has just completed.
func advanceStreet(s GameState, rng *rand.Rand) (GameState, error) {
	allIn := s.Stacks[0] == 0 || s.Stacks[1] == 0

	if allIn {
		return runout(s, rng)
	}

	switch s.Street {
	case Preflop:
		if err := dealBoard(&s, 3); err != nil {
			return GameState{}, err
		}
		s.Street = Flop
	case Flop:
		if err := dealBoard(&s, 1); err != nil {
			return GameState{}, err
		}
		s.Street = Turn
	case Turn:
		if err := dealBoard(&s, 1); err != nil {
			return GameState{}, err
		}
		s.Street = River
	case River:
		return showdown(s)
	}

	s.RoundBets = [2]int{0, 0}
	s.ActedThisRound = [2]bool{false, false}
	s.CurrentBet = 0
	s.MinRaise = s.BigBlind
	s.FacingBet = false
	s.CurrentPlayer = 1
	return s, nil
}

// dealBoard deals n cards from the hand's own deck onto the board.
func dealBoard(s *GameState, n int) error {
	if len(s.deck) < n {
		return fmt.Errorf("%w: board deal of %d with %d remaining", poker.ErrInsufficientCards, n, len(s.deck))
	}
	for _, c := range s.deck[:n] {
		s.Board.AddCard(c)
	}
	s.deck = s.deck[n:]
	return nil
}

// runout deals every remaining community card from a fresh deck excluding
// all known cards, per spec.md §4.4, then goes straight to showdown.
func runout(s GameState, rng *rand.Rand) (GameState, error) {
	if rng == nil {
		return GameState{}, fmt.Errorf("%w: all-in runout requires a non-nil rng", poker.ErrInvalidInput)
	}
	dead := s.Hole[0] | s.Hole[1] | s.Board
	needed := 5 - s.Board.CountCards()
	if needed > 0 {
		fresh := poker.NewDeckExcluding(rng, dead)
		cards, err := fresh.Deal(needed)
		if err != nil {
			return GameState{}, err
		}
		for _, c := range cards {
			s.Board.AddCard(c)
		}
	}
	s.RoundBets = [2]int{0, 0}
	s.CurrentBet = 0
	s.FacingBet = false
	return showdown(s)
}

// showdown evaluates both hole cards against the completed board and
// settles the pot. Payoffs follow the symmetric ±pot/2 convention of
// spec.md §4.4: Payoff below converts Winner into chip deltas uniformly for
// showdowns and folds alike.
func showdown(s GameState) (GameState, error) {
	s.Terminal = true
	if s.Board.CountCards() != 5 {
		return GameState{}, fmt.Errorf("%w: showdown reached with %d board cards", ErrInconsistentState, s.Board.CountCards())
	}

	r0, err := poker.Evaluate7(s.Hole[0] | s.Board)
	if err != nil {
		return GameState{}, err
	}
	r1, err := poker.Evaluate7(s.Hole[1] | s.Board)
	if err != nil {
		return GameState{}, err
	}

	switch {
	case r0.Rank > r1.Rank:
		s.Winner = 0
	case r1.Rank > r0.Rank:
		s.Winner = 1
	default:
		s.Winner = 2
	}
	return s, nil
}

// Payoff returns player p's net result relative to their contribution this
// hand, using the symmetric ±pot/2 convention: the winner receives +pot/2,
// the loser −pot/2, a split returns 0 to each player (each reclaims their
// own contribution). This is the convention spec.md §4.4 names as the one
// the reference implementation uses; it models a pot split, not net chips
// won, and callers computing EV must apply it uniformly.
func (s GameState) Payoff(p int) (float64, error) {
	if !s.Terminal {
		return 0, fmt.Errorf("%w: Payoff requested on non-terminal state", ErrInconsistentState)
	}
	half := float64(s.Pot) / 2
	switch s.Winner {
	case 2:
		return 0, nil
	case p:
		return half, nil
	default:
		return -half, nil
	}
}

// HistoryTokens renders the action history as the '|'-joined token string
// of spec.md §6, e.g. "c|x|b4".
func (s GameState) HistoryTokens() string {
	out := make([]byte, 0, len(s.History)*3)
	for i, a := range s.History {
		if i > 0 {
			out = append(out, '|')
		}
		out = append(out, a.Token()...)
	}
	return string(out)
}
