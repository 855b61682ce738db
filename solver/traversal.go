package solver

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/lox/holdem-cfr/abstraction"
	"github.com/lox/holdem-cfr/game"
)

// CFRSolver runs the tabular CFR+ traversal of spec.md §4.6 over the
// heads-up hold'em game tree, sharing its RegretTable (and thus its
// regret-matching+ machinery) with KuhnTrainer.
type CFRSolver struct {
	regrets  *RegretTable
	bucket   abstraction.Config
	action   abstraction.ActionConfig
	// expandedAction offers a larger raise menu, used once an infoset has
	// been visited AbstractionConfig.AdaptiveRaiseVisits times (§13's
	// adaptive raise-count expansion, ported from the teacher's
	// shouldExpandRaises/AdaptiveStats).
	expandedAction abstraction.ActionConfig
	abs            AbstractionConfig
	train          TrainingConfig
	gameVal        runningAverage
	numIters       int
	visits         sync.Map // InfoSetKey.String() -> *atomic.Int64
}

type runningAverage struct {
	sum   float64
	count int
}

func (r *runningAverage) add(v float64) {
	r.sum += v
	r.count++
}

func (r runningAverage) value() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

// NewCFRSolver builds a tabular CFR+ solver from the given abstraction and
// training configuration.
func NewCFRSolver(abs AbstractionConfig, train TrainingConfig) (*CFRSolver, error) {
	if err := abs.Validate(); err != nil {
		return nil, err
	}
	if err := train.Validate(); err != nil {
		return nil, err
	}
	action := abstraction.ActionConfig{
		PreflopMultipliers: preflopMultipliersFromBetSizing(abs.BetSizing),
		PostflopFractions:  abs.BetSizing,
		AllInEnabled:       abs.EnableRaises,
	}

	return &CFRSolver{
		regrets: NewRegretTable(),
		bucket: abstraction.Config{
			PreflopBuckets:  abs.PreflopBucketCount,
			PostflopBuckets: abs.PostflopBucketCount,
			EquitySamples:   abstraction.DefaultEquitySamples,
		},
		action:         action,
		expandedAction: expandActionMenu(action, abs),
		abs:            abs,
		train:          train,
	}, nil
}

// expandActionMenu grows the bet-sizing schedule by up to
// abs.MaxRaisesPerBucket extra, progressively larger pot fractions, used
// once an infoset's visit count crosses abs.AdaptiveRaiseVisits. A
// zero AdaptiveRaiseVisits (the default) means the base menu is always used
// (§4.3's fixed menu).
func expandActionMenu(base abstraction.ActionConfig, abs AbstractionConfig) abstraction.ActionConfig {
	if abs.AdaptiveRaiseVisits <= 0 || abs.MaxRaisesPerBucket <= 0 || len(abs.BetSizing) == 0 {
		return base
	}
	fractions := append([]float64(nil), abs.BetSizing...)
	last := fractions[len(fractions)-1]
	for i := 0; i < abs.MaxRaisesPerBucket; i++ {
		last += 0.5
		fractions = append(fractions, last)
	}
	return abstraction.ActionConfig{
		PreflopMultipliers: preflopMultipliersFromBetSizing(fractions),
		PostflopFractions:  fractions,
		AllInEnabled:       base.AllInEnabled,
	}
}

// visitCount returns how many times key has been visited so far.
func (s *CFRSolver) visitCount(key InfoSetKey) int64 {
	v, ok := s.visits.Load(key.String())
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// recordVisit increments and returns key's visit count.
func (s *CFRSolver) recordVisit(key InfoSetKey) int64 {
	actual, _ := s.visits.LoadOrStore(key.String(), new(atomic.Int64))
	counter := actual.(*atomic.Int64)
	return counter.Add(1)
}

// actionConfigFor returns the expanded raise menu once key has crossed the
// adaptive-expansion visit threshold, else the base menu.
func (s *CFRSolver) actionConfigFor(key InfoSetKey) abstraction.ActionConfig {
	if s.abs.AdaptiveRaiseVisits > 0 && s.visitCount(key) >= int64(s.abs.AdaptiveRaiseVisits) {
		return s.expandedAction
	}
	return s.action
}

// preflopMultipliersFromBetSizing reuses the pot-fraction schedule as a
// BB-multiplier schedule when no separate preflop schedule was configured:
// each pot fraction f becomes a multiplier of 2+2f big blinds (0.5 → 3bb,
// 1.0 → 4bb), which keeps AbstractionConfig a single BetSizing knob rather
// than two redundant ones.
func preflopMultipliersFromBetSizing(fractions []float64) []float64 {
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		out[i] = 2 + f*2
	}
	return out
}

// Train runs n CFR+ iterations, each starting from a freshly dealt hand,
// and returns the running estimate of the root game value for player 0.
func (s *CFRSolver) Train(n int, rng *rand.Rand) (float64, error) {
	if rng == nil {
		return 0, fmt.Errorf("%w: Train requires a non-nil rng", game.ErrInconsistentState)
	}
	for i := 0; i < n; i++ {
		root, err := game.NewHand(rng, s.train.BigBlind, s.train.StartingStack)
		if err != nil {
			return 0, err
		}
		traversingPlayer := 0
		if s.train.Sampling() == SamplingModeExternal {
			traversingPlayer = i % 2
		}
		u, err := s.traverse(root, [2]float64{1, 1}, traversingPlayer, rng)
		if err != nil {
			return 0, err
		}
		if traversingPlayer == 0 {
			s.gameVal.add(u)
		} else {
			s.gameVal.add(-u)
		}
		s.numIters++
	}
	return s.gameVal.value(), nil
}

// GameValue returns the running average root utility for player 0 collected
// across all Train calls so far.
func (s *CFRSolver) GameValue() float64 { return s.gameVal.value() }

// NumInfosets returns the number of distinct information sets discovered.
func (s *CFRSolver) NumInfosets() int { return s.regrets.Size() }

// GetStrategy returns the average strategy stored at key, or (nil, false)
// if the infoset has never been visited.
func (s *CFRSolver) GetStrategy(key InfoSetKey) ([]float64, bool) {
	entry, ok := s.regrets.Lookup(key)
	if !ok {
		return nil, false
	}
	return entry.AverageStrategy(), true
}

// RegretTable exposes the underlying table for checkpoint/blueprint export.
func (s *CFRSolver) RegretTable() *RegretTable { return s.regrets }

// traverse implements spec.md §4.6's recursive traverse(state, reach, tp).
func (s *CFRSolver) traverse(state game.GameState, reach [2]float64, tp int, rng *rand.Rand) (float64, error) {
	if state.Terminal {
		return state.Payoff(tp)
	}

	p := state.CurrentPlayer
	opp := 1 - p

	key, err := s.infoSetKey(state, p, rng)
	if err != nil {
		return 0, err
	}
	s.recordVisit(key)

	actions, err := abstraction.LegalActions(state, s.actionConfigFor(key))
	if err != nil {
		return 0, err
	}
	if len(actions) == 0 {
		return 0, nil
	}

	entry := s.regrets.Get(key, len(actions))
	strategy := entry.Strategy()
	entry.Accumulate(strategy, reach[p], RegretUpdateOptions{})

	util := make([]float64, len(actions))
	v := 0.0
	for i, a := range actions {
		next, err := state.Apply(a, rng)
		if err != nil {
			return 0, err
		}
		nextReach := reach
		nextReach[p] = reach[p] * strategy[i]
		u, err := s.traverse(next, nextReach, tp, rng)
		if err != nil {
			return 0, err
		}
		util[i] = u
		v += strategy[i] * u
	}

	if p == tp {
		regrets := make([]float64, len(actions))
		cfReach := reach[opp]
		for i := range actions {
			regrets[i] = cfReach * (util[i] - v)
		}
		entry.UpdateRegrets(regrets, RegretUpdateOptions{CFRPlus: true})
	}

	return v, nil
}

// infoSetKey builds the (bucket, street, history) key of spec.md §4.6's
// "Information-set keying" — the actor's own hole cards plus the board,
// never the opponent's hand (§6's "known dead cards" rule).
func (s *CFRSolver) infoSetKey(state game.GameState, actor int, rng *rand.Rand) (InfoSetKey, error) {
	bucket, err := abstraction.Bucket(state.Hole[actor], state.Board, state.Street, s.bucket, rng)
	if err != nil {
		return InfoSetKey{}, err
	}
	return InfoSetKey{
		Bucket:  bucket,
		Street:  state.Street,
		History: state.HistoryTokens(),
	}, nil
}
