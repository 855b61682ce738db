package solver

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdem-cfr/abstraction"
	"github.com/lox/holdem-cfr/game"
)

// Features is the fixed-width input a Deep CFR value/strategy network
// consumes at a decision node: the actor's hand/board bucket, street, a
// 4-vector of pot features, and the action history encoded as small
// integers (one per §4.7's action_history_as_ints, suitable for one-hot
// encoding by the network the way other_examples/timpalpant-alphacats'
// model-encoding.go one-hot-encodes its own action history).
type Features struct {
	Bucket        int
	Street        game.Street
	PotFeatures   [4]float64
	ActionHistory []int
}

// encodeActionHistory renders a history of actions as small integers, one
// per action kind, mirroring model-encoding.go's one-hot-per-action-type
// convention (the network is free to one-hot these at its input layer).
func encodeActionHistory(history []game.Action) []int {
	out := make([]int, len(history))
	for i, a := range history {
		out[i] = int(a.Kind)
	}
	return out
}

// potFeatures computes (pot/2S, my_stack/S, opp_stack/S, my_round_bet/max(1,pot))
// per spec.md §4.7, where S is the starting stack.
func potFeatures(s game.GameState, actor, startingStack int) [4]float64 {
	opp := 1 - actor
	S := float64(startingStack)
	pot := float64(s.Pot)
	denom := pot
	if denom < 1 {
		denom = 1
	}
	return [4]float64{
		pot / (2 * S),
		float64(s.Stacks[actor]) / S,
		float64(s.Stacks[opp]) / S,
		float64(s.RoundBets[actor]) / denom,
	}
}

// AdvantageSample pairs features with the per-action instantaneous
// advantage a[k] = u[k] - v offered to a player's advantage buffer.
type AdvantageSample struct {
	Features   Features
	Advantages []float64
}

// StrategySample pairs features with the sampled strategy σ offered to the
// shared strategy buffer (§4.7: "offer (features, σ) to strategy_buffer").
type StrategySample struct {
	Features Features
	Strategy []float64
}

// ValueNetwork predicts per-action advantages from features and trains on
// a batch of advantage samples. Implementations are expected to use
// mean-squared-error regression, per spec.md §4.7's "Training step".
type ValueNetwork interface {
	Predict(f Features, numActions int) []float64
	Train(samples []AdvantageSample) error
}

// StrategyNetwork predicts an action distribution from features (via
// softmax over its outputs per §4.7's "Inference") and trains on a batch of
// strategy samples.
type StrategyNetwork interface {
	Predict(f Features, numActions int) []float64
	Train(samples []StrategySample) error
}

// DeepCFRSolver runs the Deep CFR variant of spec.md §4.7: identical
// traversal contract to the tabular solver, but advantages are predicted
// from a parametric model instead of stored in a RegretTable.
type DeepCFRSolver struct {
	valueNets    [2]ValueNetwork
	strategyNet  StrategyNetwork
	advBuffers   [2]*ReservoirBuffer[AdvantageSample]
	stratBuffer  *ReservoirBuffer[StrategySample]
	bucket       abstraction.Config
	action       abstraction.ActionConfig
	train        TrainingConfig
	trainEvery   int
	sinceTrained int
	gameVal      runningAverage
}

// NewDeepCFRSolver constructs a Deep CFR solver. valueNets[0]/valueNets[1]
// predict advantages for player 0/1 respectively; strategyNet is shared,
// matching §4.7's single strategy_buffer offered to by both players.
func NewDeepCFRSolver(abs AbstractionConfig, train TrainingConfig, valueNets [2]ValueNetwork, strategyNet StrategyNetwork, trainEvery int) (*DeepCFRSolver, error) {
	if err := abs.Validate(); err != nil {
		return nil, err
	}
	if err := train.Validate(); err != nil {
		return nil, err
	}
	if valueNets[0] == nil || valueNets[1] == nil || strategyNet == nil {
		return nil, fmt.Errorf("%w: DeepCFRSolver requires non-nil value and strategy networks", ErrInvalidConfig)
	}
	capacity := train.ReservoirCapacity
	if capacity <= 0 {
		capacity = 2_000_000
	}
	if trainEvery <= 0 {
		trainEvery = 1000
	}
	return &DeepCFRSolver{
		valueNets:   valueNets,
		strategyNet: strategyNet,
		advBuffers: [2]*ReservoirBuffer[AdvantageSample]{
			NewReservoirBuffer[AdvantageSample](capacity),
			NewReservoirBuffer[AdvantageSample](capacity),
		},
		stratBuffer: NewReservoirBuffer[StrategySample](capacity),
		bucket: abstraction.Config{
			PreflopBuckets:  abs.PreflopBucketCount,
			PostflopBuckets: abs.PostflopBucketCount,
			EquitySamples:   abstraction.DefaultEquitySamples,
		},
		action: abstraction.ActionConfig{
			PreflopMultipliers: preflopMultipliersFromBetSizing(abs.BetSizing),
			PostflopFractions:  abs.BetSizing,
			AllInEnabled:       abs.EnableRaises,
		},
		train:      train,
		trainEvery: trainEvery,
	}, nil
}

// Train runs n traversals, each picking its traversing player by iteration
// parity (§4.7), periodically retraining both networks from their
// reservoirs every trainEvery traversals.
func (d *DeepCFRSolver) Train(n int, rng *rand.Rand, batchSize int) (float64, error) {
	if rng == nil {
		return 0, fmt.Errorf("%w: Train requires a non-nil rng", game.ErrInconsistentState)
	}
	for i := 0; i < n; i++ {
		root, err := game.NewHand(rng, d.train.BigBlind, d.train.StartingStack)
		if err != nil {
			return 0, err
		}
		tp := i % 2
		u, err := d.traverse(root, tp, rng)
		if err != nil {
			return 0, err
		}
		if tp == 0 {
			d.gameVal.add(u)
		} else {
			d.gameVal.add(-u)
		}

		d.sinceTrained++
		if d.sinceTrained >= d.trainEvery {
			d.sinceTrained = 0
			if err := d.trainStep(rng, batchSize); err != nil {
				return 0, err
			}
		}
	}
	return d.gameVal.value(), nil
}

// GameValue returns the running average root utility for player 0.
func (d *DeepCFRSolver) GameValue() float64 { return d.gameVal.value() }

func (d *DeepCFRSolver) trainStep(rng *rand.Rand, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 256
	}
	for p := 0; p < 2; p++ {
		batch := d.advBuffers[p].Sample(batchSize, rng)
		if len(batch) == 0 {
			continue
		}
		if err := d.valueNets[p].Train(batch); err != nil {
			return fmt.Errorf("train value network %d: %w", p, err)
		}
	}
	stratBatch := d.stratBuffer.Sample(batchSize, rng)
	if len(stratBatch) > 0 {
		if err := d.strategyNet.Train(stratBatch); err != nil {
			return fmt.Errorf("train strategy network: %w", err)
		}
	}
	return nil
}

// traverse implements spec.md §4.7's Deep CFR variant of the traversal
// contract.
func (d *DeepCFRSolver) traverse(state game.GameState, tp int, rng *rand.Rand) (float64, error) {
	if state.Terminal {
		return state.Payoff(tp)
	}

	p := state.CurrentPlayer

	actions, err := abstraction.LegalActions(state, d.action)
	if err != nil {
		return 0, err
	}
	if len(actions) == 0 {
		return 0, nil
	}

	features, err := d.features(state, p, rng)
	if err != nil {
		return 0, err
	}

	advantages := d.valueNets[p].Predict(features, len(actions))
	strategy := normalizePositive(advantages)

	if p == tp {
		util := make([]float64, len(actions))
		v := 0.0
		for i, a := range actions {
			next, err := state.Apply(a, rng)
			if err != nil {
				return 0, err
			}
			u, err := d.traverse(next, tp, rng)
			if err != nil {
				return 0, err
			}
			util[i] = u
			v += strategy[i] * u
		}
		adv := make([]float64, len(actions))
		for i := range actions {
			adv[i] = util[i] - v
		}
		d.advBuffers[p].Offer(AdvantageSample{Features: features, Advantages: adv}, rng)
		return v, nil
	}

	idx, _ := sampleFromStrategy(strategy, rng)
	d.stratBuffer.Offer(StrategySample{Features: features, Strategy: strategy}, rng)
	next, err := state.Apply(actions[idx], rng)
	if err != nil {
		return 0, err
	}
	return d.traverse(next, tp, rng)
}

func (d *DeepCFRSolver) features(state game.GameState, actor int, rng *rand.Rand) (Features, error) {
	bucket, err := abstraction.Bucket(state.Hole[actor], state.Board, state.Street, d.bucket, rng)
	if err != nil {
		return Features{}, err
	}
	return Features{
		Bucket:        bucket,
		Street:        state.Street,
		PotFeatures:   potFeatures(state, actor, d.train.StartingStack),
		ActionHistory: encodeActionHistory(state.History),
	}, nil
}

// normalizePositive implements σ ← normalize(max(x, 0)) with uniform
// fallback, the shared regret-matching projection used by both the
// predicted-advantage strategy (§4.7) and the tabular regret-matching+
// strategy (§4.5).
func normalizePositive(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	total := 0.0
	for i, v := range x {
		if v > 0 {
			out[i] = v
			total += v
		}
	}
	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// sampleFromStrategy draws an action index proportional to strategy.
func sampleFromStrategy(strategy []float64, rng *rand.Rand) (int, float64) {
	r := rng.Float64()
	acc := 0.0
	for i, p := range strategy {
		acc += p
		if r <= acc {
			return i, p
		}
	}
	return len(strategy) - 1, strategy[len(strategy)-1]
}
