package solver

import (
	"math/rand"
	"testing"

	"github.com/lox/holdem-cfr/game"
)

// fakeValueNetwork predicts zero advantages for every feature (equivalent to
// uniform regret matching) and records how many times it was trained, just
// enough to exercise DeepCFRSolver's wiring without needing a real model.
type fakeValueNetwork struct {
	trainCalls int
}

func (n *fakeValueNetwork) Predict(f Features, numActions int) []float64 {
	return make([]float64, numActions)
}

func (n *fakeValueNetwork) Train(samples []AdvantageSample) error {
	n.trainCalls++
	return nil
}

type fakeStrategyNetwork struct {
	trainCalls int
}

func (n *fakeStrategyNetwork) Predict(f Features, numActions int) []float64 {
	return make([]float64, numActions)
}

func (n *fakeStrategyNetwork) Train(samples []StrategySample) error {
	n.trainCalls++
	return nil
}

func newTestDeepCFRSolver(t *testing.T) (*DeepCFRSolver, *fakeValueNetwork, *fakeValueNetwork, *fakeStrategyNetwork) {
	t.Helper()
	abs := AbstractionConfig{
		PreflopBucketCount:  10,
		PostflopBucketCount: 5,
		BetSizing:           []float64{0.5, 1.0},
		MaxActionsPerNode:   4,
		EnableRaises:        true,
		MaxRaisesPerBucket:  1,
	}
	train := DefaultTrainingConfig()
	v0, v1 := &fakeValueNetwork{}, &fakeValueNetwork{}
	strat := &fakeStrategyNetwork{}

	solver, err := NewDeepCFRSolver(abs, train, [2]ValueNetwork{v0, v1}, strat, 20)
	if err != nil {
		t.Fatalf("NewDeepCFRSolver: %v", err)
	}
	return solver, v0, v1, strat
}

func TestDeepCFRSolverTrainsNetworksPeriodically(t *testing.T) {
	solver, v0, v1, strat := newTestDeepCFRSolver(t)
	rng := rand.New(rand.NewSource(3))

	if _, err := solver.Train(100, rng, 16); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if v0.trainCalls == 0 && v1.trainCalls == 0 {
		t.Fatal("expected at least one value network training step")
	}
	if strat.trainCalls == 0 {
		t.Fatal("expected at least one strategy network training step")
	}
}

func TestDeepCFRSolverRejectsNilNetworks(t *testing.T) {
	abs := DefaultAbstraction()
	train := DefaultTrainingConfig()
	_, err := NewDeepCFRSolver(abs, train, [2]ValueNetwork{nil, &fakeValueNetwork{}}, &fakeStrategyNetwork{}, 10)
	if err == nil {
		t.Fatal("expected error constructing solver with a nil value network")
	}
}

func TestPotFeaturesShape(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	state, err := game.NewHand(rng, 2, 200)
	if err != nil {
		t.Fatalf("NewHand: %v", err)
	}
	features := potFeatures(state, state.CurrentPlayer, 200)
	for i, f := range features {
		if f < 0 {
			t.Errorf("potFeatures[%d] = %v, want non-negative", i, f)
		}
	}
}

func TestNormalizePositiveUniformFallback(t *testing.T) {
	out := normalizePositive([]float64{-1, -2, 0})
	for i, p := range out {
		if absf(p-1.0/3.0) > 1e-9 {
			t.Errorf("out[%d] = %v, want 1/3 (uniform fallback)", i, p)
		}
	}
}

func TestNormalizePositiveDropsNegatives(t *testing.T) {
	out := normalizePositive([]float64{3, -1, 1})
	if out[1] != 0 {
		t.Errorf("out[1] = %v, want 0 for negative advantage", out[1])
	}
	sum := out[0] + out[1] + out[2]
	if absf(sum-1.0) > 1e-9 {
		t.Errorf("sum = %v, want 1", sum)
	}
}

func TestSampleFromStrategyPicksWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	strategy := []float64{0.25, 0.25, 0.5}
	idx, p := sampleFromStrategy(strategy, rng)
	if idx < 0 || idx >= len(strategy) {
		t.Fatalf("sampled index %d out of range", idx)
	}
	if p != strategy[idx] {
		t.Fatalf("returned probability %v does not match strategy[%d] = %v", p, idx, strategy[idx])
	}
}
