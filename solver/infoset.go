// Package solver implements counterfactual regret minimization for heads-up
// no-limit hold'em: a tabular CFR+ traversal, a Deep CFR variant backed by a
// pluggable value-function model, a Kuhn-poker validation harness, and the
// Trainer that orchestrates any of the three.
package solver

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/lox/holdem-cfr/game"
)

// InfoSetKey identifies an information set: the acting player's abstracted
// hole+board bucket, the street, and the action history so far. Two
// traversals reaching identical observable histories from the same actor
// produce identical keys.
type InfoSetKey struct {
	Bucket  int
	Street  game.Street
	History string
}

// String renders the key in the "<bucket>:<STREET_NAME>:<history>" format.
func (k InfoSetKey) String() string {
	return fmt.Sprintf("%d:%s:%s", k.Bucket, k.Street, k.History)
}

// RegretEntry holds the cumulative regret and strategy-sum vectors for one
// information set under regret-matching+.
type RegretEntry struct {
	mu          sync.Mutex
	regretSum   []float64
	strategySum []float64
}

func newRegretEntry(numActions int) *RegretEntry {
	return &RegretEntry{
		regretSum:   make([]float64, numActions),
		strategySum: make([]float64, numActions),
	}
}

// RegretUpdateOptions controls the flavor of regret/strategy update applied.
type RegretUpdateOptions struct {
	// CFRPlus clamps regret to the non-negative floor after every update (§4.5).
	CFRPlus bool
	// LinearWeight, when > 0, scales the strategy-sum contribution by the
	// iteration number (linear averaging), which converges faster in
	// practice than uniform averaging. Zero disables linear weighting.
	LinearWeight float64
}

// Strategy returns the current regret-matching+ strategy: normalize(max(regret,0)),
// uniform over the action set when all regrets are non-positive.
func (e *RegretEntry) Strategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategyLocked()
}

func (e *RegretEntry) strategyLocked() []float64 {
	n := len(e.regretSum)
	strategy := make([]float64, n)
	total := 0.0
	for i, r := range e.regretSum {
		if r > 0 {
			strategy[i] = r
			total += r
		}
	}
	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := range strategy {
			strategy[i] = uniform
		}
		return strategy
	}
	for i := range strategy {
		strategy[i] /= total
	}
	return strategy
}

// Update folds per-action counterfactual regrets into regretSum (clamped to
// the CFR+ floor) and accumulates reach*strategy into strategySum. Both
// happen in one critical section so a concurrent reader never observes a
// strategy update without its matching regret update.
func (e *RegretEntry) Update(regrets, strategy []float64, reach float64, opts RegretUpdateOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, r := range regrets {
		e.regretSum[i] += r
		if opts.CFRPlus && e.regretSum[i] < 0 {
			e.regretSum[i] = 0
		}
	}

	weight := reach
	if opts.LinearWeight > 0 {
		weight *= opts.LinearWeight
	}
	for i, s := range strategy {
		e.strategySum[i] += weight * s
	}
}

// Accumulate folds reach*strategy into strategySum only, per spec.md §4.6's
// "infoset.accumulate(reach[p])" step, which runs for every visited
// infoset regardless of whether the visitor is the traversing player.
func (e *RegretEntry) Accumulate(strategy []float64, reach float64, opts RegretUpdateOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	weight := reach
	if opts.LinearWeight > 0 {
		weight *= opts.LinearWeight
	}
	for i, s := range strategy {
		e.strategySum[i] += weight * s
	}
}

// UpdateRegrets folds per-action counterfactual regrets into regretSum,
// applying the CFR+ floor when opts.CFRPlus is set. This is spec.md §4.6's
// "infoset.update_regrets(u, cf_reach)", applied only when the visiting
// player is the traversing player.
func (e *RegretEntry) UpdateRegrets(regrets []float64, opts RegretUpdateOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, r := range regrets {
		e.regretSum[i] += r
		if opts.CFRPlus && e.regretSum[i] < 0 {
			e.regretSum[i] = 0
		}
	}
}

// AverageStrategy returns normalize(strategySum), uniform if the sum is zero;
// this is the solver's estimate of the equilibrium strategy (σ̄).
func (e *RegretEntry) AverageStrategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.strategySum)
	avg := make([]float64, n)
	total := 0.0
	for _, s := range e.strategySum {
		total += s
	}
	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := range avg {
			avg[i] = uniform
		}
		return avg
	}
	for i, s := range e.strategySum {
		avg[i] = s / total
	}
	return avg
}

// MinRegret returns the smallest regret currently stored; used by tests to
// assert the CFR+ floor invariant (Testable Property #10).
func (e *RegretEntry) MinRegret() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	min := math.Inf(1)
	for _, r := range e.regretSum {
		if r < min {
			min = r
		}
	}
	return min
}

func (e *RegretEntry) numActions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.regretSum)
}

// ensureSize grows regretSum/strategySum to numActions if they are
// currently smaller, preserving existing values and zero-filling new
// slots. This lets an infoset's action count grow across visits — the
// adaptive raise-menu expansion of spec.md §13 offers more actions at an
// infoset once it crosses a visit threshold, and the regret/strategy
// vectors must grow to match rather than be recreated from scratch.
func (e *RegretEntry) ensureSize(numActions int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.regretSum) >= numActions {
		return
	}
	grownRegret := make([]float64, numActions)
	copy(grownRegret, e.regretSum)
	e.regretSum = grownRegret

	grownStrategy := make([]float64, numActions)
	copy(grownStrategy, e.strategySum)
	e.strategySum = grownStrategy
}

type regretEntrySnapshot struct {
	RegretSum   []float64 `json:"regret_sum"`
	StrategySum []float64 `json:"strategy_sum"`
}

func (e *RegretEntry) snapshot() regretEntrySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return regretEntrySnapshot{
		RegretSum:   append([]float64(nil), e.regretSum...),
		StrategySum: append([]float64(nil), e.strategySum...),
	}
}

func newRegretEntryFromSnapshot(snap regretEntrySnapshot) *RegretEntry {
	return &RegretEntry{
		regretSum:   append([]float64(nil), snap.RegretSum...),
		strategySum: append([]float64(nil), snap.StrategySum...),
	}
}

const regretTableShards = 64

// RegretTable is a sharded, thread-safe key→RegretEntry map. Sharding by an
// FNV-1a hash of the key string lets concurrent CFR workers (§5's "per-worker
// shards of offered updates") contend on disjoint locks for most accesses.
type RegretTable struct {
	shards [regretTableShards]regretShard
}

type regretShard struct {
	mu      sync.Mutex
	entries map[string]*RegretEntry
}

// NewRegretTable returns an empty table.
func NewRegretTable() *RegretTable {
	t := &RegretTable{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*RegretEntry)
	}
	return t
}

func (t *RegretTable) shardFor(key string) *regretShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &t.shards[h.Sum32()%regretTableShards]
}

// Get returns the entry for key, lazily creating one with numActions
// actions if it does not yet exist.
func (t *RegretTable) Get(key InfoSetKey, numActions int) *RegretEntry {
	ks := key.String()
	shard := t.shardFor(ks)

	shard.mu.Lock()
	defer shard.mu.Unlock()
	entry, ok := shard.entries[ks]
	if !ok {
		entry = newRegretEntry(numActions)
		shard.entries[ks] = entry
	} else {
		entry.ensureSize(numActions)
	}
	return entry
}

// Lookup returns the entry for key without creating one, reporting whether
// it was found.
func (t *RegretTable) Lookup(key InfoSetKey) (*RegretEntry, bool) {
	ks := key.String()
	shard := t.shardFor(ks)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	entry, ok := shard.entries[ks]
	return entry, ok
}

// Size returns the total number of information sets across all shards.
func (t *RegretTable) Size() int {
	total := 0
	for i := range t.shards {
		t.shards[i].mu.Lock()
		total += len(t.shards[i].entries)
		t.shards[i].mu.Unlock()
	}
	return total
}

// Entries returns a snapshot copy of every key→entry pair, for export
// (blueprint/checkpoint) purposes. The returned map is safe to range over
// without holding any table lock.
func (t *RegretTable) Entries() map[string]*RegretEntry {
	out := make(map[string]*RegretEntry)
	for i := range t.shards {
		t.shards[i].mu.Lock()
		for k, v := range t.shards[i].entries {
			out[k] = v
		}
		t.shards[i].mu.Unlock()
	}
	return out
}

func restoreRegretTable(snaps map[string]regretEntrySnapshot) *RegretTable {
	table := NewRegretTable()
	for key, snap := range snaps {
		entry := newRegretEntryFromSnapshot(snap)
		shard := table.shardFor(key)
		shard.mu.Lock()
		shard.entries[key] = entry
		shard.mu.Unlock()
	}
	return table
}
