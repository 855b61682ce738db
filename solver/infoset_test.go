package solver

import (
	"sync"
	"testing"

	"github.com/lox/holdem-cfr/game"
)

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestInfoSetKeyStringFormat(t *testing.T) {
	key := InfoSetKey{Bucket: 42, Street: game.Flop, History: "cr"}
	got := key.String()
	want := "42:flop:cr"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestRegretEntryStrategyNormalizesPositiveRegrets(t *testing.T) {
	entry := newRegretEntry(3)
	entry.regretSum[0] = 1
	entry.regretSum[1] = 2
	entry.regretSum[2] = -5

	strat := entry.Strategy()
	if got, want := strat[0], 1.0/3.0; absf(got-want) > 1e-9 {
		t.Errorf("strat[0] = %v, want %v", got, want)
	}
	if got, want := strat[1], 2.0/3.0; absf(got-want) > 1e-9 {
		t.Errorf("strat[1] = %v, want %v", got, want)
	}
	if strat[2] != 0 {
		t.Errorf("strat[2] = %v, want 0 (negative regret dropped)", strat[2])
	}
}

func TestRegretEntryStrategyUniformFallback(t *testing.T) {
	entry := newRegretEntry(4)
	strat := entry.Strategy()
	for i, s := range strat {
		if absf(s-0.25) > 1e-9 {
			t.Errorf("strat[%d] = %v, want 0.25", i, s)
		}
	}
}

// TestCFRPlusRegretFloor is Testable Property #10: regret_sum never goes
// negative under UpdateRegrets with CFRPlus set, even after a large negative
// update.
func TestCFRPlusRegretFloor(t *testing.T) {
	entry := newRegretEntry(2)
	entry.UpdateRegrets([]float64{5, -3}, RegretUpdateOptions{CFRPlus: true})
	entry.UpdateRegrets([]float64{-100, -100}, RegretUpdateOptions{CFRPlus: true})

	if entry.MinRegret() < 0 {
		t.Fatalf("MinRegret() = %v, want >= 0 under CFR+", entry.MinRegret())
	}
}

func TestRegretEntryUpdateRegretsWithoutCFRPlusAllowsNegative(t *testing.T) {
	entry := newRegretEntry(2)
	entry.UpdateRegrets([]float64{-5, -5}, RegretUpdateOptions{CFRPlus: false})
	if entry.MinRegret() >= 0 {
		t.Fatalf("expected negative regret retained without CFR+, got %v", entry.MinRegret())
	}
}

// TestAverageStrategySumsToOne is Testable Property #11: average strategy
// is a probability distribution (sums to 1, no negative entries) regardless
// of how strategySum was accumulated.
func TestAverageStrategySumsToOne(t *testing.T) {
	entry := newRegretEntry(3)
	entry.Accumulate([]float64{0.2, 0.3, 0.5}, 1.0, RegretUpdateOptions{})
	entry.Accumulate([]float64{0.6, 0.1, 0.3}, 2.0, RegretUpdateOptions{})

	avg := entry.AverageStrategy()
	sum := 0.0
	for _, p := range avg {
		if p < 0 {
			t.Fatalf("average strategy has negative entry: %v", avg)
		}
		sum += p
	}
	if absf(sum-1.0) > 1e-9 {
		t.Fatalf("average strategy sums to %v, want 1", sum)
	}
}

func TestRegretEntryEnsureSizeGrowsPreservingValues(t *testing.T) {
	entry := newRegretEntry(2)
	entry.UpdateRegrets([]float64{3, -1}, RegretUpdateOptions{CFRPlus: true})
	entry.Accumulate([]float64{0.5, 0.5}, 1.0, RegretUpdateOptions{})

	entry.ensureSize(4)
	if entry.numActions() != 4 {
		t.Fatalf("numActions() = %d, want 4 after growing", entry.numActions())
	}
	if entry.regretSum[0] != 3 {
		t.Fatalf("regretSum[0] = %v, want preserved value 3", entry.regretSum[0])
	}
	if entry.regretSum[2] != 0 || entry.regretSum[3] != 0 {
		t.Fatalf("new slots should zero-fill, got %v", entry.regretSum)
	}

	// Shrinking is a no-op: ensureSize never truncates.
	entry.ensureSize(1)
	if entry.numActions() != 4 {
		t.Fatalf("numActions() = %d after ensureSize(1), want unchanged 4", entry.numActions())
	}
}

func TestRegretTableGetGrowsExistingEntry(t *testing.T) {
	table := NewRegretTable()
	key := InfoSetKey{Bucket: 3, Street: game.Turn, History: "cb"}

	entry := table.Get(key, 2)
	grown := table.Get(key, 5)
	if entry != grown {
		t.Fatal("expected Get to return the same entry, grown in place")
	}
	if grown.numActions() != 5 {
		t.Fatalf("numActions() = %d, want 5", grown.numActions())
	}
}

func TestRegretTableGetCachesEntries(t *testing.T) {
	table := NewRegretTable()
	key := InfoSetKey{Bucket: 1, Street: game.Preflop, History: ""}

	a := table.Get(key, 2)
	b := table.Get(key, 3)
	if a != b {
		t.Fatal("expected Get to return the cached entry on repeat lookup")
	}
}

func TestRegretTableLookupMissing(t *testing.T) {
	table := NewRegretTable()
	_, ok := table.Lookup(InfoSetKey{Bucket: 99, Street: game.River, History: "x"})
	if ok {
		t.Fatal("expected Lookup to report absence for an unvisited key")
	}
}

func TestRegretTableConcurrentAccess(t *testing.T) {
	table := NewRegretTable()
	key := InfoSetKey{Bucket: 2, Street: game.Turn, History: "cc"}

	const workers = 32
	const updates = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < updates; j++ {
				entry := table.Get(key, 3)
				entry.Accumulate([]float64{0.2, 0.3, 0.5}, 1.0, RegretUpdateOptions{})
			}
		}()
	}
	wg.Wait()

	if table.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (single shared key)", table.Size())
	}
}

func TestRegretTableSnapshotRoundTrip(t *testing.T) {
	table := NewRegretTable()
	key := InfoSetKey{Bucket: 5, Street: game.Preflop, History: "r"}
	entry := table.Get(key, 2)
	entry.UpdateRegrets([]float64{3, -1}, RegretUpdateOptions{CFRPlus: true})
	entry.Accumulate([]float64{0.7, 0.3}, 1.0, RegretUpdateOptions{})

	snaps := map[string]regretEntrySnapshot{key.String(): entry.snapshot()}
	restored := restoreRegretTable(snaps)

	restoredEntry, ok := restored.Lookup(key)
	if !ok {
		t.Fatal("expected restored table to contain the snapshotted key")
	}
	if absf(restoredEntry.MinRegret()-entry.MinRegret()) > 1e-9 {
		t.Fatalf("restored MinRegret = %v, want %v", restoredEntry.MinRegret(), entry.MinRegret())
	}
}
