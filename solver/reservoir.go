package solver

import (
	"math/rand"
	"sync"
)

// ReservoirBuffer implements reservoir sampling (spec.md §4.7): each offered
// sample either fills a free slot or, once the buffer is at capacity,
// replaces a uniformly chosen existing slot with probability capacity/offers.
// The invariant is that the buffer always holds a uniform random
// capacity-sample of every sample ever offered.
type ReservoirBuffer[T any] struct {
	mu       sync.Mutex
	capacity int
	items    []T
	offered  int64
}

// NewReservoirBuffer returns an empty buffer with the given capacity. A
// non-positive capacity panics: a zero-capacity reservoir cannot satisfy the
// sampling invariant.
func NewReservoirBuffer[T any](capacity int) *ReservoirBuffer[T] {
	if capacity <= 0 {
		panic("solver: reservoir buffer capacity must be positive")
	}
	return &ReservoirBuffer[T]{capacity: capacity}
}

// Offer adds sample j (counting offers from zero) to the reservoir: if the
// buffer has room, it is appended; otherwise a uniformly random index in
// [0, j] is drawn and the sample replaces that slot only if the index falls
// within the buffer.
func (b *ReservoirBuffer[T]) Offer(sample T, rng *rand.Rand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	j := b.offered
	b.offered++

	if len(b.items) < b.capacity {
		b.items = append(b.items, sample)
		return
	}

	u := rng.Int63n(j + 1)
	if u < int64(b.capacity) {
		b.items[u] = sample
	}
}

// Len returns the number of samples currently stored (≤ capacity).
func (b *ReservoirBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Offered returns the total number of samples ever offered to the buffer.
func (b *ReservoirBuffer[T]) Offered() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.offered
}

// Sample returns a copy of up to n items drawn without replacement from the
// current reservoir contents, for use as a training minibatch.
func (b *ReservoirBuffer[T]) Sample(n int, rng *rand.Rand) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n >= len(b.items) {
		out := make([]T, len(b.items))
		copy(out, b.items)
		return out
	}

	idx := rng.Perm(len(b.items))[:n]
	out := make([]T, n)
	for i, j := range idx {
		out[i] = b.items[j]
	}
	return out
}
