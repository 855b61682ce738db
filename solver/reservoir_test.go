package solver

import (
	"math/rand"
	"testing"
)

func TestReservoirBufferFillsUpToCapacity(t *testing.T) {
	buf := NewReservoirBuffer[int](5)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 3; i++ {
		buf.Offer(i, rng)
	}
	if buf.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 before reaching capacity", buf.Len())
	}
	for i := 3; i < 10; i++ {
		buf.Offer(i, rng)
	}
	if buf.Len() != 5 {
		t.Fatalf("Len() = %d, want 5 (capacity)", buf.Len())
	}
	if buf.Offered() != 10 {
		t.Fatalf("Offered() = %d, want 10", buf.Offered())
	}
}

// TestReservoirBufferUniformRetention is Testable Property #14: every
// offered sample has an equal probability (capacity/offers) of surviving in
// the final reservoir. We offer far more samples than capacity and check the
// survival rate of early-offered items falls within statistical tolerance of
// the theoretical probability.
func TestReservoirBufferUniformRetention(t *testing.T) {
	const capacity = 100
	const totalOffers = 10000
	const trials = 200

	want := float64(capacity) / float64(totalOffers)

	survived := 0
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < trials; trial++ {
		buf := NewReservoirBuffer[int](capacity)
		for i := 0; i < totalOffers; i++ {
			buf.Offer(i, rng)
		}
		for _, v := range buf.Sample(capacity, rng) {
			if v == 0 {
				survived++
			}
		}
	}

	got := float64(survived) / float64(trials)
	if absf(got-want) > want*0.5+0.01 {
		t.Fatalf("sample-0 survival rate = %v, want approximately %v", got, want)
	}
}

func TestReservoirBufferSampleCapsAtLength(t *testing.T) {
	buf := NewReservoirBuffer[int](10)
	rng := rand.New(rand.NewSource(2))
	buf.Offer(1, rng)
	buf.Offer(2, rng)

	sample := buf.Sample(5, rng)
	if len(sample) != 2 {
		t.Fatalf("Sample(5) len = %d, want 2 (bounded by buffer length)", len(sample))
	}
}

func TestNewReservoirBufferPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive capacity")
		}
	}()
	NewReservoirBuffer[int](0)
}
