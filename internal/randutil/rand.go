package randutil

import (
	"math/rand"
	randv2 "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64,
// backed by rand/v2's PCG generator wrapped to satisfy the v1 rand.Source
// interface every call site in this module still uses.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	src := randv2.NewPCG(mix(u), mix(u+goldenRatio64))
	return rand.New(&pcgSource{src: src})
}

// pcgSource adapts a rand/v2.PCG to the rand.Source interface.
type pcgSource struct {
	src *randv2.PCG
}

func (s *pcgSource) Int63() int64 {
	return int64(s.src.Uint64() >> 1)
}

func (s *pcgSource) Seed(seed int64) {
	u := uint64(seed)
	*s.src = *randv2.NewPCG(mix(u), mix(u+goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
