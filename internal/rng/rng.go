// Package rng provides the seeded random source behind scenario generation.
//
// Every draw is reproducible: the same seed always yields the same sequence,
// and Fork derives an isolated child generator from a string namespace so
// that draws in one subsystem never perturb another. The fork hash and the
// underlying PCG source are both fixed algorithms, so sequences are stable
// across runs, platforms, and versions.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

// pcgStreamSalt differentiates the two PCG state words derived from one seed.
const pcgStreamSalt = 0x9e3779b97f4a7c15

// Rand is a deterministic random source. It is not safe for concurrent use;
// a simulation run owns its Rand (and every fork of it) exclusively.
type Rand struct {
	seed uint32
	src  *rand.Rand
}

// New returns a Rand seeded with the given 32-bit seed.
func New(seed uint32) *Rand {
	return &Rand{
		seed: seed,
		src:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^pcgStreamSalt)),
	}
}

// Seed returns the seed this generator was created with.
func (r *Rand) Seed() uint32 { return r.seed }

// Fork derives an independent child generator for a sub-component.
//
// The child seed is the first four bytes of SHA-256(be64(seed) ":" namespace).
// Same parent seed and namespace always produce the same child, and draws
// taken from one namespace never affect the sequence of another.
func (r *Rand) Fork(namespace string) *Rand {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(r.seed))
	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(":"))
	h.Write([]byte(namespace))
	sum := h.Sum(nil)
	return New(binary.BigEndian.Uint32(sum[:4]))
}

// Boolean reports true with the given probability.
func (r *Rand) Boolean(trueProbability float64) bool {
	return r.src.Float64() < trueProbability
}

// Integer returns a random integer in [minVal, maxVal], both ends inclusive.
// Panics if maxVal < minVal.
func (r *Rand) Integer(minVal, maxVal int) int {
	if maxVal < minVal {
		panic(fmt.Sprintf("rng: Integer range inverted: [%d, %d]", minVal, maxVal))
	}
	return minVal + r.src.IntN(maxVal-minVal+1)
}

// Uniform returns a random float in [minVal, maxVal).
func (r *Rand) Uniform(minVal, maxVal float64) float64 {
	return minVal + r.src.Float64()*(maxVal-minVal)
}

// Gauss returns a random float from the Gaussian distribution N(mu, sigma).
func (r *Rand) Gauss(mu, sigma float64) float64 {
	return mu + sigma*r.src.NormFloat64()
}

// Triangular returns a random float from the triangular distribution over
// [low, high] peaking at mode.
func (r *Rand) Triangular(low, high, mode float64) float64 {
	if high == low {
		return low
	}
	u := r.src.Float64()
	c := (mode - low) / (high - low)
	if u < c {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// Choice returns a random element of a non-empty slice. Panics on an empty
// slice; callers gate on emptiness before drawing.
func Choice[T any](r *Rand, seq []T) T {
	if len(seq) == 0 {
		panic("rng: Choice on empty slice")
	}
	return seq[r.src.IntN(len(seq))]
}

// Choices returns k elements drawn with replacement.
func Choices[T any](r *Rand, seq []T, k int) []T {
	if len(seq) == 0 {
		panic("rng: Choices on empty slice")
	}
	out := make([]T, k)
	for i := range out {
		out[i] = seq[r.src.IntN(len(seq))]
	}
	return out
}

// WeightedChoice returns one element of options with probability proportional
// to its weight. A non-positive weight total is a programming error in the
// caller's weight table and is reported, never silently defaulted.
func WeightedChoice[T any](r *Rand, options []T, weights []float64) (T, error) {
	var zero T
	if len(options) == 0 || len(options) != len(weights) {
		return zero, fmt.Errorf("rng: weighted choice needs matching non-empty options and weights, got %d/%d", len(options), len(weights))
	}
	var total float64
	for _, w := range weights {
		if w < 0 {
			return zero, fmt.Errorf("rng: negative weight %g", w)
		}
		total += w
	}
	if total <= 0 {
		return zero, fmt.Errorf("rng: total of weights must be greater than zero")
	}
	target := r.src.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if target < acc {
			return options[i], nil
		}
	}
	// Float accumulation can leave target == total; the last viable option wins.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return options[i], nil
		}
	}
	return zero, fmt.Errorf("rng: weighted choice fell through")
}

// Sample returns k unique elements of seq, in draw order. Panics if k exceeds
// the sequence length.
func Sample[T any](r *Rand, seq []T, k int) []T {
	if k < 0 || k > len(seq) {
		panic(fmt.Sprintf("rng: Sample of %d from %d elements", k, len(seq)))
	}
	pool := make([]T, len(seq))
	copy(pool, seq)
	for i := 0; i < k; i++ {
		j := i + r.src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Shuffle permutes seq in place.
func Shuffle[T any](r *Rand, seq []T) {
	r.src.Shuffle(len(seq), func(i, j int) {
		seq[i], seq[j] = seq[j], seq[i]
	})
}
