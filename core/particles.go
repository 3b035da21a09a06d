package core

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	DefaultParticleCount = 20000
	DefaultSpread        = 5.0
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// ParticleBuffer holds per-particle data as flat parallel slices.
// Entries 3*i..3*i+2 belong to particle i. The buffer is not mutated after
// Generate returns.
type ParticleBuffer struct {
	Positions []float32
	Colors    []float32
}

// Count returns the number of particles.
func (b *ParticleBuffer) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Positions) / 3
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Generate fills count particles inside a cube of half-width spread centered
// at the origin. Every scalar is drawn independently: for each slot the
// position value is drawn first, then the color value.
func Generate(count int, spread float32, src RandomSource) (*ParticleBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("particle count %d must be positive: %w", count, ErrInvalidArgument)
	}
	if !(spread > 0) || math.IsInf(float64(spread), 0) {
		return nil, fmt.Errorf("spread %v must be a positive finite number: %w", spread, ErrInvalidArgument)
	}
	if src == nil {
		return nil, fmt.Errorf("random source is nil: %w", ErrInvalidArgument)
	}

	n := count * 3
	buf := &ParticleBuffer{
		Positions: make([]float32, n),
		Colors:    make([]float32, n),
	}

	h := float64(spread)
	for j := 0; j < n; j++ {
		buf.Positions[j] = float32((src.Float64()*2 - 1) * h)
		buf.Colors[j] = float32(src.Float64())
	}

	return buf, nil
}

// Bounds returns the axis-aligned min/max corners of the positions.
func (b *ParticleBuffer) Bounds() (min, max [3]float32) {
	if b.Count() == 0 {
		return
	}
	copy(min[:], b.Positions[:3])
	copy(max[:], b.Positions[:3])
	for i := 3; i+2 < len(b.Positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := b.Positions[i+k]
			if v < min[k] {
				min[k] = v
			}
			if v > max[k] {
				max[k] = v
			}
		}
	}
	return
}
