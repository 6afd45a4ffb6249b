package core

import (
	"hash/fnv"
	"os"
	"strconv"
	"time"
)

const (
	fastRandMask = 0x7FFF

	// FastRandMax is the largest value returned by Random.Next
	FastRandMax = fastRandMask
)

// Random is a linear congruential generator producing 15-bit values.
// It is a single stream consumed in call order, so a fixed seed and call
// sequence always reproduce the same numbers. Not safe for concurrent use.
type Random struct {
	seed int32
}

// NewRandom creates a generator with the given seed
func NewRandom(seed int32) *Random {
	return &Random{seed: seed}
}

// NewRandomFromEntropy seeds a generator from the clock and process id
func NewRandomFromEntropy() *Random {
	h := fnv.New64a()
	h.Write([]byte(time.Now().String()))
	h.Write([]byte(strconv.Itoa(os.Getpid())))
	sum := h.Sum64()
	return NewRandom(int32(sum^(sum>>32)) & fastRandMask)
}

// Next returns a pseudo-random number in [0, FastRandMax]
func (r *Random) Next() int32 {
	// int32 arithmetic wraps on overflow
	r.seed = 214013*r.seed + 2531011
	return (r.seed >> 16) & fastRandMask
}

// Float64 returns a pseudo-random number in [0, 1]
func (r *Random) Float64() float64 {
	return float64(r.Next()) / FastRandMax
}

// InsideSphere returns a uniformly distributed point inside a sphere of the
// given radius, using rejection sampling on the enclosing cube.
func (r *Random) InsideSphere(radius float64) Vec3 {
	for {
		v := NewVec3(
			float64(r.Next())/(FastRandMax/2.0)-1,
			float64(r.Next())/(FastRandMax/2.0)-1,
			float64(r.Next())/(FastRandMax/2.0)-1,
		)
		if v.LengthSquared() <= 1 {
			return v.Multiply(radius)
		}
	}
}
