package vmath

// FastRand is a xorshift64 PRNG for audio-rate stochastic decisions.
// Not cryptographic; cheap enough for per-collision and per-sample use.
// Zero value is invalid, use NewFastRand.
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a uniform value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// Range returns a uniform value in [min, max)
func (r *FastRand) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
