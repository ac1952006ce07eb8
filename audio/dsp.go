package audio

import (
	"math"

	"github.com/lixenwraith/rainscape/core"
)

// dbToGain converts decibels to linear amplitude
func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// lerp interpolates linearly between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// clamp bounds v into [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- Noise sources ---

// noiseGen produces white, pink, or brown noise from a cheap LCG,
// avoiding the global rand lock on the sample path
type noiseGen struct {
	kind core.NoiseType
	seed int64

	// Pink filter state (Kellet economy)
	p0, p1, p2 float64

	// Brown integrator state
	last float64
}

func newNoiseGen(kind core.NoiseType, seed int64) noiseGen {
	if seed == 0 {
		seed = 1
	}
	return noiseGen{kind: kind, seed: seed}
}

func (n *noiseGen) setKind(kind core.NoiseType) {
	n.kind = kind
	n.p0, n.p1, n.p2 = 0, 0, 0
	n.last = 0
}

// next returns one sample in approximately [-1, 1]
func (n *noiseGen) next() float64 {
	n.seed = (n.seed*1103515245 + 12345) & 0x7fffffff
	white := float64(n.seed)/float64(0x3fffffff) - 1.0

	switch n.kind {
	case core.NoisePink:
		n.p0 = 0.99765*n.p0 + white*0.0990460
		n.p1 = 0.96300*n.p1 + white*0.2965164
		n.p2 = 0.57000*n.p2 + white*1.0526913
		return (n.p0 + n.p1 + n.p2 + white*0.1848) * 0.2
	case core.NoiseBrown:
		n.last = (n.last + 0.02*white) / 1.02
		return n.last * 3.5
	default:
		return white
	}
}

// --- Biquad filter (RBJ cookbook designs) ---

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

func (f *biquad) set(b0, b1, b2, a0, a1, a2 float64) {
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *biquad) setLowpass(sampleRate, freq, q float64) {
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * clamp(q, 0.1, 20))
	f.set((1-cw)/2, 1-cw, (1-cw)/2, 1+alpha, -2*cw, 1-alpha)
}

func (f *biquad) setHighpass(sampleRate, freq, q float64) {
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * clamp(q, 0.1, 20))
	f.set((1+cw)/2, -(1 + cw), (1+cw)/2, 1+alpha, -2*cw, 1-alpha)
}

func (f *biquad) setBandpass(sampleRate, freq, q float64) {
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * clamp(q, 0.1, 20))
	f.set(alpha, 0, -alpha, 1+alpha, -2*cw, 1-alpha)
}

func (f *biquad) setLowShelf(sampleRate, freq, gainDB float64) {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / 2 * math.Sqrt2
	sq := 2 * math.Sqrt(a) * alpha
	f.set(
		a*((a+1)-(a-1)*cw+sq),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-sq),
		(a+1)+(a-1)*cw+sq,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-sq,
	)
}

func (f *biquad) setHighShelf(sampleRate, freq, gainDB float64) {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / 2 * math.Sqrt2
	sq := 2 * math.Sqrt(a) * alpha
	f.set(
		a*((a+1)+(a-1)*cw+sq),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-sq),
		(a+1)-(a-1)*cw+sq,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-sq,
	)
}

func (f *biquad) setPeaking(sampleRate, freq, q, gainDB float64) {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * clampFreq(freq, sampleRate) / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * clamp(q, 0.1, 20))
	f.set(1+alpha*a, -2*cw, 1-alpha*a, 1+alpha/a, -2*cw, 1-alpha/a)
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// clampFreq keeps filter corner frequencies below Nyquist
func clampFreq(freq, sampleRate float64) float64 {
	return clamp(freq, 10, sampleRate*0.45)
}

// secondsToSamples converts a duration in seconds to a sample count
func secondsToSamples(sec float64, sampleRate int) int {
	n := int(sec * float64(sampleRate))
	if n < 0 {
		return 0
	}
	return n
}
