package audio

import (
	"math"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
	"github.com/lixenwraith/rainscape/vmath"
)

// ThunderConfig schedules distant thunder strikes
type ThunderConfig struct {
	Enabled     bool    `json:"enabled"`
	MasterGain  float64 `json:"masterGain"`  // dB
	MinInterval float64 `json:"minInterval"` // s between strikes
	MaxInterval float64 `json:"maxInterval"`
	MinDistance float64 `json:"minDistance"` // km
	MaxDistance float64 `json:"maxDistance"`
}

// DefaultThunderConfig returns the tuned thunder defaults (disabled)
func DefaultThunderConfig() ThunderConfig {
	return ThunderConfig{
		Enabled:     false,
		MasterGain:  parameter.ThunderMasterGain,
		MinInterval: parameter.ThunderMinInterval,
		MaxInterval: parameter.ThunderMaxInterval,
		MinDistance: parameter.ThunderMinDistance,
		MaxDistance: parameter.ThunderMaxDistance,
	}
}

// Validate checks thunder ranges
func (c *ThunderConfig) Validate() error {
	switch {
	case c.MinInterval <= 0 || c.MaxInterval < c.MinInterval:
		return errInvalidField("thunder interval", "max must be >= min > 0")
	case c.MinDistance <= 0 || c.MaxDistance < c.MinDistance:
		return errInvalidField("thunder distance", "max must be >= min > 0")
	}
	return nil
}

// Thunder generates occasional distant strikes: a short crack transient,
// a brown-noise body, and a sub rumble, all attenuated and darkened with
// strike distance. Scheduling runs on the sample clock.
type Thunder struct {
	sampleRate float64
	cfg        ThunderConfig

	noise noiseGen
	lpf   biquad
	rng   *vmath.FastRand

	countdown int // samples to next strike

	// Strike state
	striking     bool
	strikePos    int
	strikeLen    int
	strikeGain   float64
	crackPhase   float64
	rumblePhase  float64
	rumbleLFO    float64
	bodyDecaySec float64
}

// NewThunder builds the generator; rng drives the strike schedule
func NewThunder(cfg ThunderConfig, sampleRate int, rng *vmath.FastRand) *Thunder {
	t := &Thunder{
		sampleRate: float64(sampleRate),
		noise:      newNoiseGen(core.NoiseBrown, int64(rng.Next()|1)),
		rng:        rng,
	}
	t.SetConfig(cfg)
	return t
}

// SetConfig swaps the thunder configuration and reschedules
func (t *Thunder) SetConfig(cfg ThunderConfig) {
	t.cfg = cfg
	t.striking = false
	t.countdown = t.randomInterval()
}

// Config returns the current configuration
func (t *Thunder) Config() ThunderConfig { return t.cfg }

func (t *Thunder) randomInterval() int {
	sec := t.rng.Range(t.cfg.MinInterval, t.cfg.MaxInterval)
	n := secondsToSamples(sec, int(t.sampleRate))
	if n <= 0 {
		n = 1
	}
	return n
}

// strike initializes one distance-scaled thunder event
func (t *Thunder) strike() {
	dist := t.rng.Range(t.cfg.MinDistance, t.cfg.MaxDistance)

	// 1.2dB/km air absorption on top of the configured master gain
	t.strikeGain = dbToGain(t.cfg.MasterGain - dist*1.2)

	// Distance darkens the spectrum
	t.lpf.setLowpass(t.sampleRate, 2000/math.Max(dist*0.3, 1), 0.707)
	t.lpf.reset()

	// Farther strikes rumble longer
	t.bodyDecaySec = 1.5 + dist*0.3
	t.strikeLen = secondsToSamples(t.bodyDecaySec*3, int(t.sampleRate))
	t.strikePos = 0
	t.crackPhase = 0
	t.rumblePhase = 0
	t.rumbleLFO = 0
	t.striking = true
}

func (t *Thunder) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := 0.0
		if t.cfg.Enabled {
			if !t.striking {
				t.countdown--
				if t.countdown <= 0 {
					t.strike()
				}
			}
			if t.striking {
				v = t.sample()
			}
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (t *Thunder) Err() error { return nil }

func (t *Thunder) sample() float64 {
	if t.strikePos >= t.strikeLen {
		t.striking = false
		t.countdown = t.randomInterval()
		return 0
	}

	sec := float64(t.strikePos) / t.sampleRate

	// Crack: harmonic burst, gone within ~300ms
	crack := 0.0
	if sec < 0.3 {
		crackEnv := math.Exp(-sec * 12)
		for h := 1; h <= 5; h++ {
			crack += math.Sin(2*math.Pi*t.crackPhase*float64(h)) / float64(h)
		}
		crack *= crackEnv * 0.4
	}
	t.crackPhase += 80.0 / t.sampleRate
	if t.crackPhase >= 1.0 {
		t.crackPhase -= 1.0
	}

	// Body: filtered brown noise with slow decay
	body := t.noise.next() * math.Exp(-sec/t.bodyDecaySec) * 0.8

	// Rumble: sub oscillator wobbling at ~0.3Hz
	t.rumbleLFO += 0.3 / t.sampleRate
	rumble := math.Sin(2*math.Pi*t.rumblePhase) *
		(0.6 + 0.4*math.Sin(2*math.Pi*t.rumbleLFO)) *
		math.Exp(-sec/(t.bodyDecaySec*1.5)) * 0.3
	t.rumblePhase += 35.0 / t.sampleRate
	if t.rumblePhase >= 1.0 {
		t.rumblePhase -= 1.0
	}

	t.strikePos++
	return t.lpf.process(crack+body+rumble) * t.strikeGain
}
