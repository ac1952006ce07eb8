package audio

import (
	"math"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
	"github.com/lixenwraith/rainscape/vmath"
)

// WindConfig shapes the continuous wind bed and its gust scheduler
type WindConfig struct {
	Enabled   bool           `json:"enabled"`
	NoiseType core.NoiseType `json:"noiseType"`
	BaseGain  float64        `json:"baseGain"` // dB
	LPFFreq   float64        `json:"lpfFreq"`
	HPFFreq   float64        `json:"hpfFreq"`
	LFORate   float64        `json:"lfoRate"` // Hz
	LFODepth  float64        `json:"lfoDepth"`

	GustMinInterval float64 `json:"gustMinInterval"` // s
	GustMaxInterval float64 `json:"gustMaxInterval"`
	GustRiseTime    float64 `json:"gustRiseTime"`
	GustFallTime    float64 `json:"gustFallTime"`
	GustMinLevel    float64 `json:"gustMinLevel"`
	GustMaxLevel    float64 `json:"gustMaxLevel"`
}

// DefaultWindConfig returns the tuned wind defaults
func DefaultWindConfig() WindConfig {
	return WindConfig{
		Enabled:         true,
		NoiseType:       core.NoisePink,
		BaseGain:        parameter.WindBaseGain,
		LPFFreq:         parameter.WindLPFFreq,
		HPFFreq:         parameter.WindHPFFreq,
		LFORate:         parameter.WindLFORate,
		LFODepth:        parameter.WindLFODepth,
		GustMinInterval: parameter.WindGustMinInterval,
		GustMaxInterval: parameter.WindGustMaxInterval,
		GustRiseTime:    parameter.WindGustRiseTime,
		GustFallTime:    parameter.WindGustFallTime,
		GustMinLevel:    parameter.WindGustMinLevel,
		GustMaxLevel:    parameter.WindGustMaxLevel,
	}
}

// Validate checks wind ranges
func (c *WindConfig) Validate() error {
	switch {
	case !c.NoiseType.Valid():
		return errInvalidField("wind.noiseType", string(c.NoiseType))
	case c.LPFFreq <= 0 || c.HPFFreq <= 0:
		return errInvalidField("wind filter frequencies", "must be positive")
	case c.LFORate < 0 || c.LFODepth < 0 || c.LFODepth > 1:
		return errInvalidField("wind.lfo", "rate >= 0, depth in [0,1]")
	case c.GustMinInterval <= 0 || c.GustMaxInterval < c.GustMinInterval:
		return errInvalidField("wind gust interval", "max must be >= min > 0")
	case c.GustMinLevel < 0 || c.GustMaxLevel < c.GustMinLevel:
		return errInvalidField("wind gust level", "max must be >= min >= 0")
	}
	return nil
}

// gust phases
const (
	gustWait = iota
	gustRise
	gustFall
)

// WindLayer is a continuous wind bed: band-filtered noise with slow LFO
// amplitude movement and stochastic gusts riding on top.
type WindLayer struct {
	sampleRate float64
	cfg        WindConfig

	noise noiseGen
	hpf   biquad
	lpf   biquad
	rng   *vmath.FastRand

	lfoPhase float64
	baseGain float64 // linear

	gustPhase   int
	gustSamples int // countdown within the current phase
	gustLevel   float64
	gustEnv     float64
}

// NewWindLayer builds the layer; rng drives the gust schedule
func NewWindLayer(cfg WindConfig, sampleRate int, rng *vmath.FastRand) *WindLayer {
	w := &WindLayer{
		sampleRate: float64(sampleRate),
		noise:      newNoiseGen(cfg.NoiseType, int64(rng.Next()|1)),
		rng:        rng,
	}
	w.SetConfig(cfg)
	return w
}

// SetConfig swaps the wind configuration and rebuilds filters
func (w *WindLayer) SetConfig(cfg WindConfig) {
	w.cfg = cfg
	w.noise.setKind(cfg.NoiseType)
	w.hpf.setHighpass(w.sampleRate, cfg.HPFFreq, 0.707)
	w.lpf.setLowpass(w.sampleRate, cfg.LPFFreq, 0.707)
	w.hpf.reset()
	w.lpf.reset()
	w.baseGain = dbToGain(cfg.BaseGain)
	w.gustPhase = gustWait
	w.gustSamples = w.randomInterval()
	w.gustEnv = 0
}

// Config returns the current configuration
func (w *WindLayer) Config() WindConfig { return w.cfg }

func (w *WindLayer) randomInterval() int {
	sec := w.rng.Range(w.cfg.GustMinInterval, w.cfg.GustMaxInterval)
	return secondsToSamples(sec, int(w.sampleRate))
}

func (w *WindLayer) advanceGust() {
	w.gustSamples--
	if w.gustSamples > 0 {
		switch w.gustPhase {
		case gustRise:
			rise := secondsToSamples(w.cfg.GustRiseTime, int(w.sampleRate))
			if rise > 0 {
				w.gustEnv = w.gustLevel * (1 - float64(w.gustSamples)/float64(rise))
			}
		case gustFall:
			fall := secondsToSamples(w.cfg.GustFallTime, int(w.sampleRate))
			if fall > 0 {
				w.gustEnv = w.gustLevel * float64(w.gustSamples) / float64(fall)
			}
		}
		return
	}

	switch w.gustPhase {
	case gustWait:
		w.gustPhase = gustRise
		w.gustLevel = w.rng.Range(w.cfg.GustMinLevel, w.cfg.GustMaxLevel)
		w.gustSamples = secondsToSamples(w.cfg.GustRiseTime, int(w.sampleRate))
	case gustRise:
		w.gustPhase = gustFall
		w.gustEnv = w.gustLevel
		w.gustSamples = secondsToSamples(w.cfg.GustFallTime, int(w.sampleRate))
	case gustFall:
		w.gustPhase = gustWait
		w.gustEnv = 0
		w.gustSamples = w.randomInterval()
	}
	if w.gustSamples <= 0 {
		w.gustSamples = 1
	}
}

func (w *WindLayer) Stream(samples [][2]float64) (n int, ok bool) {
	if !w.cfg.Enabled {
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}

	lfoInc := w.cfg.LFORate / w.sampleRate
	for i := range samples {
		w.advanceGust()

		lfo := 1 - w.cfg.LFODepth + w.cfg.LFODepth*(0.5+0.5*math.Sin(2*math.Pi*w.lfoPhase))
		w.lfoPhase += lfoInc
		if w.lfoPhase >= 1.0 {
			w.lfoPhase -= 1.0
		}

		v := w.lpf.process(w.hpf.process(w.noise.next()))
		v *= w.baseGain * lfo * (1 + w.gustEnv)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (w *WindLayer) Err() error { return nil }
