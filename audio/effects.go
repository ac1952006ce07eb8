package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/rainscape/parameter"
)

// EQConfig is the 3-band shelf/peak equalizer gains in dB
type EQConfig struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// ReverbConfig shapes the Schroeder reverb tail
type ReverbConfig struct {
	Decay   float64 `json:"decay"`   // s, RT60
	Wetness float64 `json:"wetness"` // [0,1]
}

// EffectsConfig is the static send/insert chain configuration
type EffectsConfig struct {
	EQ              EQConfig     `json:"eq"`
	Reverb          ReverbConfig `json:"reverb"`
	SpatialPosition float64      `json:"spatialPosition"` // [-1,1]
	MasterVolume    float64      `json:"masterVolume"`    // dB; <= -60 mutes
}

// DefaultEffectsConfig returns the tuned effects defaults
func DefaultEffectsConfig() EffectsConfig {
	return EffectsConfig{
		Reverb:       ReverbConfig{Decay: 1.2, Wetness: 0.15},
		MasterVolume: -6,
	}
}

// Validate checks effects ranges
func (c *EffectsConfig) Validate() error {
	switch {
	case c.Reverb.Decay <= 0:
		return errInvalidField("effects.reverb.decay", "must be positive")
	case c.Reverb.Wetness < 0 || c.Reverb.Wetness > 1:
		return errInvalidField("effects.reverb.wetness", "outside [0,1]")
	case c.SpatialPosition < -1 || c.SpatialPosition > 1:
		return errInvalidField("effects.spatialPosition", "outside [-1,1]")
	}
	return nil
}

// EQ band corner frequencies
const (
	eqLowFreq  = 200.0
	eqMidFreq  = 1000.0
	eqHighFreq = 5000.0
	eqMidQ     = 0.8
)

// EffectsChain is the static output topology:
// bus -> 3-band EQ -> reverb -> muffle -> pan -> master gain.
// All parameter changes apply immediately; masterVolume at or below
// -60dB is a mute sentinel mapped to true silence.
type EffectsChain struct {
	eq     *eqStage
	reverb *reverbStage
	muffle *muffleStage
	pan    *effects.Pan
	master *effects.Volume
}

// NewEffectsChain wires the chain around the synthesis bus
func NewEffectsChain(source beep.Streamer, cfg EffectsConfig, sampleRate int) *EffectsChain {
	eq := newEQStage(source, cfg.EQ, sampleRate)
	rv := newReverbStage(eq, cfg.Reverb, sampleRate)
	mf := newMuffleStage(rv, sampleRate)
	pan := &effects.Pan{Streamer: mf, Pan: cfg.SpatialPosition}
	master := &effects.Volume{
		Streamer: pan,
		Base:     10,
		Volume:   cfg.MasterVolume / 20,
		Silent:   cfg.MasterVolume <= parameter.MuteFloorDB,
	}
	return &EffectsChain{eq: eq, reverb: rv, muffle: mf, pan: pan, master: master}
}

func (c *EffectsChain) Stream(samples [][2]float64) (n int, ok bool) {
	return c.master.Stream(samples)
}

func (c *EffectsChain) Err() error { return c.master.Err() }

// SetConfig applies a whole effects configuration atomically
func (c *EffectsChain) SetConfig(cfg EffectsConfig) {
	c.eq.set(cfg.EQ)
	c.reverb.set(cfg.Reverb)
	c.pan.Pan = clamp(cfg.SpatialPosition, -1, 1)
	c.SetMasterVolume(cfg.MasterVolume)
}

// Config returns the current effects configuration
func (c *EffectsChain) Config() EffectsConfig {
	return EffectsConfig{
		EQ:              c.eq.cfg,
		Reverb:          c.reverb.cfg,
		SpatialPosition: c.pan.Pan,
		MasterVolume:    c.masterDB(),
	}
}

// SetEQ updates the equalizer gains
func (c *EffectsChain) SetEQ(cfg EQConfig) { c.eq.set(cfg) }

// SetReverb updates decay and wetness
func (c *EffectsChain) SetReverb(cfg ReverbConfig) { c.reverb.set(cfg) }

// SetSpatialPosition updates the stereo pan in [-1,1]
func (c *EffectsChain) SetSpatialPosition(p float64) { c.pan.Pan = clamp(p, -1, 1) }

// SetMasterVolume updates the output gain; <= -60dB mutes fully
func (c *EffectsChain) SetMasterVolume(db float64) {
	c.master.Volume = db / 20
	c.master.Silent = db <= parameter.MuteFloorDB
}

func (c *EffectsChain) masterDB() float64 {
	if c.master.Silent {
		return parameter.MuteFloorDB
	}
	return c.master.Volume * 20
}

// SetMuffled toggles the global fullscreen attenuation insert; idempotent
func (c *EffectsChain) SetMuffled(on bool) { c.muffle.set(on) }

// Muffled reports the muffle insert state
func (c *EffectsChain) Muffled() bool { return c.muffle.enabled }

// --- EQ stage ---

type eqStage struct {
	source     beep.Streamer
	sampleRate float64
	cfg        EQConfig

	low  [2]biquad
	mid  [2]biquad
	high [2]biquad
}

func newEQStage(source beep.Streamer, cfg EQConfig, sampleRate int) *eqStage {
	s := &eqStage{source: source, sampleRate: float64(sampleRate)}
	s.set(cfg)
	return s
}

func (s *eqStage) set(cfg EQConfig) {
	s.cfg = cfg
	for ch := 0; ch < 2; ch++ {
		s.low[ch].setLowShelf(s.sampleRate, eqLowFreq, cfg.Low)
		s.mid[ch].setPeaking(s.sampleRate, eqMidFreq, eqMidQ, cfg.Mid)
		s.high[ch].setHighShelf(s.sampleRate, eqHighFreq, cfg.High)
	}
}

func (s *eqStage) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.source.Stream(samples)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			v := samples[i][ch]
			v = s.low[ch].process(v)
			v = s.mid[ch].process(v)
			v = s.high[ch].process(v)
			samples[i][ch] = v
		}
	}
	return n, ok
}

func (s *eqStage) Err() error { return s.source.Err() }

// --- Reverb stage (Schroeder topology) ---

// Freeverb comb/allpass tunings at 44.1kHz; the right channel runs
// slightly detuned for stereo width
var (
	combTunings    = [4]int{1116, 1188, 1277, 1356}
	allpassTunings = [2]int{556, 441}
)

const stereoSpread = 23

type comb struct {
	buf      []float64
	pos      int
	feedback float64
}

func (c *comb) process(x float64) float64 {
	y := c.buf[c.pos]
	c.buf[c.pos] = x + y*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return y
}

type allpass struct {
	buf []float64
	pos int
}

func (a *allpass) process(x float64) float64 {
	buffered := a.buf[a.pos]
	y := -x + buffered
	a.buf[a.pos] = x + buffered*0.5
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return y
}

type reverbStage struct {
	source     beep.Streamer
	sampleRate float64
	cfg        ReverbConfig

	combs     [2][4]comb
	allpasses [2][2]allpass
}

func newReverbStage(source beep.Streamer, cfg ReverbConfig, sampleRate int) *reverbStage {
	s := &reverbStage{source: source, sampleRate: float64(sampleRate)}
	scale := float64(sampleRate) / 44100.0
	for ch := 0; ch < 2; ch++ {
		spread := ch * stereoSpread
		for i, t := range combTunings {
			s.combs[ch][i].buf = make([]float64, int(float64(t+spread)*scale))
		}
		for i, t := range allpassTunings {
			s.allpasses[ch][i].buf = make([]float64, int(float64(t+spread)*scale))
		}
	}
	s.set(cfg)
	return s
}

func (s *reverbStage) set(cfg ReverbConfig) {
	s.cfg = cfg
	for ch := 0; ch < 2; ch++ {
		for i := range s.combs[ch] {
			// RT60: feedback^(decay/delaySec) = 1e-3
			delaySec := float64(len(s.combs[ch][i].buf)) / s.sampleRate
			s.combs[ch][i].feedback = math.Pow(10, -3*delaySec/math.Max(cfg.Decay, 1e-3))
		}
	}
}

func (s *reverbStage) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.source.Stream(samples)
	wet := s.cfg.Wetness
	if wet <= 0 {
		return n, ok
	}
	dry := 1 - wet
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			r := 0.0
			for j := range s.combs[ch] {
				r += s.combs[ch][j].process(x)
			}
			r *= 0.25
			for j := range s.allpasses[ch] {
				r = s.allpasses[ch][j].process(r)
			}
			samples[i][ch] = x*dry + r*wet
		}
	}
	return n, ok
}

func (s *reverbStage) Err() error { return s.source.Err() }

// --- Muffle stage ---

// muffleStage is the fullscreen attenuation insert: a one-pole lowpass
// plus a fixed gain cut, bypassed when disabled
type muffleStage struct {
	source  beep.Streamer
	enabled bool
	coeff   float64
	gain    float64
	state   [2]float64
}

func newMuffleStage(source beep.Streamer, sampleRate int) *muffleStage {
	coeff := 1 - math.Exp(-2*math.Pi*parameter.MuffleCutoffHz/float64(sampleRate))
	return &muffleStage{
		source: source,
		coeff:  coeff,
		gain:   dbToGain(parameter.MuffleGainDB),
	}
}

func (s *muffleStage) set(on bool) {
	if on == s.enabled {
		return
	}
	s.enabled = on
	s.state[0] = 0
	s.state[1] = 0
}

func (s *muffleStage) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.source.Stream(samples)
	if !s.enabled {
		return n, ok
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			s.state[ch] += s.coeff * (samples[i][ch] - s.state[ch])
			samples[i][ch] = s.state[ch] * s.gain
		}
	}
	return n, ok
}

func (s *muffleStage) Err() error { return s.source.Err() }
