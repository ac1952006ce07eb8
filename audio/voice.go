package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/rainscape/core"
)

// Synth is one owned synthesis resource. Each Synth belongs to exactly
// one pool voice and stays attached to its bus mixer for its whole life:
// it streams silence while idle and is re-triggered in place, so the hot
// path never allocates or touches the mixer.
type Synth interface {
	beep.Streamer
	Trigger(p TriggerParams)
	Silence()
	Destroy()
}

// TriggerParams are the concrete synthesis parameters applied on trigger
type TriggerParams struct {
	Freq       float64 // Hz
	Attack     float64 // s
	Decay      float64 // s
	Gain       float64 // linear
	FilterFreq float64 // Hz
	FilterQ    float64

	SynthType  core.SynthType      // impact voices
	Oscillator core.OscillatorType // bubble voices

	ChirpAmount float64 // bubble pitch drift fraction
	ChirpTime   float64 // s
}

// Voice is a pool slot pairing an id with its synth handle.
// busy and releaseTime are owned by the pool.
type Voice struct {
	ID    int
	Synth Synth

	busy        bool
	releaseTime time.Time
}

// ReleaseTime returns the time the voice is expected to fall idle
func (v *Voice) ReleaseTime() time.Time {
	return v.releaseTime
}

// Busy reports whether the voice is currently sounding
func (v *Voice) Busy() bool {
	return v.busy
}

// metalRatios are inharmonic partial ratios for the metal impact model,
// loosely following circular plate modes
var metalRatios = [4]float64{1.0, 2.756, 5.404, 8.933}

// impactSynth renders one impact transient: a short attack/decay
// envelope over a noise burst, a pitch-dropping membrane sine, or an
// inharmonic metal partial stack, through a lowpass shaped by the
// material filter settings.
type impactSynth struct {
	sampleRate float64

	synthType core.SynthType
	freq      float64
	gain      float64

	noise  noiseGen
	filter biquad

	phase     float64
	modPhases [4]float64

	envPos        int
	attackSamples int
	totalSamples  int
	decaySec      float64

	active bool
	dead   bool
}

func newImpactSynth(sampleRate int, seed int64) *impactSynth {
	return &impactSynth{
		sampleRate: float64(sampleRate),
		noise:      newNoiseGen(core.NoiseWhite, seed),
	}
}

func (s *impactSynth) Trigger(p TriggerParams) {
	s.synthType = p.SynthType
	s.freq = p.Freq
	s.gain = p.Gain
	s.phase = 0
	for i := range s.modPhases {
		s.modPhases[i] = 0
	}
	s.filter.setLowpass(s.sampleRate, p.FilterFreq, p.FilterQ)
	s.filter.reset()

	s.attackSamples = secondsToSamples(p.Attack, int(s.sampleRate))
	s.totalSamples = s.attackSamples + secondsToSamples(p.Decay, int(s.sampleRate))
	s.decaySec = p.Decay
	s.envPos = 0
	s.active = true
}

func (s *impactSynth) Silence() {
	s.active = false
}

func (s *impactSynth) Destroy() {
	s.active = false
	s.dead = true
}

func (s *impactSynth) Stream(samples [][2]float64) (n int, ok bool) {
	if s.dead {
		return 0, false
	}
	for i := range samples {
		v := 0.0
		if s.active {
			v = s.sample()
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *impactSynth) Err() error { return nil }

func (s *impactSynth) sample() float64 {
	if s.envPos >= s.totalSamples {
		s.active = false
		return 0
	}

	var raw float64
	switch s.synthType {
	case core.SynthMembrane:
		// Pitch drops toward the fundamental as the head settles
		t := float64(s.envPos) / s.sampleRate
		freq := s.freq * (1 + 2*math.Exp(-30*t))
		raw = math.Sin(2 * math.Pi * s.phase)
		s.phase += freq / s.sampleRate
		if s.phase >= 1.0 {
			s.phase -= 1.0
		}
	case core.SynthMetal:
		t := float64(s.envPos) / s.sampleRate
		for i, ratio := range metalRatios {
			// Higher partials ring shorter
			partialEnv := math.Exp(-t * 3 * float64(i+1) / math.Max(s.decaySec, 1e-3))
			raw += math.Sin(2*math.Pi*s.modPhases[i]) * partialEnv / float64(i+2)
			s.modPhases[i] += s.freq * ratio / s.sampleRate
			if s.modPhases[i] >= 1.0 {
				s.modPhases[i] -= 1.0
			}
		}
	default: // core.SynthNoise
		raw = s.noise.next()
	}

	raw = s.filter.process(raw)
	env := s.envelope()
	s.envPos++
	return raw * env * s.gain
}

func (s *impactSynth) envelope() float64 {
	if s.envPos < s.attackSamples && s.attackSamples > 0 {
		return float64(s.envPos) / float64(s.attackSamples)
	}
	t := float64(s.envPos-s.attackSamples) / s.sampleRate
	// -60dB at the scheduled decay time
	return math.Exp(-6.908 * t / math.Max(s.decaySec, 1e-3))
}

// bubbleSynth renders the resonant bubble chime of a drop entraining
// air: a single oscillator with an upward Minnaert chirp and an
// exponential decay.
type bubbleSynth struct {
	sampleRate float64

	osc  core.OscillatorType
	freq float64
	gain float64

	chirpAmount float64
	chirpTime   float64

	phase float64

	envPos        int
	attackSamples int
	totalSamples  int
	decaySec      float64

	active bool
	dead   bool
}

func newBubbleSynth(sampleRate int) *bubbleSynth {
	return &bubbleSynth{sampleRate: float64(sampleRate)}
}

func (s *bubbleSynth) Trigger(p TriggerParams) {
	s.osc = p.Oscillator
	s.freq = p.Freq
	s.gain = p.Gain
	s.chirpAmount = p.ChirpAmount
	s.chirpTime = p.ChirpTime
	s.phase = 0

	s.attackSamples = secondsToSamples(p.Attack, int(s.sampleRate))
	s.totalSamples = s.attackSamples + secondsToSamples(p.Decay, int(s.sampleRate))
	s.decaySec = p.Decay
	s.envPos = 0
	s.active = true
}

func (s *bubbleSynth) Silence() {
	s.active = false
}

func (s *bubbleSynth) Destroy() {
	s.active = false
	s.dead = true
}

func (s *bubbleSynth) Stream(samples [][2]float64) (n int, ok bool) {
	if s.dead {
		return 0, false
	}
	for i := range samples {
		v := 0.0
		if s.active {
			v = s.sample()
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *bubbleSynth) Err() error { return nil }

func (s *bubbleSynth) sample() float64 {
	if s.envPos >= s.totalSamples {
		s.active = false
		return 0
	}

	var raw float64
	switch s.osc {
	case core.OscTriangle:
		raw = 1 - 4*math.Abs(s.phase-0.5)
	case core.OscSquare:
		if s.phase < 0.5 {
			raw = 1.0
		} else {
			raw = -1.0
		}
	case core.OscSawtooth:
		raw = 2.0 * (s.phase - 0.5)
	default: // core.OscSine
		raw = math.Sin(2 * math.Pi * s.phase)
	}

	// Shrinking bubble rings upward
	t := float64(s.envPos) / s.sampleRate
	chirp := 1.0
	if s.chirpTime > 0 {
		chirp = 1 + s.chirpAmount*math.Min(t/s.chirpTime, 1)
	}
	s.phase += s.freq * chirp / s.sampleRate
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}

	env := s.envelope()
	s.envPos++
	return raw * env * s.gain
}

func (s *bubbleSynth) envelope() float64 {
	if s.envPos < s.attackSamples && s.attackSamples > 0 {
		return float64(s.envPos) / float64(s.attackSamples)
	}
	t := float64(s.envPos-s.attackSamples) / s.sampleRate
	return math.Exp(-6.908 * t / math.Max(s.decaySec, 1e-3))
}
