package audio

import (
	"time"

	"github.com/lixenwraith/rainscape/parameter"
)

// ImpactPoolConfig holds the impact pool size and envelope range
type ImpactPoolConfig struct {
	PoolSize       int     `json:"poolSize"`
	EnableStealing bool    `json:"enableStealing"`
	Attack         float64 `json:"attack"`   // s
	DecayMin       float64 `json:"decayMin"` // s
	DecayMax       float64 `json:"decayMax"` // s
	Gain           float64 `json:"gain"`     // dB trim for the category
}

// DefaultImpactPoolConfig returns the tuned impact pool defaults
func DefaultImpactPoolConfig() ImpactPoolConfig {
	return ImpactPoolConfig{
		PoolSize:       parameter.DefaultImpactPoolSize,
		EnableStealing: true,
		Attack:         parameter.ImpactAttack,
		DecayMin:       parameter.ImpactDecayMin,
		DecayMax:       parameter.ImpactDecayMax,
		Gain:           0,
	}
}

// BubblePoolConfig holds the bubble pool size, envelope and chirp range
type BubblePoolConfig struct {
	PoolSize       int     `json:"poolSize"`
	EnableStealing bool    `json:"enableStealing"`
	Attack         float64 `json:"attack"`
	DecayMin       float64 `json:"decayMin"`
	DecayMax       float64 `json:"decayMax"`
	ChirpAmount    float64 `json:"chirpAmount"`
	ChirpTime      float64 `json:"chirpTime"`
	FreqMin        float64 `json:"freqMin"`
	FreqMax        float64 `json:"freqMax"`
	Gain           float64 `json:"gain"` // dB
}

// DefaultBubblePoolConfig returns the tuned bubble pool defaults
func DefaultBubblePoolConfig() BubblePoolConfig {
	return BubblePoolConfig{
		PoolSize:       parameter.DefaultBubblePoolSize,
		EnableStealing: true,
		Attack:         parameter.BubbleAttack,
		DecayMin:       parameter.BubbleDecayMin,
		DecayMax:       parameter.BubbleDecayMax,
		ChirpAmount:    parameter.BubbleChirpAmount,
		ChirpTime:      parameter.BubbleChirpTime,
		FreqMin:        parameter.BubbleFreqMin,
		FreqMax:        parameter.BubbleFreqMax,
		Gain:           -3,
	}
}

// ImpactSynthPool owns the impact transient voices and knows how to map
// computed AudioParams onto concrete synthesis parameters
type ImpactSynthPool struct {
	pool *VoicePool
	cfg  ImpactPoolConfig
	now  func() time.Time
}

// NewImpactSynthPool builds the pool; attach wires each synth into the bus
func NewImpactSynthPool(cfg ImpactPoolConfig, sampleRate int, seed int64, attach func(Synth), now func() time.Time) *ImpactSynthPool {
	if now == nil {
		now = time.Now
	}
	newSynth := func(id int) Synth {
		return newImpactSynth(sampleRate, seed+int64(id)*7919)
	}
	return &ImpactSynthPool{
		pool: NewVoicePool(VoicePoolConfig{Size: cfg.PoolSize, EnableStealing: cfg.EnableStealing}, newSynth, attach, now),
		cfg:  cfg,
		now:  now,
	}
}

// Trigger acquires and fires one impact voice. Returns false when the
// pool is exhausted with stealing disabled: the caller counts the drop
// and moves on.
func (sp *ImpactSynthPool) Trigger(params AudioParams, mat *MaterialConfig) bool {
	v := sp.pool.Acquire()
	if v == nil {
		return false
	}

	decay := clamp(params.Decay, sp.cfg.DecayMin, sp.cfg.DecayMax)
	v.Synth.Trigger(TriggerParams{
		Freq:       params.Frequency,
		Attack:     sp.cfg.Attack,
		Decay:      decay,
		Gain:       dbToGain(params.Volume + mat.GainOffset + sp.cfg.Gain),
		FilterFreq: params.FilterFreq,
		FilterQ:    mat.FilterQ,
		SynthType:  mat.ImpactSynthType,
	})
	sp.pool.Schedule(v, sp.now().Add(time.Duration(decay*float64(time.Second))))
	return true
}

// ActiveCount returns the number of sounding impact voices
func (sp *ImpactSynthPool) ActiveCount() int { return sp.pool.ActiveCount() }

// Stolen returns the cumulative impact steal count
func (sp *ImpactSynthPool) Stolen() uint64 { return sp.pool.Stolen() }

// Resize changes the pool capacity
func (sp *ImpactSynthPool) Resize(n int) {
	sp.pool.Resize(n)
	sp.cfg.PoolSize = sp.pool.Size()
}

// SetConfig applies a new envelope configuration and resizes the pool
func (sp *ImpactSynthPool) SetConfig(cfg ImpactPoolConfig) {
	sp.cfg = cfg
	sp.pool.SetStealing(cfg.EnableStealing)
	sp.pool.Resize(cfg.PoolSize)
	sp.cfg.PoolSize = sp.pool.Size()
}

// Config returns the current pool configuration
func (sp *ImpactSynthPool) Config() ImpactPoolConfig { return sp.cfg }

// Dispose destroys all impact voices
func (sp *ImpactSynthPool) Dispose() { sp.pool.Dispose() }

// BubbleSynthPool owns the resonant bubble voices
type BubbleSynthPool struct {
	pool *VoicePool
	cfg  BubblePoolConfig
	now  func() time.Time
}

// NewBubbleSynthPool builds the pool; attach wires each synth into the bus
func NewBubbleSynthPool(cfg BubblePoolConfig, sampleRate int, attach func(Synth), now func() time.Time) *BubbleSynthPool {
	if now == nil {
		now = time.Now
	}
	newSynth := func(id int) Synth {
		return newBubbleSynth(sampleRate)
	}
	return &BubbleSynthPool{
		pool: NewVoicePool(VoicePoolConfig{Size: cfg.PoolSize, EnableStealing: cfg.EnableStealing}, newSynth, attach, now),
		cfg:  cfg,
		now:  now,
	}
}

// Trigger acquires and fires one bubble voice; false means dropped
func (sp *BubbleSynthPool) Trigger(params AudioParams, mat *MaterialConfig) bool {
	v := sp.pool.Acquire()
	if v == nil {
		return false
	}

	decay := clamp(params.Decay, sp.cfg.DecayMin, sp.cfg.DecayMax)
	v.Synth.Trigger(TriggerParams{
		Freq:        clamp(params.Frequency, sp.cfg.FreqMin, sp.cfg.FreqMax),
		Attack:      sp.cfg.Attack,
		Decay:       decay,
		Gain:        dbToGain(params.Volume + mat.GainOffset + sp.cfg.Gain),
		Oscillator:  mat.BubbleOscillatorType,
		ChirpAmount: sp.cfg.ChirpAmount,
		ChirpTime:   sp.cfg.ChirpTime,
	})
	sp.pool.Schedule(v, sp.now().Add(time.Duration(decay*float64(time.Second))))
	return true
}

// ActiveCount returns the number of sounding bubble voices
func (sp *BubbleSynthPool) ActiveCount() int { return sp.pool.ActiveCount() }

// Stolen returns the cumulative bubble steal count
func (sp *BubbleSynthPool) Stolen() uint64 { return sp.pool.Stolen() }

// Resize changes the pool capacity
func (sp *BubbleSynthPool) Resize(n int) {
	sp.pool.Resize(n)
	sp.cfg.PoolSize = sp.pool.Size()
}

// SetConfig applies a new envelope configuration and resizes the pool
func (sp *BubbleSynthPool) SetConfig(cfg BubblePoolConfig) {
	sp.cfg = cfg
	sp.pool.SetStealing(cfg.EnableStealing)
	sp.pool.Resize(cfg.PoolSize)
	sp.cfg.PoolSize = sp.pool.Size()
}

// Config returns the current pool configuration
func (sp *BubbleSynthPool) Config() BubblePoolConfig { return sp.cfg }

// Dispose destroys all bubble voices
func (sp *BubbleSynthPool) Dispose() { sp.pool.Dispose() }
