package audio

import (
	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
)

// SheetLayerConfig shapes the ambient rain-sheet noise bed
type SheetLayerConfig struct {
	NoiseType        core.NoiseType  `json:"noiseType"`
	FilterType       core.FilterType `json:"filterType"`
	FilterFreq       float64         `json:"filterFreq"`
	FilterQ          float64         `json:"filterQ"`
	MinVolume        float64         `json:"minVolume"` // dB at zero particles
	MaxVolume        float64         `json:"maxVolume"` // dB at MaxParticleCount
	MaxParticleCount int             `json:"maxParticleCount"`
	RampTime         float64         `json:"rampTime"` // s
}

// DefaultSheetLayerConfig returns the tuned sheet defaults
func DefaultSheetLayerConfig() SheetLayerConfig {
	return SheetLayerConfig{
		NoiseType:        core.NoisePink,
		FilterType:       core.FilterLowpass,
		FilterFreq:       parameter.SheetFilterFreq,
		FilterQ:          parameter.SheetFilterQ,
		MinVolume:        parameter.SheetMinVolume,
		MaxVolume:        parameter.SheetMaxVolume,
		MaxParticleCount: parameter.SheetMaxParticleCount,
		RampTime:         parameter.SheetRampTime,
	}
}

// Validate checks sheet layer ranges
func (c *SheetLayerConfig) Validate() error {
	switch {
	case !c.NoiseType.Valid():
		return errInvalidField("sheetLayer.noiseType", string(c.NoiseType))
	case !c.FilterType.Valid():
		return errInvalidField("sheetLayer.filterType", "")
	case c.FilterFreq <= 0:
		return errInvalidField("sheetLayer.filterFreq", "must be positive")
	case c.FilterQ <= 0:
		return errInvalidField("sheetLayer.filterQ", "must be positive")
	case c.MaxVolume < c.MinVolume:
		return errInvalidField("sheetLayer.maxVolume", "below minVolume")
	case c.MaxParticleCount <= 0:
		return errInvalidField("sheetLayer.maxParticleCount", "must be positive")
	case c.RampTime < 0:
		return errInvalidField("sheetLayer.rampTime", "must be non-negative")
	}
	return nil
}

// SheetLayer is the always-running ambient noise bed. Its loudness
// tracks live particle density, ramped toward the target over RampTime
// so level changes never step audibly.
type SheetLayer struct {
	sampleRate float64
	cfg        SheetLayerConfig

	noise  noiseGen
	filter biquad

	gain   float64 // current linear gain
	target float64
	step   float64 // per-sample increment toward target
}

// NewSheetLayer builds the layer starting at MinVolume
func NewSheetLayer(cfg SheetLayerConfig, sampleRate int, seed int64) *SheetLayer {
	s := &SheetLayer{
		sampleRate: float64(sampleRate),
		noise:      newNoiseGen(cfg.NoiseType, seed),
	}
	s.apply(cfg)
	s.gain = dbToGain(cfg.MinVolume)
	s.target = s.gain
	return s
}

// Update sets the gain target from the live particle count
func (s *SheetLayer) Update(particleCount int) {
	frac := float64(particleCount) / float64(s.cfg.MaxParticleCount)
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	s.target = dbToGain(lerp(s.cfg.MinVolume, s.cfg.MaxVolume, frac))

	rampSamples := secondsToSamples(s.cfg.RampTime, int(s.sampleRate))
	if rampSamples <= 0 {
		rampSamples = 1
	}
	s.step = (s.target - s.gain) / float64(rampSamples)
}

// SetConfig swaps the layer configuration; filter state is rebuilt,
// the gain keeps ramping from its current value
func (s *SheetLayer) SetConfig(cfg SheetLayerConfig) {
	s.apply(cfg)
}

// Config returns the current configuration
func (s *SheetLayer) Config() SheetLayerConfig { return s.cfg }

func (s *SheetLayer) apply(cfg SheetLayerConfig) {
	s.cfg = cfg
	s.noise.setKind(cfg.NoiseType)
	switch cfg.FilterType {
	case core.FilterHighpass:
		s.filter.setHighpass(s.sampleRate, cfg.FilterFreq, cfg.FilterQ)
	case core.FilterBandpass:
		s.filter.setBandpass(s.sampleRate, cfg.FilterFreq, cfg.FilterQ)
	default:
		s.filter.setLowpass(s.sampleRate, cfg.FilterFreq, cfg.FilterQ)
	}
	s.filter.reset()
}

func (s *SheetLayer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.step != 0 {
			s.gain += s.step
			if (s.step > 0 && s.gain >= s.target) || (s.step < 0 && s.gain <= s.target) {
				s.gain = s.target
				s.step = 0
			}
		}
		v := s.filter.process(s.noise.next()) * s.gain
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *SheetLayer) Err() error { return nil }
