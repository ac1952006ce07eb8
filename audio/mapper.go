package audio

import (
	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
)

// MapperConfig bounds the physics-to-audio mapping
type MapperConfig struct {
	VelocityMin float64 `json:"velocityMin"`
	VelocityMax float64 `json:"velocityMax"`

	VolumeMin float64 `json:"volumeMin"` // dB
	VolumeMax float64 `json:"volumeMax"` // dB

	MinnaertBase float64 `json:"minnaertBase"` // Hz*mm
	FreqMin      float64 `json:"freqMin"`
	FreqMax      float64 `json:"freqMax"`

	DecayBase        float64 `json:"decayBase"`        // s
	DecayRadiusScale float64 `json:"decayRadiusScale"` // s per mm
}

// DefaultMapperConfig returns the tuned default bounds
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		VelocityMin:      parameter.MapperVelocityMin,
		VelocityMax:      parameter.MapperVelocityMax,
		VolumeMin:        parameter.MapperVolumeMin,
		VolumeMax:        parameter.MapperVolumeMax,
		MinnaertBase:     parameter.MapperMinnaertBase,
		FreqMin:          parameter.MapperFreqMin,
		FreqMax:          parameter.MapperFreqMax,
		DecayBase:        parameter.MapperDecayBase,
		DecayRadiusScale: parameter.MapperDecayRadiusScale,
	}
}

// AudioParams are the derived trigger parameters for one collision
type AudioParams struct {
	Volume        float64 // dB
	Frequency     float64 // Hz
	Decay         float64 // s
	TriggerBubble bool
	FilterFreq    float64 // Hz
}

// MapCollision derives audio parameters from impact physics. Pure except
// for the bubble draw, which comes from the injected uniform source.
//
// Frequency follows Minnaert resonance: a bubble's resonant frequency is
// inversely proportional to its radius, so larger drops ring lower.
func MapCollision(cfg MapperConfig, mat *MaterialConfig, ev core.CollisionEvent, draw func() float64) AudioParams {
	velSpan := cfg.VelocityMax - cfg.VelocityMin
	velFrac := 0.0
	if velSpan > 0 {
		velFrac = clamp((ev.Velocity-cfg.VelocityMin)/velSpan, 0, 1)
	}
	volume := lerp(cfg.VolumeMin, cfg.VolumeMax, velFrac)

	radius := ev.DropRadius
	if radius < parameter.MinDropRadius {
		radius = parameter.MinDropRadius
	}
	freq := clamp(cfg.MinnaertBase/radius*mat.PitchMultiplier, cfg.FreqMin, cfg.FreqMax)

	decay := clamp(cfg.DecayBase+ev.DropRadius*cfg.DecayRadiusScale, mat.DecayMin, mat.DecayMax)

	return AudioParams{
		Volume:        volume,
		Frequency:     freq,
		Decay:         decay,
		TriggerBubble: draw() < mat.BubbleProbability,
		FilterFreq:    mat.FilterFreq,
	}
}
