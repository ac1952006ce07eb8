package audio

import (
	"fmt"
	"sort"

	"github.com/lixenwraith/rainscape/core"
)

// MaterialConfig is the timbral configuration for one surface material.
// Snapshots are immutable: the system swaps whole configs, never fields.
type MaterialConfig struct {
	ID                   core.SurfaceType    `json:"id"`
	Name                 string              `json:"name"`
	BubbleProbability    float64             `json:"bubbleProbability"`
	ImpactSynthType      core.SynthType      `json:"impactSynthType"`
	BubbleOscillatorType core.OscillatorType `json:"bubbleOscillatorType"`
	FilterFreq           float64             `json:"filterFreq"`
	FilterQ              float64             `json:"filterQ"`
	DecayMin             float64             `json:"decayMin"`
	DecayMax             float64             `json:"decayMax"`
	PitchMultiplier      float64             `json:"pitchMultiplier"`
	GainOffset           float64             `json:"gainOffset"` // dB
}

// Validate checks the material ranges
func (m *MaterialConfig) Validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: material id is empty", ErrInvalidConfig)
	case m.BubbleProbability < 0 || m.BubbleProbability > 1:
		return fmt.Errorf("%w: material %q bubbleProbability %.3f outside [0,1]", ErrInvalidConfig, m.ID, m.BubbleProbability)
	case !m.ImpactSynthType.Valid():
		return fmt.Errorf("%w: material %q unknown impactSynthType %q", ErrInvalidConfig, m.ID, m.ImpactSynthType)
	case !m.BubbleOscillatorType.Valid():
		return fmt.Errorf("%w: material %q unknown bubbleOscillatorType %q", ErrInvalidConfig, m.ID, m.BubbleOscillatorType)
	case m.FilterFreq <= 0:
		return fmt.Errorf("%w: material %q filterFreq must be positive", ErrInvalidConfig, m.ID)
	case m.FilterQ <= 0:
		return fmt.Errorf("%w: material %q filterQ must be positive", ErrInvalidConfig, m.ID)
	case m.DecayMin <= 0 || m.DecayMax < m.DecayMin:
		return fmt.Errorf("%w: material %q decay range [%.3f, %.3f] invalid", ErrInvalidConfig, m.ID, m.DecayMin, m.DecayMax)
	case m.PitchMultiplier <= 0:
		return fmt.Errorf("%w: material %q pitchMultiplier must be positive", ErrInvalidConfig, m.ID)
	}
	return nil
}

// MaterialManager is the registry from surface identifier to timbre
type MaterialManager struct {
	materials map[core.SurfaceType]*MaterialConfig
}

// NewMaterialManager creates a registry preloaded with the built-in surfaces
func NewMaterialManager() *MaterialManager {
	mm := &MaterialManager{materials: make(map[core.SurfaceType]*MaterialConfig, 8)}
	for _, m := range builtinMaterials {
		cfg := m
		mm.materials[cfg.ID] = &cfg
	}
	return mm
}

// Get returns the material for a surface, if registered
func (mm *MaterialManager) Get(st core.SurfaceType) (*MaterialConfig, bool) {
	m, ok := mm.materials[st]
	return m, ok
}

// Register validates and stores a material snapshot, replacing any
// existing entry for the same surface
func (mm *MaterialManager) Register(cfg MaterialConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mm.materials[cfg.ID] = &cfg
	return nil
}

// IDs lists registered surfaces in stable order
func (mm *MaterialManager) IDs() []core.SurfaceType {
	ids := make([]core.SurfaceType, 0, len(mm.materials))
	for id := range mm.materials {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var builtinMaterials = []MaterialConfig{
	{
		ID: core.SurfaceWater, Name: "Water",
		BubbleProbability:    0.45,
		ImpactSynthType:      core.SynthNoise,
		BubbleOscillatorType: core.OscSine,
		FilterFreq:           3500, FilterQ: 0.9,
		DecayMin: 0.04, DecayMax: 0.18,
		PitchMultiplier: 1.0, GainOffset: 0,
	},
	{
		ID: core.SurfaceGlass, Name: "Glass",
		BubbleProbability:    0.15,
		ImpactSynthType:      core.SynthMetal,
		BubbleOscillatorType: core.OscSine,
		FilterFreq:           6000, FilterQ: 2.5,
		DecayMin: 0.05, DecayMax: 0.25,
		PitchMultiplier: 1.6, GainOffset: -2,
	},
	{
		ID: core.SurfaceMetal, Name: "Metal Roof",
		BubbleProbability:    0.08,
		ImpactSynthType:      core.SynthMetal,
		BubbleOscillatorType: core.OscTriangle,
		FilterFreq:           5000, FilterQ: 1.8,
		DecayMin: 0.06, DecayMax: 0.35,
		PitchMultiplier: 1.2, GainOffset: 2,
	},
	{
		ID: core.SurfaceWood, Name: "Wood",
		BubbleProbability:    0.05,
		ImpactSynthType:      core.SynthMembrane,
		BubbleOscillatorType: core.OscTriangle,
		FilterFreq:           1800, FilterQ: 1.1,
		DecayMin: 0.03, DecayMax: 0.12,
		PitchMultiplier: 0.6, GainOffset: -1,
	},
	{
		ID: core.SurfaceConcrete, Name: "Concrete",
		BubbleProbability:    0.02,
		ImpactSynthType:      core.SynthNoise,
		BubbleOscillatorType: core.OscSine,
		FilterFreq:           2500, FilterQ: 0.8,
		DecayMin: 0.02, DecayMax: 0.08,
		PitchMultiplier: 0.9, GainOffset: -3,
	},
	{
		ID: core.SurfaceLeaves, Name: "Leaves",
		BubbleProbability:    0.0,
		ImpactSynthType:      core.SynthNoise,
		BubbleOscillatorType: core.OscSine,
		FilterFreq:           1200, FilterQ: 0.7,
		DecayMin: 0.03, DecayMax: 0.1,
		PitchMultiplier: 0.8, GainOffset: -6,
	},
}
