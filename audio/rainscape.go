package audio

import (
	"encoding/json"
	"fmt"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
)

// RainscapeConfig is the root persistable aggregate: one named bundle
// of material, layer, effects, mapper and voice-pool configuration.
// Produced and consumed as a JSON document; the persistence collaborator
// owns the files.
type RainscapeConfig struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Version     int               `json:"version"`
	Material    MaterialConfig    `json:"material"`
	Impact      ImpactPoolConfig  `json:"impact"`
	Bubble      BubblePoolConfig  `json:"bubble"`
	SheetLayer  SheetLayerConfig  `json:"sheetLayer"`
	Wind        WindConfig        `json:"wind"`
	Thunder     ThunderConfig     `json:"thunder"`
	Effects     EffectsConfig     `json:"effects"`
	Mapper      MapperConfig      `json:"physicsMapper"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// rainscapeVersion is the current preset schema version
const rainscapeVersion = 2

// DefaultRainscape returns the built-in default preset
func DefaultRainscape() *RainscapeConfig {
	mm := NewMaterialManager()
	water, _ := mm.Get(core.SurfaceWater)
	return &RainscapeConfig{
		ID:          "default",
		Name:        "Default",
		Description: "Balanced rain on water with gentle wind",
		Version:     rainscapeVersion,
		Material:    *water,
		Impact:      DefaultImpactPoolConfig(),
		Bubble:      DefaultBubblePoolConfig(),
		SheetLayer:  DefaultSheetLayerConfig(),
		Wind:        DefaultWindConfig(),
		Thunder:     DefaultThunderConfig(),
		Effects:     DefaultEffectsConfig(),
		Mapper:      DefaultMapperConfig(),
	}
}

// Validate checks the whole aggregate. A failed validation leaves any
// system that attempted to load it completely untouched.
func (c *RainscapeConfig) Validate() error {
	if c.ID == "" {
		return errInvalidField("id", "is empty")
	}
	if c.Name == "" {
		return errInvalidField("name", "is empty")
	}
	if err := c.Material.Validate(); err != nil {
		return err
	}
	if err := c.Impact.Validate(); err != nil {
		return err
	}
	if err := c.Bubble.Validate(); err != nil {
		return err
	}
	if err := c.SheetLayer.Validate(); err != nil {
		return err
	}
	if err := c.Wind.Validate(); err != nil {
		return err
	}
	if err := c.Thunder.Validate(); err != nil {
		return err
	}
	if err := c.Effects.Validate(); err != nil {
		return err
	}
	if err := c.Mapper.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks the impact pool ranges
func (c *ImpactPoolConfig) Validate() error {
	switch {
	case c.PoolSize < 0 || c.PoolSize > parameter.MaxPoolSize:
		return errInvalidField("impact.poolSize", fmt.Sprintf("outside [0,%d]", parameter.MaxPoolSize))
	case c.Attack < 0:
		return errInvalidField("impact.attack", "must be non-negative")
	case c.DecayMin <= 0 || c.DecayMax < c.DecayMin:
		return errInvalidField("impact decay range", "max must be >= min > 0")
	}
	return nil
}

// Validate checks the bubble pool ranges
func (c *BubblePoolConfig) Validate() error {
	switch {
	case c.PoolSize < 0 || c.PoolSize > parameter.MaxPoolSize:
		return errInvalidField("bubble.poolSize", fmt.Sprintf("outside [0,%d]", parameter.MaxPoolSize))
	case c.Attack < 0:
		return errInvalidField("bubble.attack", "must be non-negative")
	case c.DecayMin <= 0 || c.DecayMax < c.DecayMin:
		return errInvalidField("bubble decay range", "max must be >= min > 0")
	case c.ChirpAmount < 0 || c.ChirpTime < 0:
		return errInvalidField("bubble chirp", "must be non-negative")
	case c.FreqMin <= 0 || c.FreqMax < c.FreqMin:
		return errInvalidField("bubble frequency range", "max must be >= min > 0")
	}
	return nil
}

// Validate checks the mapper bounds
func (c *MapperConfig) Validate() error {
	switch {
	case c.VelocityMax <= c.VelocityMin:
		return errInvalidField("physicsMapper velocity range", "max must be > min")
	case c.VolumeMax < c.VolumeMin:
		return errInvalidField("physicsMapper volume range", "max must be >= min")
	case c.MinnaertBase <= 0:
		return errInvalidField("physicsMapper.minnaertBase", "must be positive")
	case c.FreqMin <= 0 || c.FreqMax < c.FreqMin:
		return errInvalidField("physicsMapper frequency range", "max must be >= min > 0")
	case c.DecayBase <= 0 || c.DecayRadiusScale < 0:
		return errInvalidField("physicsMapper decay", "base > 0, radiusScale >= 0")
	}
	return nil
}

// ParseRainscape decodes and validates a rainscape JSON document
func ParseRainscape(data []byte) (*RainscapeConfig, error) {
	var cfg RainscapeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode serializes the rainscape as an indented JSON document
func (c *RainscapeConfig) Encode() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
