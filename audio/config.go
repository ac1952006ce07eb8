package audio

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/lixenwraith/rainscape/parameter"
)

// Config is the host-level audio configuration, separate from the
// persistable rainscape preset
type Config struct {
	SampleRate     int
	BufferDuration time.Duration

	// Rainscape applied on Init; nil uses the built-in default
	Rainscape *RainscapeConfig
}

// DefaultConfig returns the standard host configuration
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     parameter.AudioSampleRate,
		BufferDuration: parameter.AudioBufferDuration,
	}
}

// LoadConfig loads host configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if rate := os.Getenv("RAINSCAPE_SAMPLE_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if buf := os.Getenv("RAINSCAPE_BUFFER_MS"); buf != "" {
		if val, err := strconv.Atoi(buf); err == nil && val > 0 {
			cfg.BufferDuration = time.Duration(val) * time.Millisecond
		}
	}

	// Per-layer gain overrides as a JSON blob, applied onto the default
	// rainscape: {"master": -6, "sheet": -18, "wind": -24, "thunder": -6}
	if gains := os.Getenv("RAINSCAPE_LAYER_GAINS"); gains != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(gains), &volumes); err == nil {
			rs := cfg.Rainscape
			if rs == nil {
				rs = DefaultRainscape()
				cfg.Rainscape = rs
			}
			if v, ok := volumes["master"]; ok {
				rs.Effects.MasterVolume = v
			}
			if v, ok := volumes["sheet"]; ok {
				rs.SheetLayer.MaxVolume = v
			}
			if v, ok := volumes["wind"]; ok {
				rs.Wind.BaseGain = v
			}
			if v, ok := volumes["thunder"]; ok {
				rs.Thunder.MasterGain = v
			}
		}
	}

	return cfg
}
