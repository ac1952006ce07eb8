package audio

import (
	"testing"
	"time"

	"github.com/lixenwraith/rainscape/parameter"
)

// TestLoadConfigDefaults verifies the fallback configuration
func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.SampleRate != parameter.AudioSampleRate {
		t.Errorf("Expected sample rate %d, got %d", parameter.AudioSampleRate, cfg.SampleRate)
	}
	if cfg.BufferDuration != parameter.AudioBufferDuration {
		t.Errorf("Expected buffer %s, got %s", parameter.AudioBufferDuration, cfg.BufferDuration)
	}
	if cfg.Rainscape != nil {
		t.Error("Expected no rainscape override by default")
	}
}

// TestLoadConfigEnvOverrides verifies environment variables apply
func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RAINSCAPE_SAMPLE_RATE", "48000")
	t.Setenv("RAINSCAPE_BUFFER_MS", "20")

	cfg := LoadConfig()
	if cfg.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", cfg.SampleRate)
	}
	if cfg.BufferDuration != 20*time.Millisecond {
		t.Errorf("Expected buffer 20ms, got %s", cfg.BufferDuration)
	}
}

// TestLoadConfigIgnoresGarbage verifies malformed values fall back to
// defaults
func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("RAINSCAPE_SAMPLE_RATE", "fast")
	t.Setenv("RAINSCAPE_BUFFER_MS", "-5")
	t.Setenv("RAINSCAPE_LAYER_GAINS", "{broken")

	cfg := LoadConfig()
	if cfg.SampleRate != parameter.AudioSampleRate {
		t.Errorf("Expected default sample rate, got %d", cfg.SampleRate)
	}
	if cfg.BufferDuration != parameter.AudioBufferDuration {
		t.Errorf("Expected default buffer, got %s", cfg.BufferDuration)
	}
	if cfg.Rainscape != nil {
		t.Error("Expected malformed gains ignored")
	}
}

// TestLoadConfigLayerGains verifies the JSON gain overrides land on the
// default rainscape
func TestLoadConfigLayerGains(t *testing.T) {
	t.Setenv("RAINSCAPE_LAYER_GAINS", `{"master": -9, "sheet": -20, "wind": -30, "thunder": -12}`)

	cfg := LoadConfig()
	if cfg.Rainscape == nil {
		t.Fatal("Expected rainscape built from gain overrides")
	}
	if got := cfg.Rainscape.Effects.MasterVolume; got != -9 {
		t.Errorf("Expected master -9, got %f", got)
	}
	if got := cfg.Rainscape.SheetLayer.MaxVolume; got != -20 {
		t.Errorf("Expected sheet max -20, got %f", got)
	}
	if got := cfg.Rainscape.Wind.BaseGain; got != -30 {
		t.Errorf("Expected wind base -30, got %f", got)
	}
	if got := cfg.Rainscape.Thunder.MasterGain; got != -12 {
		t.Errorf("Expected thunder master -12, got %f", got)
	}
	if err := cfg.Rainscape.Validate(); err != nil {
		t.Errorf("Expected overridden rainscape valid, got %v", err)
	}
}
