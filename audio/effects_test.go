package audio

import (
	"math"
	"testing"

	"github.com/lixenwraith/rainscape/parameter"
)

// dcSource streams a constant value on both channels
type dcSource struct {
	level float64
}

func (s *dcSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = s.level
		samples[i][1] = s.level
	}
	return len(samples), true
}

func (s *dcSource) Err() error { return nil }

func peak(samples [][2]float64, n int) float64 {
	max := 0.0
	for i := 0; i < n; i++ {
		max = math.Max(max, math.Abs(samples[i][0]))
		max = math.Max(max, math.Abs(samples[i][1]))
	}
	return max
}

// TestEffectsMuteSentinel verifies -60dB mutes output completely while
// -59dB stays audible
func TestEffectsMuteSentinel(t *testing.T) {
	cfg := DefaultEffectsConfig()
	cfg.MasterVolume = parameter.MuteFloorDB
	chain := NewEffectsChain(&dcSource{level: 0.5}, cfg, 44100)

	samples := make([][2]float64, 512)
	n, ok := chain.Stream(samples)
	if !ok || n != 512 {
		t.Fatalf("Expected full muted stream, got n=%d ok=%v", n, ok)
	}
	if p := peak(samples, n); p != 0 {
		t.Errorf("Expected complete silence at mute floor, got peak %g", p)
	}

	chain.SetMasterVolume(parameter.MuteFloorDB + 1)
	n, _ = chain.Stream(samples)
	if p := peak(samples, n); p == 0 {
		t.Error("Expected audible output 1dB above the mute floor")
	}
}

// TestEffectsBelowFloorStillMuted verifies values under the floor mute too
func TestEffectsBelowFloorStillMuted(t *testing.T) {
	cfg := DefaultEffectsConfig()
	chain := NewEffectsChain(&dcSource{level: 0.5}, cfg, 44100)
	chain.SetMasterVolume(-90)

	samples := make([][2]float64, 256)
	n, _ := chain.Stream(samples)
	if p := peak(samples, n); p != 0 {
		t.Errorf("Expected silence below the mute floor, got peak %g", p)
	}
	if got := chain.Config().MasterVolume; got != parameter.MuteFloorDB {
		t.Errorf("Expected reported volume pinned to %f, got %f", parameter.MuteFloorDB, got)
	}
}

// TestEffectsMuffleAttenuates verifies the muffle insert reduces level
// and toggles idempotently
func TestEffectsMuffleAttenuates(t *testing.T) {
	cfg := DefaultEffectsConfig()
	cfg.Reverb.Wetness = 0
	cfg.MasterVolume = 0
	chain := NewEffectsChain(&dcSource{level: 0.5}, cfg, 44100)

	samples := make([][2]float64, 2048)
	n, _ := chain.Stream(samples)
	clean := math.Abs(samples[n-1][0])

	chain.SetMuffled(true)
	chain.SetMuffled(true)
	if !chain.Muffled() {
		t.Fatal("Expected muffle enabled")
	}
	n, _ = chain.Stream(samples)
	muffled := math.Abs(samples[n-1][0])

	if muffled >= clean {
		t.Errorf("Expected muffled level below %g, got %g", clean, muffled)
	}

	chain.SetMuffled(false)
	if chain.Muffled() {
		t.Error("Expected muffle disabled")
	}
}

// TestEffectsPanClamp verifies spatial position clamps to [-1, 1]
func TestEffectsPanClamp(t *testing.T) {
	cfg := DefaultEffectsConfig()
	chain := NewEffectsChain(&dcSource{level: 0.5}, cfg, 44100)

	chain.SetSpatialPosition(2.5)
	if got := chain.Config().SpatialPosition; got != 1 {
		t.Errorf("Expected pan clamped to 1, got %f", got)
	}
	chain.SetSpatialPosition(-3)
	if got := chain.Config().SpatialPosition; got != -1 {
		t.Errorf("Expected pan clamped to -1, got %f", got)
	}
}

// TestEffectsConfigRoundTrip verifies SetConfig then Config reports the
// same values
func TestEffectsConfigRoundTrip(t *testing.T) {
	chain := NewEffectsChain(&dcSource{level: 0.5}, DefaultEffectsConfig(), 44100)

	want := EffectsConfig{
		EQ:              EQConfig{Low: 3, Mid: -2, High: 1.5},
		Reverb:          ReverbConfig{Decay: 2.0, Wetness: 0.4},
		SpatialPosition: -0.25,
		MasterVolume:    -12,
	}
	chain.SetConfig(want)

	got := chain.Config()
	if got != want {
		t.Errorf("Expected config %+v, got %+v", want, got)
	}
}

// TestEffectsReverbTail verifies wet output keeps ringing after the
// source falls silent
func TestEffectsReverbTail(t *testing.T) {
	cfg := DefaultEffectsConfig()
	cfg.Reverb = ReverbConfig{Decay: 2.0, Wetness: 0.5}
	cfg.MasterVolume = 0

	src := &dcSource{level: 0.8}
	chain := NewEffectsChain(src, cfg, 44100)

	samples := make([][2]float64, 4096)
	chain.Stream(samples)

	src.level = 0
	n, _ := chain.Stream(samples)
	if p := peak(samples, n); p == 0 {
		t.Error("Expected reverb tail after the source went silent")
	}
}
