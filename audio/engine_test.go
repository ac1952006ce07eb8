package audio

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
)

// stubSpeaker is a silent platform for engine tests
type stubSpeaker struct {
	inited  bool
	failure error
	played  int
	locks   int
	unlocks int
	closed  bool
}

func (s *stubSpeaker) platform() *Platform {
	return &Platform{
		Init: func(sr beep.SampleRate, bufferSize int) error {
			if s.failure != nil {
				return s.failure
			}
			s.inited = true
			return nil
		},
		Play:   func(streamers ...beep.Streamer) { s.played += len(streamers) },
		Lock:   func() { s.locks++ },
		Unlock: func() { s.unlocks++ },
		Close:  func() { s.closed = true },
	}
}

func newTestSystem(t *testing.T, rs *RainscapeConfig) (*AudioSystem, *stubSpeaker, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rainscape = rs
	sys := NewAudioSystem(cfg)
	spk := &stubSpeaker{}
	clock := newFakeClock()
	sys.SetPlatform(spk.platform())
	sys.SetClock(clock.Now)
	sys.SetSeed(42)
	return sys, spk, clock
}

func testEvent() core.CollisionEvent {
	return core.CollisionEvent{
		DropRadius:  1.2,
		Velocity:    6.5,
		Mass:        7.2e-6,
		SurfaceType: core.SurfaceWater,
	}
}

// TestEngineLifecycle verifies the state machine transitions
func TestEngineLifecycle(t *testing.T) {
	sys, spk, _ := newTestSystem(t, nil)

	if got := sys.State(); got != core.StateUninitialized {
		t.Fatalf("Expected uninitialized, got %s", got)
	}
	if err := sys.Start(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady before init, got %v", err)
	}

	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if got := sys.State(); got != core.StateReady {
		t.Errorf("Expected ready, got %s", got)
	}
	if !spk.inited || spk.played != 1 {
		t.Errorf("Expected platform inited with one streamer, got inited=%v played=%d", spk.inited, spk.played)
	}

	if err := sys.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := sys.State(); got != core.StatePlaying {
		t.Errorf("Expected playing, got %s", got)
	}
	if err := sys.Start(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady on double start, got %v", err)
	}

	if err := sys.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := sys.State(); got != core.StateStopped {
		t.Errorf("Expected stopped, got %s", got)
	}
	if err := sys.Stop(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady on double stop, got %v", err)
	}

	if err := sys.Start(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	sys.Dispose()
	if got := sys.State(); got != core.StateUninitialized {
		t.Errorf("Expected uninitialized after dispose, got %s", got)
	}
	if !spk.closed {
		t.Error("Expected platform closed on dispose")
	}
}

// TestEngineStateCallback verifies transition notifications fire in order
func TestEngineStateCallback(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)

	var seen []core.SystemState
	sys.OnStateChange(func(st core.SystemState) { seen = append(seen, st) })

	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()
	sys.Stop()

	want := []core.SystemState{core.StateInitializing, core.StateReady, core.StatePlaying, core.StateStopped}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}

// TestEnginePlatformFailure verifies a device failure lands in the
// terminal error state
func TestEnginePlatformFailure(t *testing.T) {
	sys, spk, _ := newTestSystem(t, nil)
	spk.failure = errors.New("no device")

	err := sys.Init()
	if !errors.Is(err, ErrPlatform) {
		t.Fatalf("Expected ErrPlatform, got %v", err)
	}
	if got := sys.State(); got != core.StateError {
		t.Errorf("Expected error state, got %s", got)
	}
	if err := sys.Start(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady from error state, got %v", err)
	}
	if err := sys.LoadRainscape(DefaultRainscape()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady load from error state, got %v", err)
	}
}

// TestEngineIngestGating verifies collisions outside playing are dropped
// silently
func TestEngineIngestGating(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	sys.IngestCollision(testEvent())
	stats := sys.Stats()
	if stats.ActiveImpactVoices != 0 {
		t.Errorf("Expected no voices before start, got %d", stats.ActiveImpactVoices)
	}

	sys.Start()
	sys.Stop()
	sys.IngestCollision(testEvent())
	stats = sys.Stats()
	if stats.ActiveImpactVoices != 0 {
		t.Errorf("Expected no voices while stopped, got %d", stats.ActiveImpactVoices)
	}
}

// TestEngineIngestTriggersVoices verifies a playing system routes
// collisions to both pools
func TestEngineIngestTriggersVoices(t *testing.T) {
	rs := DefaultRainscape()
	rs.Material.BubbleProbability = 1.0
	sys, _, _ := newTestSystem(t, rs)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	sys.IngestCollision(testEvent())
	stats := sys.Stats()
	if stats.ActiveImpactVoices != 1 {
		t.Errorf("Expected 1 impact voice, got %d", stats.ActiveImpactVoices)
	}
	if stats.ActiveBubbleVoices != 1 {
		t.Errorf("Expected 1 bubble voice, got %d", stats.ActiveBubbleVoices)
	}
	if stats.DroppedCollisions != 0 {
		t.Errorf("Expected no drops, got %d", stats.DroppedCollisions)
	}
}

// TestEngineDropCounting verifies exhaustion without stealing counts
// drops instead of failing
func TestEngineDropCounting(t *testing.T) {
	rs := DefaultRainscape()
	rs.Material.BubbleProbability = 0
	rs.Impact.PoolSize = 1
	rs.Impact.EnableStealing = false
	sys, _, _ := newTestSystem(t, rs)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	for i := 0; i < 3; i++ {
		sys.IngestCollision(testEvent())
	}
	stats := sys.Stats()
	if stats.ActiveImpactVoices != 1 {
		t.Errorf("Expected 1 active voice, got %d", stats.ActiveImpactVoices)
	}
	if stats.DroppedCollisions != 2 {
		t.Errorf("Expected 2 drops, got %d", stats.DroppedCollisions)
	}
}

// TestEngineStealCounting verifies stolen voices surface in stats
func TestEngineStealCounting(t *testing.T) {
	rs := DefaultRainscape()
	rs.Material.BubbleProbability = 0
	rs.Impact.PoolSize = 1
	rs.Impact.EnableStealing = true
	sys, _, _ := newTestSystem(t, rs)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	sys.IngestCollision(testEvent())
	sys.IngestCollision(testEvent())
	stats := sys.Stats()
	if stats.StolenVoices != 1 {
		t.Errorf("Expected 1 steal, got %d", stats.StolenVoices)
	}
	if stats.DroppedCollisions != 0 {
		t.Errorf("Expected no drops with stealing, got %d", stats.DroppedCollisions)
	}
}

// TestEngineStatsWindow verifies the collision rate over the rolling
// window and the counter reset at the boundary
func TestEngineStatsWindow(t *testing.T) {
	rs := DefaultRainscape()
	rs.Material.BubbleProbability = 0
	sys, _, clock := newTestSystem(t, rs)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	for i := 0; i < 30; i++ {
		sys.IngestCollision(testEvent())
	}
	clock.Advance(2 * time.Second)

	stats := sys.Stats()
	if math.Abs(stats.CollisionsPerSecond-15) > 1e-9 {
		t.Errorf("Expected 15 collisions/s, got %f", stats.CollisionsPerSecond)
	}

	// Window rolled: a fresh quiet window reports zero
	clock.Advance(2 * time.Second)
	stats = sys.Stats()
	if stats.CollisionsPerSecond != 0 {
		t.Errorf("Expected 0 collisions/s after quiet window, got %f", stats.CollisionsPerSecond)
	}
}

// TestEnginePanicRecovery verifies a panicking mapping is counted as a
// drop and the system keeps running
func TestEnginePanicRecovery(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	sys.draw = func() float64 { panic("bad draw") }
	sys.IngestCollision(testEvent())

	stats := sys.Stats()
	if stats.DroppedCollisions != 1 {
		t.Errorf("Expected 1 dropped collision, got %d", stats.DroppedCollisions)
	}
	if got := sys.State(); got != core.StatePlaying {
		t.Errorf("Expected still playing, got %s", got)
	}

	sys.draw = func() float64 { return 1.0 }
	sys.IngestCollision(testEvent())
	if stats = sys.Stats(); stats.ActiveImpactVoices == 0 {
		t.Error("Expected engine to keep triggering after a recovered panic")
	}
}

// TestEngineLoadRainscapeRejection verifies an invalid preset leaves
// the running configuration untouched
func TestEngineLoadRainscapeRejection(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	before, err := sys.GatherPreset()
	if err != nil {
		t.Fatalf("GatherPreset failed: %v", err)
	}

	bad := DefaultRainscape()
	bad.SheetLayer.FilterFreq = -1
	if err := sys.LoadRainscape(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}

	after, err := sys.GatherPreset()
	if err != nil {
		t.Fatalf("GatherPreset failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("Expected configuration unchanged after rejected load")
	}
}

// TestEngineLoadRainscapeApplies verifies an accepted preset swaps in
// atomically, including pool resizes
func TestEngineLoadRainscapeApplies(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sys.Start()

	rs := DefaultRainscape()
	rs.Name = "Storm"
	rs.Impact.PoolSize = 4
	rs.Effects.MasterVolume = -18
	rs.Material = *mustMaterial(t, core.SurfaceMetal)
	if err := sys.LoadRainscape(rs); err != nil {
		t.Fatalf("LoadRainscape failed: %v", err)
	}

	got, err := sys.GatherPreset()
	if err != nil {
		t.Fatalf("GatherPreset failed: %v", err)
	}
	if got.Name != "Storm" {
		t.Errorf("Expected name Storm, got %q", got.Name)
	}
	if got.Impact.PoolSize != 4 {
		t.Errorf("Expected impact pool 4, got %d", got.Impact.PoolSize)
	}
	if got.Effects.MasterVolume != -18 {
		t.Errorf("Expected master -18, got %f", got.Effects.MasterVolume)
	}
	if got.Material.ID != core.SurfaceMetal {
		t.Errorf("Expected metal material, got %s", got.Material.ID)
	}
	if got := sys.State(); got != core.StatePlaying {
		t.Errorf("Expected load to preserve playing, got %s", got)
	}
}

// TestEngineMuteRestore verifies unmute restores the pre-mute level
func TestEngineMuteRestore(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := sys.UpdateParam("effects.masterVolume", -9.0); err != nil {
		t.Fatalf("UpdateParam failed: %v", err)
	}

	sys.SetMuted(true)
	sys.SetMuted(true)
	if !sys.Muted() {
		t.Fatal("Expected muted")
	}
	if got := sys.effects.masterDB(); got != parameter.MuteFloorDB {
		t.Errorf("Expected master at mute floor, got %f", got)
	}

	sys.SetMuted(false)
	if got := sys.effects.masterDB(); got != -9 {
		t.Errorf("Expected master restored to -9, got %f", got)
	}
}

// TestEngineParticleCount verifies density feeds through and negatives
// clamp to zero
func TestEngineParticleCount(t *testing.T) {
	sys, _, _ := newTestSystem(t, nil)
	if err := sys.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	sys.SetParticleCount(250)
	if got := sys.Stats().ParticleCount; got != 250 {
		t.Errorf("Expected particle count 250, got %d", got)
	}

	sys.SetParticleCount(-5)
	if got := sys.Stats().ParticleCount; got != 0 {
		t.Errorf("Expected clamped particle count 0, got %d", got)
	}
}

func mustMaterial(t *testing.T, st core.SurfaceType) *MaterialConfig {
	t.Helper()
	m, ok := NewMaterialManager().Get(st)
	if !ok {
		t.Fatalf("Missing builtin material %s", st)
	}
	return m
}
