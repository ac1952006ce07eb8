package audio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
	"github.com/lixenwraith/rainscape/vmath"
)

// Platform abstracts the speaker backend. The default talks to the real
// device through beep/speaker; tests substitute a silent stub.
type Platform struct {
	Init   func(sampleRate beep.SampleRate, bufferSize int) error
	Play   func(streamers ...beep.Streamer)
	Lock   func()
	Unlock func()
	Close  func()
}

func speakerPlatform() *Platform {
	return &Platform{
		Init:   speaker.Init,
		Play:   speaker.Play,
		Lock:   speaker.Lock,
		Unlock: speaker.Unlock,
		Close:  speaker.Close,
	}
}

// AudioSystemStats is a point-in-time snapshot of engine health
type AudioSystemStats struct {
	State               core.SystemState
	ActiveImpactVoices  int
	ActiveBubbleVoices  int
	ParticleCount       int
	CollisionsPerSecond float64
	DroppedCollisions   uint64
	StolenVoices        uint64
}

// gate sits at the very top of the chain: while closed it feeds the
// device silence so Stop pauses output without tearing the speaker down
type gate struct {
	source beep.Streamer
	open   bool
}

func (g *gate) Stream(samples [][2]float64) (n int, ok bool) {
	if g.open {
		return g.source.Stream(samples)
	}
	for i := range samples {
		samples[i][0] = 0
		samples[i][1] = 0
	}
	return len(samples), true
}

func (g *gate) Err() error { return nil }

// AudioSystem owns the full synthesis graph and its lifecycle. All
// public methods are safe for concurrent use; one mutex serializes
// control operations and the platform lock guards the streaming graph.
//
// Lifecycle: uninitialized -> initializing -> ready <-> playing/stopped.
// A platform failure moves to the error state, which only Dispose leaves.
type AudioSystem struct {
	mu sync.Mutex

	cfg      *Config
	platform *Platform
	now      func() time.Time
	rng      *vmath.FastRand
	draw     func() float64 // uniform [0,1) for bubble decisions

	state   core.SystemState
	onState func(core.SystemState)

	rainscape *RainscapeConfig
	materials *MaterialManager
	material  *MaterialConfig

	mixer   *beep.Mixer
	impacts *ImpactSynthPool
	bubbles *BubbleSynthPool
	sheet   *SheetLayer
	wind    *WindLayer
	thunder *Thunder
	effects *EffectsChain
	out     *gate

	particleCount int

	muted     bool
	unmutedDB float64

	// Rolling collision-rate window
	windowStart time.Time
	collisions  uint64
	lastRate    float64
	dropped     uint64
}

// NewAudioSystem creates an uninitialized system. Call Init before use.
func NewAudioSystem(cfg *Config) *AudioSystem {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rng := vmath.NewFastRand(uint64(time.Now().UnixNano()))
	s := &AudioSystem{
		cfg:      cfg,
		platform: speakerPlatform(),
		now:      time.Now,
		rng:      rng,
		state:    core.StateUninitialized,
	}
	s.draw = rng.Float64
	return s
}

// SetPlatform substitutes the speaker backend; must precede Init
func (s *AudioSystem) SetPlatform(p *Platform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == core.StateUninitialized && p != nil {
		s.platform = p
	}
}

// SetClock substitutes the time source; must precede Init
func (s *AudioSystem) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == core.StateUninitialized && now != nil {
		s.now = now
	}
}

// SetSeed reseeds the stochastic sources; must precede Init
func (s *AudioSystem) SetSeed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == core.StateUninitialized {
		s.rng = vmath.NewFastRand(seed)
		s.draw = s.rng.Float64
	}
}

// OnStateChange registers a callback fired after each state transition,
// while the engine mutex is held. Keep it short.
func (s *AudioSystem) OnStateChange(fn func(core.SystemState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

// State returns the current lifecycle state
func (s *AudioSystem) State() core.SystemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AudioSystem) setState(st core.SystemState) {
	if s.state == st {
		return
	}
	s.state = st
	if s.onState != nil {
		s.onState(st)
	}
}

// locked runs fn under the platform lock once a device exists, so graph
// mutations never race the streaming goroutine
func (s *AudioSystem) locked(fn func()) {
	if s.state == core.StateUninitialized || s.state == core.StateInitializing {
		fn()
		return
	}
	s.platform.Lock()
	fn()
	s.platform.Unlock()
}

// Init builds the synthesis graph and opens the audio device. Valid only
// from the uninitialized state.
func (s *AudioSystem) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != core.StateUninitialized {
		return fmt.Errorf("%w: init from %s", ErrNotReady, s.state)
	}
	s.setState(core.StateInitializing)

	rs := s.cfg.Rainscape
	if rs == nil {
		rs = DefaultRainscape()
	}
	if err := rs.Validate(); err != nil {
		s.setState(core.StateUninitialized)
		return err
	}

	sr := s.cfg.SampleRate
	s.materials = NewMaterialManager()
	if err := s.materials.Register(rs.Material); err != nil {
		s.setState(core.StateUninitialized)
		return err
	}
	mat, _ := s.materials.Get(rs.Material.ID)
	s.material = mat

	s.mixer = &beep.Mixer{}
	attach := func(sy Synth) { s.mixer.Add(sy) }

	s.impacts = NewImpactSynthPool(rs.Impact, sr, int64(s.rng.Next()|1), attach, s.now)
	s.bubbles = NewBubbleSynthPool(rs.Bubble, sr, attach, s.now)
	s.sheet = NewSheetLayer(rs.SheetLayer, sr, int64(s.rng.Next()|1))
	s.wind = NewWindLayer(rs.Wind, sr, s.rng)
	s.thunder = NewThunder(rs.Thunder, sr, s.rng)
	s.mixer.Add(s.sheet, s.wind, s.thunder)

	s.effects = NewEffectsChain(s.mixer, rs.Effects, sr)
	s.out = &gate{source: s.effects}
	s.rainscape = rs
	s.unmutedDB = rs.Effects.MasterVolume

	rate := beep.SampleRate(sr)
	if err := s.platform.Init(rate, rate.N(s.cfg.BufferDuration)); err != nil {
		s.setState(core.StateError)
		return fmt.Errorf("%w: %v", ErrPlatform, err)
	}
	s.platform.Play(s.out)

	s.windowStart = s.now()
	s.setState(core.StateReady)
	log.Printf("audio: initialized, rate=%d buffer=%s rainscape=%q", sr, s.cfg.BufferDuration, rs.Name)
	return nil
}

// Start opens the output gate. Valid from ready or stopped.
func (s *AudioSystem) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != core.StateReady && s.state != core.StateStopped {
		return fmt.Errorf("%w: start from %s", ErrNotReady, s.state)
	}
	s.locked(func() { s.out.open = true })
	s.setState(core.StatePlaying)
	return nil
}

// Stop closes the output gate; the device keeps running silently.
// Valid only from playing.
func (s *AudioSystem) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != core.StatePlaying {
		return fmt.Errorf("%w: stop from %s", ErrNotReady, s.state)
	}
	s.locked(func() { s.out.open = false })
	s.setState(core.StateStopped)
	return nil
}

// Dispose releases every synthesis resource and closes the device.
// Safe from any state; the system ends uninitialized and may be rebuilt.
func (s *AudioSystem) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == core.StateUninitialized {
		return
	}
	if s.impacts != nil {
		s.locked(func() {
			s.out.open = false
			s.impacts.Dispose()
			s.bubbles.Dispose()
		})
	}
	if s.platform.Close != nil {
		s.platform.Close()
	}
	s.impacts = nil
	s.bubbles = nil
	s.sheet = nil
	s.wind = nil
	s.thunder = nil
	s.effects = nil
	s.mixer = nil
	s.out = nil
	s.rainscape = nil
	s.materials = nil
	s.material = nil
	s.setState(core.StateUninitialized)
}

// IngestCollision maps one physics impact onto the voice pools. It never
// panics and never blocks: mapping failures and pool exhaustion are
// counted as drops. Collisions outside the playing state are ignored.
func (s *AudioSystem) IngestCollision(ev core.CollisionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != core.StatePlaying {
		return
	}
	s.rollWindow()
	s.collisions++

	defer func() {
		if r := recover(); r != nil {
			s.dropped++
			log.Printf("audio: collision dropped: %v", r)
		}
	}()

	mat := s.material
	if m, ok := s.materials.Get(ev.SurfaceType); ok {
		mat = m
	}

	params := MapCollision(s.rainscape.Mapper, mat, ev, s.draw)

	s.locked(func() {
		if !s.impacts.Trigger(params, mat) {
			s.dropped++
		}
		if params.TriggerBubble {
			if !s.bubbles.Trigger(params, mat) {
				s.dropped++
			}
		}
	})
}

// SetParticleCount feeds the live particle density to the sheet layer
func (s *AudioSystem) SetParticleCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	s.particleCount = n
	if s.sheet == nil {
		return
	}
	s.locked(func() { s.sheet.Update(n) })
}

// SetMuffled toggles the fullscreen attenuation insert; idempotent
func (s *AudioSystem) SetMuffled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.effects == nil {
		return
	}
	s.locked(func() { s.effects.SetMuffled(on) })
}

// Muffled reports the muffle insert state
func (s *AudioSystem) Muffled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.effects == nil {
		return false
	}
	return s.effects.Muffled()
}

// SetMuted drops the master gain to the mute floor, remembering the
// prior level for unmute; idempotent
func (s *AudioSystem) SetMuted(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.effects == nil || on == s.muted {
		return
	}
	s.muted = on
	s.locked(func() {
		if on {
			s.unmutedDB = s.effects.masterDB()
			s.effects.SetMasterVolume(parameter.MuteFloorDB)
		} else {
			s.effects.SetMasterVolume(s.unmutedDB)
		}
	})
}

// Muted reports the mute state
func (s *AudioSystem) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// LoadRainscape validates a preset and applies it atomically: a failed
// validation leaves the running configuration completely untouched.
// Valid from any initialized state.
func (s *AudioSystem) LoadRainscape(rs *RainscapeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == core.StateUninitialized || s.state == core.StateInitializing || s.state == core.StateError {
		return fmt.Errorf("%w: load from %s", ErrNotReady, s.state)
	}
	if rs == nil {
		return errInvalidField("rainscape", "is nil")
	}
	if err := rs.Validate(); err != nil {
		return err
	}
	if err := s.materials.Register(rs.Material); err != nil {
		return err
	}
	mat, _ := s.materials.Get(rs.Material.ID)

	s.locked(func() {
		s.material = mat
		s.impacts.SetConfig(rs.Impact)
		s.bubbles.SetConfig(rs.Bubble)
		s.sheet.SetConfig(rs.SheetLayer)
		s.wind.SetConfig(rs.Wind)
		s.thunder.SetConfig(rs.Thunder)
		s.effects.SetConfig(rs.Effects)
		s.sheet.Update(s.particleCount)
	})
	s.rainscape = rs
	s.muted = false
	s.unmutedDB = rs.Effects.MasterVolume
	log.Printf("audio: rainscape %q loaded", rs.Name)
	return nil
}

// GatherPreset assembles the live configuration into a persistable
// rainscape snapshot
func (s *AudioSystem) GatherPreset() (*RainscapeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rainscape == nil {
		return nil, ErrNotReady
	}
	out := &RainscapeConfig{
		ID:          s.rainscape.ID,
		Name:        s.rainscape.Name,
		Description: s.rainscape.Description,
		Version:     rainscapeVersion,
		Material:    *s.material,
		Impact:      s.impacts.Config(),
		Bubble:      s.bubbles.Config(),
		SheetLayer:  s.sheet.Config(),
		Wind:        s.wind.Config(),
		Thunder:     s.thunder.Config(),
		Effects:     s.effects.Config(),
		Mapper:      s.rainscape.Mapper,
		Metadata:    s.rainscape.Metadata,
	}
	if s.muted {
		out.Effects.MasterVolume = s.unmutedDB
	}
	return out, nil
}

// rollWindow finalizes the collision-rate window when it has elapsed.
// Callers hold the engine mutex.
func (s *AudioSystem) rollWindow() {
	t := s.now()
	elapsed := t.Sub(s.windowStart)
	if elapsed < parameter.StatsWindow {
		return
	}
	s.lastRate = float64(s.collisions) / elapsed.Seconds()
	s.collisions = 0
	s.windowStart = t
}

// Stats returns a snapshot of engine health counters
func (s *AudioSystem) Stats() AudioSystemStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := AudioSystemStats{State: s.state}
	if s.impacts == nil {
		return st
	}
	s.rollWindow()
	st.ActiveImpactVoices = s.impacts.ActiveCount()
	st.ActiveBubbleVoices = s.bubbles.ActiveCount()
	st.ParticleCount = s.particleCount
	st.CollisionsPerSecond = s.lastRate
	st.DroppedCollisions = s.dropped
	st.StolenVoices = s.impacts.Stolen() + s.bubbles.Stolen()
	return st
}
