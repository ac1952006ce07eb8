package physics

import (
	"math"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/vmath"
)

// Config shapes the rainfall simulation
type Config struct {
	// Intensity in [0,1] scales the spawn rate from drizzle to downpour
	Intensity float64

	// Surface every drop lands on
	Surface core.SurfaceType

	// Field dimensions in mm; drops spawn across Width and fall Height
	Width  float64
	Height float64

	// MaxParticles caps the live drop count
	MaxParticles int
}

// DefaultConfig returns a moderate rainfall over a desktop-sized field
func DefaultConfig() Config {
	return Config{
		Intensity:    0.4,
		Surface:      core.SurfaceWater,
		Width:        500,
		Height:       400,
		MaxParticles: 500,
	}
}

// Drop size distribution bounds, radius in mm
const (
	minDropRadius  = 0.25
	maxDropRadius  = 3.25
	meanDropRadius = 0.6

	// Spawn rate at full intensity, drops per second
	maxSpawnRate = 120.0

	waterDensity = 1000.0 // kg/m^3
)

type drop struct {
	radius   float64 // mm
	x, y     float64 // mm; y counts down to 0
	velocity float64 // m/s
}

// Simulator advances a field of falling raindrops and reports the
// impacts as collision events. Not safe for concurrent use; the host
// loop owns it.
type Simulator struct {
	cfg Config
	rng *vmath.FastRand

	drops []drop
	spawn float64 // fractional spawn accumulator

	scratch []core.CollisionEvent
}

// NewSimulator creates a simulator with the given seed
func NewSimulator(cfg Config, seed uint64) *Simulator {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = DefaultConfig().MaxParticles
	}
	return &Simulator{
		cfg:   cfg,
		rng:   vmath.NewFastRand(seed),
		drops: make([]drop, 0, cfg.MaxParticles),
	}
}

// SetIntensity adjusts the rainfall rate, clamped to [0,1]
func (s *Simulator) SetIntensity(v float64) {
	s.cfg.Intensity = math.Min(math.Max(v, 0), 1)
}

// Intensity returns the current rainfall rate
func (s *Simulator) Intensity() float64 { return s.cfg.Intensity }

// SetSurface changes the landing surface for subsequent impacts
func (s *Simulator) SetSurface(st core.SurfaceType) {
	s.cfg.Surface = st
}

// Surface returns the current landing surface
func (s *Simulator) Surface() core.SurfaceType { return s.cfg.Surface }

// ParticleCount returns the number of drops currently falling
func (s *Simulator) ParticleCount() int { return len(s.drops) }

// TerminalVelocity returns the fall speed in m/s for a drop radius in
// mm, from the Atlas empirical fit against drop diameter
func TerminalVelocity(radius float64) float64 {
	d := 2 * radius
	v := 9.65 - 10.3*math.Exp(-0.6*d)
	if v < 0 {
		return 0
	}
	return v
}

// dropMass returns the mass in kg of a spherical drop, radius in mm
func dropMass(radius float64) float64 {
	r := radius * 1e-3
	return 4.0 / 3.0 * math.Pi * r * r * r * waterDensity
}

// sampleRadius draws from a truncated exponential size distribution:
// most drops are small, heavy drops are rare
func (s *Simulator) sampleRadius() float64 {
	r := minDropRadius - meanDropRadius*math.Log(1-s.rng.Float64())
	if r > maxDropRadius {
		r = maxDropRadius
	}
	return r
}

// Step advances the field by dt seconds and returns the impacts that
// occurred. The returned slice is reused across calls.
func (s *Simulator) Step(dt float64) []core.CollisionEvent {
	s.scratch = s.scratch[:0]
	if dt <= 0 {
		return s.scratch
	}

	// Spawn with a fractional accumulator so low rates still drip
	s.spawn += s.cfg.Intensity * maxSpawnRate * dt
	for s.spawn >= 1 && len(s.drops) < s.cfg.MaxParticles {
		s.spawn--
		r := s.sampleRadius()
		s.drops = append(s.drops, drop{
			radius:   r,
			x:        s.rng.Range(0, s.cfg.Width),
			y:        s.cfg.Height,
			velocity: TerminalVelocity(r),
		})
	}
	if s.spawn >= 1 {
		s.spawn = 0
	}

	// Advance and collect landings; mm field, m/s velocity
	kept := s.drops[:0]
	for _, d := range s.drops {
		d.y -= d.velocity * 1e3 * dt
		if d.y > 0 {
			kept = append(kept, d)
			continue
		}
		s.scratch = append(s.scratch, core.CollisionEvent{
			DropRadius:  d.radius,
			Velocity:    d.velocity,
			Mass:        dropMass(d.radius),
			SurfaceType: s.cfg.Surface,
			Position:    core.Vec2{X: d.x, Y: 0},
			ImpactAngle: s.rng.Range(-0.12, 0.12),
		})
	}
	s.drops = kept
	return s.scratch
}
