package audio

import (
	"time"

	"github.com/lixenwraith/rainscape/parameter"
)

// VoicePoolConfig sizes a pool and selects its overload behavior
type VoicePoolConfig struct {
	Size           int  `json:"size"`
	EnableStealing bool `json:"enableStealing"`
}

// VoicePool is a bounded pool of reusable synthesis voices.
//
// Acquire never blocks and never allocates: voices whose releaseTime has
// passed are lazily reclaimed during the scan, and when the pool is
// exhausted it either steals the voice closest to finishing (smallest
// releaseTime, ties to the lowest id) or returns nil. A nil return is
// the designed backpressure signal, not an error.
//
// The pool is not internally locked; the owning AudioSystem serializes
// acquire/release/resize as a unit.
type VoicePool struct {
	voices         []*Voice
	enableStealing bool

	newSynth func(id int) Synth
	attach   func(Synth)
	now      func() time.Time

	nextID int
	stolen uint64
}

// NewVoicePool creates a pool of cfg.Size idle voices. newSynth builds
// each owned synth handle; attach (optional) wires it into the bus mixer.
func NewVoicePool(cfg VoicePoolConfig, newSynth func(id int) Synth, attach func(Synth), now func() time.Time) *VoicePool {
	if now == nil {
		now = time.Now
	}
	p := &VoicePool{
		enableStealing: cfg.EnableStealing,
		newSynth:       newSynth,
		attach:         attach,
		now:            now,
	}
	p.Resize(cfg.Size)
	return p
}

// Acquire returns a voice marked busy, or nil when the pool is exhausted
// and stealing is disabled. A stolen voice has been force-silenced.
func (p *VoicePool) Acquire() *Voice {
	t := p.now()

	var idle *Voice
	for _, v := range p.voices {
		if v.busy && !v.releaseTime.After(t) {
			v.busy = false
		}
		if !v.busy && idle == nil {
			idle = v
		}
	}
	if idle != nil {
		idle.busy = true
		return idle
	}

	if !p.enableStealing || len(p.voices) == 0 {
		return nil
	}

	victim := p.voices[0]
	for _, v := range p.voices[1:] {
		if v.releaseTime.Before(victim.releaseTime) ||
			(v.releaseTime.Equal(victim.releaseTime) && v.ID < victim.ID) {
			victim = v
		}
	}
	victim.Synth.Silence()
	victim.busy = true
	p.stolen++
	return victim
}

// Schedule records when an acquired voice will fall idle
func (p *VoicePool) Schedule(v *Voice, release time.Time) {
	v.releaseTime = release
}

// Release marks a voice idle; idempotent
func (p *VoicePool) Release(v *Voice) {
	v.busy = false
}

// ActiveCount returns the number of voices still sounding
func (p *VoicePool) ActiveCount() int {
	t := p.now()
	n := 0
	for _, v := range p.voices {
		if v.busy && v.releaseTime.After(t) {
			n++
		}
	}
	return n
}

// Size returns the pool capacity
func (p *VoicePool) Size() int {
	return len(p.voices)
}

// Stolen returns the cumulative steal count
func (p *VoicePool) Stolen() uint64 {
	return p.stolen
}

// SetStealing toggles voice stealing on exhaustion
func (p *VoicePool) SetStealing(enabled bool) {
	p.enableStealing = enabled
}

// Resize grows the pool with fresh idle voices or shrinks it, destroying
// idle voices first, then busy voices closest to finishing (smallest
// releaseTime, ties to the lowest id).
func (p *VoicePool) Resize(newSize int) {
	if newSize < 0 {
		newSize = 0
	}
	if newSize > parameter.MaxPoolSize {
		newSize = parameter.MaxPoolSize
	}

	t := p.now()
	for _, v := range p.voices {
		if v.busy && !v.releaseTime.After(t) {
			v.busy = false
		}
	}

	for len(p.voices) > newSize {
		victim := p.voices[0]
		for _, v := range p.voices[1:] {
			switch {
			case !victim.busy && !v.busy:
				if v.ID < victim.ID {
					victim = v
				}
			case victim.busy && !v.busy:
				victim = v
			case victim.busy && v.busy:
				if v.releaseTime.Before(victim.releaseTime) ||
					(v.releaseTime.Equal(victim.releaseTime) && v.ID < victim.ID) {
					victim = v
				}
			}
		}
		p.destroy(victim)
	}

	for len(p.voices) < newSize {
		s := p.newSynth(p.nextID)
		v := &Voice{ID: p.nextID, Synth: s}
		p.nextID++
		p.voices = append(p.voices, v)
		if p.attach != nil {
			p.attach(s)
		}
	}
}

func (p *VoicePool) destroy(victim *Voice) {
	victim.Synth.Silence()
	victim.Synth.Destroy()
	for i, v := range p.voices {
		if v == victim {
			p.voices = append(p.voices[:i], p.voices[i+1:]...)
			return
		}
	}
}

// Dispose destroys every held synthesis resource
func (p *VoicePool) Dispose() {
	for _, v := range p.voices {
		v.Synth.Silence()
		v.Synth.Destroy()
	}
	p.voices = nil
}
