package audio

import (
	"testing"
	"time"

	"github.com/lixenwraith/rainscape/parameter"
)

// fakeSynth records lifecycle calls for pool tests
type fakeSynth struct {
	id        int
	silenced  int
	destroyed bool
}

func (f *fakeSynth) Stream(samples [][2]float64) (int, bool) {
	if f.destroyed {
		return 0, false
	}
	return len(samples), true
}

func (f *fakeSynth) Err() error            { return nil }
func (f *fakeSynth) Trigger(TriggerParams) {}
func (f *fakeSynth) Silence()              { f.silenced++ }
func (f *fakeSynth) Destroy()              { f.destroyed = true }

// fakeClock is a manually advanced time source
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPool(size int, stealing bool, clock *fakeClock) *VoicePool {
	return NewVoicePool(
		VoicePoolConfig{Size: size, EnableStealing: stealing},
		func(id int) Synth { return &fakeSynth{id: id} },
		nil,
		clock.Now,
	)
}

// TestPoolAcquireExhaustion verifies acquire returns nil when every
// voice is busy and stealing is disabled
func TestPoolAcquireExhaustion(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(3, false, clock)

	for i := 0; i < 3; i++ {
		v := pool.Acquire()
		if v == nil {
			t.Fatalf("Expected voice %d, got nil", i)
		}
		pool.Schedule(v, clock.Now().Add(time.Second))
	}

	if v := pool.Acquire(); v != nil {
		t.Errorf("Expected nil from exhausted pool, got voice %d", v.ID)
	}
	if pool.Stolen() != 0 {
		t.Errorf("Expected no steals, got %d", pool.Stolen())
	}
}

// TestPoolStealDeterminism verifies stealing picks the voice with the
// smallest release time, ties broken by the lowest id
func TestPoolStealDeterminism(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(3, true, clock)

	releases := []time.Duration{300 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
	voices := make([]*Voice, 3)
	for i := range releases {
		voices[i] = pool.Acquire()
		pool.Schedule(voices[i], clock.Now().Add(releases[i]))
	}

	stolen := pool.Acquire()
	if stolen == nil {
		t.Fatal("Expected a stolen voice, got nil")
	}
	if stolen.ID != voices[1].ID {
		t.Errorf("Expected to steal voice %d (earliest release), got %d", voices[1].ID, stolen.ID)
	}
	if fs := stolen.Synth.(*fakeSynth); fs.silenced != 1 {
		t.Errorf("Expected stolen voice silenced once, got %d", fs.silenced)
	}
	if pool.Stolen() != 1 {
		t.Errorf("Expected steal count 1, got %d", pool.Stolen())
	}
}

// TestPoolStealTieBreak verifies equal release times steal the lowest id
func TestPoolStealTieBreak(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(3, true, clock)

	release := clock.Now().Add(time.Second)
	for i := 0; i < 3; i++ {
		pool.Schedule(pool.Acquire(), release)
	}

	stolen := pool.Acquire()
	if stolen == nil {
		t.Fatal("Expected a stolen voice, got nil")
	}
	if stolen.ID != 0 {
		t.Errorf("Expected tie to steal voice 0, got %d", stolen.ID)
	}
}

// TestPoolLazyReclaim verifies expired voices become available without
// an explicit release
func TestPoolLazyReclaim(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(2, false, clock)

	v1 := pool.Acquire()
	v2 := pool.Acquire()
	pool.Schedule(v1, clock.Now().Add(50*time.Millisecond))
	pool.Schedule(v2, clock.Now().Add(5*time.Second))

	if pool.Acquire() != nil {
		t.Fatal("Expected exhaustion before time passes")
	}
	if got := pool.ActiveCount(); got != 2 {
		t.Errorf("Expected 2 active voices, got %d", got)
	}

	clock.Advance(100 * time.Millisecond)

	if got := pool.ActiveCount(); got != 1 {
		t.Errorf("Expected 1 active voice after expiry, got %d", got)
	}
	v := pool.Acquire()
	if v == nil {
		t.Fatal("Expected reclaimed voice, got nil")
	}
	if v.ID != v1.ID {
		t.Errorf("Expected reclaimed voice %d, got %d", v1.ID, v.ID)
	}
}

// TestPoolReleaseIdempotent verifies double release is harmless
func TestPoolReleaseIdempotent(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(1, false, clock)

	v := pool.Acquire()
	pool.Release(v)
	pool.Release(v)

	if pool.Acquire() == nil {
		t.Error("Expected voice available after release")
	}
}

// TestPoolResizeShrinkOrder verifies shrinking destroys idle voices
// before busy ones, and among busy ones those closest to finishing
func TestPoolResizeShrinkOrder(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(4, false, clock)

	// Voice 0 idle; 1, 2, 3 busy with descending time left
	v1 := pool.Acquire() // id 0, release immediately
	pool.Release(v1)
	busy := make([]*Voice, 3)
	for i := 0; i < 3; i++ {
		busy[i] = pool.Acquire()
		pool.Schedule(busy[i], clock.Now().Add(time.Duration(3-i)*time.Second))
	}

	pool.Resize(2)

	if pool.Size() != 2 {
		t.Fatalf("Expected size 2, got %d", pool.Size())
	}
	// Idle voice 0 goes first, then busy[2] (1s left)
	if got := pool.ActiveCount(); got != 2 {
		t.Errorf("Expected 2 surviving busy voices, got %d", got)
	}
	if fs := v1.Synth.(*fakeSynth); !fs.destroyed {
		t.Error("Expected idle voice destroyed first")
	}
	if fs := busy[2].Synth.(*fakeSynth); !fs.destroyed {
		t.Error("Expected busy voice closest to finishing destroyed second")
	}
	if fs := busy[0].Synth.(*fakeSynth); fs.destroyed {
		t.Error("Expected longest-running voice to survive")
	}
}

// TestPoolResizeBounds verifies resize clamps to [0, MaxPoolSize]
func TestPoolResizeBounds(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(2, false, clock)

	pool.Resize(parameter.MaxPoolSize + 10)
	if pool.Size() != parameter.MaxPoolSize {
		t.Errorf("Expected size capped at %d, got %d", parameter.MaxPoolSize, pool.Size())
	}

	pool.Resize(-1)
	if pool.Size() != 0 {
		t.Errorf("Expected size 0, got %d", pool.Size())
	}

	if pool.Acquire() != nil {
		t.Error("Expected nil from empty pool")
	}
}

// TestPoolResizeGrowFreshVoices verifies grown voices are idle and
// immediately acquirable
func TestPoolResizeGrowFreshVoices(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(1, false, clock)

	pool.Schedule(pool.Acquire(), clock.Now().Add(time.Second))
	pool.Resize(3)

	for i := 0; i < 2; i++ {
		if pool.Acquire() == nil {
			t.Fatalf("Expected fresh voice %d after grow", i)
		}
	}
	if pool.Acquire() != nil {
		t.Error("Expected exhaustion after acquiring all grown voices")
	}
}

// TestPoolDispose verifies dispose destroys every synth
func TestPoolDispose(t *testing.T) {
	clock := newFakeClock()
	pool := newTestPool(3, false, clock)

	synths := make([]*fakeSynth, 3)
	for i := 0; i < 3; i++ {
		v := pool.Acquire()
		synths[i] = v.Synth.(*fakeSynth)
	}

	pool.Dispose()

	for i, fs := range synths {
		if !fs.destroyed {
			t.Errorf("Expected synth %d destroyed", i)
		}
	}
	if pool.Size() != 0 {
		t.Errorf("Expected empty pool after dispose, got %d", pool.Size())
	}
}
