package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
)

// Audio Engine Timing
const (
	// AudioBufferDuration determines speaker latency.
	// 50ms keeps triggers within one scheduling tick of the host loop.
	AudioBufferDuration = 50 * time.Millisecond

	// StatsWindow is the rolling stats window; counters reset at each boundary
	StatsWindow = time.Second
)

// Voice Pools
const (
	// MaxPoolSize bounds any voice pool; acquisition is an O(size) scan
	// so sizes stay small by design
	MaxPoolSize = 32

	DefaultImpactPoolSize = 12
	DefaultBubblePoolSize = 8
)

// Impact Voice Envelope
const (
	ImpactAttack   = 0.001 // s
	ImpactDecayMin = 0.02  // s
	ImpactDecayMax = 0.5   // s
)

// Bubble Voice Envelope
const (
	BubbleAttack      = 0.005 // s
	BubbleDecayMin    = 0.03  // s
	BubbleDecayMax    = 0.5   // s
	BubbleChirpAmount = 0.1   // fractional upward pitch drift
	BubbleChirpTime   = 0.1   // s to reach full drift
	BubbleFreqMin     = 400.0 // Hz
	BubbleFreqMax     = 4000.0
)

// Master / Effects
const (
	// MuteFloorDB and below is a mute sentinel, not a literal gain
	MuteFloorDB = -60.0

	MuffleCutoffHz = 800.0 // lowpass applied while a monitor is fullscreen
	MuffleGainDB   = -9.0
)

// Sheet Layer Defaults
const (
	SheetFilterFreq       = 2000.0
	SheetFilterQ          = 1.0
	SheetMinVolume        = -60.0 // dB
	SheetMaxVolume        = -12.0 // dB
	SheetMaxParticleCount = 500
	SheetRampTime         = 0.1 // s
)

// Wind Layer Defaults
const (
	WindBaseGain        = -24.0 // dB
	WindLPFFreq         = 800.0
	WindHPFFreq         = 80.0
	WindLFORate         = 0.15 // Hz
	WindLFODepth        = 0.3
	WindGustMinInterval = 8.0  // s
	WindGustMaxInterval = 25.0 // s
	WindGustRiseTime    = 1.5  // s
	WindGustFallTime    = 3.0  // s
	WindGustMinLevel    = 0.3
	WindGustMaxLevel    = 0.8
)

// Thunder Defaults
const (
	ThunderMasterGain  = -6.0 // dB
	ThunderMinInterval = 30.0 // s
	ThunderMaxInterval = 120.0
	ThunderMinDistance = 1.0 // km
	ThunderMaxDistance = 15.0
)
