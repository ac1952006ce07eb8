package parameter

// Physics Mapper Bounds
//
// Velocity range covers drizzle up to terminal velocity of the largest
// drops. Frequency mapping follows Minnaert resonance: f = base / radius.
const (
	MapperVelocityMin = 0.5  // m/s
	MapperVelocityMax = 9.65 // m/s, terminal velocity of large drops

	MapperVolumeMin = -36.0 // dB at MapperVelocityMin
	MapperVolumeMax = -6.0  // dB at MapperVelocityMax

	// MinnaertBase in Hz*mm: 1mm drop rings at 3kHz
	MapperMinnaertBase = 3000.0
	MapperFreqMin      = 100.0 // Hz
	MapperFreqMax      = 8000.0

	MapperDecayBase        = 0.05 // s
	MapperDecayRadiusScale = 0.02 // s per mm

	// MinDropRadius clamps degenerate radii before the Minnaert division
	MinDropRadius = 1e-3 // mm
)
