package core

// SynthType selects the impact transient synthesis model
type SynthType string

const (
	SynthNoise    SynthType = "noise"    // Filtered noise burst
	SynthMembrane SynthType = "membrane" // Pitch-dropping sine, drum-like
	SynthMetal    SynthType = "metal"    // Inharmonic partial stack
)

// Valid reports whether the synth type is recognized
func (s SynthType) Valid() bool {
	switch s {
	case SynthNoise, SynthMembrane, SynthMetal:
		return true
	}
	return false
}

// OscillatorType selects the bubble voice waveform
type OscillatorType string

const (
	OscSine     OscillatorType = "sine"
	OscTriangle OscillatorType = "triangle"
	OscSquare   OscillatorType = "square"
	OscSawtooth OscillatorType = "sawtooth"
)

// Valid reports whether the oscillator type is recognized
func (o OscillatorType) Valid() bool {
	switch o {
	case OscSine, OscTriangle, OscSquare, OscSawtooth:
		return true
	}
	return false
}

// NoiseType selects the noise spectrum for continuous layers
type NoiseType string

const (
	NoiseWhite NoiseType = "white"
	NoisePink  NoiseType = "pink"
	NoiseBrown NoiseType = "brown"
)

// Valid reports whether the noise type is recognized
func (n NoiseType) Valid() bool {
	switch n {
	case NoiseWhite, NoisePink, NoiseBrown:
		return true
	}
	return false
}

// FilterType selects the sheet layer filter topology
type FilterType string

const (
	FilterLowpass  FilterType = "lowpass"
	FilterHighpass FilterType = "highpass"
	FilterBandpass FilterType = "bandpass"
)

// Valid reports whether the filter type is recognized
func (f FilterType) Valid() bool {
	switch f {
	case FilterLowpass, FilterHighpass, FilterBandpass:
		return true
	}
	return false
}
