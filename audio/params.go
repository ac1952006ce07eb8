package audio

import (
	"fmt"
	"log"
	"strings"

	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/parameter"
)

// UpdateParam adjusts one named parameter on the live configuration.
// Paths mirror the rainscape JSON layout, e.g. "effects.masterVolume",
// "sheetLayer.filterFreq", "wind.enabled", "impact.poolSize".
//
// Invalid values are rejected with ErrInvalidConfig and the prior
// configuration stays in effect. Unknown paths are logged and ignored
// so stale UI bindings never take the engine down.
func (s *AudioSystem) UpdateParam(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rainscape == nil {
		return ErrNotReady
	}

	prefix, key, _ := strings.Cut(path, ".")
	switch prefix {
	case "system":
		return s.updateSystemParam(key, value)
	case "effects":
		return s.updateEffectsParam(key, value)
	case "sheetLayer":
		return s.updateSheetParam(key, value)
	case "wind":
		return s.updateWindParam(key, value)
	case "thunder":
		return s.updateThunderParam(key, value)
	case "impact":
		return s.updateImpactParam(key, value)
	case "bubble":
		return s.updateBubbleParam(key, value)
	case "material":
		return s.updateMaterialParam(key, value)
	case "physicsMapper":
		return s.updateMapperParam(key, value)
	case "voicePools":
		return s.updatePoolSizeParam(key, value)
	}
	log.Printf("audio: ignoring unknown parameter %q", path)
	return nil
}

func (s *AudioSystem) updateSystemParam(key string, value any) error {
	on, ok := asBool(value)
	if !ok {
		return errInvalidField("system."+key, "wants a bool")
	}
	switch key {
	case "muted":
		if on == s.muted {
			return nil
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
		return nil
	case "muffled":
		s.locked(func() { s.effects.SetMuffled(on) })
		return nil
	}
	log.Printf("audio: ignoring unknown parameter %q", "system."+key)
	return nil
}

func (s *AudioSystem) updateEffectsParam(key string, value any) error {
	cfg := s.effects.Config()
	if s.muted {
		// The live chain sits at the mute floor; edits must carry the
		// restore level, not the sentinel
		cfg.MasterVolume = s.unmutedDB
	}
	switch key {
	case "masterVolume":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("effects.masterVolume", "wants a number")
		}
		cfg.MasterVolume = v
	case "spatialPosition":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("effects.spatialPosition", "wants a number")
		}
		cfg.SpatialPosition = v
	case "eq.low", "eq.mid", "eq.high":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("effects."+key, "wants a number")
		}
		switch key {
		case "eq.low":
			cfg.EQ.Low = v
		case "eq.mid":
			cfg.EQ.Mid = v
		case "eq.high":
			cfg.EQ.High = v
		}
	case "reverb.decay":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("effects.reverb.decay", "wants a number")
		}
		cfg.Reverb.Decay = v
	case "reverb.wetness":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("effects.reverb.wetness", "wants a number")
		}
		cfg.Reverb.Wetness = v
	default:
		log.Printf("audio: ignoring unknown parameter %q", "effects."+key)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() {
		s.effects.SetConfig(cfg)
		if s.muted {
			s.effects.SetMasterVolume(parameter.MuteFloorDB)
		}
	})
	s.rainscape.Effects = cfg
	s.unmutedDB = cfg.MasterVolume
	return nil
}

func (s *AudioSystem) updateSheetParam(key string, value any) error {
	cfg := s.sheet.Config()
	switch key {
	case "noiseType":
		v, ok := asString(value)
		if !ok {
			return errInvalidField("sheetLayer.noiseType", "wants a string")
		}
		cfg.NoiseType = core.NoiseType(v)
	case "filterType":
		v, ok := asString(value)
		if !ok {
			return errInvalidField("sheetLayer.filterType", "wants a string")
		}
		cfg.FilterType = core.FilterType(v)
	case "filterFreq", "filterQ", "minVolume", "maxVolume", "rampTime":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("sheetLayer."+key, "wants a number")
		}
		switch key {
		case "filterFreq":
			cfg.FilterFreq = v
		case "filterQ":
			cfg.FilterQ = v
		case "minVolume":
			cfg.MinVolume = v
		case "maxVolume":
			cfg.MaxVolume = v
		case "rampTime":
			cfg.RampTime = v
		}
	case "maxParticleCount":
		v, ok := asInt(value)
		if !ok {
			return errInvalidField("sheetLayer.maxParticleCount", "wants an integer")
		}
		cfg.MaxParticleCount = v
	default:
		log.Printf("audio: ignoring unknown parameter %q", "sheetLayer."+key)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() {
		s.sheet.SetConfig(cfg)
		s.sheet.Update(s.particleCount)
	})
	s.rainscape.SheetLayer = cfg
	return nil
}

func (s *AudioSystem) updateWindParam(key string, value any) error {
	cfg := s.wind.Config()
	switch key {
	case "enabled":
		v, ok := asBool(value)
		if !ok {
			return errInvalidField("wind.enabled", "wants a bool")
		}
		cfg.Enabled = v
	case "noiseType":
		v, ok := asString(value)
		if !ok {
			return errInvalidField("wind.noiseType", "wants a string")
		}
		cfg.NoiseType = core.NoiseType(v)
	default:
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("wind."+key, "wants a number")
		}
		switch key {
		case "baseGain":
			cfg.BaseGain = v
		case "lpfFreq":
			cfg.LPFFreq = v
		case "hpfFreq":
			cfg.HPFFreq = v
		case "lfoRate":
			cfg.LFORate = v
		case "lfoDepth":
			cfg.LFODepth = v
		case "gustMinInterval":
			cfg.GustMinInterval = v
		case "gustMaxInterval":
			cfg.GustMaxInterval = v
		case "gustRiseTime":
			cfg.GustRiseTime = v
		case "gustFallTime":
			cfg.GustFallTime = v
		case "gustMinLevel":
			cfg.GustMinLevel = v
		case "gustMaxLevel":
			cfg.GustMaxLevel = v
		default:
			log.Printf("audio: ignoring unknown parameter %q", "wind."+key)
			return nil
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() { s.wind.SetConfig(cfg) })
	s.rainscape.Wind = cfg
	return nil
}

func (s *AudioSystem) updateThunderParam(key string, value any) error {
	cfg := s.thunder.Config()
	switch key {
	case "enabled":
		v, ok := asBool(value)
		if !ok {
			return errInvalidField("thunder.enabled", "wants a bool")
		}
		cfg.Enabled = v
	default:
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("thunder."+key, "wants a number")
		}
		switch key {
		case "masterGain":
			cfg.MasterGain = v
		case "minInterval":
			cfg.MinInterval = v
		case "maxInterval":
			cfg.MaxInterval = v
		case "minDistance":
			cfg.MinDistance = v
		case "maxDistance":
			cfg.MaxDistance = v
		default:
			log.Printf("audio: ignoring unknown parameter %q", "thunder."+key)
			return nil
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() { s.thunder.SetConfig(cfg) })
	s.rainscape.Thunder = cfg
	return nil
}

func (s *AudioSystem) updatePoolSizeParam(key string, value any) error {
	n, ok := asInt(value)
	if !ok {
		return errInvalidField("voicePools."+key, "wants an integer")
	}
	if n < 0 || n > parameter.MaxPoolSize {
		return errInvalidField("voicePools."+key, fmt.Sprintf("outside [0,%d]", parameter.MaxPoolSize))
	}
	switch key {
	case "impactSize":
		s.locked(func() { s.impacts.Resize(n) })
		s.rainscape.Impact.PoolSize = s.impacts.Config().PoolSize
	case "bubbleSize":
		s.locked(func() { s.bubbles.Resize(n) })
		s.rainscape.Bubble.PoolSize = s.bubbles.Config().PoolSize
	default:
		log.Printf("audio: ignoring unknown parameter %q", "voicePools."+key)
	}
	return nil
}

func (s *AudioSystem) updateImpactParam(key string, value any) error {
	cfg := s.impacts.Config()
	switch key {
	case "poolSize":
		v, ok := asInt(value)
		if !ok {
			return errInvalidField("impact.poolSize", "wants an integer")
		}
		cfg.PoolSize = v
	case "enableStealing":
		v, ok := asBool(value)
		if !ok {
			return errInvalidField("impact.enableStealing", "wants a bool")
		}
		cfg.EnableStealing = v
	case "attack", "decayMin", "decayMax", "gain":
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("impact."+key, "wants a number")
		}
		switch key {
		case "attack":
			cfg.Attack = v
		case "decayMin":
			cfg.DecayMin = v
		case "decayMax":
			cfg.DecayMax = v
		case "gain":
			cfg.Gain = v
		}
	default:
		log.Printf("audio: ignoring unknown parameter %q", "impact."+key)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() { s.impacts.SetConfig(cfg) })
	s.rainscape.Impact = s.impacts.Config()
	return nil
}

func (s *AudioSystem) updateBubbleParam(key string, value any) error {
	cfg := s.bubbles.Config()
	switch key {
	case "poolSize":
		v, ok := asInt(value)
		if !ok {
			return errInvalidField("bubble.poolSize", "wants an integer")
		}
		cfg.PoolSize = v
	case "enableStealing":
		v, ok := asBool(value)
		if !ok {
			return errInvalidField("bubble.enableStealing", "wants a bool")
		}
		cfg.EnableStealing = v
	default:
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("bubble."+key, "wants a number")
		}
		switch key {
		case "attack":
			cfg.Attack = v
		case "decayMin":
			cfg.DecayMin = v
		case "decayMax":
			cfg.DecayMax = v
		case "chirpAmount":
			cfg.ChirpAmount = v
		case "chirpTime":
			cfg.ChirpTime = v
		case "freqMin":
			cfg.FreqMin = v
		case "freqMax":
			cfg.FreqMax = v
		case "gain":
			cfg.Gain = v
		default:
			log.Printf("audio: ignoring unknown parameter %q", "bubble."+key)
			return nil
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.locked(func() { s.bubbles.SetConfig(cfg) })
	s.rainscape.Bubble = s.bubbles.Config()
	return nil
}

func (s *AudioSystem) updateMaterialParam(key string, value any) error {
	cfg := *s.material
	switch key {
	case "impactSynthType":
		v, ok := asString(value)
		if !ok {
			return errInvalidField("material.impactSynthType", "wants a string")
		}
		cfg.ImpactSynthType = core.SynthType(v)
	case "bubbleOscillatorType":
		v, ok := asString(value)
		if !ok {
			return errInvalidField("material.bubbleOscillatorType", "wants a string")
		}
		cfg.BubbleOscillatorType = core.OscillatorType(v)
	default:
		v, ok := asFloat(value)
		if !ok {
			return errInvalidField("material."+key, "wants a number")
		}
		switch key {
		case "bubbleProbability":
			cfg.BubbleProbability = v
		case "filterFreq":
			cfg.FilterFreq = v
		case "filterQ":
			cfg.FilterQ = v
		case "decayMin":
			cfg.DecayMin = v
		case "decayMax":
			cfg.DecayMax = v
		case "pitchMultiplier":
			cfg.PitchMultiplier = v
		case "gainOffset":
			cfg.GainOffset = v
		default:
			log.Printf("audio: ignoring unknown parameter %q", "material."+key)
			return nil
		}
	}
	if err := s.materials.Register(cfg); err != nil {
		return err
	}
	mat, _ := s.materials.Get(cfg.ID)
	s.material = mat
	s.rainscape.Material = cfg
	return nil
}

func (s *AudioSystem) updateMapperParam(key string, value any) error {
	cfg := s.rainscape.Mapper
	v, ok := asFloat(value)
	if !ok {
		return errInvalidField("physicsMapper."+key, "wants a number")
	}
	switch key {
	case "velocityMin":
		cfg.VelocityMin = v
	case "velocityMax":
		cfg.VelocityMax = v
	case "volumeMin":
		cfg.VolumeMin = v
	case "volumeMax":
		cfg.VolumeMax = v
	case "minnaertBase":
		cfg.MinnaertBase = v
	case "freqMin":
		cfg.FreqMin = v
	case "freqMax":
		cfg.FreqMax = v
	case "decayBase":
		cfg.DecayBase = v
	case "decayRadiusScale":
		cfg.DecayRadiusScale = v
	default:
		log.Printf("audio: ignoring unknown parameter %q", "physicsMapper."+key)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.rainscape.Mapper = cfg
	return nil
}

// Coercions accept the types JSON decoding and UI bindings produce

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func asBool(value any) (bool, bool) {
	v, ok := value.(bool)
	return v, ok
}

func asString(value any) (string, bool) {
	v, ok := value.(string)
	return v, ok
}
