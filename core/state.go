package core

// SystemState is the audio system lifecycle state
type SystemState int

const (
	StateUninitialized SystemState = iota
	StateInitializing
	StateReady
	StatePlaying
	StateStopped
	StateError
)

func (s SystemState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}
