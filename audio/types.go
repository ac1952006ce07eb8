package audio

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidConfig marks a rejected rainscape or parameter value;
	// prior state is always preserved
	ErrInvalidConfig = errors.New("invalid rainscape configuration")

	// ErrNotReady marks a lifecycle call made from the wrong state
	ErrNotReady = errors.New("audio system not ready")

	// ErrPlatform marks an unrecoverable audio device failure; the
	// system is in the error state until disposed and rebuilt
	ErrPlatform = errors.New("audio platform failure")
)

func errInvalidField(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, msg)
}
