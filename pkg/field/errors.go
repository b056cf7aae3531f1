package field

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError returned from New.
	ErrInvalidConfig = errors.New("invalid field config")

	// ErrSurfaceUnavailable is returned by Attach when the surface or its
	// 2D context cannot be obtained. The frame loop is not started.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

	// ErrAlreadyAttached is returned by Attach while the animator is running.
	ErrAlreadyAttached = errors.New("animator already attached")
)

// ConfigError describes a single rejected Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ErrNotAttached is returned by operations that need a running animator.
var ErrNotAttached = errors.New("animator not attached")
