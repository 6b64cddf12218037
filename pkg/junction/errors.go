package junction

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-tick input rejection. A tick that fails with one
// of these leaves the controller state exactly as it was before the call.
var (
	// ErrInvalidMeasurement marks a negative vehicle count.
	ErrInvalidMeasurement = errors.New("invalid measurement")
	// ErrInvalidTimestep marks a zero or negative tick delta.
	ErrInvalidTimestep = errors.New("invalid timestep")
)

// ConfigError reports a configuration value that violates the required
// ordering. It is surfaced at construction time and is not recoverable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Field, e.Reason)
}

func newConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}
