package percept

import (
	"fmt"
)

// ConfigurationError indicates invalid generator size parameters. The
// generator instance is unusable.
type ConfigurationError struct {
	ResizedSize   int
	TransformSize int
	Reason        string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("percept: invalid configuration (resizedSize=%d, transformSize=%d): %s",
		e.ResizedSize, e.TransformSize, e.Reason)
}

// BackendInitError indicates backend provisioning failed during generator
// construction. The generator instance is unusable.
//
// The underlying provisioning error can be accessed via errors.Unwrap.
type BackendInitError struct {
	cause error
}

func (e *BackendInitError) Error() string {
	return fmt.Sprintf("percept: backend init: %v", e.cause)
}

func (e *BackendInitError) Unwrap() error { return e.cause }
