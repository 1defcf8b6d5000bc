package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownResourceType = errors.New("resource type missing from minimum level table")
	ErrDuplicateHospital   = errors.New("duplicate hospital id")
	ErrInvalidThreshold    = errors.New("invalid minimum level")
)

// ConfigError reports input the engine cannot evaluate, as opposed to an
// empty (healthy) result.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
