package core

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrConfig     = errors.New("configuration error")
	ErrResource   = errors.New("resource resolution error")
	ErrEmptyScene = errors.New("scene has no live elements")
)

// ConfigError reports a malformed or invalid configuration value
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigError builds a ConfigError for field
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += " in " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func (e *ConfigError) Unwrap() error { return e.Err }

// ResourceError reports a resource reference that could not be resolved or loaded
type ResourceError struct {
	Ref string
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resource %q not found", e.Ref)
	}
	return fmt.Sprintf("resource %q: %v", e.Ref, e.Err)
}

func (e *ResourceError) Is(target error) bool { return target == ErrResource }

func (e *ResourceError) Unwrap() error { return e.Err }
