package splitwrap

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for the failure classes of a build run.
var (
	// ErrConsistency is returned when an internal invariant of the
	// partitioning step does not hold. The run must stop: partial output
	// cannot be trusted.
	ErrConsistency = errors.New("splitwrap: internal consistency failure")

	// ErrEnvironment is returned at startup for unsupported platform and
	// build type combinations.
	ErrEnvironment = errors.New("splitwrap: unsupported environment")

	// ErrCollaborator is returned when the external resolver, generator or
	// compiler reports a failure.
	ErrCollaborator = errors.New("splitwrap: collaborator failed")

	// ErrConfig indicates an invalid configuration value.
	ErrConfig = errors.New("splitwrap: invalid configuration")
)

// ConsistencyError reports a violated partitioning invariant together with
// the counts involved.
type ConsistencyError struct {
	Invariant string // e.g. "chunk count", "partitioned file count"
	Want      int
	Got       int
}

// Error returns the error string.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("splitwrap: internal error: %s is %d, expected %d", e.Invariant, e.Got, e.Want)
}

// Is reports whether the target error matches ConsistencyError.
// This allows errors.Is(err, ErrConsistency) to return true.
func (e *ConsistencyError) Is(err error) bool {
	return err == ErrConsistency
}

// NewConsistencyError returns a new ConsistencyError.
func NewConsistencyError(invariant string, want, got int) *ConsistencyError {
	return &ConsistencyError{Invariant: invariant, Want: want, Got: got}
}

// IsConsistencyError returns true if the error is a ConsistencyError.
func IsConsistencyError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConsistencyError
	return errors.As(err, &e) || errors.Is(err, ErrConsistency)
}

// EnvironmentError represents a refused platform/build type combination.
type EnvironmentError struct {
	Platform  string
	BuildType string
	Message   string
}

// Error returns the error string.
func (e *EnvironmentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "splitwrap: unsupported environment %s/%s", e.Platform, e.BuildType)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target error matches EnvironmentError.
func (e *EnvironmentError) Is(err error) bool {
	return err == ErrEnvironment
}

// NewEnvironmentError returns a new EnvironmentError.
func NewEnvironmentError(platform, buildType, message string) *EnvironmentError {
	return &EnvironmentError{Platform: platform, BuildType: buildType, Message: message}
}

// IsEnvironmentError returns true if the error is an EnvironmentError.
func IsEnvironmentError(err error) bool {
	if err == nil {
		return false
	}
	var e *EnvironmentError
	return errors.As(err, &e)
}

// CollaboratorError wraps an error reported by an external tool.
type CollaboratorError struct {
	Phase  string // "resolve", "generate" or "compile"
	Module string // Module being processed, empty for the resolve phase
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *CollaboratorError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("splitwrap: %s %s: %v", e.Phase, e.Module, e.Err)
	}
	return fmt.Sprintf("splitwrap: %s: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches CollaboratorError.
func (e *CollaboratorError) Is(err error) bool {
	return err == ErrCollaborator
}

// NewCollaboratorError returns a new CollaboratorError.
func NewCollaboratorError(phase, module string, err error) *CollaboratorError {
	return &CollaboratorError{Phase: phase, Module: module, Err: err}
}

// IsCollaboratorError returns true if the error is a CollaboratorError.
func IsCollaboratorError(err error) bool {
	if err == nil {
		return false
	}
	var e *CollaboratorError
	return errors.As(err, &e)
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("splitwrap: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("splitwrap: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target error matches ConfigError.
func (e *ConfigError) Is(err error) bool {
	return err == ErrConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}
