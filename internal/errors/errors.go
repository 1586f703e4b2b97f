package errors

import (
	"errors"
	"fmt"
)

// Exit codes for compat-runner
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitContainerFailed = 5
	ExitConfigError     = 6
	ExitPrepareFailed   = 9
	ExitTestsFailed     = 10
)

// CompatError is the base error type for compat-runner
type CompatError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CompatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CompatError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *CompatError) ExitCode() int {
	return e.Code
}

// New creates a new CompatError
func New(code int, message string) *CompatError {
	return &CompatError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a CompatError
func Wrap(code int, message string, cause error) *CompatError {
	return &CompatError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ImagePullFailed returns an error for a failed image pull
func ImagePullFailed(image string, cause error) *CompatError {
	return Wrap(ExitContainerFailed, fmt.Sprintf("failed to pull image %s", image), cause)
}

// ContainerStartFailed returns an error for a container that could not be started
func ContainerStartFailed(version string, cause error) *CompatError {
	return Wrap(ExitContainerFailed, fmt.Sprintf("failed to start container for version %s", version), cause)
}

// ContainerFailed returns an error for other container operations
func ContainerFailed(op string, cause error) *CompatError {
	return Wrap(ExitContainerFailed, fmt.Sprintf("container %s failed", op), cause)
}

// NotReady returns an error for a server that never became reachable
func NotReady(url string, cause error) *CompatError {
	return Wrap(ExitContainerFailed, fmt.Sprintf("server at %s did not become ready", url), cause)
}

// PrepareFailed returns an error for a case whose prepare step failed
func PrepareFailed(caseName string, cause error) *CompatError {
	return Wrap(ExitPrepareFailed, fmt.Sprintf("prepare failed for %s", caseName), cause)
}

// TestsFailed returns an error when the test harness reported failures
func TestsFailed(failed int) *CompatError {
	return New(ExitTestsFailed, fmt.Sprintf("%d compatibility test(s) failed", failed))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *CompatError {
	return Wrap(ExitConfigError, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *CompatError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var compatErr *CompatError
	if errors.As(err, &compatErr) {
		return compatErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
