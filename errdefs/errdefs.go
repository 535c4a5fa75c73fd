// Package errdefs defines the closed error taxonomy of the VM manager.
// Callers branch on kind with errors.Is / errors.As instead of parsing
// formatted messages.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument means a name, size, MAC, or mode failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists means the VM name is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound means no record exists for the VM name.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRunning means the VM has a live control channel.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning means the VM has no live control channel.
	ErrNotRunning = errors.New("not running")
	// ErrStillRunning means shutdown did not converge within the grace period.
	ErrStillRunning = errors.New("still running")
	// ErrResourceExhausted means the MAC pool is full.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrLimitExceeded means a requested size is above the configured ceiling.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrControlChannel means the monitor socket could not be reached.
	ErrControlChannel = errors.New("control channel error")
)

// ExternalToolError carries the identity and exit status of a failed
// external command (qemu-img, qemu-system, pkill).
type ExternalToolError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *ExternalToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Output)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// IsExternalToolError reports whether err wraps an ExternalToolError.
func IsExternalToolError(err error) bool {
	var te *ExternalToolError
	return errors.As(err, &te)
}
