// internal/protocol/errors.go
package protocol

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned when no connection came up within the call's timeout.
	ErrNotConnected = errors.New("protocol: not connected")
	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("protocol: timeout waiting for response")
	// ErrConnectionLost is returned to a request whose transport dropped mid-flight.
	ErrConnectionLost = errors.New("protocol: connection lost")
	// ErrClosed is returned once the engine has been closed by its owner.
	ErrClosed = errors.New("protocol: engine closed")
	// ErrUnsupportedScheme is returned for connection URLs that are neither serial nor socket.
	ErrUnsupportedScheme = errors.New("protocol: unsupported connection url scheme")
)

// TimeoutError carries the bytes collected before the deadline passed.
type TimeoutError struct {
	Command string
	Partial []byte
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("protocol: no response to %q within %s (partial %q)", e.Command, e.Timeout, e.Partial)
}

// Is reports ErrTimeout as a match so callers can use errors.Is.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
