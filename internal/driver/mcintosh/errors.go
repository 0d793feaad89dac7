// internal/driver/mcintosh/errors.go
package mcintosh

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownModel is returned for model ids without a profile.
	ErrUnknownModel = errors.New("mcintosh: unsupported model")
	// ErrInvalidControl is returned for an unknown tone, channel or action.
	ErrInvalidControl = errors.New("mcintosh: invalid control")
)

// OpenError reports a failure to bring up a client: the transport could not
// be opened or the initialization command was not answered.
type OpenError struct {
	Model string
	URL   string
	Err   error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("mcintosh: open %s at %s: %v", e.Model, e.URL, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
