package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the daemon closes the connection.
	ErrClosed = errors.New("connection closed by daemon")
	// ErrMalformed is returned for a line that does not decode in the active dialect.
	ErrMalformed = errors.New("malformed message")
	// ErrProtocol is returned when a well-formed message arrives out of place.
	ErrProtocol = errors.New("protocol violation")
	// ErrServerTooOld matches any *ServerTooOldError.
	ErrServerTooOld = errors.New("daemon protocol too old")
)

// ServerTooOldError reports the highest protocol version the daemon supports.
type ServerTooOldError struct {
	Supported int
}

func (e *ServerTooOldError) Error() string {
	return fmt.Sprintf("daemon supports protocol version %d only", e.Supported)
}

func (e *ServerTooOldError) Is(target error) bool {
	return target == ErrServerTooOld
}
