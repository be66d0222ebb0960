package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/adminsuite/realtime-client/internal/queue"
)

var (
	// ErrNotConnected is returned by operations that require a live connection.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed is returned after Close has been called.
	ErrClosed = errors.New("client closed")

	// ErrQueueFull is returned when the offline buffer is at its limit.
	ErrQueueFull = queue.ErrFull
)

// TransportError wraps a failure of the underlying connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is an application-level error reported by the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

// ConfigurationError reports invalid client configuration. It is fatal and
// never retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when a correlated request receives no response
// within its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out after %s", e.Op, e.Timeout)
}
