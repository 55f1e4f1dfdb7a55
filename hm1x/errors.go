package hm1x

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Device is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// reach the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Device that has no transport, for example one not created via New.
	ErrNotInitialized = errors.New("device not initialized")

	// ErrAlreadyClosed is returned when an operation or Close is attempted on
	// a Device that has already been closed.
	ErrAlreadyClosed = errors.New("device already closed")

	// ErrTimeout is returned when the module did not send enough bytes within
	// the exchange window. Some bytes may have arrived.
	//
	// The module state is unknown after a timeout; a setter may or may not
	// have been applied.
	ErrTimeout = errors.New("timed out waiting for response")

	// ErrUnexpectedResponse is returned when the module answered with bytes
	// that do not match the expected acknowledgement, or with a value outside
	// the accepted domain. No rollback is attempted.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrInvalidParameter is returned before any I/O when a caller supplied
	// value is outside the domain the module accepts. It matches
	// ErrUnexpectedResponse with errors.Is.
	ErrInvalidParameter = fmt.Errorf("%w: invalid parameter", ErrUnexpectedResponse)

	// ErrUnsupported is returned when an operation, baud rate or transport
	// feature is not available for the configured model. No byte is sent.
	ErrUnsupported = errors.New("unsupported by model")

	// ErrAllocation is returned when a reply cannot be buffered because it
	// exceeds the configured maximum response length. The reply is drained
	// and discarded.
	ErrAllocation = errors.New("response buffer allocation failed")
)

// ResponseError describes an acknowledgement that did not match.
type ResponseError struct {
	// Command is the command as sent on the wire
	Command string
	// Expected is the acknowledgement the command should produce
	Expected string
	// Got is what the module actually sent
	Got string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.Command, e.Expected, e.Got)
}

func (e *ResponseError) Unwrap() error {
	return ErrUnexpectedResponse
}

// CapabilityError reports an operation the configured model cannot perform.
type CapabilityError struct {
	Operation string
	Model     Model
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: not supported by %s", e.Operation, e.Model)
}

func (e *CapabilityError) Unwrap() error {
	return ErrUnsupported
}
