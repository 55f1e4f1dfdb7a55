package hm1x

import (
	"context"
	"io"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=hm1x

// Transport represents an established byte stream to an HM-1x module.
//
// A Transport is assumed to be already connected and ready for use. The
// protocol engine never blocks on it: it polls Available and then reads
// exactly the bytes that are reported as present. Typical implementations
// are a serial port, an I2C bridge, or an in-memory fake used for testing.
type Transport interface {
	io.Writer
	io.Closer

	// Available reports how many received bytes can be read without
	// blocking.
	Available() (int, error)

	// ReadByte returns the next received byte. It is only called after
	// Available reported at least one byte.
	ReadByte() (byte, error)
}

// BaudRateSetter is implemented by transports whose line speed can be
// changed after they are opened. Baud recovery requires it.
type BaudRateSetter interface {
	SetBaudRate(baud int) error
}

// BaudTransport is a Transport whose line speed can be reconfigured.
type BaudTransport interface {
	Transport
	BaudRateSetter
}

// Dialer opens a Transport to a module.
//
// Dialer abstracts how the connection is created (serial port, I2C bridge
// or test double) and is used during Device construction only.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}
