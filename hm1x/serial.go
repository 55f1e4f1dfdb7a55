package hm1x

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// SerialDialer opens a module attached to a serial port.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB0 or COM3.
	PortName string
	// BaudRate is used when Mode is nil. Zero means DefaultBaudRate.
	BaudRate int
	// Mode overrides the line settings. Defaults to 8N1 at BaudRate.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("hm1x: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("hm1x: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.mode()
	port, err := serial.Open(d.PortName, &mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}

	// Reads must never block: the engine polls for available bytes.
	if err := port.SetReadTimeout(0); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure serial port %s: %w", d.PortName, err)
	}

	return newSerialTransport(port, mode), nil
}

func (d SerialDialer) mode() serial.Mode {
	if d.Mode != nil {
		return *d.Mode
	}
	rate := d.BaudRate
	if rate == 0 {
		rate = DefaultBaudRate
	}
	return serial.Mode{
		BaudRate: rate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// serialTransport adapts a serial.Port, which only offers blocking or
// timed reads, to the Available/ReadByte contract by buffering whatever a
// zero-timeout read returns.
type serialTransport struct {
	port    serial.Port
	mode    serial.Mode
	pending []byte
	scratch [256]byte
}

func newSerialTransport(port serial.Port, mode serial.Mode) *serialTransport {
	return &serialTransport{port: port, mode: mode}
}

func (t *serialTransport) fill() error {
	n, err := t.port.Read(t.scratch[:])
	if n > 0 {
		t.pending = append(t.pending, t.scratch[:n]...)
	}
	return err
}

func (t *serialTransport) Available() (int, error) {
	if err := t.fill(); err != nil {
		return len(t.pending), err
	}
	return len(t.pending), nil
}

func (t *serialTransport) ReadByte() (byte, error) {
	if len(t.pending) == 0 {
		if err := t.fill(); err != nil {
			return 0, err
		}
		if len(t.pending) == 0 {
			return 0, io.EOF
		}
	}
	b := t.pending[0]
	t.pending = t.pending[1:]
	return b, nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

// SetBaudRate changes the line speed. Bytes received at the old speed are
// discarded.
func (t *serialTransport) SetBaudRate(baud int) error {
	mode := t.mode
	mode.BaudRate = baud
	if err := t.port.SetMode(&mode); err != nil {
		return err
	}
	t.mode = mode
	t.pending = nil
	return t.port.ResetInputBuffer()
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
