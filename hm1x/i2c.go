//go:build !noi2c

package hm1x

import (
	"context"
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultI2CAddress is the factory address of the Qwiic Bluetooth bridge.
const DefaultI2CAddress = 0x6F

// Register commands of the Qwiic bridge firmware.
const (
	bridgeAvailable  = 0
	bridgeRead       = 1
	bridgeWrite      = 2
	bridgeSetBaud    = 3
	bridgeSetAddress = 4

	// bridgeChunk is the most bytes the bridge moves per transaction.
	bridgeChunk = 14

	minI2CAddress = 0x08
	maxI2CAddress = 0x77
)

// I2CDialer opens a module behind a Qwiic I2C-to-UART bridge.
type I2CDialer struct {
	// BusName selects the bus as known to periph, e.g. "/dev/i2c-1" or "1".
	// Empty picks the first bus found.
	BusName string
	// Address of the bridge. Zero means DefaultI2CAddress.
	Address uint16
}

func (d I2CDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("hm1x: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize periph host: %w", err)
	}
	bus, err := i2creg.Open(d.BusName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", d.BusName, err)
	}

	addr := d.Address
	if addr == 0 {
		addr = DefaultI2CAddress
	}
	return newI2CTransport(bus, addr), nil
}

// I2CTransport talks to the module through the bridge registers.
type I2CTransport struct {
	bus     i2c.BusCloser
	dev     i2c.Dev
	pending []byte
}

func newI2CTransport(bus i2c.BusCloser, addr uint16) *I2CTransport {
	return &I2CTransport{
		bus: bus,
		dev: i2c.Dev{Bus: bus, Addr: addr},
	}
}

func (t *I2CTransport) bridgeAvailable() (int, error) {
	var r [1]byte
	if err := t.dev.Tx([]byte{bridgeAvailable}, r[:]); err != nil {
		return 0, fmt.Errorf("bridge available: %w", err)
	}
	return int(r[0]), nil
}

func (t *I2CTransport) Available() (int, error) {
	n, err := t.bridgeAvailable()
	if err != nil {
		return len(t.pending), err
	}
	return len(t.pending) + n, nil
}

func (t *I2CTransport) ReadByte() (byte, error) {
	if len(t.pending) == 0 {
		n, err := t.bridgeAvailable()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		n = min(n, bridgeChunk)
		buf := make([]byte, n)
		if err := t.dev.Tx([]byte{bridgeRead, byte(n)}, buf); err != nil {
			return 0, fmt.Errorf("bridge read: %w", err)
		}
		t.pending = buf
	}
	b := t.pending[0]
	t.pending = t.pending[1:]
	return b, nil
}

// Write sends p in chunks the bridge can take.
func (t *I2CTransport) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n := min(len(p)-written, bridgeChunk)
		w := make([]byte, 0, n+1)
		w = append(w, bridgeWrite)
		w = append(w, p[written:written+n]...)
		if err := t.dev.Tx(w, nil); err != nil {
			return written, fmt.Errorf("bridge write: %w", err)
		}
		written += n
	}
	return written, nil
}

// SetBaudRate changes the speed of the bridge UART.
func (t *I2CTransport) SetBaudRate(baud int) error {
	b, err := BaudFromRate(baud)
	if err != nil {
		return err
	}
	if err := t.dev.Tx([]byte{bridgeSetBaud, byte(b)}, nil); err != nil {
		return fmt.Errorf("bridge set baud: %w", err)
	}
	t.pending = nil
	return nil
}

// SetAddress moves the bridge to a new I2C address, 0x08 to 0x77, and
// continues talking to it there.
func (t *I2CTransport) SetAddress(addr uint16) error {
	if addr < minI2CAddress || addr > maxI2CAddress {
		return fmt.Errorf("%w: I2C address 0x%02X", ErrInvalidParameter, addr)
	}
	if err := t.dev.Tx([]byte{bridgeSetAddress, byte(addr)}, nil); err != nil {
		return fmt.Errorf("bridge set address: %w", err)
	}
	t.dev.Addr = addr
	return nil
}

func (t *I2CTransport) Close() error {
	return t.bus.Close()
}
