//go:build noi2c

package hm1x

import (
	"context"
	"fmt"
)

// DefaultI2CAddress is the factory address of the Qwiic Bluetooth bridge.
const DefaultI2CAddress = 0x6F

// I2CDialer is unavailable in builds tagged noi2c, which leave out the
// periph.io host drivers.
type I2CDialer struct {
	BusName string
	Address uint16
}

func (d I2CDialer) Dial(ctx context.Context) (Transport, error) {
	return nil, fmt.Errorf("%w: built without I2C support", ErrUnsupported)
}
