package hm1x

import (
	"fmt"
	"strconv"

	"i4.energy/across/btgw/at"
)

// The general purpose pins that can be driven through AT commands.
const (
	PIO2 = 2
	PIO3 = 3
)

func pioKeyword(pin int) (string, error) {
	if pin != PIO2 && pin != PIO3 {
		return "", fmt.Errorf("%w: PIO%d is not a general purpose pin", ErrInvalidParameter, pin)
	}
	return at.CmdPIO + strconv.Itoa(pin), nil
}

// ReadPIO reports whether pin is driven high.
func (d *Device) ReadPIO(pin int) (bool, error) {
	keyword, err := pioKeyword(pin)
	if err != nil {
		return false, err
	}
	v, err := d.getDigit(keyword, "0", "1")
	return v == 1, err
}

// WritePIO drives pin high or low. The module acknowledges with the level
// only, so AT+PIO21 is answered with OK+Set:1.
func (d *Device) WritePIO(pin int, high bool) error {
	keyword, err := pioKeyword(pin)
	if err != nil {
		return err
	}
	return d.setFlag(keyword, high)
}
