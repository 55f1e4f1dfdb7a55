package hm1x

import (
	"fmt"

	"i4.energy/across/btgw/at"
)

const (
	// MaxNameLength is the longest device name the module stores.
	MaxNameLength = 28
	// MaxPinLength is the longest PIN the module stores.
	MaxPinLength = 6
)

// EDRRole is the role of the module on the EDR link.
type EDRRole int

const (
	EDRSlave EDRRole = iota
	EDRMaster
)

// BLERole is the role of the module on the BLE link.
type BLERole int

const (
	BLEPeripheral BLERole = iota
	BLECentral
)

// requireEDR fails with a CapabilityError on models without an EDR radio.
func (d *Device) requireEDR(op string) error {
	if !d.caps.DualMode {
		return &CapabilityError{Operation: op, Model: d.config.model}
	}
	return nil
}

// bleKeyword picks the BLE keyword of dual-mode models or its single-mode
// equivalent.
func (d *Device) bleKeyword(dual, single string) string {
	if d.caps.DualMode {
		return dual
	}
	return single
}

// EDRName returns the EDR device name.
func (d *Device) EDRName() (string, error) {
	if err := d.requireEDR("EDRName"); err != nil {
		return "", err
	}
	return d.get(at.CmdEDRName)
}

// SetEDRName sets the EDR device name.
func (d *Device) SetEDRName(name string) error {
	if err := d.requireEDR("SetEDRName"); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	return d.set(at.CmdEDRName, name)
}

// BLEName returns the BLE device name.
func (d *Device) BLEName() (string, error) {
	return d.get(d.bleKeyword(at.CmdBLEName, at.CmdEDRName))
}

// SetBLEName sets the BLE device name.
func (d *Device) SetBLEName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return d.set(d.bleKeyword(at.CmdBLEName, at.CmdEDRName), name)
}

func validateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be 1 to %d characters, got %d", ErrInvalidParameter, MaxNameLength, len(name))
	}
	return nil
}

// EDRAddress returns the module's own EDR address.
func (d *Device) EDRAddress() (string, error) {
	if err := d.requireEDR("EDRAddress"); err != nil {
		return "", err
	}
	return d.getAddress(at.CmdEDRAddress)
}

// BLEAddress returns the module's own BLE address.
func (d *Device) BLEAddress() (string, error) {
	return d.getAddress(d.bleKeyword(at.CmdBLEAddress, at.CmdAddress))
}

// LastEDRAddress returns the address of the last EDR peer.
func (d *Device) LastEDRAddress() (string, error) {
	if err := d.requireEDR("LastEDRAddress"); err != nil {
		return "", err
	}
	return d.getAddress(at.CmdLastEDRAddress)
}

// LastBLEAddress returns the address of the last BLE peer.
func (d *Device) LastBLEAddress() (string, error) {
	return d.getAddress(d.bleKeyword(at.CmdLastBLEAddress, at.CmdLastAddress))
}

func (d *Device) getAddress(keyword string) (string, error) {
	addr, err := d.get(keyword)
	if err != nil {
		return "", err
	}
	if !at.ValidAddress(addr) {
		return "", &ResponseError{
			Command:  at.Query(keyword).String(),
			Expected: at.GetPrefix + "<12 hex digits>",
			Got:      at.GetPrefix + addr,
		}
	}
	return addr, nil
}

// ClearEDRBond removes the EDR pairing information.
func (d *Device) ClearEDRBond() error {
	if err := d.requireEDR("ClearEDRBond"); err != nil {
		return err
	}
	return d.action(at.CmdClearEDRBond)
}

// ClearBLEBond removes the BLE pairing information.
func (d *Device) ClearBLEBond() error {
	return d.action(at.CmdClearBLEBond)
}

// ClearEDRLast forgets the last connected EDR peer.
func (d *Device) ClearEDRLast() error {
	if err := d.requireEDR("ClearEDRLast"); err != nil {
		return err
	}
	return d.action(at.CmdClearEDRLast)
}

// ClearBLELast forgets the last connected BLE peer.
func (d *Device) ClearBLELast() error {
	return d.action(d.bleKeyword(at.CmdClearBLELast, at.CmdClearLast))
}

// EDRRole returns whether the EDR radio is master or slave.
func (d *Device) EDRRole() (EDRRole, error) {
	if err := d.requireEDR("EDRRole"); err != nil {
		return 0, err
	}
	v, err := d.getDigit(at.CmdEDRRole, "0", "1")
	return EDRRole(v), err
}

// SetEDRRole sets the EDR radio role.
func (d *Device) SetEDRRole(role EDRRole) error {
	if err := d.requireEDR("SetEDRRole"); err != nil {
		return err
	}
	if role != EDRSlave && role != EDRMaster {
		return fmt.Errorf("%w: EDR role %d", ErrInvalidParameter, role)
	}
	return d.setFlag(at.CmdEDRRole, role == EDRMaster)
}

// BLERole returns the BLE role.
func (d *Device) BLERole() (BLERole, error) {
	v, err := d.getDigit(d.bleKeyword(at.CmdBLERole, at.CmdEDRRole), "0", "1")
	return BLERole(v), err
}

// SetBLERole sets the BLE role.
func (d *Device) SetBLERole(role BLERole) error {
	if role != BLEPeripheral && role != BLECentral {
		return fmt.Errorf("%w: BLE role %d", ErrInvalidParameter, role)
	}
	return d.setFlag(d.bleKeyword(at.CmdBLERole, at.CmdEDRRole), role == BLECentral)
}

// EDRPin returns the EDR pairing PIN.
func (d *Device) EDRPin() (string, error) {
	if err := d.requireEDR("EDRPin"); err != nil {
		return "", err
	}
	return d.get(at.CmdEDRPin)
}

// SetEDRPin sets the EDR pairing PIN.
func (d *Device) SetEDRPin(pin string) error {
	if err := d.requireEDR("SetEDRPin"); err != nil {
		return err
	}
	if err := validatePin(pin); err != nil {
		return err
	}
	return d.set(at.CmdEDRPin, pin)
}

// BLEPin returns the BLE pairing PIN.
func (d *Device) BLEPin() (string, error) {
	return d.get(d.bleKeyword(at.CmdBLEPin, at.CmdPin))
}

// SetBLEPin sets the BLE pairing PIN.
func (d *Device) SetBLEPin(pin string) error {
	if err := validatePin(pin); err != nil {
		return err
	}
	return d.set(d.bleKeyword(at.CmdBLEPin, at.CmdPin), pin)
}

func validatePin(pin string) error {
	if pin == "" || len(pin) > MaxPinLength {
		return fmt.Errorf("%w: PIN must be 1 to %d digits", ErrInvalidParameter, MaxPinLength)
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: PIN %q is not numeric", ErrInvalidParameter, pin)
		}
	}
	return nil
}
