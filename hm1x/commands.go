package hm1x

import (
	"fmt"

	"i4.energy/across/btgw/at"
)

// MaxClassOfDevice is the largest class of device the module accepts.
const MaxClassOfDevice = 0xFFFFFE

// MTUSize selects the BLE packet size.
type MTUSize int

const (
	MTU60  MTUSize = iota // 60 bytes
	MTU120                // 120 bytes
)

// AdvertType selects how the EDR radio advertises.
type AdvertType int

const (
	AdvertDiscoverable    AdvertType = iota // discoverable and connectable
	AdvertConnectableOnly                   // connectable, not discoverable
)

// LEDMode selects how the system LED on PIO1 behaves while disconnected.
type LEDMode int

const (
	LEDBlinkDisconnected LEDMode = iota
	LEDOffDisconnected
)

// Reset restarts the module. Settings that need a restart, such as the baud
// rate, take effect afterwards.
func (d *Device) Reset() error {
	return d.action(at.CmdReset)
}

// FactoryDefaults restores the factory settings.
func (d *Device) FactoryDefaults() error {
	return d.action(at.CmdFactoryDefaults)
}

// Version returns the firmware version string.
func (d *Device) Version() (string, error) {
	return d.query(at.Query(at.CmdVersion), d.config.commandTimeout)
}

// NotifyInfo turns connection notifications on or off.
func (d *Device) NotifyInfo(enabled bool) error {
	return d.setFlag(at.CmdNotifyInfo, enabled)
}

// NotifyMode selects whether notifications carry the peer address.
func (d *Device) NotifyMode(withAddress bool) error {
	return d.setFlag(at.CmdNotifyMode, withAddress)
}

// Notify sets the notification mode and then turns notifications on or off.
func (d *Device) Notify(enabled, withAddress bool) error {
	if err := d.NotifyMode(withAddress); err != nil {
		return err
	}
	return d.NotifyInfo(enabled)
}

// EnableHighSpeed favours EDR throughput over BLE.
func (d *Device) EnableHighSpeed(enabled bool) error {
	return d.setFlag(at.CmdHighSpeed, enabled)
}

// EnableDualMode lets the EDR and BLE links be connected at the same time.
func (d *Device) EnableDualMode(enabled bool) error {
	if err := d.requireEDR("EnableDualMode"); err != nil {
		return err
	}
	// The module flag is inverted: 0 allows both links.
	return d.setFlag(at.CmdDualMode, !enabled)
}

// EnableRemoteControl lets the connected peer send AT commands.
func (d *Device) EnableRemoteControl(enabled bool) error {
	return d.setFlag(at.CmdWorkMode, enabled)
}

// EnableAtoB bridges data between the EDR and BLE links.
func (d *Device) EnableAtoB(enabled bool) error {
	return d.setFlag(at.CmdAtoB, enabled)
}

// EnableAuthentication turns on pairing authentication (AT+AUTH).
func (d *Device) EnableAuthentication(enabled bool) error {
	return d.setFlag(at.CmdAuthentication, enabled)
}

// EnableConnectionUpdate lets a BLE peripheral request new connection
// parameters.
func (d *Device) EnableConnectionUpdate(enabled bool) error {
	return d.setFlag(at.CmdConnectionUpdate, enabled)
}

// SetClassOfDevice sets the EDR class of device, at most MaxClassOfDevice.
func (d *Device) SetClassOfDevice(cod uint32) error {
	if cod > MaxClassOfDevice {
		return fmt.Errorf("%w: class of device 0x%X exceeds 0x%X", ErrInvalidParameter, cod, MaxClassOfDevice)
	}
	param, err := at.Hex(cod, at.WidthClass)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return d.set(at.CmdClassOfDevice, param)
}

// SetMTUSize selects the BLE packet size (AT+MTUS).
func (d *Device) SetMTUSize(size MTUSize) error {
	if size != MTU60 && size != MTU120 {
		return fmt.Errorf("%w: MTU size %d", ErrInvalidParameter, size)
	}
	return d.set(at.CmdMTUSize, fmt.Sprint(int(size)))
}

// AdvertType reads the EDR advertising behaviour.
func (d *Device) AdvertType() (AdvertType, error) {
	v, err := d.getDigit(at.CmdAdvertType, "0", "1")
	return AdvertType(v), err
}

// SetAdvertType sets the EDR advertising behaviour (AT+SCAN).
func (d *Device) SetAdvertType(t AdvertType) error {
	if t != AdvertDiscoverable && t != AdvertConnectableOnly {
		return fmt.Errorf("%w: advert type %d", ErrInvalidParameter, t)
	}
	return d.set(at.CmdAdvertType, fmt.Sprint(int(t)))
}

// EnableSafeMode turns the firmware safe mode on or off (AT+SAFE).
func (d *Device) EnableSafeMode(enabled bool) error {
	return d.setFlag(at.CmdSafeMode, enabled)
}

// DisableBLEAddress makes the module advertise without its BLE MAC address.
// Android centrals may fail to connect while it is set.
func (d *Device) DisableBLEAddress(disabled bool) error {
	return d.setFlag(at.CmdBLEMACOff, disabled)
}

// EnableSystemKey enables the system key function on PIO0.
func (d *Device) EnableSystemKey(enabled bool) error {
	return d.setFlag(at.CmdSystemKey, enabled)
}

// SetLEDMode configures the system LED on PIO1.
func (d *Device) SetLEDMode(mode LEDMode) error {
	if mode != LEDBlinkDisconnected && mode != LEDOffDisconnected {
		return fmt.Errorf("%w: LED mode %d", ErrInvalidParameter, mode)
	}
	return d.set(at.CmdSystemLED, fmt.Sprint(int(mode)))
}
