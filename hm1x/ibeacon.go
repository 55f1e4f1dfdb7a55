package hm1x

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"i4.energy/across/btgw/at"
)

const (
	// IBeaconSegments is the number of 32-bit segments the beacon UUID is
	// written in.
	IBeaconSegments = 4
	// MaxIBeaconVersion is the largest major or minor value the module
	// accepts.
	MaxIBeaconVersion = 0xFFFE
)

// EnableIBeacon switches iBeacon advertising on or off.
func (d *Device) EnableIBeacon(enabled bool) error {
	return d.setFlag(at.CmdIBeacon, enabled)
}

// IBeaconUUID reads the four UUID segments and joins them.
func (d *Device) IBeaconUUID() (uuid.UUID, error) {
	var u uuid.UUID
	for i := range IBeaconSegments {
		seg, err := d.IBeaconUUIDSegment(i)
		if err != nil {
			return uuid.Nil, err
		}
		binary.BigEndian.PutUint32(u[i*4:], seg)
	}
	return u, nil
}

// SetIBeaconUUID writes all four UUID segments. It stops at the first
// segment the module rejects, so the stored UUID may be partially updated.
func (d *Device) SetIBeaconUUID(u uuid.UUID) error {
	for i := range IBeaconSegments {
		if err := d.SetIBeaconUUIDSegment(i, binary.BigEndian.Uint32(u[i*4:])); err != nil {
			return fmt.Errorf("UUID segment %d: %w", i, err)
		}
	}
	return nil
}

// IBeaconUUIDSegment reads one of the four 32-bit UUID segments.
func (d *Device) IBeaconUUIDSegment(i int) (uint32, error) {
	keyword, err := uuidKeyword(i)
	if err != nil {
		return 0, err
	}
	return d.getHex(keyword, at.WidthUUID)
}

// SetIBeaconUUIDSegment writes UUID segment i (0..3).
func (d *Device) SetIBeaconUUIDSegment(i int, v uint32) error {
	keyword, err := uuidKeyword(i)
	if err != nil {
		return err
	}
	param, err := at.Hex(v, at.WidthUUID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return d.set(keyword, param)
}

func uuidKeyword(i int) (string, error) {
	if i < 0 || i >= IBeaconSegments {
		return "", fmt.Errorf("%w: UUID segment %d", ErrInvalidParameter, i)
	}
	return at.CmdIBeaconUUID + strconv.Itoa(i), nil
}

// IBeaconMajor reads the advertised major number.
func (d *Device) IBeaconMajor() (uint16, error) {
	v, err := d.getHex(at.CmdIBeaconMajor, at.WidthVersion)
	return uint16(v), err
}

// SetIBeaconMajor sets the major number, at most MaxIBeaconVersion.
func (d *Device) SetIBeaconMajor(v uint16) error {
	return d.setVersion(at.CmdIBeaconMajor, v)
}

// IBeaconMinor reads the advertised minor number.
func (d *Device) IBeaconMinor() (uint16, error) {
	v, err := d.getHex(at.CmdIBeaconMinor, at.WidthVersion)
	return uint16(v), err
}

// SetIBeaconMinor sets the minor number, at most MaxIBeaconVersion.
func (d *Device) SetIBeaconMinor(v uint16) error {
	return d.setVersion(at.CmdIBeaconMinor, v)
}

func (d *Device) setVersion(keyword string, v uint16) error {
	if v > MaxIBeaconVersion {
		return fmt.Errorf("%w: 0x%X exceeds 0x%X", ErrInvalidParameter, v, MaxIBeaconVersion)
	}
	param, _ := at.Hex(uint32(v), at.WidthVersion)
	return d.set(keyword, param)
}

// IBeaconPower returns the measured power byte advertised by the beacon.
func (d *Device) IBeaconPower() (uint8, error) {
	v, err := d.getHex(at.CmdIBeaconPower, at.WidthPower)
	return uint8(v), err
}

// SetIBeaconPower sets the measured power byte.
func (d *Device) SetIBeaconPower(p uint8) error {
	param, _ := at.Hex(uint32(p), at.WidthPower)
	return d.set(at.CmdIBeaconPower, param)
}

// getHex queries a fixed-width hex field. Some firmware prefixes the value
// with "0x".
func (d *Device) getHex(keyword string, width int) (uint32, error) {
	value, err := d.get(keyword)
	if err != nil {
		return 0, err
	}
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	v, err := at.ParseHex(value, width)
	if err != nil {
		return 0, &ResponseError{
			Command:  at.Query(keyword).String(),
			Expected: fmt.Sprintf("%s<%d hex digits>", at.GetPrefix, width),
			Got:      at.GetPrefix + value,
		}
	}
	return v, nil
}
