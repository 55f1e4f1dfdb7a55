package hm1x

import (
	"fmt"
	"time"

	"i4.energy/across/btgw/at"
)

// ConnectionState tracks the links reported by connect and disconnect
// notifications. Addresses are 12 hex digits or empty.
type ConnectionState struct {
	EDRConnected bool   `json:"edr_connected"`
	EDRAddress   string `json:"edr_address"`
	BLEConnected bool   `json:"ble_connected"`
	BLEAddress   string `json:"ble_address"`
}

// SetupPoll turns on connection notifications with peer addresses and
// switches Available and Read to the inbox.
func (d *Device) SetupPoll() error {
	if err := d.Notify(true, true); err != nil {
		return fmt.Errorf("enable notifications: %w", err)
	}
	d.polling = true
	return nil
}

// Polling reports whether SetupPoll succeeded.
func (d *Device) Polling() bool {
	return d.polling
}

// State returns the connection state as of the last Poll.
func (d *Device) State() ConnectionState {
	return d.state
}

// LastEvent returns the last notification Poll recognized.
func (d *Device) LastEvent() at.Event {
	return d.last
}

// Poll drains the transport once and classifies what arrived. It reports
// true when the bytes were a connection notification or a restart notice.
// Anything else is appended to the inbox and Poll reports false, as it does
// when nothing arrived.
//
// Bytes are read one at a time with the configured poll delay in between so
// that a notice still being transmitted is not split across ticks.
func (d *Device) Poll() (bool, error) {
	if err := d.ready(); err != nil {
		return false, err
	}

	var frame []byte
	var readErr error
	for {
		n, err := d.transport.Available()
		if err != nil {
			readErr = err
			break
		}
		if n == 0 {
			break
		}
		b, err := d.transport.ReadByte()
		if err != nil {
			readErr = err
			break
		}
		frame = append(frame, b)
		time.Sleep(d.config.pollDelay)
	}

	if readErr != nil {
		// Keep what was received; the caller may still want it.
		d.inbox.Write(frame)
		return false, fmt.Errorf("poll: %w", readErr)
	}
	if len(frame) == 0 {
		return false, nil
	}

	ev := at.ParseEvent(frame)
	if ev.Type == at.EventNone {
		d.inbox.Write(frame)
		return false, nil
	}
	d.apply(ev)
	return true, nil
}

func (d *Device) apply(ev at.Event) {
	d.last = ev

	switch ev.Type {
	case at.EventEDRConnect:
		d.state.EDRConnected = true
		d.state.EDRAddress = ev.Address
	case at.EventEDRDisconnect:
		d.state.EDRConnected = false
		d.state.EDRAddress = ev.Address
	case at.EventBLEConnect:
		d.state.BLEConnected = true
		d.state.BLEAddress = ev.Address
	case at.EventBLEDisconnect:
		d.state.BLEConnected = false
		d.state.BLEAddress = ev.Address
	}

	d.logger.Info("module event", "event", ev.Type.String(), "address", ev.Address)
}
