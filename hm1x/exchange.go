package hm1x

import (
	"bytes"
	"fmt"
	"time"

	"i4.energy/across/btgw/at"
)

// busyPollInterval is how long an exchange yields between checks of the
// transport while waiting for a reply.
const busyPollInterval = time.Millisecond

// send writes the wire form of cmd.
func (d *Device) send(cmd at.Command) error {
	if err := d.ready(); err != nil {
		return err
	}

	d.logger.Debug("send", "cmd", cmd.String())
	if _, err := d.transport.Write(cmd.Wire()); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// sendAndExpect writes cmd and waits up to timeout until as many bytes as
// its acknowledgement are available. Exactly that many bytes are read and
// compared with the acknowledgement.
//
// A partial reply at the deadline is a timeout. The module state is unknown
// after any failure.
func (d *Device) sendAndExpect(cmd at.Command, timeout time.Duration) error {
	expected := cmd.ExpectedAck()
	if err := d.send(cmd); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for {
		n, err := d.transport.Available()
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if n >= len(expected) {
			break
		}
		if time.Now().After(deadline) {
			d.logger.Debug("exchange timed out", "cmd", cmd.String(), "expected", expected, "available", n)
			return fmt.Errorf("%s: %w", cmd, ErrTimeout)
		}
		time.Sleep(busyPollInterval)
	}

	got := make([]byte, len(expected))
	for i := range got {
		b, err := d.transport.ReadByte()
		if err != nil {
			return fmt.Errorf("%s: read reply: %w", cmd, err)
		}
		got[i] = b
	}

	d.logger.Debug("reply", "cmd", cmd.String(), "expected", expected, "got", string(got))
	if !bytes.Equal(got, []byte(expected)) {
		return &ResponseError{Command: cmd.String(), Expected: expected, Got: string(got)}
	}
	return nil
}

// sendAndCapture writes cmd, waits the whole timeout and returns whatever
// the module sent meanwhile. The wait is not cut short when bytes arrive
// early: replies of unknown length are only complete after the settle time.
func (d *Device) sendAndCapture(cmd at.Command, timeout time.Duration) ([]byte, error) {
	if err := d.send(cmd); err != nil {
		return nil, err
	}

	time.Sleep(timeout)

	reply, err := d.drain()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	d.logger.Debug("captured", "cmd", cmd.String(), "got", string(reply))
	return reply, nil
}

// drain reads every byte the transport has available. A reply longer than
// the configured maximum is consumed and discarded.
func (d *Device) drain() ([]byte, error) {
	var (
		reply    []byte
		overflow bool
	)
	for {
		n, err := d.transport.Available()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		if len(reply)+n > d.config.maxResponseLength {
			overflow = true
		}
		for range n {
			b, err := d.transport.ReadByte()
			if err != nil {
				return nil, err
			}
			if !overflow {
				reply = append(reply, b)
			}
		}
	}
	if overflow {
		return nil, ErrAllocation
	}
	return reply, nil
}

// query captures the reply of a read command and returns the value after
// "OK+Get:".
func (d *Device) query(cmd at.Command, timeout time.Duration) (string, error) {
	reply, err := d.sendAndCapture(cmd, timeout)
	if err != nil {
		return "", err
	}
	if len(reply) == 0 {
		return "", fmt.Errorf("%s: %w", cmd, ErrTimeout)
	}
	value, err := at.ParseGet(reply)
	if err != nil {
		return "", &ResponseError{Command: cmd.String(), Expected: at.GetPrefix, Got: string(reply)}
	}
	return value, nil
}

// Helpers for the common command shapes.

func (d *Device) action(keyword string) error {
	return d.sendAndExpect(at.Action(keyword), d.config.commandTimeout)
}

func (d *Device) set(keyword, param string) error {
	return d.sendAndExpect(at.Set(keyword, param), d.config.commandTimeout)
}

func (d *Device) setFlag(keyword string, on bool) error {
	return d.sendAndExpect(at.SetFlag(keyword, on), d.config.commandTimeout)
}

func (d *Device) get(keyword string) (string, error) {
	return d.query(at.Query(keyword), d.config.responseTimeout)
}

// getDigit reads a single-digit enum and checks it against the accepted
// values.
func (d *Device) getDigit(keyword string, accepted ...string) (int, error) {
	value, err := d.get(keyword)
	if err != nil {
		return 0, err
	}
	for i, a := range accepted {
		if value == a {
			return i, nil
		}
	}
	return 0, &ResponseError{
		Command:  at.Query(keyword).String(),
		Expected: at.GetPrefix + fmt.Sprint(accepted),
		Got:      at.GetPrefix + value,
	}
}
