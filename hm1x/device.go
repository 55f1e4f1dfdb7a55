// Package hm1x drives HM-10 to HM-19 Bluetooth modules through their AT
// command language.
//
// A Device owns one transport and runs every exchange to completion before
// returning: one command at a time, from one caller, on one thread. It holds
// no lock; callers sharing a Device must serialize access themselves.
package hm1x

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/btgw/at"
)

// Device is a connected HM-1x module.
type Device struct {
	// transport is the byte stream to the module (serial, I2C bridge, ...)
	transport Transport
	// config holds timings and the selected model
	config Config
	// caps is the capability record of config.model, fixed at construction
	caps   Capabilities
	logger *slog.Logger
	closed bool

	// polling redirects Available and Read to the inbox once SetupPoll
	// succeeded
	polling bool
	// inbox holds polled bytes that were not a protocol event
	inbox bytes.Buffer
	state ConnectionState
	last  at.Event
}

// New opens the transport through the configured Dialer and brings the
// module into a known state: it probes the module, retries the probe once,
// and turns connection notifications off. If that fails, New attempts a
// single recovery: it sweeps the baud rates the model supports until the
// module accepts the configured rate, resets it, waits for the restart and
// initializes again.
//
// The transport is closed when New fails.
func New(ctx context.Context, config Config) (*Device, error) {
	if config.dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	caps, err := CapabilitiesFor(config.model)
	if err != nil {
		return nil, err
	}

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	d := &Device{
		transport: transport,
		config:    config,
		caps:      caps,
		logger:    config.logger.With("model", config.model.String()),
	}

	if config.skipCheck {
		return d, nil
	}

	if err := d.begin(); err != nil {
		if transport != nil {
			transport.Close()
		}
		return nil, fmt.Errorf("initialize device: %w", err)
	}

	return d, nil
}

// Model returns the module variant the Device was configured for.
func (d *Device) Model() Model {
	return d.config.model
}

// Capabilities returns the capability record of the configured model.
func (d *Device) Capabilities() Capabilities {
	return d.caps
}

// Close releases the transport. A closed Device cannot be reused.
func (d *Device) Close() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true

	if d.transport != nil {
		return d.transport.Close()
	}
	return nil
}

func (d *Device) begin() error {
	err := d.init()
	if err == nil {
		return nil
	}

	rate := d.config.baudRate
	d.logger.Warn("module not responding, forcing baud rate", "baud", rate, "error", err)

	if ferr := d.ForceBaud(rate); ferr != nil {
		return fmt.Errorf("%w; force baud %d: %w", err, rate, ferr)
	}

	// The module only switches speed after a restart.
	if rerr := d.Reset(); rerr != nil {
		d.logger.Warn("reset after forcing baud rate failed", "error", rerr)
	}
	if err := d.setLineRate(rate); err != nil {
		return err
	}
	time.Sleep(d.config.restartDelay)

	if err := d.init(); err != nil {
		return fmt.Errorf("after baud recovery: %w", err)
	}
	d.logger.Info("module recovered", "baud", rate)
	return nil
}

// init performs the setup sequence every session starts with.
func (d *Device) init() error {
	if err := d.Probe(); err != nil {
		// A probe that only tore down an open link may not answer.
		time.Sleep(d.config.probeRetryDelay)
		if err := d.Probe(); err != nil {
			return fmt.Errorf("module not responding: %w", err)
		}
	}

	if err := d.Notify(false, false); err != nil {
		return fmt.Errorf("disable notifications: %w", err)
	}
	return nil
}

// Probe sends the bare AT command. An idle module answers "OK"; a module
// with an open link drops it and reports the disconnect instead, which is
// applied to the connection state.
func (d *Device) Probe() error {
	cmd := at.Probe()
	reply, err := d.sendAndCapture(cmd, d.config.commandTimeout)
	if err != nil {
		return err
	}

	switch {
	case len(reply) == 0:
		return fmt.Errorf("%s: %w", cmd, ErrTimeout)
	case string(reply) == at.OK:
		return nil
	case len(reply) == at.DisconnectNoticeLength:
		ev := at.ParseEvent(reply)
		if ev.Type == at.EventEDRDisconnect || ev.Type == at.EventBLEDisconnect {
			d.apply(ev)
			return nil
		}
	}
	return &ResponseError{Command: cmd.String(), Expected: at.OK, Got: string(reply)}
}

func (d *Device) setLineRate(rate int) error {
	setter, ok := d.transport.(BaudRateSetter)
	if !ok {
		return fmt.Errorf("%w: transport cannot change baud rate", ErrUnsupported)
	}
	if err := setter.SetBaudRate(rate); err != nil {
		return fmt.Errorf("set line rate %d: %w", rate, err)
	}
	return nil
}

// Write sends raw bytes to the module, typically application data for the
// connected peer.
func (d *Device) Write(p []byte) (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	return d.transport.Write(p)
}

// Available reports how many received bytes Read can return. After
// SetupPoll it counts the inbox instead of the transport.
func (d *Device) Available() (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if d.polling {
		return d.inbox.Len(), nil
	}
	return d.transport.Available()
}

// ReadByte returns the next received byte. Call it only after Available
// reported data.
func (d *Device) ReadByte() (byte, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if d.polling {
		return d.inbox.ReadByte()
	}
	return d.transport.ReadByte()
}

// Read copies received bytes into p. It never blocks and returns 0, nil
// when nothing is available.
func (d *Device) Read(p []byte) (int, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if d.polling {
		if d.inbox.Len() == 0 {
			return 0, nil
		}
		return d.inbox.Read(p)
	}

	n, err := d.transport.Available()
	if err != nil {
		return 0, err
	}
	n = min(n, len(p))
	for i := range n {
		b, err := d.transport.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return n, nil
}

func (d *Device) ready() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	if d.transport == nil {
		return ErrNotInitialized
	}
	return nil
}
