package hm1x

import (
	"errors"
	"fmt"
	"strconv"

	"i4.energy/across/btgw/at"
)

// SetBaud asks the module to use b after its next restart. The baud must
// have a device index inside the model's valid range.
func (d *Device) SetBaud(b Baud) error {
	idx, ok := d.caps.IndexFor(b)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, b, d.config.model)
	}
	return d.set(at.CmdBaud, strconv.Itoa(idx))
}

// ForceBaud is ForceBaudTo for a raw line speed such as 9600. Speeds the
// module family does not know fail without any I/O.
func (d *Device) ForceBaud(rate int) error {
	b, err := BaudFromRate(rate)
	if err != nil {
		return err
	}
	return d.ForceBaudTo(b)
}

// ForceBaudTo recovers a module whose current speed is unknown. For every
// device index in the model's valid range, in ascending order, it switches
// the transport to the speed of that index and tries SetBaud(target). It
// stops at the first index the module acknowledges.
//
// The transport must implement BaudRateSetter. It is left at the speed that
// succeeded; the module adopts the target after Reset.
func (d *Device) ForceBaudTo(target Baud) error {
	if _, ok := d.caps.IndexFor(target); !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, target, d.config.model)
	}
	if err := d.ready(); err != nil {
		return err
	}
	setter, ok := d.transport.(BaudRateSetter)
	if !ok {
		return fmt.Errorf("%w: transport cannot change baud rate", ErrUnsupported)
	}

	var errs []error
	for _, idx := range d.caps.Indices() {
		rate := d.caps.BaudIndex[idx].Rate()
		if err := setter.SetBaudRate(rate); err != nil {
			return fmt.Errorf("set line rate %d: %w", rate, err)
		}

		err := d.SetBaud(target)
		if err == nil {
			d.logger.Info("module answered", "index", idx, "line_rate", rate, "target", target.Rate())
			return nil
		}
		d.logger.Debug("no answer at line rate", "index", idx, "line_rate", rate, "error", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("force baud %d: %w", target.Rate(), errors.Join(errs...))
}
