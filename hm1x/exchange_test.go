package hm1x_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/btgw/hm1x"
)

func TestExchange(t *testing.T) {
	t.Run("Exact acknowledgement", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+RESET", "OK+RESET")

		require.NoError(t, d.Reset())
		assert.Equal(t, []string{"AT+RESET"}, transport.Written())
	})

	t.Run("Partial reply is a timeout", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+RESET", "OK+RES")

		err := d.Reset()
		assert.ErrorIs(t, err, hm1x.ErrTimeout)
	})

	t.Run("No reply is a timeout", func(t *testing.T) {
		d, _ := newTestDevice(t, hm1x.HM10)

		start := time.Now()
		err := d.FactoryDefaults()
		assert.ErrorIs(t, err, hm1x.ErrTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("Mismatch is a response error", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+RESET", "OK+RENEW")

		err := d.Reset()
		require.ErrorIs(t, err, hm1x.ErrUnexpectedResponse)

		var respErr *hm1x.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, "AT+RESET", respErr.Command)
		assert.Equal(t, "OK+RESET", respErr.Expected)
		assert.Equal(t, "OK+RENEW", respErr.Got)
	})

	t.Run("Only the acknowledgement is consumed", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+RESET", "OK+RESETOK+INIT")

		require.NoError(t, d.Reset())
		n, err := d.Available()
		require.NoError(t, err)
		assert.Equal(t, len("OK+INIT"), n)
	})

	t.Run("Query returns the value", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+VERR?", "OK+Get:HMSoft V540")

		v, err := d.Version()
		require.NoError(t, err)
		assert.Equal(t, "HMSoft V540", v)
	})

	t.Run("Query without prefix is a response error", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+VERR?", "HMSoft V540")

		_, err := d.Version()
		assert.ErrorIs(t, err, hm1x.ErrUnexpectedResponse)
	})

	t.Run("Query without reply is a timeout", func(t *testing.T) {
		d, _ := newTestDevice(t, hm1x.HM10)

		_, err := d.Version()
		assert.ErrorIs(t, err, hm1x.ErrTimeout)
	})

	t.Run("Oversized reply is drained and rejected", func(t *testing.T) {
		transport := hm1x.NewTestTransport()
		config, err := fastBuilder(hm1x.TestDialer{Transport: transport}).
			WithCheckOnBegin(false).
			WithMaxResponseLength(8).
			Build()
		require.NoError(t, err)
		d, err := newDevice(t, config)
		require.NoError(t, err)

		transport.Expect("AT+VERR?", "OK+Get:HMSoft V540")

		_, err = d.Version()
		assert.ErrorIs(t, err, hm1x.ErrAllocation)

		n, err := d.Available()
		require.NoError(t, err)
		assert.Zero(t, n, "the reply must be drained")
	})

	t.Run("Closed device sends nothing", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		require.NoError(t, d.Close())

		assert.ErrorIs(t, d.Reset(), hm1x.ErrAlreadyClosed)
		assert.Empty(t, transport.Written())
	})
}

func TestNotify(t *testing.T) {
	t.Run("Mode before switch", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.
			Expect("AT+NOTP1", "OK+Set:1").
			Expect("AT+NOTI1", "OK+Set:1")

		require.NoError(t, d.Notify(true, true))
		assert.Equal(t, []string{"AT+NOTP1", "AT+NOTI1"}, transport.Written())
	})

	t.Run("Stops at the first failure", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+NOTP0", "OK+Set:1")

		err := d.Notify(false, false)
		assert.ErrorIs(t, err, hm1x.ErrUnexpectedResponse)
		assert.Equal(t, []string{"AT+NOTP0"}, transport.Written())
	})
}

func TestSettings(t *testing.T) {
	tests := []struct {
		name  string
		model hm1x.Model
		op    func(d *hm1x.Device) error
		cmd   string
		ack   string
	}{
		{"high speed", hm1x.HM13, func(d *hm1x.Device) error { return d.EnableHighSpeed(true) }, "AT+HIGH1", "OK+Set:1"},
		{"dual mode on is inverted", hm1x.HM13, func(d *hm1x.Device) error { return d.EnableDualMode(true) }, "AT+DUAL0", "OK+Set:0"},
		{"dual mode off is inverted", hm1x.HM12, func(d *hm1x.Device) error { return d.EnableDualMode(false) }, "AT+DUAL1", "OK+Set:1"},
		{"remote control", hm1x.HM10, func(d *hm1x.Device) error { return d.EnableRemoteControl(true) }, "AT+MODE1", "OK+Set:1"},
		{"A to B", hm1x.HM13, func(d *hm1x.Device) error { return d.EnableAtoB(false) }, "AT+ATOB0", "OK+Set:0"},
		{"authentication", hm1x.HM13, func(d *hm1x.Device) error { return d.EnableAuthentication(true) }, "AT+AUTH1", "OK+Set:1"},
		{"connection update", hm1x.HM10, func(d *hm1x.Device) error { return d.EnableConnectionUpdate(true) }, "AT+COUP1", "OK+Set:1"},
		{"class of device", hm1x.HM13, func(d *hm1x.Device) error { return d.SetClassOfDevice(0x1F00) }, "AT+COFD001F00", "OK+Set:001F00"},
		{"MTU", hm1x.HM10, func(d *hm1x.Device) error { return d.SetMTUSize(hm1x.MTU120) }, "AT+MTUS1", "OK+Set:1"},
		{"advert type", hm1x.HM13, func(d *hm1x.Device) error { return d.SetAdvertType(hm1x.AdvertConnectableOnly) }, "AT+SCAN1", "OK+Set:1"},
		{"safe mode", hm1x.HM10, func(d *hm1x.Device) error { return d.EnableSafeMode(true) }, "AT+SAFE1", "OK+Set:1"},
		{"hide MAC", hm1x.HM10, func(d *hm1x.Device) error { return d.DisableBLEAddress(true) }, "AT+ONEM1", "OK+Set:1"},
		{"system key", hm1x.HM10, func(d *hm1x.Device) error { return d.EnableSystemKey(false) }, "AT+PIO00", "OK+Set:0"},
		{"LED", hm1x.HM10, func(d *hm1x.Device) error { return d.SetLEDMode(hm1x.LEDOffDisconnected) }, "AT+PIO11", "OK+Set:1"},
		{"factory defaults", hm1x.HM10, func(d *hm1x.Device) error { return d.FactoryDefaults() }, "AT+RENEW", "OK+RENEW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, transport := newTestDevice(t, tt.model)
			transport.Expect(tt.cmd, tt.ack)

			require.NoError(t, tt.op(d))
			assert.Equal(t, []string{tt.cmd}, transport.Written())
		})
	}
}

func TestSettingsRejectedBeforeIO(t *testing.T) {
	tests := []struct {
		name string
		op   func(d *hm1x.Device) error
	}{
		{"class of device too large", func(d *hm1x.Device) error { return d.SetClassOfDevice(hm1x.MaxClassOfDevice + 1) }},
		{"unknown MTU", func(d *hm1x.Device) error { return d.SetMTUSize(hm1x.MTUSize(2)) }},
		{"unknown advert type", func(d *hm1x.Device) error { return d.SetAdvertType(hm1x.AdvertType(7)) }},
		{"unknown LED mode", func(d *hm1x.Device) error { return d.SetLEDMode(hm1x.LEDMode(-1)) }},
		{"empty name", func(d *hm1x.Device) error { return d.SetBLEName("") }},
		{"long name", func(d *hm1x.Device) error { return d.SetEDRName("abcdefghijklmnopqrstuvwxyz123") }},
		{"long PIN", func(d *hm1x.Device) error { return d.SetBLEPin("1234567") }},
		{"letters in PIN", func(d *hm1x.Device) error { return d.SetEDRPin("12a4") }},
		{"unknown EDR role", func(d *hm1x.Device) error { return d.SetEDRRole(hm1x.EDRRole(2)) }},
		{"unknown BLE role", func(d *hm1x.Device) error { return d.SetBLERole(hm1x.BLERole(2)) }},
		{"major too large", func(d *hm1x.Device) error { return d.SetIBeaconMajor(0xFFFF) }},
		{"minor too large", func(d *hm1x.Device) error { return d.SetIBeaconMinor(0xFFFF) }},
		{"UUID segment out of range", func(d *hm1x.Device) error { return d.SetIBeaconUUIDSegment(4, 1) }},
		{"PIO1 is reserved", func(d *hm1x.Device) error { return d.WritePIO(1, true) }},
		{"PIO4 does not exist", func(d *hm1x.Device) error { return d.WritePIO(4, false) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, transport := newTestDevice(t, hm1x.HM13)

			err := tt.op(d)
			assert.ErrorIs(t, err, hm1x.ErrInvalidParameter)
			assert.Empty(t, transport.Written(), "nothing may be sent")
		})
	}
}

func TestGetters(t *testing.T) {
	t.Run("Advert type", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM13)
		transport.Expect("AT+SCAN?", "OK+Get:1")

		v, err := d.AdvertType()
		require.NoError(t, err)
		assert.Equal(t, hm1x.AdvertConnectableOnly, v)
	})

	t.Run("Digit outside the domain", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM13)
		transport.Expect("AT+SCAN?", "OK+Get:5")

		_, err := d.AdvertType()
		var respErr *hm1x.ResponseError
		assert.ErrorAs(t, err, &respErr)
	})

	t.Run("PIO level", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+PIO3?", "OK+Get:1")

		high, err := d.ReadPIO(hm1x.PIO3)
		require.NoError(t, err)
		assert.True(t, high)
	})

	t.Run("PIO write acknowledges the level", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+PIO21", "OK+Set:1")

		require.NoError(t, d.WritePIO(hm1x.PIO2, true))
	})

	t.Run("Closed device reads nothing", func(t *testing.T) {
		d, _ := newTestDevice(t, hm1x.HM10)
		require.NoError(t, d.Close())

		_, err := d.Version()
		assert.True(t, errors.Is(err, hm1x.ErrAlreadyClosed))
	})
}
