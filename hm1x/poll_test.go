package hm1x_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/btgw/at"
	"i4.energy/across/btgw/hm1x"
)

func setupPoll(t *testing.T, model hm1x.Model) (*hm1x.Device, *hm1x.TestTransport) {
	t.Helper()

	d, transport := newTestDevice(t, model)
	transport.
		Expect("AT+NOTP1", "OK+Set:1").
		Expect("AT+NOTI1", "OK+Set:1")
	require.NoError(t, d.SetupPoll())
	require.True(t, d.Polling())
	return d, transport
}

func TestPoll(t *testing.T) {
	t.Run("Nothing arrived", func(t *testing.T) {
		d, _ := setupPoll(t, hm1x.HM13)

		event, err := d.Poll()
		require.NoError(t, err)
		assert.False(t, event)
	})

	t.Run("BLE connect and disconnect", func(t *testing.T) {
		d, transport := setupPoll(t, hm1x.HM13)

		transport.SendData("OK+CONB:A4C138000001")
		event, err := d.Poll()
		require.NoError(t, err)
		assert.True(t, event)
		assert.Equal(t, hm1x.ConnectionState{BLEConnected: true, BLEAddress: "A4C138000001"}, d.State())
		assert.Equal(t, at.EventBLEConnect, d.LastEvent().Type)

		transport.SendData("OK+LSTB:A4C138000001")
		event, err = d.Poll()
		require.NoError(t, err)
		assert.True(t, event)
		assert.False(t, d.State().BLEConnected)
		assert.Equal(t, "A4C138000001", d.State().BLEAddress)
	})

	t.Run("EDR connect leaves BLE alone", func(t *testing.T) {
		d, transport := setupPoll(t, hm1x.HM13)

		transport.SendData("OK+CONE:A4C1380000E1")
		_, err := d.Poll()
		require.NoError(t, err)

		state := d.State()
		assert.True(t, state.EDRConnected)
		assert.Equal(t, "A4C1380000E1", state.EDRAddress)
		assert.False(t, state.BLEConnected)
	})

	t.Run("Restart notice", func(t *testing.T) {
		d, transport := setupPoll(t, hm1x.HM10)

		transport.SendData("OK+INIT")
		event, err := d.Poll()
		require.NoError(t, err)
		assert.True(t, event)
		assert.Equal(t, at.EventInit, d.LastEvent().Type)
		assert.Equal(t, hm1x.ConnectionState{}, d.State())
	})

	t.Run("Data goes to the inbox", func(t *testing.T) {
		d, transport := setupPoll(t, hm1x.HM10)

		transport.SendData("temperature=21.5")
		event, err := d.Poll()
		require.NoError(t, err)
		assert.False(t, event)

		n, err := d.Available()
		require.NoError(t, err)
		assert.Equal(t, len("temperature=21.5"), n)

		buf := make([]byte, 32)
		n, err = d.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "temperature=21.5", string(buf[:n]))

		n, err = d.Read(buf)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Inbox is served before the transport", func(t *testing.T) {
		d, transport := setupPoll(t, hm1x.HM10)

		transport.SendData("ab")
		_, err := d.Poll()
		require.NoError(t, err)
		transport.SendData("cd")

		b, err := d.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte('a'), b)

		n, err := d.Available()
		require.NoError(t, err)
		assert.Equal(t, 1, n, "unpolled bytes stay on the transport")
	})

	t.Run("Closed device", func(t *testing.T) {
		d, _ := setupPoll(t, hm1x.HM10)
		require.NoError(t, d.Close())

		_, err := d.Poll()
		assert.ErrorIs(t, err, hm1x.ErrAlreadyClosed)
	})

	t.Run("SetupPoll failure keeps passthrough", func(t *testing.T) {
		d, transport := newTestDevice(t, hm1x.HM10)
		transport.Expect("AT+NOTP1", "OK+Set:1")

		assert.ErrorIs(t, d.SetupPoll(), hm1x.ErrTimeout)
		assert.False(t, d.Polling())
	})
}
