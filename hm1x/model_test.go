package hm1x_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/btgw/hm1x"
)

func TestCapabilities(t *testing.T) {
	for _, m := range []hm1x.Model{hm1x.HM12, hm1x.HM13} {
		caps, err := hm1x.CapabilitiesFor(m)
		require.NoError(t, err)
		assert.True(t, caps.DualMode, "%s is dual mode", m)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, caps.Indices())

		var rates []int
		for _, idx := range caps.Indices() {
			rates = append(rates, caps.BaudIndex[idx].Rate())
		}
		assert.Equal(t, []int{4800, 9600, 19200, 38400, 57600, 115200, 230400}, rates)
	}

	for _, m := range []hm1x.Model{hm1x.HM10, hm1x.HM11, hm1x.HM14, hm1x.HM15, hm1x.HM16, hm1x.HM17, hm1x.HM18, hm1x.HM19} {
		caps, err := hm1x.CapabilitiesFor(m)
		require.NoError(t, err)
		assert.False(t, caps.DualMode, "%s is single mode", m)
		assert.Len(t, caps.Indices(), 9)
	}

	_, err := hm1x.CapabilitiesFor(hm1x.Model(-1))
	assert.ErrorIs(t, err, hm1x.ErrUnsupported)
}

func TestIndexFor(t *testing.T) {
	tests := []struct {
		model hm1x.Model
		baud  hm1x.Baud
		index int
		ok    bool
	}{
		{hm1x.HM10, hm1x.Baud9600, 0, true},
		{hm1x.HM11, hm1x.Baud4800, 5, true},
		{hm1x.HM10, hm1x.Baud230400, 8, true},
		{hm1x.HM12, hm1x.Baud4800, 1, true},
		{hm1x.HM12, hm1x.Baud9600, 2, true},
		{hm1x.HM13, hm1x.Baud115200, 6, true},
		{hm1x.HM13, hm1x.Baud230400, 7, true},
		{hm1x.HM13, hm1x.Baud1200, 0, false},
		{hm1x.HM12, hm1x.Baud2400, 0, false},
		{hm1x.HM17, hm1x.Baud1200, 0, true},
		{hm1x.HM19, hm1x.Baud230400, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.model.String()+"/"+tt.baud.String(), func(t *testing.T) {
			caps, err := hm1x.CapabilitiesFor(tt.model)
			require.NoError(t, err)

			idx, ok := caps.IndexFor(tt.baud)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.index, idx)
				assert.Equal(t, tt.baud, caps.BaudIndex[idx])
			}
		})
	}
}

func TestParseModel(t *testing.T) {
	for _, s := range []string{"HM-13", "HM13", "hm13", "Hm-13"} {
		m, err := hm1x.ParseModel(s)
		require.NoError(t, err, s)
		assert.Equal(t, hm1x.HM13, m)
	}

	_, err := hm1x.ParseModel("HM-20")
	assert.ErrorIs(t, err, hm1x.ErrUnsupported)

	assert.Equal(t, "HM-10", hm1x.HM10.String())
	assert.Equal(t, "Model(42)", hm1x.Model(42).String())
}

func TestBaudFromRate(t *testing.T) {
	b, err := hm1x.BaudFromRate(57600)
	require.NoError(t, err)
	assert.Equal(t, hm1x.Baud57600, b)
	assert.Equal(t, 57600, b.Rate())
	assert.Equal(t, "57600 baud", b.String())

	_, err = hm1x.BaudFromRate(14400)
	assert.ErrorIs(t, err, hm1x.ErrUnsupported)

	assert.Zero(t, hm1x.Baud(99).Rate())
}
