package at_test

import (
	"testing"

	"i4.energy/across/btgw/at"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected at.Event
	}{
		{
			name:     "Module restart",
			input:    "OK+INIT",
			expected: at.Event{Type: at.EventInit},
		},
		{
			name:     "EDR connect",
			input:    "OK+CONE:001122334455",
			expected: at.Event{Type: at.EventEDRConnect, Address: "001122334455"},
		},
		{
			name:     "BLE connect",
			input:    "OK+CONB:aabbccddeeff",
			expected: at.Event{Type: at.EventBLEConnect, Address: "aabbccddeeff"},
		},
		{
			name:     "EDR disconnect with address",
			input:    "OK+LSTE:665544332211",
			expected: at.Event{Type: at.EventEDRDisconnect, Address: "665544332211"},
		},
		{
			name:     "BLE disconnect without address",
			input:    "OK+LSTB",
			expected: at.Event{Type: at.EventBLEDisconnect},
		},
		{
			name:     "BLE disconnect with trailing garbage",
			input:    "OK+LSTB\r\n\x00",
			expected: at.Event{Type: at.EventBLEDisconnect},
		},
		{
			name:     "Connect with malformed address",
			input:    "OK+CONB:not-an-addr!",
			expected: at.Event{Type: at.EventBLEConnect},
		},
		{
			name:     "Connect with truncated address",
			input:    "OK+CONE:0011",
			expected: at.Event{Type: at.EventEDRConnect},
		},
		{
			name:     "Application payload",
			input:    "hello world",
			expected: at.Event{Type: at.EventNone},
		},
		{
			name:     "Tag prefix too short",
			input:    "OK+IN",
			expected: at.Event{Type: at.EventNone},
		},
		{
			name:     "Setter ack is not an event",
			input:    "OK+Set:1",
			expected: at.Event{Type: at.EventNone},
		},
		{
			name:     "Empty frame",
			input:    "",
			expected: at.Event{Type: at.EventNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := at.ParseEvent([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("ParseEvent(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseEventFirstTagWins(t *testing.T) {
	// A restart notice followed by a connect in the same drain is reported as
	// the restart only.
	got := at.ParseEvent([]byte("OK+INITOK+CONB:aabbccddeeff"))
	if got.Type != at.EventInit {
		t.Errorf("expected EventInit, got %v", got.Type)
	}
}

func TestValidAddress(t *testing.T) {
	valid := []string{"001122334455", "AABBCCDDEEFF", "aAbBcCdDeEfF"}
	for _, s := range valid {
		if !at.ValidAddress(s) {
			t.Errorf("ValidAddress(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "00112233445", "0011223344556", "00:11:22:33:44", "00112233445G"}
	for _, s := range invalid {
		if at.ValidAddress(s) {
			t.Errorf("ValidAddress(%q) = true, want false", s)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	if got := at.EventBLEConnect.String(); got != "ble-connect" {
		t.Errorf("String() = %q, want %q", got, "ble-connect")
	}
	if got := at.EventType(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
