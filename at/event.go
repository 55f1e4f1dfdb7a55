package at

import "bytes"

// AddressLength is the length of a Bluetooth address as the module prints
// it: 12 hex digits, no separators.
const AddressLength = 12

// addressOffset is where the address starts in "OK+CONx:<address>" and
// "OK+LSTx:<address>".
const addressOffset = 8

// Event is an unsolicited notification classified from a polled frame.
type Event struct {
	Type EventType
	// Address is the peer address carried by the frame, or empty when the
	// frame carries none or a malformed one.
	Address string
}

// eventTags is the fixed classification order; the first match wins.
var eventTags = []struct {
	tag string
	typ EventType
}{
	{TagInit, EventInit},
	{TagEDRConnect, EventEDRConnect},
	{TagBLEConnect, EventBLEConnect},
	{TagEDRDisconnect, EventEDRDisconnect},
	{TagBLEDisconnect, EventBLEDisconnect},
}

// ParseEvent classifies a frame drained from the module by its leading tag.
// Frames that match no tag are ordinary data and yield EventNone.
func ParseEvent(frame []byte) Event {
	for _, e := range eventTags {
		if !bytes.HasPrefix(frame, []byte(e.tag)) {
			continue
		}
		ev := Event{Type: e.typ}
		if e.typ != EventInit {
			ev.Address = extractAddress(frame)
		}
		return ev
	}
	return Event{Type: EventNone}
}

func extractAddress(frame []byte) string {
	if len(frame) < addressOffset+AddressLength {
		return ""
	}
	addr := string(frame[addressOffset : addressOffset+AddressLength])
	if !ValidAddress(addr) {
		return ""
	}
	return addr
}

// ValidAddress reports whether s is exactly AddressLength hex digits.
func ValidAddress(s string) bool {
	if len(s) != AddressLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventInit:
		return "init"
	case EventEDRConnect:
		return "edr-connect"
	case EventBLEConnect:
		return "ble-connect"
	case EventEDRDisconnect:
		return "edr-disconnect"
	case EventBLEDisconnect:
		return "ble-disconnect"
	default:
		return "unknown"
	}
}
