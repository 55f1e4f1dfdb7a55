package at

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field widths, in hex digits, of the numeric parameters the module accepts.
// The module rejects or misreads a value rendered with any other width.
const (
	WidthFlag    = 1 // booleans and enums
	WidthPower   = 2 // iBeacon measured power
	WidthVersion = 4 // iBeacon major/minor
	WidthClass   = 6 // class of device
	WidthUUID    = 8 // one iBeacon UUID segment
)

var (
	// ErrValueRange is returned when a value does not fit the hex width of
	// the field it is encoded into.
	ErrValueRange = errors.New("value out of range for field")

	// ErrMalformed is returned when a reply or field does not have the
	// shape the protocol prescribes.
	ErrMalformed = errors.New("malformed field")
)

// Command is a single AT command. It is built per call, serialized with Wire
// and discarded.
type Command struct {
	// Keyword is the command name after "AT+". An empty keyword is the bare
	// "AT" probe.
	Keyword string
	// Param is appended verbatim after the keyword.
	Param string
	// Query appends "?" and turns the command into a read.
	Query bool
}

// Probe returns the bare "AT" command.
func Probe() Command {
	return Command{}
}

// Action returns a parameterless command such as AT+RESET.
func Action(keyword string) Command {
	return Command{Keyword: keyword}
}

// Query returns a read command such as AT+NAME?.
func Query(keyword string) Command {
	return Command{Keyword: keyword, Query: true}
}

// Set returns a write command such as AT+NAMEmydevice.
func Set(keyword, param string) Command {
	return Command{Keyword: keyword, Param: param}
}

// SetFlag returns a write command carrying a single 0/1 digit.
func SetFlag(keyword string, on bool) Command {
	return Set(keyword, Flag(on))
}

// Wire renders the bytes sent to the module. No line terminator is added.
func (c Command) Wire() []byte {
	var b bytes.Buffer
	b.WriteString(Prefix)
	if c.Keyword == "" {
		return b.Bytes()
	}
	b.WriteString(Separator)
	b.WriteString(c.Keyword)
	b.WriteString(c.Param)
	if c.Query {
		b.WriteString(QueryMark)
	}
	return b.Bytes()
}

func (c Command) String() string {
	return string(c.Wire())
}

// ExpectedAck returns the acknowledgement the module sends for c. For queries
// only the fixed "OK+Get:" prefix is known ahead of time.
func (c Command) ExpectedAck() string {
	switch {
	case c.Keyword == "":
		return OK
	case c.Query:
		return GetPrefix
	case c.Param == "":
		return OK + Separator + c.Keyword
	default:
		return SetPrefix + c.Param
	}
}

// Flag renders a boolean as the single digit the module expects.
func Flag(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

// Hex renders v as exactly width uppercase hex digits.
func Hex(v uint32, width int) (string, error) {
	if width < 1 || width > 8 {
		return "", fmt.Errorf("%w: unsupported width %d", ErrValueRange, width)
	}
	if width < 8 && v >= 1<<(4*uint(width)) {
		return "", fmt.Errorf("%w: 0x%X does not fit %d hex digits", ErrValueRange, v, width)
	}
	return fmt.Sprintf("%0*X", width, v), nil
}

// ParseHex is the inverse of Hex. The field must be exactly width hex digits.
func ParseHex(s string, width int) (uint32, error) {
	if len(s) != width {
		return 0, fmt.Errorf("%w: %q is not %d hex digits", ErrMalformed, s, width)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not hex", ErrMalformed, s)
	}
	return uint32(v), nil
}

// ParseGet returns the value of a captured query reply ("OK+Get:<value>").
func ParseGet(reply []byte) (string, error) {
	if !bytes.HasPrefix(reply, []byte(GetPrefix)) {
		return "", fmt.Errorf("%w: %q lacks %q", ErrMalformed, reply, GetPrefix)
	}
	return string(reply[len(GetPrefix):]), nil
}

// ParseSetAck returns the parameter echoed by a setter acknowledgement.
func ParseSetAck(ack string) (string, error) {
	value, ok := strings.CutPrefix(ack, SetPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q lacks %q", ErrMalformed, ack, SetPrefix)
	}
	return value, nil
}
