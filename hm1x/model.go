package hm1x

import "fmt"

// Model identifies the hardware variant of the module.
type Model int

const (
	HM10 Model = iota
	HM11
	HM12
	HM13
	HM14
	HM15
	HM16
	HM17
	HM18
	HM19
)

var modelNames = map[Model]string{
	HM10: "HM-10", HM11: "HM-11", HM12: "HM-12", HM13: "HM-13", HM14: "HM-14",
	HM15: "HM-15", HM16: "HM-16", HM17: "HM-17", HM18: "HM-18", HM19: "HM-19",
}

func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ParseModel accepts "HM-13", "HM13" or "hm13".
func ParseModel(s string) (Model, error) {
	for m, name := range modelNames {
		if equalFoldNoDash(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown model %q", ErrUnsupported, s)
}

func equalFoldNoDash(a, b string) bool {
	strip := func(s string) []byte {
		out := make([]byte, 0, len(s))
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == '-' {
				continue
			}
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			out = append(out, c)
		}
		return out
	}
	return string(strip(a)) == string(strip(b))
}

// Baud is the logical line speed, independent of how a model numbers it.
type Baud int

const (
	Baud1200 Baud = iota
	Baud2400
	Baud4800
	Baud9600
	Baud19200
	Baud38400
	Baud57600
	Baud115200
	Baud230400

	numBauds = iota
)

var baudRates = [numBauds]int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

// Rate returns the line speed in bits per second.
func (b Baud) Rate() int {
	if b < 0 || int(b) >= numBauds {
		return 0
	}
	return baudRates[b]
}

func (b Baud) String() string {
	if r := b.Rate(); r != 0 {
		return fmt.Sprintf("%d baud", r)
	}
	return fmt.Sprintf("Baud(%d)", int(b))
}

// BaudFromRate maps a raw line speed to its logical Baud.
func BaudFromRate(rate int) (Baud, error) {
	for i, r := range baudRates {
		if r == rate {
			return Baud(i), nil
		}
	}
	return 0, fmt.Errorf("%w: baud rate %d", ErrUnsupported, rate)
}

// Capabilities is the immutable per-model protocol description.
type Capabilities struct {
	// DualMode reports whether the model has an EDR radio next to BLE.
	DualMode bool
	// BaudIndex maps the device baud index (the digit sent in AT+BAUD) to
	// the logical speed it selects.
	BaudIndex [numBauds]Baud
	// MinIndex and MaxIndex bound the device indices that are meaningful
	// for the model, both inclusive.
	MinIndex, MaxIndex int
}

var capabilityTable = map[Model]Capabilities{}

func init() {
	single10 := Capabilities{
		BaudIndex: [numBauds]Baud{Baud9600, Baud19200, Baud38400, Baud57600, Baud115200, Baud4800, Baud2400, Baud1200, Baud230400},
		MinIndex:  0,
		MaxIndex:  8,
	}
	// Indices 0 and 8 are reserved on the dual-mode firmware; 1200 and 2400
	// baud are not reachable.
	dual := Capabilities{
		DualMode:  true,
		BaudIndex: [numBauds]Baud{Baud1200, Baud4800, Baud9600, Baud19200, Baud38400, Baud57600, Baud115200, Baud230400, Baud1200},
		MinIndex:  1,
		MaxIndex:  7,
	}
	single16 := Capabilities{
		BaudIndex: [numBauds]Baud{Baud1200, Baud2400, Baud4800, Baud9600, Baud19200, Baud38400, Baud57600, Baud115200, Baud230400},
		MinIndex:  0,
		MaxIndex:  8,
	}

	for _, m := range []Model{HM10, HM11} {
		capabilityTable[m] = single10
	}
	for _, m := range []Model{HM12, HM13} {
		capabilityTable[m] = dual
	}
	for _, m := range []Model{HM14, HM15, HM16, HM17, HM18, HM19} {
		capabilityTable[m] = single16
	}
}

// CapabilitiesFor returns the capability record of m.
func CapabilitiesFor(m Model) (Capabilities, error) {
	caps, ok := capabilityTable[m]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: unknown model %s", ErrUnsupported, m)
	}
	return caps, nil
}

// IndexFor returns the device index that selects b, searching only the
// valid index range.
func (c Capabilities) IndexFor(b Baud) (int, bool) {
	for i := c.MinIndex; i <= c.MaxIndex; i++ {
		if c.BaudIndex[i] == b {
			return i, true
		}
	}
	return 0, false
}

// Indices returns the valid device indices in ascending order.
func (c Capabilities) Indices() []int {
	out := make([]int, 0, c.MaxIndex-c.MinIndex+1)
	for i := c.MinIndex; i <= c.MaxIndex; i++ {
		out = append(out, i)
	}
	return out
}
