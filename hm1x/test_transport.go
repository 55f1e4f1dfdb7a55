package hm1x

import (
	"context"
	"io"
	"sync"
)

// TestTransport is an in-memory module for tests and simulations. Replies
// are scripted per command and become available as soon as the command is
// written, the way a fast module would answer. Commands without a scripted
// reply go unanswered unless a Responder is set.
//
// TestTransport implements BaudTransport.
type TestTransport struct {
	mu      sync.Mutex
	rx      []byte
	script  []scriptedReply
	written []string
	bauds   []int
	closed  bool

	// Responder answers commands the script does not cover. It receives
	// the command as written and the current line rate.
	Responder func(cmd string, baud int) string
}

type scriptedReply struct {
	cmd   string
	reply string
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{}
}

// Expect scripts reply as the answer to the next write of cmd. Scripted
// exchanges are consumed in order.
func (t *TestTransport) Expect(cmd, reply string) *TestTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.script = append(t.script, scriptedReply{cmd: cmd, reply: reply})
	return t
}

// SendData queues data to be read by the transport.
// This simulates unsolicited bytes from the module.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.rx = append(t.rx, data...)
	}
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}

	cmd := string(p)
	t.written = append(t.written, cmd)

	switch {
	case len(t.script) > 0 && t.script[0].cmd == cmd:
		t.rx = append(t.rx, t.script[0].reply...)
		t.script = t.script[1:]
	case t.Responder != nil:
		t.rx = append(t.rx, t.Responder(cmd, t.currentBaud())...)
	}
	return len(p), nil
}

func (t *TestTransport) Available() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	return len(t.rx), nil
}

func (t *TestTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rx) == 0 {
		return 0, io.EOF
	}
	b := t.rx[0]
	t.rx = t.rx[1:]
	return b, nil
}

// SetBaudRate records the new line rate.
func (t *TestTransport) SetBaudRate(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bauds = append(t.bauds, baud)
	return nil
}

func (t *TestTransport) currentBaud() int {
	if len(t.bauds) == 0 {
		return 0
	}
	return t.bauds[len(t.bauds)-1]
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Written returns every write, one entry per call.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}

// Bauds returns every line rate set through SetBaudRate, in order.
func (t *TestTransport) Bauds() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.bauds...)
}

// Pending reports how many scripted replies have not been consumed.
func (t *TestTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.script)
}

// Closed reports whether Close was called.
func (t *TestTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// TestDialer hands out a fixed transport.
type TestDialer struct {
	Transport Transport
}

func (d TestDialer) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Transport, nil
}
