package hm1x_test

import (
	"i4.energy/across/btgw/hm1x"
)

// MockSequenceBuilder scripts the transport calls of whole exchanges on a
// MockTransport, to be passed to gomock.InOrder.
type MockSequenceBuilder struct {
	transport *hm1x.MockTransport
	calls     []any
}

func NewMockSequence(transport *hm1x.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// Exchange expects cmd to be written and answered with exactly reply, as an
// exact-match exchange reads it.
func (b *MockSequenceBuilder) Exchange(cmd, reply string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(cmd)).Return(len(cmd), nil),
		b.transport.EXPECT().Available().Return(len(reply), nil),
	)
	return b.bytes(reply)
}

// Capture expects cmd to be written and reply to be drained afterwards.
func (b *MockSequenceBuilder) Capture(cmd, reply string) *MockSequenceBuilder {
	b.calls = append(b.calls, b.transport.EXPECT().Write([]byte(cmd)).Return(len(cmd), nil))
	if reply != "" {
		b.calls = append(b.calls, b.transport.EXPECT().Available().Return(len(reply), nil))
		b.bytes(reply)
	}
	b.calls = append(b.calls, b.transport.EXPECT().Available().Return(0, nil))
	return b
}

func (b *MockSequenceBuilder) bytes(reply string) *MockSequenceBuilder {
	for i := range len(reply) {
		b.calls = append(b.calls, b.transport.EXPECT().ReadByte().Return(reply[i], nil))
	}
	return b
}

func (b *MockSequenceBuilder) Probe() *MockSequenceBuilder {
	return b.Capture("AT", "OK")
}

func (b *MockSequenceBuilder) NotifyOff() *MockSequenceBuilder {
	return b.Exchange("AT+NOTP0", "OK+Set:0").Exchange("AT+NOTI0", "OK+Set:0")
}

// Init is the sequence New runs on a healthy module.
func (b *MockSequenceBuilder) Init() *MockSequenceBuilder {
	return b.Probe().NotifyOff()
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}
