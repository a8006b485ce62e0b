package trigger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrotzin/language-localizer/engine"
)

type fakeDLPPort struct {
	written bytes.Buffer
	reply   []byte
	closed  bool
}

func (p *fakeDLPPort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakeDLPPort) Read(b []byte) (int, error) {
	if len(p.reply) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.reply)
	p.reply = p.reply[n:]
	return n, nil
}

func (p *fakeDLPPort) Close() error {
	p.closed = true
	return nil
}

func TestNewDLPHandshake(t *testing.T) {
	port := &fakeDLPPort{reply: []byte{'Q'}}
	d, err := NewDLP(port)
	require.NoError(t, err)
	assert.Equal(t, []byte{dlpPing, dlpBinaryMode}, port.written.Bytes())
	assert.False(t, port.closed)
	require.NoError(t, d.Close())
	assert.True(t, port.closed)
}

func TestNewDLPNoPong(t *testing.T) {
	port := &fakeDLPPort{reply: []byte{'x'}}
	_, err := NewDLP(port)
	assert.Error(t, err)
	assert.True(t, port.closed)
}

func TestPulse(t *testing.T) {
	port := &fakeDLPPort{reply: []byte{'Q'}}
	d, err := NewDLP(port)
	require.NoError(t, err)
	port.written.Reset()

	var slept time.Duration
	d.sleep = func(t time.Duration) { slept += t }

	m := OnsetMarker{DLP: d, Line: "2"}
	require.NoError(t, m.MarkOnset())
	assert.Equal(t, "2W", port.written.String())
	assert.Equal(t, PulseDuration, slept)
}

func TestUnsetCommand(t *testing.T) {
	assert.Equal(t, "QWERTYUI", unsetCommand("12345678"))
	assert.Equal(t, "W", unsetCommand("2"))
}

type fakeSerial struct {
	chunks  [][]byte
	resets  int
	timeout time.Duration
	readErr error
}

func (p *fakeSerial) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *fakeSerial) Close() error { return nil }

func (p *fakeSerial) ResetInputBuffer() error {
	p.resets++
	return nil
}

func (p *fakeSerial) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

type fakeAbort struct {
	pumps   int
	abortAt int
}

func (a *fakeAbort) Pump() { a.pumps++ }

func (a *fakeAbort) AbortRequested() bool {
	return a.abortAt > 0 && a.pumps >= a.abortAt
}

func TestSerialGateOpensOnTriggerByte(t *testing.T) {
	port := &fakeSerial{chunks: [][]byte{{'x', 'y'}, {}, {'a', '5', 'b'}}}
	in := &fakeAbort{}
	g := NewSerialGate(port, '5', in)

	require.NoError(t, g.Wait(context.Background()))
	assert.Equal(t, 1, port.resets)
	assert.Equal(t, pollInterval, port.timeout)
	assert.Equal(t, 3, in.pumps)
}

func TestSerialGateAbort(t *testing.T) {
	port := &fakeSerial{}
	g := NewSerialGate(port, '5', &fakeAbort{abortAt: 4})
	assert.ErrorIs(t, g.Wait(context.Background()), engine.ErrAborted)
}

func TestSerialGateContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewSerialGate(&fakeSerial{}, '5', nil)
	assert.ErrorIs(t, g.Wait(ctx), context.Canceled)
}

func TestSerialGateReadError(t *testing.T) {
	boom := errors.New("unplugged")
	g := NewSerialGate(&fakeSerial{readErr: boom}, '5', nil)
	assert.ErrorIs(t, g.Wait(context.Background()), boom)
}

func TestParseTriggerByte(t *testing.T) {
	b, err := ParseTriggerByte("5")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), b)

	_, err = ParseTriggerByte("")
	assert.Error(t, err)
	_, err = ParseTriggerByte("55")
	assert.Error(t, err)
}
