package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/hgrotzin/language-localizer/engine"
)

const pollInterval = 20 * time.Millisecond

// Port is the part of serial.Port the gate uses.
type Port interface {
	Read(p []byte) (int, error)
	Close() error
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// AbortSource is polled between reads so the operator can cancel while the
// gate waits. present.Runtime satisfies it.
type AbortSource interface {
	Pump()
	AbortRequested() bool
}

// SerialGate opens when the trigger box sends its trigger byte.
type SerialGate struct {
	port    Port
	trigger byte
	input   AbortSource
}

func OpenSerialGate(device string, baud int, trigger byte, input AbortSource) (*SerialGate, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open trigger port %s: %w", device, err)
	}
	return NewSerialGate(port, trigger, input), nil
}

func NewSerialGate(port Port, trigger byte, input AbortSource) *SerialGate {
	return &SerialGate{port: port, trigger: trigger, input: input}
}

// Wait discards anything already buffered, then blocks until the trigger
// byte arrives. Other bytes are ignored.
func (g *SerialGate) Wait(ctx context.Context) error {
	if err := g.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset trigger port: %w", err)
	}
	if err := g.port.SetReadTimeout(pollInterval); err != nil {
		return fmt.Errorf("trigger port timeout: %w", err)
	}

	buf := make([]byte, 64)
	for {
		if g.input != nil {
			g.input.Pump()
			if g.input.AbortRequested() {
				return engine.ErrAborted
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := g.port.Read(buf)
		if err != nil {
			return fmt.Errorf("read trigger port: %w", err)
		}
		for _, b := range buf[:n] {
			if b == g.trigger {
				return nil
			}
		}
	}
}

func (g *SerialGate) Close() error {
	return g.port.Close()
}

// ParseTriggerByte accepts a single character such as "5" or "t".
func ParseTriggerByte(s string) (byte, error) {
	if len(s) != 1 {
		return 0, errors.New("trigger byte must be a single character")
	}
	return s[0], nil
}
