// Package trigger talks to the scanner-side serial hardware: the trigger box
// that announces each acquisition and the DLP-IO8-G line used to mark sound
// onsets for the recording computer.
package trigger

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	DLPBaud       = 9600
	PulseDuration = 5 * time.Millisecond

	dlpPing       = 0x27
	dlpPong       = 'Q'
	dlpBinaryMode = 0x5C
)

// DLPIO8G drives a DLP-IO8-G digital I/O module. Writing '1'..'8' raises the
// matching line, the letters Q..I lower it.
type DLPIO8G struct {
	port  io.ReadWriteCloser
	sleep func(time.Duration)
}

// OpenDLP opens device, checks the module answers a ping and switches it to
// binary mode.
func OpenDLP(device string) (*DLPIO8G, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: DLPBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open dlp %s: %w", device, err)
	}
	d, err := NewDLP(port)
	if err != nil {
		return nil, fmt.Errorf("dlp %s: %w", device, err)
	}
	return d, nil
}

// NewDLP wraps an already open port. The port is closed if the module does
// not respond.
func NewDLP(port io.ReadWriteCloser) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, sleep: time.Sleep}
	if !d.Ping() {
		port.Close()
		return nil, errors.New("device did not respond to ping")
	}
	if _, err := port.Write([]byte{dlpBinaryMode}); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

func (d *DLPIO8G) Close() error {
	return d.port.Close()
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write([]byte{dlpPing}); err != nil {
		return false
	}
	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == dlpPong
}

func (d *DLPIO8G) Set(lines string) error {
	_, err := d.port.Write([]byte(lines))
	return err
}

func (d *DLPIO8G) Unset(lines string) error {
	_, err := d.port.Write([]byte(unsetCommand(lines)))
	return err
}

// Pulse raises lines for width then lowers them again.
func (d *DLPIO8G) Pulse(lines string, width time.Duration) error {
	if err := d.Set(lines); err != nil {
		return fmt.Errorf("dlp set %s: %w", lines, err)
	}
	d.sleep(width)
	if err := d.Unset(lines); err != nil {
		return fmt.Errorf("dlp unset %s: %w", lines, err)
	}
	return nil
}

var unsetReplacer = strings.NewReplacer(
	"1", "Q", "2", "W", "3", "E", "4", "R",
	"5", "T", "6", "Y", "7", "U", "8", "I",
)

func unsetCommand(lines string) string {
	return unsetReplacer.Replace(lines)
}

// OnsetMarker pulses line on every stimulus onset.
type OnsetMarker struct {
	DLP  *DLPIO8G
	Line string
}

func (m OnsetMarker) MarkOnset() error {
	return m.DLP.Pulse(m.Line, PulseDuration)
}
