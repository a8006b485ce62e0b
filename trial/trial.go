// Package trial holds the trial table: the ordered, immutable list of trial
// descriptors a session executes.
package trial

import (
	"fmt"
	"strings"
	"time"
)

type Mode int

const (
	Standalone Mode = iota
	Synchronized
)

func (m Mode) String() string {
	switch m {
	case Standalone:
		return "backup"
	case Synchronized:
		return "scanner"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the run names used by the lab ("scanner", "backup") as
// well as the mode names themselves.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scanner", "synchronized", "sync":
		return Synchronized, nil
	case "backup", "standalone":
		return Standalone, nil
	}
	return 0, fmt.Errorf("unknown run mode %q (want scanner or backup)", s)
}

type Block int

const (
	BlockNone Block = iota
	BlockA
	BlockB
)

func (b Block) String() string {
	switch b {
	case BlockA:
		return "A"
	case BlockB:
		return "B"
	}
	return ""
}

func parseBlock(s string) (Block, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return BlockA, true
	case "B":
		return BlockB, true
	}
	return BlockNone, false
}

type Descriptor struct {
	StimulusID string
	TrialType  string
	Duration   time.Duration
	Block      Block
}

type Table struct {
	Mode        Mode
	Descriptors []Descriptor
}

func (t *Table) Len() int {
	return len(t.Descriptors)
}

// StimulusIDs returns every distinct stimulus id, in first-use order.
func (t *Table) StimulusIDs() []string {
	seen := make(map[string]bool, len(t.Descriptors))
	var ids []string
	for _, d := range t.Descriptors {
		if seen[d.StimulusID] {
			continue
		}
		seen[d.StimulusID] = true
		ids = append(ids, d.StimulusID)
	}
	return ids
}

// Validate checks the invariants Load enforces. It exists for tables built in
// code rather than read from a file.
func (t *Table) Validate() error {
	if len(t.Descriptors) == 0 {
		return ErrEmptyTable
	}
	for i, d := range t.Descriptors {
		row := i + 1
		if d.StimulusID == "" {
			return &ValidationError{Row: row, Column: ColStimulus, Reason: "empty stimulus id"}
		}
		if d.Duration <= 0 {
			return &ValidationError{Row: row, Column: ColDuration, Reason: "duration must be positive"}
		}
		if d.Duration%time.Second != 0 {
			return &ValidationError{Row: row, Column: ColDuration, Reason: "duration must be whole seconds"}
		}
		if t.Mode == Synchronized && d.Block == BlockNone {
			return &ValidationError{Row: row, Column: ColBlock, Reason: "missing block marker"}
		}
	}
	return nil
}
