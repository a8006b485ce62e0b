// Package ledger keeps the ordered per-trial results of a session and makes
// them durable after every commit.
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// Record is one executed trial. Keys is nil when no recognised key was
// pressed; an empty record is never written for a trial that did not run.
type Record struct {
	Keys        []string
	TrialType   string
	RunningTime time.Duration
}

func (r Record) Responded() bool {
	return len(r.Keys) > 0
}

// Sink persists a full snapshot of the ledger. Each Write replaces whatever
// the previous Write stored.
type Sink interface {
	Write(records []Record) error
}

type Ledger struct {
	records []Record
	sinks   []Sink
}

func New(sinks ...Sink) *Ledger {
	return &Ledger{sinks: sinks}
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the committed records.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Commit appends r and flushes. The record stays committed in memory even if
// the flush fails; the error tells the caller the disk is behind.
func (l *Ledger) Commit(r Record) error {
	if r.Keys != nil {
		r.Keys = append([]string(nil), r.Keys...)
	}
	l.records = append(l.records, r)
	return l.Flush()
}

// Flush writes the full ledger to every sink.
func (l *Ledger) Flush() error {
	var errs []error
	for _, s := range l.sinks {
		if err := s.Write(l.records); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("flush ledger (%d records): %w", len(l.records), errors.Join(errs...))
	}
	return nil
}
