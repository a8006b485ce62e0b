package engine

import "time"

// Clock is a monotonic time source. The origin is arbitrary; only
// differences between readings are meaningful.
type Clock interface {
	Now() time.Duration
}

// Timer measures elapsed time since its last Reset. The engine keeps two:
// one per stimulus-play interval and one per block.
type Timer struct {
	clock Clock
	start time.Duration
}

func NewTimer(c Clock) *Timer {
	t := &Timer{clock: c}
	t.Reset()
	return t
}

func (t *Timer) Reset() {
	t.start = t.clock.Now()
}

func (t *Timer) Elapsed() time.Duration {
	return t.clock.Now() - t.start
}
