package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/hgrotzin/language-localizer/engine"
)

const (
	ScreenFixation = "+"
	AbortKey       = "escape"
)

// KeyEvent is a key press delivered by the first Pump at or after At.
type KeyEvent struct {
	At  time.Duration
	Key string
}

// Runtime is a scripted display and response poller. Every Pump advances
// the clock by Step and delivers due key events; keys outside Vocabulary
// are ignored except for AbortKey.
type Runtime struct {
	Clock      *FakeClock
	Step       time.Duration
	Vocabulary map[string]bool
	Screens    []string
	Pumps      int

	events  []KeyEvent
	pending []string
	aborted bool
}

func NewRuntime(clock *FakeClock, step time.Duration, events ...KeyEvent) *Runtime {
	r := &Runtime{
		Clock:      clock,
		Step:       step,
		Vocabulary: map[string]bool{"1": true, "2": true, "3": true, "4": true},
	}
	r.Press(events...)
	return r
}

func (r *Runtime) Press(events ...KeyEvent) {
	r.events = append(r.events, events...)
	sort.SliceStable(r.events, func(i, j int) bool { return r.events[i].At < r.events[j].At })
}

func (r *Runtime) ShowFixation() error {
	r.Screens = append(r.Screens, ScreenFixation)
	return nil
}

func (r *Runtime) ShowText(text string) error {
	r.Screens = append(r.Screens, text)
	return nil
}

func (r *Runtime) Pump() {
	r.Pumps++
	r.Clock.Advance(r.Step)
	for len(r.events) > 0 && r.events[0].At <= r.Clock.Now() {
		ev := r.events[0]
		r.events = r.events[1:]
		switch {
		case ev.Key == AbortKey:
			r.aborted = true
		case r.Vocabulary[ev.Key]:
			r.pending = append(r.pending, ev.Key)
		}
	}
}

func (r *Runtime) Poll() []string {
	keys := r.pending
	r.pending = nil
	return keys
}

func (r *Runtime) AbortRequested() bool {
	return r.aborted
}

// Stimulus counts how often it was played.
type Stimulus struct {
	ID    string
	Plays int
}

func (s *Stimulus) Play() error {
	s.Plays++
	return nil
}

type Stimuli map[string]*Stimulus

func NewStimuli(ids ...string) Stimuli {
	s := make(Stimuli, len(ids))
	for _, id := range ids {
		s[id] = &Stimulus{ID: id}
	}
	return s
}

func (s Stimuli) Resolve(id string) (engine.Stimulus, bool) {
	st, ok := s[id]
	if !ok {
		return nil, false
	}
	return st, true
}

// Gate simulates a blocking wait that lasts Delay and then returns Err.
type Gate struct {
	Clock *FakeClock
	Delay time.Duration
	Err   error
	Calls int
}

func (g *Gate) Wait(ctx context.Context) error {
	g.Calls++
	g.Clock.Advance(g.Delay)
	if g.Err != nil {
		return g.Err
	}
	return ctx.Err()
}

type Marker struct {
	Onsets []time.Duration
	Clock  *FakeClock
}

func (m *Marker) MarkOnset() error {
	m.Onsets = append(m.Onsets, m.Clock.Now())
	return nil
}
