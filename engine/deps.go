package engine

import (
	"context"
	"log/slog"
)

// Display draws the screens the engine needs between and during trials.
type Display interface {
	ShowFixation() error
	ShowText(text string) error
}

// Input is the response poller. Pump yields to the presentation runtime's
// event loop; Poll returns recognised symbols received since the previous
// Poll and forgets them; AbortRequested latches once the cancel symbol has
// been seen.
type Input interface {
	Pump()
	Poll() []string
	AbortRequested() bool
}

// Stimulus is a preloaded, playable handle. Play may be called any number of
// times.
type Stimulus interface {
	Play() error
}

type StimulusCache interface {
	Resolve(id string) (Stimulus, bool)
}

// Gate blocks until the session may proceed. It returns ErrAborted when the
// cancel symbol is seen while waiting, or the context's error.
type Gate interface {
	Wait(ctx context.Context) error
}

// Marker emits an external event marker at stimulus onset.
type Marker interface {
	MarkOnset() error
}

// Deps bundles the presentation runtime pieces the session owns and hands to
// the engine. Experimenter and Trigger are only needed for synchronized
// tables; Marker and Logger are optional.
type Deps struct {
	Display      Display
	Clock        Clock
	Input        Input
	Stimuli      StimulusCache
	Experimenter Gate
	Trigger      Gate
	Marker       Marker
	Logger       *slog.Logger
}
