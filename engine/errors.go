package engine

import (
	"context"
	"errors"
)

var (
	// ErrAborted is returned by gates when the participant or experimenter
	// pressed the cancel key. Run turns it into Summary.Aborted.
	ErrAborted = errors.New("session aborted")

	ErrUnresolvedStimulus = errors.New("unresolved stimulus")
	ErrMissingDependency  = errors.New("missing engine dependency")
)

// IsAbort reports whether err ends a session as an abort rather than a
// failure. Context cancellation counts as an abort.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
