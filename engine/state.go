package engine

type State int

const (
	Idle State = iota
	FixationDisplay
	BlockSync
	StimulusPlayback
	ResponseCapture
	RecordCommit
	SessionComplete
	Abort
)

var stateNames = [...]string{
	Idle:             "idle",
	FixationDisplay:  "fixation",
	BlockSync:        "block_sync",
	StimulusPlayback: "playback",
	ResponseCapture:  "response_capture",
	RecordCommit:     "record_commit",
	SessionComplete:  "complete",
	Abort:            "abort",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == SessionComplete || s == Abort
}
