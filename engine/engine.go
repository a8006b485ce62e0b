// Package engine runs a trial table: it plays each stimulus for its
// duration while polling for responses and the cancel key, times each trial
// against the current block, and commits one ledger record per trial.
//
// The engine is single threaded. Waiting is done by polling so that an abort
// is seen within one poll interval; nothing pre-empts a running step.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hgrotzin/language-localizer/ledger"
	"github.com/hgrotzin/language-localizer/trial"
)

type Options struct {
	ExperimenterText string
	TriggerText      string
}

func DefaultOptions() Options {
	return Options{
		ExperimenterText: "Waiting for the experimenter.",
		TriggerText:      "Waiting for the scanner.",
	}
}

// Summary describes how a Run ended. Trials is the number of committed
// records.
type Summary struct {
	Trials  int
	Aborted bool
	State   State
}

type Engine struct {
	deps   Deps
	opts   Options
	ledger *ledger.Ledger
	log    *slog.Logger

	state State
	stim  *Timer
	block *Timer
}

func New(deps Deps, l *ledger.Ledger, opts Options) (*Engine, error) {
	switch {
	case deps.Display == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingDependency)
	case deps.Clock == nil:
		return nil, fmt.Errorf("%w: clock", ErrMissingDependency)
	case deps.Input == nil:
		return nil, fmt.Errorf("%w: input", ErrMissingDependency)
	case deps.Stimuli == nil:
		return nil, fmt.Errorf("%w: stimulus cache", ErrMissingDependency)
	case l == nil:
		return nil, fmt.Errorf("%w: ledger", ErrMissingDependency)
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		deps:   deps,
		opts:   opts,
		ledger: l,
		log:    log,
		stim:   NewTimer(deps.Clock),
		block:  NewTimer(deps.Clock),
	}, nil
}

func (e *Engine) State() State {
	return e.state
}

// Run executes every trial of t in order and blocks until the table is
// exhausted or the session is aborted. Problems with the table or the
// stimuli are reported before anything is shown. An abort is not an error:
// it is reported through Summary.Aborted after the ledger has been flushed.
func (e *Engine) Run(ctx context.Context, t *trial.Table) (Summary, error) {
	if e.state != Idle {
		return Summary{State: e.state}, errors.New("engine already ran")
	}
	if err := t.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid trial table: %w", err)
	}
	if t.Mode == trial.Synchronized && (e.deps.Experimenter == nil || e.deps.Trigger == nil) {
		return Summary{}, fmt.Errorf("%w: synchronized mode needs experimenter and trigger gates", ErrMissingDependency)
	}
	handles, err := e.resolveAll(t)
	if err != nil {
		return Summary{}, err
	}

	e.log.Info("session starting", "mode", t.Mode, "trials", t.Len(), "stimuli", len(t.StimulusIDs()))

	var sum Summary
	e.enter(FixationDisplay)
	if err := e.deps.Display.ShowFixation(); err != nil {
		return e.fail(sum, fmt.Errorf("show fixation: %w", err))
	}
	e.block.Reset()
	if e.abortRequested(ctx) {
		return e.abort(sum, 0)
	}

	prev := trial.BlockNone
	for i, d := range t.Descriptors {
		if t.Mode == trial.Synchronized && i > 0 && d.Block != prev {
			if err := e.syncBlock(ctx, d.Block); err != nil {
				if IsAbort(err) {
					return e.abort(sum, i)
				}
				return e.fail(sum, err)
			}
		}
		prev = d.Block

		keys, aborted := e.present(ctx, i, d, handles[i])
		if aborted {
			return e.abort(sum, i)
		}

		e.enter(RecordCommit)
		rec := ledger.Record{Keys: keys, TrialType: d.TrialType, RunningTime: e.block.Elapsed()}
		if err := e.ledger.Commit(rec); err != nil {
			return e.fail(sum, err)
		}
		sum.Trials++
		e.log.Info("trial committed",
			"trial", i,
			"stimulus", d.StimulusID,
			"type", d.TrialType,
			"keys", ledger.FormatKeys(keys),
			"running_time", rec.RunningTime.Seconds(),
		)
	}

	e.enter(SessionComplete)
	sum.State = e.state
	if err := e.ledger.Flush(); err != nil {
		return sum, err
	}
	e.log.Info("session complete", "trials", sum.Trials)
	return sum, nil
}

func (e *Engine) resolveAll(t *trial.Table) ([]Stimulus, error) {
	byID := make(map[string]Stimulus)
	var missing []string
	for _, id := range t.StimulusIDs() {
		s, ok := e.deps.Stimuli.Resolve(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		byID[id] = s
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedStimulus, missing)
	}

	handles := make([]Stimulus, len(t.Descriptors))
	for i, d := range t.Descriptors {
		handles[i] = byID[d.StimulusID]
	}
	return handles, nil
}

// syncBlock holds the session between blocks: experimenter acknowledgment,
// then the scanner trigger, then a fresh time origin for the new block.
func (e *Engine) syncBlock(ctx context.Context, b trial.Block) error {
	e.enter(BlockSync)
	e.log.Info("waiting for block start", "block", b)

	if err := e.deps.Display.ShowText(e.opts.ExperimenterText); err != nil {
		return fmt.Errorf("show experimenter screen: %w", err)
	}
	if err := e.deps.Experimenter.Wait(ctx); err != nil {
		return err
	}
	if err := e.deps.Display.ShowText(e.opts.TriggerText); err != nil {
		return fmt.Errorf("show trigger screen: %w", err)
	}
	if err := e.deps.Trigger.Wait(ctx); err != nil {
		return err
	}
	if err := e.deps.Display.ShowFixation(); err != nil {
		return fmt.Errorf("show fixation: %w", err)
	}
	e.block.Reset()
	e.log.Info("block started", "block", b)
	return nil
}

// present plays one stimulus and collects the keys pressed while it plays
// and at the end of its window. keys is nil when nothing was pressed.
func (e *Engine) present(ctx context.Context, i int, d trial.Descriptor, s Stimulus) (keys []string, aborted bool) {
	e.enter(StimulusPlayback)

	// Responses given before onset (e.g. while waiting for the trigger)
	// belong to no trial.
	e.deps.Input.Poll()

	e.stim.Reset()
	if err := s.Play(); err != nil {
		e.log.Warn("stimulus did not start", "trial", i, "stimulus", d.StimulusID, "error", err)
	}
	if e.deps.Marker != nil {
		if err := e.deps.Marker.MarkOnset(); err != nil {
			e.log.Warn("onset marker failed", "trial", i, "error", err)
		}
	}
	e.log.Debug("stimulus onset", "trial", i, "stimulus", d.StimulusID, "block_time", e.block.Elapsed().Seconds())

	for {
		if e.abortRequested(ctx) {
			return nil, true
		}
		keys = append(keys, e.deps.Input.Poll()...)
		if e.stim.Elapsed() > d.Duration {
			break
		}
	}

	e.enter(ResponseCapture)
	if e.abortRequested(ctx) {
		return nil, true
	}
	keys = append(keys, e.deps.Input.Poll()...)
	return keys, false
}

func (e *Engine) abortRequested(ctx context.Context) bool {
	e.deps.Input.Pump()
	return ctx.Err() != nil || e.deps.Input.AbortRequested()
}

func (e *Engine) abort(sum Summary, at int) (Summary, error) {
	e.enter(Abort)
	sum.Aborted = true
	sum.State = e.state
	e.log.Warn("session aborted", "during_trial", at, "committed", e.ledger.Len())
	if err := e.ledger.Flush(); err != nil {
		return sum, err
	}
	return sum, nil
}

// fail stops the session on an unrecoverable error. What was committed is
// flushed once more on a best-effort basis. Reporting err is left to the
// caller.
func (e *Engine) fail(sum Summary, err error) (Summary, error) {
	e.enter(Abort)
	sum.State = e.state
	if ferr := e.ledger.Flush(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	e.log.Debug("engine stopped", "committed", e.ledger.Len())
	return sum, err
}

func (e *Engine) enter(s State) {
	e.state = s
}
