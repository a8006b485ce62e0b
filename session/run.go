package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/engine"
	"github.com/hgrotzin/language-localizer/ledger"
	"github.com/hgrotzin/language-localizer/logging"
	"github.com/hgrotzin/language-localizer/present"
	"github.com/hgrotzin/language-localizer/trial"
	"github.com/hgrotzin/language-localizer/trigger"
)

// Stage is the presentation runtime as a session uses it.
type Stage interface {
	engine.Display
	engine.Clock
	engine.Input
	ShowSplash(ctx context.Context, path string) error
	KeyGate(keys ...string) engine.Gate
}

// Rig is the opened hardware for one session. Trigger may be nil, in which
// case the trigger screen waits for the configured trigger keys. Marker may
// be nil.
type Rig struct {
	Stage   Stage
	Stimuli engine.StimulusCache
	Trigger engine.Gate
	Marker  engine.Marker
	Logger  *slog.Logger
}

type Options struct {
	Verbose bool
}

type Result struct {
	Summary engine.Summary
	Paths   Paths
}

// Run opens everything a session needs from cfg, conducts it and releases
// it again. Table and stimulus problems are reported before the window
// opens.
func Run(ctx context.Context, cfg *config.Config, info Info, opts Options) (res Result, err error) {
	res.Paths = OutputPaths(cfg.OutputDir, info)

	log, closeLog, err := logging.New(res.Paths.Log, opts.Verbose)
	if err != nil {
		return res, err
	}
	defer closeLog()
	log = log.With("session", info.SessionID, "participant", info.Participant, "mode", info.Mode)
	defer func() {
		if err != nil {
			log.Error("session failed", "err", err)
		}
	}()

	table, err := trial.Load(TablePath(cfg, info.Mode), info.Mode)
	if err != nil {
		return res, err
	}
	log.Info("trial table loaded", "path", TablePath(cfg, info.Mode), "trials", table.Len())

	sinks := []ledger.Sink{ledger.NewCSVSink(res.Paths.Results)}
	if cfg.Database != "" {
		db, err := ledger.OpenSQLiteSink(cfg.Database, info.SessionID)
		if err != nil {
			return res, err
		}
		defer db.Close()
		sinks = append(sinks, db)
	}
	results := ledger.New(sinks...)

	rt, err := present.Open(cfg)
	if err != nil {
		return res, err
	}
	defer rt.Close()

	sounds, err := present.LoadSounds(rt.Mixer, cfg.StimuliDir, table.StimulusIDs())
	if err != nil {
		return res, fmt.Errorf("load stimuli: %w", err)
	}
	defer sounds.Destroy()
	log.Info("stimuli loaded", "count", sounds.Len())

	rig := Rig{Stage: rt, Stimuli: sounds, Logger: log}

	if cfg.TriggerPort != "" {
		b, err := trigger.ParseTriggerByte(cfg.TriggerByte)
		if err != nil {
			return res, err
		}
		gate, err := trigger.OpenSerialGate(cfg.TriggerPort, cfg.TriggerBaud, b, rt)
		if err != nil {
			return res, err
		}
		defer gate.Close()
		rig.Trigger = gate
	}

	if cfg.DLPDevice != "" {
		dlp, err := trigger.OpenDLP(cfg.DLPDevice)
		if err != nil {
			log.Warn("onset marker disabled", "err", err)
		} else {
			defer dlp.Close()
			rig.Marker = trigger.OnsetMarker{DLP: dlp, Line: cfg.DLPLine}
		}
	}

	res.Summary, err = Conduct(ctx, cfg, rig, table, results)
	return res, err
}

// Conduct shows the pre-task screens, runs the engine over table and shows
// the closing screens. Aborting before the first trial flushes an empty
// ledger and reports an aborted summary.
func Conduct(ctx context.Context, cfg *config.Config, rig Rig, table *trial.Table, results *ledger.Ledger) (engine.Summary, error) {
	log := rig.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	stage := rig.Stage
	experimenter := stage.KeyGate(cfg.Keys.Experimenter...)
	trig := rig.Trigger
	if trig == nil {
		trig = stage.KeyGate(cfg.Keys.Trigger...)
	}

	steps := []func() error{
		func() error { return stage.ShowSplash(ctx, cfg.StartSplash) },
	}
	if table.Mode == trial.Synchronized {
		steps = append(steps, screen(ctx, stage, cfg.Text.Instructions, stage.KeyGate(cfg.Keys.Instructions...)))
	}
	steps = append(steps,
		screen(ctx, stage, cfg.Text.Experimenter, experimenter),
		screen(ctx, stage, cfg.Text.Trigger, trig),
	)
	for _, step := range steps {
		if err := step(); err != nil {
			if engine.IsAbort(err) {
				log.Warn("session aborted before the first trial")
				return engine.Summary{Aborted: true, State: engine.Abort}, results.Flush()
			}
			return engine.Summary{}, err
		}
	}

	eng, err := engine.New(engine.Deps{
		Display:      stage,
		Clock:        stage,
		Input:        stage,
		Stimuli:      rig.Stimuli,
		Experimenter: experimenter,
		Trigger:      trig,
		Marker:       rig.Marker,
		Logger:       log.WithGroup("engine"),
	}, results, engine.Options{
		ExperimenterText: cfg.Text.Experimenter,
		TriggerText:      cfg.Text.Trigger,
	})
	if err != nil {
		return engine.Summary{}, err
	}

	started := stage.Now()
	sum, err := eng.Run(ctx, table)
	if err != nil || sum.Aborted {
		return sum, err
	}
	log.Info("trials finished", "trials", sum.Trials, "elapsed", (stage.Now() - started).Round(time.Millisecond))

	err = screen(ctx, stage, cfg.Text.Thanks, stage.KeyGate(cfg.Keys.Thanks...))()
	if err == nil {
		err = stage.ShowSplash(ctx, cfg.EndSplash)
	}
	if err != nil && !engine.IsAbort(err) {
		return sum, err
	}
	return sum, nil
}

func screen(ctx context.Context, d engine.Display, text string, gate engine.Gate) func() error {
	return func() error {
		if err := d.ShowText(text); err != nil {
			return fmt.Errorf("show %q: %w", text, err)
		}
		return gate.Wait(ctx)
	}
}
