package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/present"
	"github.com/hgrotzin/language-localizer/session"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg := config.Default()
	if err := cfg.LoadCache(); err != nil {
		slog.Warn("ignoring setup cache", "file", config.CacheFile, "err", err)
	}

	if cfg.StimuliDir == "" {
		if _, err := os.Stat("stimuli"); err == nil {
			cfg.StimuliDir = "stimuli"
		}
	}

	choice, err := present.RunSetup(cfg)
	if errors.Is(err, present.ErrSetupCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid configuration:", err)
		return 2
	}

	info, err := session.NewInfo(choice.Participant, choice.Mode, cfg.ExperimentName, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	res, err := session.Run(context.Background(), cfg, info, session.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	fmt.Printf("\nResults saved to %s\n", res.Paths.Results)
	if res.Summary.Aborted {
		return 3
	}
	return 0
}
