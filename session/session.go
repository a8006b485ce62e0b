// Package session wires one participant run together: it picks the trial
// table for the mode, opens the presentation runtime and trigger hardware,
// walks the participant through the pre-task screens, runs the engine and
// writes the results next to a session log.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/trial"
)

// DateLayout formats the session date in output file names, e.g.
// 2024_Mar_05_1432.
const DateLayout = "2006_Jan_02_1504"

const backupDir = "backup"

var ErrNoParticipant = errors.New("participant id is required")

type Info struct {
	Participant string
	Mode        trial.Mode
	Experiment  string
	Date        string
	SessionID   string
}

// NewInfo stamps a session for participant. The session id is a UUIDv7 so
// ids sort by start time in the results database.
func NewInfo(participant string, mode trial.Mode, experiment string, now time.Time) (Info, error) {
	participant = strings.TrimSpace(participant)
	if participant == "" {
		return Info{}, ErrNoParticipant
	}
	if strings.ContainsAny(participant, `/\`) || participant == "." || participant == ".." {
		return Info{}, fmt.Errorf("participant id %q must not contain path separators", participant)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Info{}, fmt.Errorf("session id: %w", err)
	}
	return Info{
		Participant: participant,
		Mode:        mode,
		Experiment:  experiment,
		Date:        now.Format(DateLayout),
		SessionID:   id.String(),
	}, nil
}

// Paths are the files a session writes.
type Paths struct {
	Results string
	Log     string
}

// OutputPaths places results at <out>/<participant>_<experiment>_<date>.csv,
// under <out>/backup/ for backup runs, with the log beside them.
func OutputPaths(outDir string, info Info) Paths {
	dir := outDir
	if info.Mode == trial.Standalone {
		dir = filepath.Join(outDir, backupDir)
	}
	stem := filepath.Join(dir, fmt.Sprintf("%s_%s_%s", info.Participant, info.Experiment, info.Date))
	return Paths{Results: stem + ".csv", Log: stem + ".log"}
}

// TablePath is the trial table used for mode.
func TablePath(cfg *config.Config, mode trial.Mode) string {
	if mode == trial.Synchronized {
		return cfg.ScannerTable
	}
	return cfg.BackupTable
}
