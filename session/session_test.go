package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrotzin/language-localizer/config"
	"github.com/hgrotzin/language-localizer/trial"
)

func TestNewInfo(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 32, 10, 0, time.UTC)
	info, err := NewInfo("  p01 ", trial.Synchronized, "LanguageLocalizer", now)
	require.NoError(t, err)

	assert.Equal(t, "p01", info.Participant)
	assert.Equal(t, "2024_Mar_05_1432", info.Date)
	id, err := uuid.Parse(info.SessionID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewInfoRejectsParticipant(t *testing.T) {
	for _, p := range []string{"", "   ", "a/b", `a\b`, ".."} {
		_, err := NewInfo(p, trial.Standalone, "LanguageLocalizer", time.Now())
		assert.Error(t, err, p)
	}
	_, err := NewInfo("", trial.Standalone, "x", time.Now())
	assert.ErrorIs(t, err, ErrNoParticipant)
}

func TestOutputPaths(t *testing.T) {
	info := Info{Participant: "p01", Mode: trial.Synchronized, Experiment: "LanguageLocalizer", Date: "2024_Mar_05_1432"}

	p := OutputPaths("out", info)
	assert.Equal(t, filepath.Join("out", "p01_LanguageLocalizer_2024_Mar_05_1432.csv"), p.Results)
	assert.Equal(t, filepath.Join("out", "p01_LanguageLocalizer_2024_Mar_05_1432.log"), p.Log)

	info.Mode = trial.Standalone
	p = OutputPaths("out", info)
	assert.Equal(t, filepath.Join("out", "backup", "p01_LanguageLocalizer_2024_Mar_05_1432.csv"), p.Results)
	assert.Equal(t, filepath.Join("out", "backup", "p01_LanguageLocalizer_2024_Mar_05_1432.log"), p.Log)
}

func TestTablePath(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "OrderAB.csv", TablePath(cfg, trial.Synchronized))
	assert.Equal(t, "OrderB.csv", TablePath(cfg, trial.Standalone))
}
