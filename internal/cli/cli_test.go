package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `Stimulus,Trial_Type,Trial_Length_in_Seconds,Order
a.wav,intact,18,A
b.wav,degraded,18,A
a.wav,intact,18,B
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "OrderAB.csv", table)

	out, err := execute("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 trials, 2 stimuli, scanner mode")
}

func TestValidateVerbose(t *testing.T) {
	path := writeFile(t, t.TempDir(), "OrderAB.csv", table)

	out, err := execute("validate", "-v", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 block(s), 0m54s total")
}

func TestValidateInvalidTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv", "Stimulus,Trial_Type,Trial_Length_in_Seconds\na.wav,word,0\n")

	_, err := execute("validate", "--mode", "backup", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute("validate", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateChecksStimuli(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "OrderAB.csv", table)
	writeFile(t, dir, "a.wav", "")

	_, err := execute("validate", "--stimuli-dir", dir, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 stimulus file(s) missing")

	writeFile(t, dir, "b.wav", "")
	_, err = execute("validate", "--stimuli-dir", dir, path)
	assert.NoError(t, err)
}

func TestRunRejectsBadMode(t *testing.T) {
	_, err := execute("run", "-p", "p01", "--mode", "fmri")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.yaml", "font_size: -1\n")
	_, err := execute("run", "-c", cfg, "-p", "p01")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitAborted, GetExitCode(NewExitError(ExitAborted, "session aborted")))

	wrapped := WrapExitError(ExitCommandError, "bad", os.ErrNotExist)
	assert.ErrorIs(t, wrapped, os.ErrNotExist)
	assert.Equal(t, "bad: file does not exist", wrapped.Error())
}
