package ledger

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var Header = []string{"", "all_keys_pressed", "trial_type", "running_time"}

// CSVSink rewrites one CSV file on every Write. The file is replaced by
// rename so readers never see a half-written table.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Write(records []Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Encode writes records as the result table: a leading row index, the keys
// in list notation (empty cell for no response), the trial type and the
// running time in seconds.
func Encode(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i, r := range records {
		row := []string{
			strconv.Itoa(i),
			FormatKeys(r.Keys),
			r.TrialType,
			FormatSeconds(r),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func FormatKeys(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func FormatSeconds(r Record) string {
	return strconv.FormatFloat(r.RunningTime.Seconds(), 'f', 4, 64)
}
