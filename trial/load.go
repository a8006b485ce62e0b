package trial

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	ColStimulus = "Stimulus"
	ColType     = "Trial_Type"
	ColDuration = "Trial_Length_in_Seconds"
	ColBlock    = "Order"
)

var ErrEmptyTable = errors.New("trial table has no rows")

var columnAliases = map[string]string{
	"stimulus":                ColStimulus,
	"stimulus_id":             ColStimulus,
	"trial_type":              ColType,
	"type":                    ColType,
	"trial_length_in_seconds": ColDuration,
	"duration_seconds":        ColDuration,
	"duration":                ColDuration,
	"order":                   ColBlock,
	"block":                   ColBlock,
	"block_boundary":          ColBlock,
}

// ValidationError reports a malformed trial table. Row is 1-based over data
// rows; zero means the header.
type ValidationError struct {
	Row    int
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("header: %s: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Column, e.Reason)
}

func Load(path string, mode Mode) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func Parse(r io.Reader, mode Mode) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	idx := make(map[string]int)
	for i, name := range records[0] {
		name = strings.TrimPrefix(name, "\ufeff")
		if col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, dup := idx[col]; !dup {
				idx[col] = i
			}
		}
	}
	required := []string{ColStimulus, ColType, ColDuration}
	if mode == Synchronized {
		required = append(required, ColBlock)
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &ValidationError{Column: col, Reason: "missing column"}
		}
	}

	t := &Table{Mode: mode}
	for i, record := range records[1:] {
		row := i + 1
		if isBlank(record) {
			continue
		}
		field := func(col string) string {
			j, ok := idx[col]
			if !ok || j >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[j])
		}

		d := Descriptor{
			StimulusID: norm.NFC.String(field(ColStimulus)),
			TrialType:  norm.NFC.String(field(ColType)),
		}
		if d.StimulusID == "" {
			return nil, &ValidationError{Row: row, Column: ColStimulus, Reason: "empty stimulus id"}
		}

		secs, err := parseSeconds(field(ColDuration))
		if err != nil {
			return nil, &ValidationError{Row: row, Column: ColDuration, Reason: err.Error()}
		}
		d.Duration = time.Duration(secs) * time.Second

		if mode == Synchronized {
			b, ok := parseBlock(field(ColBlock))
			if !ok {
				return nil, &ValidationError{Row: row, Column: ColBlock, Reason: fmt.Sprintf("unknown block %q (want A or B)", field(ColBlock))}
			}
			d.Block = b
		}
		t.Descriptors = append(t.Descriptors, d)
	}

	if len(t.Descriptors) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// parseSeconds accepts "4" as well as "4.0", which spreadsheet exports
// produce, but rejects fractional and non-positive values.
func parseSeconds(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty duration")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("duration %q is not a whole number of seconds", s)
		}
		n = int64(f)
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %d", n)
	}
	return n, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
