// Package report persists solver and harness results: a CSV row per trial,
// a SQLite store for querying batches after the fact, and the JSON proof
// artifact for an accepted solution.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"k4solve/internal/trial"
)

var csvHeader = []string{
	"trial_id", "kind", "index", "original", "mutant", "params",
	"feasible", "reason", "detail", "plaintext_sha256", "elapsed_ms",
}

// CSVSink writes one row per trial outcome. It implements trial.Sink; the
// batch collector serializes calls, so no locking is needed here.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink creates (or truncates) the CSV file and writes the header.
func NewCSVSink(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &CSVSink{f: f, w: w}, nil
}

func (s *CSVSink) Write(o trial.Outcome) error {
	row := []string{
		o.TrialID,
		string(o.Kind),
		strconv.Itoa(o.Index),
		o.Original,
		o.Mutant,
		o.Params,
		strconv.FormatBool(o.Feasible),
		o.Reason.String(),
		o.Detail,
		o.Digest,
		strconv.FormatInt(o.Elapsed.Milliseconds(), 10),
	}
	return s.w.Write(row)
}

// Close flushes buffered rows and closes the file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return s.f.Close()
}

// MultiSink fans one outcome out to several sinks, stopping on the first
// write error.
type MultiSink []trial.Sink

func (m MultiSink) Write(o trial.Outcome) error {
	for _, s := range m {
		if err := s.Write(o); err != nil {
			return err
		}
	}
	return nil
}
