package campaign

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcome statuses recorded in the results file.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Outcome is the durable per-recipient result entry.
type Outcome struct {
	Email        string
	Status       string
	ErrorMessage string
}

// ResultsWriter appends one outcome row per processed recipient to a
// timestamped CSV under the results directory. Rows are flushed as they are
// written so a fatal abort later in the run cannot lose earlier outcomes.
type ResultsWriter struct {
	f    *os.File
	w    *csv.Writer
	path string
}

// NewResultsWriter creates the results directory if needed, opens a fresh
// results file named after the process start time and writes the header.
func NewResultsWriter(dir string, start time.Time) (*ResultsWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("sending_results_%s.csv", start.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create results file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"email", "status", "error_message"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}

	return &ResultsWriter{f: f, w: w, path: path}, nil
}

// Path returns the location of the results file.
func (r *ResultsWriter) Path() string {
	return r.path
}

// Record appends one outcome row and flushes it to disk.
func (r *ResultsWriter) Record(o Outcome) error {
	if err := r.w.Write([]string{o.Email, o.Status, o.ErrorMessage}); err != nil {
		return fmt.Errorf("failed to write outcome for %s: %w", o.Email, err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("failed to flush outcome for %s: %w", o.Email, err)
	}
	return nil
}

// Close flushes any buffered rows and closes the file.
func (r *ResultsWriter) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}
