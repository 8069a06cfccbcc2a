package campaign

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsWriter(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC)

	w, err := NewResultsWriter(dir, start)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "sending_results_20250601_093015.csv"), w.Path())

	require.NoError(t, w.Record(Outcome{Email: "a@x.com", Status: StatusSuccess}))
	require.NoError(t, w.Record(Outcome{Email: "b@x.com", Status: StatusFailed, ErrorMessage: "mailbox unavailable"}))
	require.NoError(t, w.Close())

	rows := readResults(t, dir)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"email", "status", "error_message"}, rows[0])
	assert.Equal(t, []string{"a@x.com", "success", ""}, rows[1])
	assert.Equal(t, []string{"b@x.com", "failed", "mailbox unavailable"}, rows[2])
}

func TestResultsWriter_RowsDurableBeforeClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewResultsWriter(dir, time.Now())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Record(Outcome{Email: "a@x.com", Status: StatusSuccess}))

	// Read without closing: the row must already be on disk.
	rows := readResults(t, dir)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@x.com", rows[1][0])
}

func TestResultsWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results", "nested")

	w, err := NewResultsWriter(dir, time.Now())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rows := readResults(t, dir)
	require.Len(t, rows, 1)
}
