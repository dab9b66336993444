package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/curator/internal/importers"
)

func TestAuditor(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "audit")
	auditor := NewAuditor(tempDir)

	t.Run("SaveJSON creates audit directory and saves file", func(t *testing.T) {
		testData := map[string]any{
			"test_field": "test_value",
			"number":     42,
			"array":      []string{"item1", "item2"},
		}

		filename, err := auditor.SaveJSON(testData)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".json"))

		fileContent, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var savedData map[string]any
		require.NoError(t, json.Unmarshal(fileContent, &savedData))

		assert.Equal(t, "test_value", savedData["test_field"])
		assert.Equal(t, float64(42), savedData["number"]) // JSON unmarshals numbers as float64
		assert.Equal(t, []any{"item1", "item2"}, savedData["array"])
	})

	t.Run("SaveJSON generates unique filenames", func(t *testing.T) {
		filename1, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)
		filename2, err := auditor.SaveJSON(map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})
}

func TestAuditor_Enabled(t *testing.T) {
	var nilAuditor *Auditor
	assert.False(t, nilAuditor.Enabled())
	assert.False(t, NewAuditor("").Enabled())
	assert.True(t, NewAuditor(t.TempDir()).Enabled())
}

func TestRecorder_SavesRunReport(t *testing.T) {
	dir := t.TempDir()
	recorder := NewAuditor(dir).Begin(SourceCLI, "recs.csv", "images.zip")

	recorder.RowProcessed(importers.RowResult{
		Index:    0,
		Title:    "Sunset Cafe",
		Outcome:  importers.OutcomeInserted,
		Message:  "added",
		ImageURL: "https://cdn.example.com/sunset.jpg",
	}, 1, 2)
	recorder.RowProcessed(importers.RowResult{
		Index:   1,
		Title:   "Harbour Hotel",
		Outcome: importers.OutcomeNotWritten,
		Err:     errors.New("constraint failed"),
	}, 2, 2)

	filename, err := recorder.Finish(importers.Summary{Total: 2, Processed: 2, Inserted: 1, NotWritten: 1}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, filename)

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	var report RunReport
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, SourceCLI, report.Source)
	assert.Equal(t, "recs.csv", report.Table)
	assert.Equal(t, "images.zip", report.Archive)
	assert.Equal(t, 1, report.Summary.Inserted)
	assert.Empty(t, report.Error)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
	require.Len(t, report.Rows, 2)
	assert.Equal(t, importers.OutcomeInserted, report.Rows[0].Outcome)
	assert.Equal(t, "constraint failed", report.Rows[1].Error)
}

func TestRecorder_RecordsRunError(t *testing.T) {
	recorder := NewAuditor(t.TempDir()).Begin(SourceUI, "", "")
	_, err := recorder.Finish(importers.Summary{Aborted: true}, errors.New("datastore unavailable"))
	require.NoError(t, err)

	report := recorder.Report()
	assert.Equal(t, "datastore unavailable", report.Error)
	assert.True(t, report.Summary.Aborted)
	assert.Empty(t, report.Rows)
}

func TestRecorder_DisabledAuditorWritesNothing(t *testing.T) {
	recorder := NewAuditor("").Begin(SourceUI, "", "")
	recorder.RowProcessed(importers.RowResult{Index: 0, Outcome: importers.OutcomeInserted}, 1, 1)

	filename, err := recorder.Finish(importers.Summary{Total: 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, filename)
	assert.Len(t, recorder.Report().Rows, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
