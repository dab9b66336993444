package audit

import (
	"sync"
	"time"

	"github.com/mrlokans/curator/internal/importers"
)

// Sources of an ingestion run.
const (
	SourceUI  = "ui"
	SourceCLI = "cli"
)

// RowEntry is the stored form of a single row result.
type RowEntry struct {
	Index    int               `json:"index"`
	Title    string            `json:"title"`
	Outcome  importers.Outcome `json:"outcome"`
	Kind     string            `json:"kind,omitempty"`
	Message  string            `json:"message,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// RunReport describes one ingestion run.
type RunReport struct {
	Source     string            `json:"source"`
	Table      string            `json:"table,omitempty"`
	Archive    string            `json:"archive,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Summary    importers.Summary `json:"summary"`
	Error      string            `json:"error,omitempty"`
	Rows       []RowEntry        `json:"rows"`
}

// Recorder collects the rows of a run as an importers.Reporter and saves the
// report when the run finishes.
type Recorder struct {
	auditor *Auditor
	now     func() time.Time

	mu     sync.Mutex
	report RunReport
}

// Begin starts recording a run.
func (a *Auditor) Begin(source, table, archive string) *Recorder {
	r := &Recorder{auditor: a, now: time.Now}
	r.report = RunReport{
		Source:    source,
		Table:     table,
		Archive:   archive,
		StartedAt: r.now(),
		Rows:      []RowEntry{},
	}
	return r
}

// RowProcessed implements importers.Reporter.
func (r *Recorder) RowProcessed(result importers.RowResult, _, _ int) {
	entry := RowEntry{
		Index:    result.Index,
		Title:    result.Title,
		Outcome:  result.Outcome,
		Kind:     string(importers.SkipKindOf(result.Err)),
		Message:  result.Message,
		ImageURL: result.ImageURL,
	}
	if result.Err != nil {
		entry.Error = truncate(result.Err.Error(), 500)
	}

	r.mu.Lock()
	r.report.Rows = append(r.report.Rows, entry)
	r.mu.Unlock()
}

// Report returns a copy of the report collected so far.
func (r *Recorder) Report() RunReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	report := r.report
	report.Rows = append([]RowEntry(nil), r.report.Rows...)
	return report
}

// Finish stamps the summary and saves the report. It returns the report file
// name, or "" when the auditor is disabled.
func (r *Recorder) Finish(summary importers.Summary, runErr error) (string, error) {
	r.mu.Lock()
	r.report.FinishedAt = r.now()
	r.report.Summary = summary
	if runErr != nil {
		r.report.Error = truncate(runErr.Error(), 500)
	}
	report := r.report
	r.mu.Unlock()

	if !r.auditor.Enabled() {
		return "", nil
	}
	return r.auditor.SaveJSON(report)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
