package http

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/curator/internal/audit"
	"github.com/mrlokans/curator/internal/images"
	"github.com/mrlokans/curator/internal/importers"
)

var runTemplates = template.Must(template.New("run").Parse(`
{{define "head"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Creating recommendations</title>
<style>
body { font-family: system-ui; max-width: 900px; margin: 40px auto; }
.small-font { font-size: 14px; margin: 2px 0; }
.success { color: #198754; }
.failure { color: #ed2939; }
div.progress { display: none; }
div.progress:last-of-type { display: block; position: sticky; bottom: 0; background: #fff; padding: 8px 0; }
</style>
</head>
<body>
<main>
<h1>Creating recommendations</h1>
<p>{{.}} rows to process</p>
{{end}}
{{define "message"}}<p class="small-font"><span class="{{if .Success}}success{{else}}failure{{end}}">{{.Text}}</span></p>
{{end}}
{{define "progress"}}<div class="progress"><progress value="{{.Done}}" max="{{.Total}}"></progress> Processed {{.Done}} of {{.Total}} rows</div>
{{end}}
{{define "tail"}}{{with .Summary}}<p>Inserted {{.Inserted}}, duplicates {{.SkippedDuplicate}}, invalid {{.SkippedInvalid}}, without image {{.SkippedNoImage}}{{if .NotWritten}}, not written {{.NotWritten}}{{end}}.</p>
{{end}}<p><a href="/">Back</a></p>
</main>
</body>
</html>
{{end}}`))

// RowEvent is the payload of a "row" server-sent event.
type RowEvent struct {
	Index   int               `json:"index"`
	Title   string            `json:"title"`
	Outcome importers.Outcome `json:"outcome"`
	Message string            `json:"message,omitempty"`
	Success bool              `json:"success"`
	Done    int               `json:"done"`
	Total   int               `json:"total"`
}

// DoneEvent is the payload of the final "done" server-sent event.
type DoneEvent struct {
	Summary importers.Summary `json:"summary"`
	Report  string            `json:"report,omitempty"`
}

// runStream writes run progress to the client as it happens.
type runStream interface {
	start(total int)
	row(result importers.RowResult, done, total int)
	finish(summary importers.Summary, report string)
	fail(message string)
}

type htmlStream struct {
	c *gin.Context
}

func (s *htmlStream) exec(name string, data any) {
	if err := runTemplates.ExecuteTemplate(s.c.Writer, name, data); err != nil {
		log.Printf("Failed to render %s fragment: %v", name, err)
	}
	s.c.Writer.Flush()
}

func (s *htmlStream) start(total int) {
	s.c.Header("Content-Type", "text/html; charset=utf-8")
	s.c.Header("Cache-Control", "no-cache")
	s.c.Status(http.StatusOK)
	s.exec("head", total)
}

func (s *htmlStream) row(result importers.RowResult, done, total int) {
	if result.Message != "" {
		s.exec("message", Message{Text: result.Message, Success: result.Success()})
	}
	s.exec("progress", struct{ Done, Total int }{done, total})
}

func (s *htmlStream) finish(summary importers.Summary, _ string) {
	s.exec("tail", struct{ Summary *importers.Summary }{&summary})
}

func (s *htmlStream) fail(message string) {
	s.exec("message", Message{Text: message})
	s.exec("tail", struct{ Summary *importers.Summary }{})
}

type sseStream struct {
	c *gin.Context
}

func (s *sseStream) send(event string, data any) {
	s.c.SSEvent(event, data)
	s.c.Writer.Flush()
}

func (s *sseStream) start(int) {
	s.c.Header("Cache-Control", "no-cache")
	s.c.Header("Connection", "keep-alive")
	s.c.Status(http.StatusOK)
}

func (s *sseStream) row(result importers.RowResult, done, total int) {
	s.send("row", RowEvent{
		Index:   result.Index,
		Title:   result.Title,
		Outcome: result.Outcome,
		Message: result.Message,
		Success: result.Success(),
		Done:    done,
		Total:   total,
	})
}

func (s *sseStream) finish(summary importers.Summary, report string) {
	s.send("done", DoneEvent{Summary: summary, Report: report})
}

func (s *sseStream) fail(message string) {
	s.send("error", ErrorResponse{Error: message})
}

// Run ingests the uploaded table against the extracted images, streaming one
// message per row as it completes. Only one run may be active at a time.
// The run is not tied to the request: it completes even if the client goes away.
func (ic *IngestController) Run(c *gin.Context) {
	ic.mu.Lock()
	if ic.running {
		ic.mu.Unlock()
		ic.rejectRun(c, http.StatusConflict, "An ingestion run is already in progress")
		return
	}
	if !ic.readyLocked() {
		ic.mu.Unlock()
		ic.rejectRun(c, http.StatusBadRequest, "Upload a CSV table and a non-empty images archive first")
		return
	}
	ic.running = true
	ic.messages = nil
	table := ic.table
	ws := ic.workspace
	files := append([]string(nil), ic.extraction.Files...)
	tableName, archiveName := ic.tableName, ic.archiveName
	ic.mu.Unlock()

	defer func() {
		ic.mu.Lock()
		ic.running = false
		ic.mu.Unlock()
	}()

	var stream runStream = &htmlStream{c: c}
	if wantsEventStream(c) {
		stream = &sseStream{c: c}
	}

	recorder := ic.auditor.Begin(audit.SourceUI, tableName, archiveName)
	pipeline := importers.NewPipeline(ic.store, ic.store, images.NewProcessor(ws, ic.uploader))
	reporter := importers.ReporterFunc(func(result importers.RowResult, done, total int) {
		recorder.RowProcessed(result, done, total)
		ic.remember(result)
		stream.row(result, done, total)
	})

	log.Printf("Starting ingestion of %s (%d rows, %d images)", tableName, table.Len(), len(files))
	stream.start(table.Len())

	summary, runErr := pipeline.Run(context.WithoutCancel(c.Request.Context()), table, files, reporter)

	report, err := recorder.Finish(summary, runErr)
	if err != nil {
		log.Printf("Failed to save run report: %v", err)
	}

	ic.mu.Lock()
	ic.lastSummary = &summary
	ic.lastReport = report
	ic.mu.Unlock()

	if runErr != nil {
		message := fmt.Sprintf("Could not connect to the recommendations database: %v", runErr)
		ic.remember(importers.RowResult{Message: message})
		stream.fail(message)
		return
	}

	log.Printf("Ingestion finished: %d inserted, %d skipped", summary.Inserted, summary.Processed-summary.Inserted)
	stream.finish(summary, report)
}

func (ic *IngestController) rejectRun(c *gin.Context, status int, message string) {
	if wantsEventStream(c) {
		if status == http.StatusBadRequest {
			respondBadRequest(c, message)
			return
		}
		respondError(c, status, "run_in_progress", message)
		return
	}
	ic.respond(c, status, message)
}

// remember keeps operator-facing messages for the next page render.
func (ic *IngestController) remember(result importers.RowResult) {
	if result.Message == "" {
		return
	}
	ic.mu.Lock()
	ic.messages = append(ic.messages, Message{Text: result.Message, Success: result.Success()})
	ic.mu.Unlock()
}
