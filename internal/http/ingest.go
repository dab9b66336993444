package http

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/curator/internal/assethost"
	"github.com/mrlokans/curator/internal/audit"
	"github.com/mrlokans/curator/internal/auth"
	"github.com/mrlokans/curator/internal/images"
	"github.com/mrlokans/curator/internal/importers"
)

const (
	maxTableFileSize   = 20 * 1024 * 1024  // 20 MB
	maxArchiveFileSize = 512 * 1024 * 1024 // 512 MB
	previewRowLimit    = 100
)

// Message is one line of operator feedback, rendered green or red.
type Message struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
}

// IngestController holds the state of the single operator's session: the
// uploaded table, the extracted image workspace and the last run.
type IngestController struct {
	store         RecommendationStore
	uploader      assethost.Uploader
	auditor       *audit.Auditor
	workspaceRoot string

	mu          sync.Mutex
	table       *importers.Table
	tableName   string
	workspace   *images.Workspace
	extraction  *images.Extraction
	archiveName string
	running     bool
	messages    []Message
	lastSummary *importers.Summary
	lastReport  string
}

func NewIngestController(store RecommendationStore, uploader assethost.Uploader, auditor *audit.Auditor, workspaceRoot string) *IngestController {
	return &IngestController{
		store:         store,
		uploader:      uploader,
		auditor:       auditor,
		workspaceRoot: workspaceRoot,
	}
}

// IngestStatus is the JSON view of the controller state.
type IngestStatus struct {
	TableName   string             `json:"table_name,omitempty"`
	Rows        int                `json:"rows"`
	ArchiveName string             `json:"archive_name,omitempty"`
	Images      int                `json:"images"`
	Corrupt     []string           `json:"corrupt,omitempty"`
	Ready       bool               `json:"ready"`
	Running     bool               `json:"running"`
	LastSummary *importers.Summary `json:"last_summary,omitempty"`
	LastReport  string             `json:"last_report,omitempty"`
}

type indexPage struct {
	CSRFField   template.HTML
	Error       string
	TableName   string
	Header      []string
	Preview     [][]string
	TotalRows   int
	Truncated   bool
	ArchiveName string
	ImageCount  int
	Warnings    []string
	Ready       bool
	Running     bool
	Messages    []Message
	Summary     *importers.Summary
}

// readyLocked reports whether a run can start: a table and at least one image.
func (ic *IngestController) readyLocked() bool {
	return ic.table != nil && ic.extraction != nil && len(ic.extraction.Files) > 0
}

func (ic *IngestController) statusLocked() IngestStatus {
	status := IngestStatus{
		TableName:   ic.tableName,
		Rows:        ic.table.Len(),
		ArchiveName: ic.archiveName,
		Ready:       ic.readyLocked(),
		Running:     ic.running,
		LastSummary: ic.lastSummary,
		LastReport:  ic.lastReport,
	}
	if ic.extraction != nil {
		status.Images = len(ic.extraction.Files)
		status.Corrupt = ic.extraction.Corrupt
	}
	return status
}

func (ic *IngestController) page(c *gin.Context, errMsg string) indexPage {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	page := indexPage{
		CSRFField:   template.HTML(auth.CSRFTokenField(c)),
		Error:       errMsg,
		TableName:   ic.tableName,
		ArchiveName: ic.archiveName,
		Ready:       ic.readyLocked(),
		Running:     ic.running,
		Messages:    ic.messages,
		Summary:     ic.lastSummary,
	}

	if ic.table != nil {
		page.Header = ic.table.Header
		page.TotalRows = ic.table.Len()
		page.Preview = ic.table.Records
		if len(page.Preview) > previewRowLimit {
			page.Preview = page.Preview[:previewRowLimit]
			page.Truncated = true
		}
	}
	if ic.extraction != nil {
		page.ImageCount = len(ic.extraction.Files)
		page.Warnings = ic.extraction.Warnings()
	}
	return page
}

// respond renders the index page, or the JSON status for API clients.
func (ic *IngestController) respond(c *gin.Context, status int, errMsg string) {
	if wantsJSON(c) {
		if errMsg != "" {
			respondError(c, status, "", errMsg)
			return
		}
		ic.Status(c)
		return
	}
	c.HTML(status, "index.html", ic.page(c, errMsg))
}

// Index renders the upload page.
func (ic *IngestController) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", ic.page(c, ""))
}

// Status returns the controller state as JSON.
func (ic *IngestController) Status(c *gin.Context) {
	ic.mu.Lock()
	status := ic.statusLocked()
	ic.mu.Unlock()
	c.JSON(http.StatusOK, status)
}

// UploadTable parses the uploaded recommendations CSV and replaces the current table.
func (ic *IngestController) UploadTable(c *gin.Context) {
	file, header, err := c.Request.FormFile("csv_file")
	if err != nil {
		ic.respond(c, http.StatusBadRequest, "CSV file not provided")
		return
	}
	defer file.Close()

	if header.Size > maxTableFileSize {
		ic.respond(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", maxTableFileSize/(1024*1024)))
		return
	}

	table, err := importers.LoadTable(io.LimitReader(file, maxTableFileSize+1))
	if err != nil {
		ic.respond(c, http.StatusBadRequest, fmt.Sprintf("Failed to parse CSV: %v", err))
		return
	}

	ic.mu.Lock()
	if ic.running {
		ic.mu.Unlock()
		ic.respond(c, http.StatusConflict, "An ingestion run is in progress")
		return
	}
	ic.table = table
	ic.tableName = header.Filename
	ic.mu.Unlock()

	log.Printf("Loaded table %s with %d rows", header.Filename, table.Len())
	ic.respond(c, http.StatusOK, "")
}

// UploadImages extracts the uploaded zip archive into a fresh workspace,
// releasing the workspace of the previous archive.
func (ic *IngestController) UploadImages(c *gin.Context) {
	file, header, err := c.Request.FormFile("images_zip")
	if err != nil {
		ic.respond(c, http.StatusBadRequest, "Images archive not provided")
		return
	}
	defer file.Close()

	if header.Size > maxArchiveFileSize {
		ic.respond(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", maxArchiveFileSize/(1024*1024)))
		return
	}

	status, errMsg := ic.loadArchive(file, header.Size, header.Filename)
	ic.respond(c, status, errMsg)
}

func (ic *IngestController) loadArchive(archive io.ReaderAt, size int64, name string) (int, string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.running {
		return http.StatusConflict, "An ingestion run is in progress"
	}

	if err := ic.workspace.Release(); err != nil {
		log.Printf("Failed to release workspace: %v", err)
	}
	ic.workspace, ic.extraction, ic.archiveName = nil, nil, ""

	ws, err := images.NewWorkspace(ic.workspaceRoot)
	if err != nil {
		log.Printf("Failed to create workspace: %v", err)
		return http.StatusInternalServerError, "Failed to prepare image workspace"
	}

	extraction, err := images.Extract(archive, size, ws)
	if err != nil {
		if relErr := ws.Release(); relErr != nil {
			log.Printf("Failed to release workspace: %v", relErr)
		}
		return http.StatusBadRequest, fmt.Sprintf("Failed to read archive: %v", err)
	}

	ic.workspace, ic.extraction, ic.archiveName = ws, extraction, name
	log.Printf("Extracted %d images from %s (%d corrupted)", len(extraction.Files), name, len(extraction.Corrupt))
	return http.StatusOK, ""
}

// Close releases the current workspace.
func (ic *IngestController) Close() error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	err := ic.workspace.Release()
	ic.workspace, ic.extraction = nil, nil
	return err
}
