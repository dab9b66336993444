package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mrlokans/curator/internal/assethost"
	"github.com/mrlokans/curator/internal/audit"
	"github.com/mrlokans/curator/internal/config"
	"github.com/mrlokans/curator/internal/database"
	"github.com/mrlokans/curator/internal/images"
	"github.com/mrlokans/curator/internal/importers"
)

// ErrNoImages is returned when the archive holds no readable image.
var ErrNoImages = errors.New("no valid images in archive")

// IngestCommand runs the ingestion pipeline from the terminal.
type IngestCommand struct {
	CSVPath        string
	ImagesPath     string
	WorkDir        string
	DatabaseDriver string
	DatabaseDSN    string
	AuditDir       string
	Verbose        bool
	DryRun         bool

	cfg      *config.Config
	out      io.Writer
	uploader assethost.Uploader
}

// NewIngestCommand creates the command; cfg supplies flag defaults and the asset host settings.
func NewIngestCommand(cfg *config.Config) *IngestCommand {
	return &IngestCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *IngestCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)

	fs.StringVar(&cmd.CSVPath, "csv", "", "Path to the recommendations CSV file (required)")
	fs.StringVar(&cmd.ImagesPath, "images", "", "Path to the zip archive with the pictures (required)")
	fs.StringVar(&cmd.WorkDir, "workdir", cmd.cfg.Workspace.Dir, "Directory for extracted and resized images")
	fs.StringVar(&cmd.DatabaseDriver, "db-driver", string(cmd.cfg.Database.Driver), "Datastore driver: sqlite or mysql")
	fs.StringVar(&cmd.DatabaseDSN, "db", cmd.cfg.Database.DSN, "Datastore DSN (file path for sqlite)")
	fs.StringVar(&cmd.AuditDir, "audit", cmd.cfg.Audit.Dir, "Directory for run reports (empty disables them)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print progress after every row")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate rows and match pictures without uploading or writing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s ingest -csv <path> -images <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create recommendations from a CSV table and a zip archive of pictures.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ingest -csv recs.csv -images pictures.zip\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Check a batch before ingesting it:\n")
		fmt.Fprintf(os.Stderr, "  %s ingest -csv recs.csv -images pictures.zip -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.CSVPath == "" {
		return fmt.Errorf("required flag -csv not provided")
	}
	if cmd.ImagesPath == "" {
		return fmt.Errorf("required flag -images not provided")
	}

	switch config.DatabaseDriver(cmd.DatabaseDriver) {
	case config.DriverSQLite, config.DriverMySQL:
	default:
		return fmt.Errorf("unsupported -db-driver %q", cmd.DatabaseDriver)
	}

	return nil
}

func (cmd *IngestCommand) printf(format string, args ...any) {
	fmt.Fprintf(cmd.out, format, args...)
}

func (cmd *IngestCommand) Run() error {
	cmd.printf("Recommendation Ingest\n")
	cmd.printf("=====================\n")
	if cmd.DryRun {
		cmd.printf("DRY RUN MODE - No changes will be made\n\n")
	}

	file, err := os.Open(cmd.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}
	defer file.Close()

	table, err := importers.LoadTable(file)
	if err != nil {
		return fmt.Errorf("failed to parse table: %w", err)
	}
	cmd.printf("Table: %s (%d rows)\n", cmd.CSVPath, table.Len())

	ws, err := images.NewWorkspace(cmd.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer ws.Release()

	extraction, err := images.ExtractFile(cmd.ImagesPath, ws)
	if err != nil {
		return err
	}
	cmd.printf("Archive: %s (%d images)\n", cmd.ImagesPath, len(extraction.Files))
	for _, warning := range extraction.Warnings() {
		cmd.printf("  [WARN] %s\n", warning)
	}
	if len(extraction.Files) == 0 {
		return ErrNoImages
	}

	if cmd.DryRun {
		return cmd.dryRun(table, extraction.Files)
	}

	return cmd.ingest(table, ws, extraction.Files)
}

// autoMigrate follows the configured setting only while the driver matches the
// configured one. A driver chosen on the command line creates its table only for sqlite.
func (cmd *IngestCommand) autoMigrate() bool {
	driver := config.DatabaseDriver(cmd.DatabaseDriver)
	if driver == cmd.cfg.Database.Driver {
		return cmd.cfg.Database.AutoMigrate
	}
	return driver == config.DriverSQLite
}

func (cmd *IngestCommand) ingest(table *importers.Table, ws *images.Workspace, files []string) error {
	handle := database.NewHandle(config.Database{
		Driver:      config.DatabaseDriver(cmd.DatabaseDriver),
		DSN:         cmd.DatabaseDSN,
		AutoMigrate: cmd.autoMigrate(),
	})
	defer handle.Close()

	uploader := cmd.uploader
	if uploader == nil {
		uploader = assethost.NewCloudinaryClientFromConfig(cmd.cfg.AssetHost)
	}

	var auditor *audit.Auditor
	if cmd.AuditDir != "" {
		auditor = audit.NewAuditor(cmd.AuditDir)
	}
	recorder := auditor.Begin(audit.SourceCLI, cmd.CSVPath, cmd.ImagesPath)

	pipeline := importers.NewPipeline(handle, handle, images.NewProcessor(ws, uploader))
	reporter := importers.ReporterFunc(func(result importers.RowResult, done, total int) {
		recorder.RowProcessed(result, done, total)
		switch {
		case result.Success():
			cmd.printf("  [OK] %s\n", result.Message)
		case result.Message != "":
			cmd.printf("  [SKIP] %s\n", result.Message)
		}
		if cmd.Verbose {
			cmd.printf("  ... %d/%d\n", done, total)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.printf("\nCreating recommendations...\n")
	summary, runErr := pipeline.Run(ctx, table, files, reporter)

	report, err := recorder.Finish(summary, runErr)
	if err != nil {
		cmd.printf("Failed to save run report: %v\n", err)
	}

	cmd.printSummary(summary)
	if report != "" {
		cmd.printf("Report: %s\n", report)
	}

	if runErr != nil {
		return fmt.Errorf("ingestion aborted: %w", runErr)
	}

	cmd.printf("\nIngest complete!\n")
	return nil
}

func (cmd *IngestCommand) dryRun(table *importers.Table, files []string) error {
	validator := importers.NewValidator()
	var valid int

	for _, row := range table.Rows {
		rec, err := validator.Validate(row)
		if err != nil {
			var se *importers.SkipError
			if errors.As(err, &se) {
				cmd.printf("  [SKIP] %s\n", se.Reason)
			}
			continue
		}
		name, ok := images.FindImage(rec.Picture, files)
		if !ok {
			cmd.printf("  [SKIP] Invalid or missing picture path for %q, row number %d\n", rec.Title, rec.Index)
			continue
		}
		valid++
		if cmd.Verbose {
			cmd.printf("  [OK] %q (row %d) uses %s\n", rec.Title, rec.Index, name)
		}
	}

	cmd.printf("\n%d of %d rows are ready to ingest (duplicates are only detected in a real run).\n", valid, table.Len())
	cmd.printf("Dry run complete. Use without -dry-run to ingest.\n")
	return nil
}

func (cmd *IngestCommand) printSummary(s importers.Summary) {
	cmd.printf("\n=== Ingest Summary ===\n")
	cmd.printf("Rows processed: %d/%d\n", s.Processed, s.Total)
	cmd.printf("Inserted: %d\n", s.Inserted)
	cmd.printf("Skipped (invalid): %d\n", s.SkippedInvalid)
	cmd.printf("Skipped (duplicate): %d\n", s.SkippedDuplicate)
	cmd.printf("Skipped (no image): %d\n", s.SkippedNoImage)
	if s.NotWritten > 0 {
		cmd.printf("Not written: %d\n", s.NotWritten)
	}
}
