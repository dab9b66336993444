package importers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/curator/internal/database"
	"github.com/mrlokans/curator/internal/entities"
	"github.com/mrlokans/curator/internal/images"
)

// DuplicateChecker looks up stored recommendations by title.
type DuplicateChecker interface {
	Exists(ctx context.Context, title string) (bool, error)
}

// RecommendationWriter persists a fully assembled recommendation.
type RecommendationWriter interface {
	Insert(ctx context.Context, rec *entities.Recommendation) (bool, error)
}

// ImageUploader finds the image referenced by a row among the extracted files,
// uploads it and returns its public URL.
type ImageUploader interface {
	ResolveAndUpload(ctx context.Context, imageRef string, known []string) (string, error)
}

// Outcome is the terminal state of a row.
type Outcome string

const (
	OutcomeInserted         Outcome = "inserted"
	OutcomeSkippedInvalid   Outcome = "skipped_invalid"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeSkippedNoImage   Outcome = "skipped_no_image"

	// OutcomeNotWritten marks a row whose insert failed or affected nothing.
	// It has no operator-facing message.
	OutcomeNotWritten Outcome = "not_written"
)

// RowResult describes what happened to one row.
type RowResult struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Err      error   `json:"-"`
}

// Success reports whether the row was inserted.
func (r RowResult) Success() bool {
	return r.Outcome == OutcomeInserted
}

// Summary counts row outcomes for a run.
type Summary struct {
	Total            int  `json:"total"`
	Processed        int  `json:"processed"`
	Inserted         int  `json:"inserted"`
	SkippedInvalid   int  `json:"skipped_invalid"`
	SkippedDuplicate int  `json:"skipped_duplicate"`
	SkippedNoImage   int  `json:"skipped_no_image"`
	NotWritten       int  `json:"not_written"`
	Aborted          bool `json:"aborted"`
}

func (s *Summary) add(r RowResult) {
	s.Processed++
	switch r.Outcome {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeSkippedInvalid:
		s.SkippedInvalid++
	case OutcomeSkippedDuplicate:
		s.SkippedDuplicate++
	case OutcomeSkippedNoImage:
		s.SkippedNoImage++
	case OutcomeNotWritten:
		s.NotWritten++
	}
}

// Reporter receives every row result as soon as the row is finished.
type Reporter interface {
	RowProcessed(result RowResult, done, total int)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(result RowResult, done, total int)

func (f ReporterFunc) RowProcessed(result RowResult, done, total int) {
	f(result, done, total)
}

// Pipeline ingests the rows of a table one at a time:
// validate → duplicate check → image upload → insert.
//
// Rows never affect each other except through the datastore: a row inserted
// earlier in the batch makes later rows with an overlapping title duplicates.
type Pipeline struct {
	validator *Validator
	checker   DuplicateChecker
	writer    RecommendationWriter
	images    ImageUploader
	now       func() time.Time
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(checker DuplicateChecker, writer RecommendationWriter, images ImageUploader) *Pipeline {
	return &Pipeline{
		validator: NewValidator(),
		checker:   checker,
		writer:    writer,
		images:    images,
		now:       time.Now,
	}
}

// SetClock overrides the time source used for visit and added dates.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Run processes every row of the table in order, calling reporter after each one.
//
// Row-level problems never stop the batch. The only fatal error is a datastore
// that cannot be reached; Run then returns the summary so far and the error.
func (p *Pipeline) Run(ctx context.Context, table *Table, imageFiles []string, reporter Reporter) (Summary, error) {
	summary := Summary{Total: table.Len()}
	if table == nil {
		return summary, nil
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			summary.Aborted = true
			return summary, err
		}

		result, err := p.ProcessRow(ctx, row, imageFiles)
		if err != nil {
			log.Printf("Ingestion aborted at row %d: %v", row.Index, err)
			summary.Aborted = true
			return summary, err
		}

		summary.add(result)
		if reporter != nil {
			reporter.RowProcessed(result, i+1, summary.Total)
		}
	}

	return summary, nil
}

// ProcessRow runs a single row through the pipeline. The returned error is
// non-nil only when the datastore is unavailable.
func (p *Pipeline) ProcessRow(ctx context.Context, row entities.SourceRow, imageFiles []string) (RowResult, error) {
	result := RowResult{Index: row.Index, Title: row.Title}

	rec, err := p.validator.Validate(row)
	if err != nil {
		return rowSkipped(result, OutcomeSkippedInvalid, err), nil
	}
	result.Title = rec.Title

	exists, err := p.checker.Exists(ctx, rec.Title)
	if err != nil {
		if errors.Is(err, database.ErrUnavailable) {
			return result, err
		}
		return rowSkipped(result, OutcomeSkippedInvalid, skip(LookupFailure, row.Index,
			"Could not check %q for duplicates: %v, row number %d", rec.Title, err, row.Index)), nil
	}
	if exists {
		return rowSkipped(result, OutcomeSkippedDuplicate, skip(DuplicateTitle, row.Index,
			"Recommendation with title: %q already exists, row number %d", rec.Title, row.Index)), nil
	}

	imageURL, err := p.images.ResolveAndUpload(ctx, rec.Picture, imageFiles)
	if err != nil || imageURL == "" {
		return rowSkipped(result, OutcomeSkippedNoImage, imageSkip(rec, err)), nil
	}
	result.ImageURL = imageURL

	inserted, err := p.writer.Insert(ctx, buildRecommendation(rec, imageURL, p.now()))
	if err != nil && errors.Is(err, database.ErrUnavailable) {
		return result, err
	}
	if err != nil || !inserted {
		// Failed inserts stay silent for the operator.
		log.Printf("Recommendation %q (row %d) was not written: %v", rec.Title, row.Index, err)
		result.Outcome = OutcomeNotWritten
		result.Err = err
		return result, nil
	}

	result.Outcome = OutcomeInserted
	result.Message = fmt.Sprintf("Recommendation with title: %q was added to the db, row number %d", rec.Title, row.Index)
	return result, nil
}

func rowSkipped(result RowResult, outcome Outcome, err error) RowResult {
	result.Outcome = outcome
	result.Err = err
	var se *SkipError
	if errors.As(err, &se) {
		result.Message = se.Reason
	} else {
		result.Message = err.Error()
	}
	return result
}

func imageSkip(rec ValidRecord, err error) *SkipError {
	if err == nil || errors.Is(err, images.ErrImageNotFound) {
		return skip(ImageNotFound, rec.Index,
			"Invalid or missing picture path for %q, row number %d", rec.Title, rec.Index)
	}
	log.Printf("Image upload failed for %q (row %d): %v", rec.Title, rec.Index, err)
	return skip(UploadFailure, rec.Index,
		"Failed to upload picture for %q, row number %d", rec.Title, rec.Index)
}

// buildRecommendation assembles the stored record. Every category except
// products carries a "<filter>, <country>" address.
func buildRecommendation(rec ValidRecord, imageURL string, now time.Time) *entities.Recommendation {
	address := ""
	if rec.Category.HasAddress() {
		address = rec.LinkedTo + ", " + rec.Country
	}

	return &entities.Recommendation{
		Title:             rec.Title,
		VisitDate:         now.Format(entities.VisitDateLayout),
		DateAdded:         now.Unix(),
		ItemID:            entities.DefaultItemID,
		UserID:            entities.DefaultUserID,
		Category:          rec.Category,
		SubCategory:       rec.SubCategory,
		ThemeName:         entities.DefaultThemeName,
		Type:              entities.DefaultType,
		ReviewerName:      rec.Author,
		ThumbnailPhotoURL: imageURL,
		URLLink:           rec.URL,
		Address:           address,
		FilterData:        rec.LinkedTo,
	}
}
