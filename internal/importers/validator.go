package importers

import (
	"strings"

	"github.com/mrlokans/curator/internal/entities"
)

// ValidRecord is a normalized row that passed validation.
type ValidRecord struct {
	Index       int
	Title       string
	URL         string
	Author      string
	Category    entities.Category
	SubCategory string
	LinkedTo    string
	Country     string
	Picture     string
}

// Validator normalizes rows and rejects the ones that cannot become a recommendation.
type Validator struct{}

// NewValidator creates a row validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate normalizes every field of the row and checks, in order: title and url
// present, url looks like a link, at least one descriptive field present, known
// category. The returned error is always a *SkipError.
func (v *Validator) Validate(row entities.SourceRow) (ValidRecord, error) {
	rec := ValidRecord{
		Index:       row.Index,
		Title:       normalize(row.Title),
		URL:         normalize(row.URL),
		Author:      normalize(row.Author),
		SubCategory: normalize(row.SubCategory),
		LinkedTo:    normalize(row.LinkedTo),
		Country:     normalize(row.Country),
		Picture:     normalize(row.Picture),
	}
	category := normalize(row.Category)

	if rec.Title == "" || rec.URL == "" {
		return ValidRecord{}, skip(MissingField, row.Index,
			"Missing title or url, row number %d", row.Index)
	}

	if !strings.Contains(rec.URL, "http") {
		return ValidRecord{}, skip(MalformedURL, row.Index,
			"Invalid url for %q, row number %d", rec.Title, row.Index)
	}

	if category == "" && rec.SubCategory == "" && rec.LinkedTo == "" &&
		rec.Country == "" && rec.Author == "" && rec.Picture == "" {
		return ValidRecord{}, skip(AllFieldsEmpty, row.Index,
			"No details provided for %q, row number %d", rec.Title, row.Index)
	}

	c, err := entities.ParseCategory(category)
	if err != nil {
		return ValidRecord{}, skip(UnknownCategory, row.Index,
			"Unknown category %q for %q, row number %d", category, rec.Title, row.Index)
	}
	rec.Category = c

	return rec, nil
}

// normalize trims a cell and maps spreadsheet placeholders for missing values to "".
func normalize(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "null":
		return ""
	}
	return s
}
