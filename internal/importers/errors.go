package importers

import (
	"errors"
	"fmt"
)

// SkipKind classifies why a row was not ingested.
type SkipKind string

const (
	MissingField    SkipKind = "missing_field"
	MalformedURL    SkipKind = "malformed_url"
	AllFieldsEmpty  SkipKind = "all_fields_empty"
	UnknownCategory SkipKind = "unknown_category"
	DuplicateTitle  SkipKind = "duplicate_title"
	ImageNotFound   SkipKind = "image_not_found"
	UploadFailure   SkipKind = "upload_failure"
	LookupFailure   SkipKind = "lookup_failure"
)

// SkipError is a recoverable row-level failure. The batch continues.
type SkipError struct {
	Kind   SkipKind
	Row    int
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func skip(kind SkipKind, row int, format string, args ...any) *SkipError {
	return &SkipError{Kind: kind, Row: row, Reason: fmt.Sprintf(format, args...)}
}

// SkipKindOf returns the kind of a *SkipError, or "" for other errors.
func SkipKindOf(err error) SkipKind {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
