package assethost

import (
	"errors"
	"fmt"
)

// ErrMissingURL indicates the host accepted the upload but returned no URL
var ErrMissingURL = errors.New("asset host response has no secure_url")

// UploadError represents a non-2xx response from the asset host
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("asset host error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("asset host error: HTTP %d: %s", e.StatusCode, e.Message)
}
