package models

import "fmt"

// ImportErrorKind is the fatal error taxonomy for the import pipeline.
type ImportErrorKind string

const (
	ErrFileNotFound     ImportErrorKind = "fileNotFound"
	ErrInvalidPackage   ImportErrorKind = "invalidPackage"
	ErrExtractionFailed ImportErrorKind = "extractionFailed"
	ErrMissingManifest  ImportErrorKind = "missingManifest"
	ErrParsingFailed    ImportErrorKind = "parsingFailed"
	ErrStorageError     ImportErrorKind = "storageError"
	ErrDownloadFailed   ImportErrorKind = "downloadFailed"
	ErrUserAborted      ImportErrorKind = "userAborted"
)

// ImportError is a fatal import outcome: a kind plus a reason suitable for
// user display. Wraps the underlying cause when there is one.
type ImportError struct {
	Kind   ImportErrorKind
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Err }

// NewImportError builds an ImportError with an optional cause.
func NewImportError(kind ImportErrorKind, reason string, cause error) *ImportError {
	return &ImportError{Kind: kind, Reason: reason, Err: cause}
}
