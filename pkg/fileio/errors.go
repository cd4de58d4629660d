package fileio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotText reports content that is not UTF-8 text.
	ErrNotText = errors.New("fileio: content is not text")
	// ErrTooLarge reports content above the configured size limit.
	ErrTooLarge = errors.New("fileio: content exceeds size limit")
	// ErrHTTPDisabled is returned for URL sources when no HTTP client is configured.
	ErrHTTPDisabled = errors.New("fileio: http support disabled")
	// ErrUnsupportedSource is returned for unknown source kinds.
	ErrUnsupportedSource = errors.New("fileio: unsupported source kind")

	errNoUpload = errors.New("fileio: upload has no file header")
	errNoStream = errors.New("fileio: stream is nil")
)

// ReadError reports a failed read of a user-selected file.
type ReadError struct {
	Kind     SourceKind
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("fileio: read %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fileio: read %s %q: %v", e.Kind, e.Location, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func readError(src Source, err error) *ReadError {
	return &ReadError{Kind: src.Kind(), Location: src.Location(), Err: err}
}
