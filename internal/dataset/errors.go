package dataset

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by every LoadError
var (
	ErrFileNotFound  = errors.New("input file not found")
	ErrMalformedCSV  = errors.New("malformed csv")
	ErrMissingColumn = errors.New("missing column")
)

// LoadError reports the dataset, file and position at which a load failed.
// Err always wraps one of ErrFileNotFound, ErrMalformedCSV or ErrMissingColumn.
type LoadError struct {
	Dataset string
	Path    string
	Line    int
	Column  string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s (%s)", e.Dataset, e.Path)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(dataset, path string, err error) *LoadError {
	return &LoadError{Dataset: dataset, Path: path, Err: err}
}
