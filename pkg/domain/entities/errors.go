package entities

import "fmt"

// FetchError reports that the catalog could not be retrieved from its source.
// StatusCode is the HTTP status when the source answered with a non-success
// status, and zero when the request itself failed.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("failed to fetch catalog from %s", e.Source)
	}
	return fmt.Sprintf("failed to fetch catalog from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports that the catalog document is not structurally valid
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid catalog document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
