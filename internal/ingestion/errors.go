package ingestion

import "fmt"

// FetchError is returned when the job page cannot be retrieved.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch job posting %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ParseError is returned when the page was fetched but yields no usable text.
type ParseError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract job description from %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to extract job description from %s: %s", e.URL, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
