package pipeline

import "errors"

var (
	// ErrMissingCV is returned when the request carries no CV document
	ErrMissingCV = errors.New("CV file is required")
	// ErrMissingJobDescription is returned when the request carries no job description
	ErrMissingJobDescription = errors.New("job description is required")
	// ErrTimeout is returned when a request exceeds its wall-clock ceiling
	ErrTimeout = errors.New("request timed out")
)
