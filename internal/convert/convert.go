// Package convert turns .docx documents into other formats.
package convert

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Format is an output format of the tailoring pipeline.
type Format string

// Supported formats
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Content types of the supported formats
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ParseFormat parses a user-supplied format; empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want pdf or docx)", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatDOCX {
		return ContentTypeDOCX
	}
	return ContentTypePDF
}

// Extension returns the file extension of f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Converter converts a .docx archive into format.
type Converter interface {
	Convert(ctx context.Context, docx []byte, format Format) ([]byte, error)
}

// Error is returned when a backend fails to convert a document.
type Error struct {
	Backend string
	Message string
	Output  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s conversion failed: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s conversion failed: %s", e.Backend, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Backend names
const (
	BackendLibreOffice = "libreoffice"
	BackendGotenberg   = "gotenberg"
)

// DefaultMaxConcurrent is the default number of conversions allowed at once.
const DefaultMaxConcurrent = 2

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 30 * time.Second

// Options selects and configures a backend.
type Options struct {
	Backend       string
	SofficePath   string
	GotenbergURL  string
	Timeout       time.Duration
	MaxConcurrent int64
}

// New returns the configured backend wrapped in a concurrency limit.
func New(opts Options) (*Limited, error) {
	var backend Converter
	switch opts.Backend {
	case BackendLibreOffice, "":
		backend = &LibreOffice{Path: opts.SofficePath, Timeout: opts.Timeout}
	case BackendGotenberg:
		if opts.GotenbergURL == "" {
			return nil, fmt.Errorf("gotenberg backend requires a URL")
		}
		backend = NewGotenberg(opts.GotenbergURL, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown converter backend %q", opts.Backend)
	}
	return NewLimited(backend, opts.MaxConcurrent), nil
}
