package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// gotenbergRoute is the LibreOffice conversion route of a Gotenberg server.
const gotenbergRoute = "/forms/libreoffice/convert"

// Gotenberg converts documents through a Gotenberg HTTP server.
type Gotenberg struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGotenberg returns a Gotenberg backend for baseURL.
func NewGotenberg(baseURL string, timeout time.Duration) *Gotenberg {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gotenberg{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Convert uploads docx and returns the PDF Gotenberg renders. Gotenberg only produces PDF.
func (g *Gotenberg) Convert(ctx context.Context, docx []byte, format Format) ([]byte, error) {
	switch format {
	case FormatDOCX:
		return docx, nil
	case FormatPDF:
	default:
		return nil, &Error{Backend: BackendGotenberg, Message: fmt.Sprintf("unsupported format %q", format)}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "document.docx")
	if err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "failed to build request", Cause: err}
	}
	if _, err := part.Write(docx); err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "failed to build request", Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "failed to build request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+gotenbergRoute, &body)
	if err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Backend: BackendGotenberg, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Backend: BackendGotenberg,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Output:  string(data),
		}
	}
	return data, nil
}
