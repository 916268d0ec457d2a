package convert

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultSofficePath is looked up on PATH when LibreOffice.Path is empty.
const DefaultSofficePath = "soffice"

// LibreOffice converts documents by running soffice in headless mode.
type LibreOffice struct {
	Path    string
	Timeout time.Duration
}

// Convert writes docx to a scratch directory and has soffice convert it there. Each call uses its own
// user profile directory so parallel runs do not contend for the profile lock.
func (l *LibreOffice) Convert(ctx context.Context, docx []byte, format Format) ([]byte, error) {
	if format == FormatDOCX {
		return docx, nil
	}

	path := l.Path
	if path == "" {
		path = DefaultSofficePath
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, &Error{
			Backend: BackendLibreOffice,
			Message: path + " not found. Please install LibreOffice",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "cv-convert-*")
	if err != nil {
		return nil, &Error{Backend: BackendLibreOffice, Message: "failed to create working directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	inPath := filepath.Join(workDir, "document.docx")
	if err := os.WriteFile(inPath, docx, 0o600); err != nil {
		return nil, &Error{Backend: BackendLibreOffice, Message: "failed to write input document", Cause: err}
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path,
		"-env:UserInstallation=file://"+filepath.ToSlash(filepath.Join(workDir, "profile")),
		"--headless",
		"--convert-to", string(format),
		"--outdir", workDir,
		inPath,
	)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()

	outPath := filepath.Join(workDir, "document."+string(format))
	data, err := os.ReadFile(outPath)
	if err != nil {
		cause := runErr
		if cause == nil {
			cause = err
		}
		return nil, &Error{
			Backend: BackendLibreOffice,
			Message: "output was not generated",
			Output:  output.String(),
			Cause:   cause,
		}
	}
	return data, nil
}
