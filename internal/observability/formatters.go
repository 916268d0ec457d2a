// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow is the default number of text lines to display
	maxLinesToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens a line to fit inside a box, counting runes rather than bytes.
func clip(line string) string {
	if utf8.RuneCountInString(line) <= boxWidth-4 {
		return line
	}
	return string([]rune(line)[:boxWidth-7]) + "..."
}

// PrintJobDescription outputs the first lines of an extracted job description.
func (p *Printer) PrintJobDescription(text string) {
	if text == "" {
		return
	}

	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i >= maxLinesToShow {
			sb.WriteString(fmt.Sprintf("... and %d more lines", len(lines)-maxLinesToShow))
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("JOB DESCRIPTION (%d chars)", len(text)), strings.TrimRight(sb.String(), "\n"))
}

// PrintRewritePayload outputs the tailored content that will be written into the CV.
func (p *Printer) PrintRewritePayload(payload *types.RewritePayload) {
	if payload == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:   %s\n", payload.Title))
	sb.WriteString(fmt.Sprintf("Summary: %s\n", payload.Summary))
	sb.WriteString(fmt.Sprintf("Skills:  %s\n", payload.Skills))
	sb.WriteString(fmt.Sprintf("\nBullets (%d):\n", len(payload.Bullets)))
	for i, b := range payload.Bullets {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, b.Tailored))
		sb.WriteString(fmt.Sprintf("   was: %s\n", b.Original))
	}

	p.printBox("TAILORED CONTENT", strings.TrimRight(sb.String(), "\n"))
}

// PrintTailorReport outputs which substitutions were applied to the document.
func (p *Printer) PrintTailorReport(report tailoring.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied: %d  Skipped: %d\n", report.Applied(), report.Skipped()))
	for _, o := range report.Outcomes {
		mark := "✓"
		if !o.Applied {
			mark = "✗"
		}
		line := fmt.Sprintf("%s %s", mark, o.Kind)
		if o.Reason != "" {
			line += " (" + o.Reason + ")"
		}
		sb.WriteString(line + "\n")
	}

	p.printBox("SUBSTITUTIONS", strings.TrimRight(sb.String(), "\n"))
}
