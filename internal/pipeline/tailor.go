// Package pipeline runs one CV tailoring request end to end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/constraints"
	"github.com/jonathan/cv-tailor/internal/convert"
	"github.com/jonathan/cv-tailor/internal/docx"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/types"
)

// DefaultTimeout is the wall-clock ceiling of one request.
const DefaultTimeout = 60 * time.Second

// DefaultOutputName is the file name stem of the tailored CV.
const DefaultOutputName = "Michael Novack CV"

// Step names reported through progress events
const (
	StepOpen    = "open_document"
	StepRewrite = "rewrite"
	StepPolish  = "polish"
	StepApply   = "apply"
	StepConvert = "convert"
)

// ProgressEvent represents a progress update during a tailoring run
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Rewriter produces and polishes tailored content. *rewriting.Generator implements it.
type Rewriter interface {
	Generate(ctx context.Context, cvText, jobDescription string) (*types.RewritePayload, error)
	Polish(ctx context.Context, payload *types.RewritePayload) (*types.RewritePayload, error)
}

// Options configures a Pipeline.
type Options struct {
	Timeout    time.Duration
	OutputName string
	SkipPolish bool
	Tailoring  tailoring.Options
}

// Pipeline tailors CV documents. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	rewriter  Rewriter
	converter convert.Converter
	opts      Options
}

// New creates a Pipeline.
func New(rewriter Rewriter, converter convert.Converter, opts Options) *Pipeline {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
	return &Pipeline{rewriter: rewriter, converter: converter, opts: opts}
}

// TailorRequest is the input of one tailoring run.
type TailorRequest struct {
	CV             []byte
	JobDescription string
	Format         convert.Format
	// OutputName overrides the configured file name stem.
	OutputName string
	OnProgress ProgressCallback
}

// TailorResult is the output of one tailoring run.
type TailorResult struct {
	RequestID   string
	Data        []byte
	ContentType string
	Extension   string
	Filename    string
	// Format is the format actually produced; it is DOCX when conversion fell back.
	Format             convert.Format
	ConversionFallback bool
	Payload            *types.RewritePayload
	Report             tailoring.Report
}

func (p *Pipeline) emit(req *TailorRequest, requestID, step, message string, content any) {
	if req.OnProgress != nil {
		req.OnProgress(ProgressEvent{
			Step:      step,
			Message:   message,
			RequestID: requestID,
			Content:   content,
		})
	}
}

// Tailor rewrites the CV in req for its job description and returns the document in the requested
// format. The CV is never returned partially edited: any fatal error yields no document. A failed
// polish pass keeps the unpolished content, and a failed conversion returns the tailored DOCX.
func (p *Pipeline) Tailor(ctx context.Context, req TailorRequest) (*TailorResult, error) {
	requestID := uuid.New().String()
	if len(req.CV) == 0 {
		return nil, ErrMissingCV
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, ErrMissingJobDescription
	}
	if req.Format == "" {
		req.Format = convert.FormatPDF
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	log.Printf("[TAILOR] %s: job description %d chars, CV %d bytes, format %s", requestID, len(req.JobDescription), len(req.CV), req.Format)

	doc, err := docx.Open(req.CV)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()
	cvText := doc.PlainText()
	p.emit(&req, requestID, StepOpen, fmt.Sprintf("Read CV: %d chars of text", len(cvText)), nil)

	payload, err := p.rewriter.Generate(ctx, cvText, req.JobDescription)
	if err != nil {
		return nil, timeoutOr(ctx, err)
	}
	p.emit(&req, requestID, StepRewrite, fmt.Sprintf("Generated %d tailored bullets", len(payload.Bullets)), payload)

	if !p.opts.SkipPolish {
		polished, polishErr := p.rewriter.Polish(ctx, payload)
		switch {
		case polishErr == nil:
			payload = polished
			p.emit(&req, requestID, StepPolish, "Polished tailored content", payload)
		case ctx.Err() != nil:
			return nil, timeoutOr(ctx, polishErr)
		default:
			log.Printf("[TAILOR] %s: polish failed, using unpolished content: %v", requestID, polishErr)
			p.emit(&req, requestID, StepPolish, "Polish failed, using unpolished content", nil)
		}
	}

	payload = constraints.EnforcePayload(payload, p.opts.Tailoring.Rules)
	body, report := tailoring.Apply(doc.Body(), cvText, payload, p.opts.Tailoring)
	doc.SetBody(body)
	tailored, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	p.emit(&req, requestID, StepApply, fmt.Sprintf("Applied %d substitutions, skipped %d", report.Applied(), report.Skipped()), report)

	result := &TailorResult{
		RequestID: requestID,
		Data:      tailored,
		Format:    convert.FormatDOCX,
		Payload:   payload,
		Report:    report,
	}

	if req.Format != convert.FormatDOCX {
		converted, convErr := p.converter.Convert(ctx, tailored, req.Format)
		switch {
		case convErr == nil:
			result.Data = converted
			result.Format = req.Format
			p.emit(&req, requestID, StepConvert, fmt.Sprintf("Converted to %s", req.Format), nil)
		case ctx.Err() != nil:
			return nil, timeoutOr(ctx, convErr)
		default:
			log.Printf("[CONVERT] %s: conversion to %s failed, returning docx: %v", requestID, req.Format, convErr)
			result.ConversionFallback = true
			p.emit(&req, requestID, StepConvert, "Conversion failed, returning DOCX", nil)
		}
	}

	name := req.OutputName
	if name == "" {
		name = p.opts.OutputName
	}
	result.ContentType = result.Format.ContentType()
	result.Extension = result.Format.Extension()
	result.Filename = name + result.Extension

	log.Printf("[TAILOR] %s: done, %s (%d bytes)", requestID, result.Filename, len(result.Data))
	return result, nil
}

// timeoutOr marks err as a timeout when ctx expired.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
