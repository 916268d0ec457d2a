package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/convert"
	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/observability"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/tailoring"
	"github.com/jonathan/cv-tailor/internal/types"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a CV to a job description",
	Long:  "Rewrites the CV for the job description with the configured model and writes the tailored document. The job description is read from a file or fetched from a posting URL.",
	RunE:  runTailor,
}

var (
	tailorCVFile     string
	tailorJobFile    string
	tailorJobURL     string
	tailorFormat     string
	tailorOutputFile string
	tailorName       string
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorCVFile, "cv", "c", "", "Path to the CV .docx file (required)")
	tailorCmd.Flags().StringVarP(&tailorJobFile, "job", "j", "", "Path to a plain text job description")
	tailorCmd.Flags().StringVarP(&tailorJobURL, "job-url", "u", "", "URL of a job posting to fetch")
	tailorCmd.Flags().StringVarP(&tailorFormat, "format", "f", string(convert.FormatPDF), "Output format: pdf or docx")
	tailorCmd.Flags().StringVarP(&tailorOutputFile, "out", "o", "", "Output path (defaults to the configured output name in the current directory)")
	tailorCmd.Flags().StringVar(&tailorName, "name", "", "Output file name without extension (overrides OUTPUT_NAME)")

	if err := tailorCmd.MarkFlagRequired("cv"); err != nil {
		panic(fmt.Sprintf("failed to mark cv flag as required: %v", err))
	}
	tailorCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(tailorCmd)
}

// tailorInput is one offline tailoring run.
type tailorInput struct {
	CV             []byte
	JobDescription string
	Format         convert.Format
	OutputName     string
	OutputPath     string
}

func runTailor(cmd *cobra.Command, _ []string) error {
	if tailorJobFile == "" && tailorJobURL == "" {
		return fmt.Errorf("one of --job or --job-url is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := convert.ParseFormat(tailorFormat)
	if err != nil {
		return err
	}

	cv, err := os.ReadFile(tailorCVFile)
	if err != nil {
		return fmt.Errorf("failed to read CV file: %w", err)
	}

	ctx := cmd.Context()
	jobDescription, err := readJobDescription(ctx, cfg)
	if err != nil {
		return err
	}

	settings, err := cfg.LLMSettings()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, settings, cfg.APIKey())
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return fmt.Errorf("%s environment variable is required", apiKeyEnv(cfg))
		}
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	converter, err := convert.New(cfg.ConverterOptions())
	if err != nil {
		return fmt.Errorf("failed to create converter: %w", err)
	}

	return tailorDocument(ctx, cmd.OutOrStdout(), cfg, cfg.NewGenerator(client), converter, tailorInput{
		CV:             cv,
		JobDescription: jobDescription,
		Format:         format,
		OutputName:     tailorName,
		OutputPath:     tailorOutputFile,
	})
}

// readJobDescription loads the job description from --job or fetches it from --job-url.
func readJobDescription(ctx context.Context, cfg *config.Config) (string, error) {
	if tailorJobFile != "" {
		content, err := os.ReadFile(tailorJobFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description file: %w", err)
		}
		return string(content), nil
	}

	text, err := ingestion.ExtractJobDescription(ctx, tailorJobURL, cfg.IngestionOptions())
	if err != nil {
		return "", fmt.Errorf("failed to extract job description: %w", err)
	}
	return text, nil
}

// tailorDocument runs the pipeline once and writes the result. When conversion falls back to DOCX
// the output path takes the .docx extension.
func tailorDocument(ctx context.Context, out io.Writer, cfg *config.Config, rewriter pipeline.Rewriter, converter convert.Converter, in tailorInput) error {
	p := pipeline.New(rewriter, converter, cfg.PipelineOptions())
	req := pipeline.TailorRequest{
		CV:             in.CV,
		JobDescription: in.JobDescription,
		Format:         in.Format,
		OutputName:     in.OutputName,
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(out)
		printer.PrintJobDescription(in.JobDescription)
		req.OnProgress = func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "[%s] %s\n", event.Step, event.Message)
			switch content := event.Content.(type) {
			case *types.RewritePayload:
				printer.PrintRewritePayload(content)
			case tailoring.Report:
				printer.PrintTailorReport(content)
			}
		}
	}

	result, err := p.Tailor(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to tailor CV: %w", err)
	}

	outputPath := in.OutputPath
	switch {
	case outputPath == "":
		outputPath = result.Filename
	case filepath.Ext(outputPath) != result.Extension:
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + result.Extension
	}
	if result.ConversionFallback {
		_, _ = fmt.Fprintf(out, "Warning: conversion to %s failed, wrote DOCX instead\n", in.Format)
	}

	outputDir := filepath.Dir(outputPath)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Wrote %s (%d bytes, request %s)\n", outputPath, len(result.Data), result.RequestID)
	return nil
}

// apiKeyEnv names the environment variable the selected provider reads its key from.
func apiKeyEnv(cfg *config.Config) string {
	if cfg.LLM.Provider == llm.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}
