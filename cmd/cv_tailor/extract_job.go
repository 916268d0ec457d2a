package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/observability"
)

var extractJobCmd = &cobra.Command{
	Use:   "extract-job",
	Short: "Fetch a job posting and print its text",
	Long:  "Fetches a job posting URL, strips navigation and markup, and prints the job description text or writes it to a file.",
	RunE:  runExtractJob,
}

var (
	extractJobURL        string
	extractJobOutputFile string
)

func init() {
	extractJobCmd.Flags().StringVarP(&extractJobURL, "url", "u", "", "URL of the job posting (required)")
	extractJobCmd.Flags().StringVarP(&extractJobOutputFile, "out", "o", "", "Path to write the job description (defaults to stdout)")

	if err := extractJobCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(extractJobCmd)
}

func runExtractJob(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := ingestion.ExtractJobDescription(cmd.Context(), extractJobURL, cfg.IngestionOptions())
	if err != nil {
		return fmt.Errorf("failed to extract job description: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintJobDescription(text)
	}

	if extractJobOutputFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(extractJobOutputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d chars to %s\n", len(text), extractJobOutputFile)
	return nil
}
