package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-tailor/internal/convert"
	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Form fields of POST /api/tailor-cv
const (
	FieldJobDescription = "jobDescription"
	FieldCVFile         = "cvFile"
	FieldFormat         = "format"
)

// Error messages returned by the API
const (
	msgURLRequired       = "URL is required"
	msgFetchFailed       = "Failed to fetch job posting"
	msgExtractFailed     = "Failed to extract job description"
	msgMissingFields     = "Job description and CV file are required"
	msgTailorFailed      = "Failed to tailor CV"
	msgInvalidForm       = "Invalid multipart form"
	msgUploadTooLarge    = "Uploaded file is too large"
	msgUnsupportedFormat = "Unsupported output format"
)

var validate = validator.New()

// handleExtractJob fetches a job posting URL and returns its text.
func (s *Server) handleExtractJob(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, msgURLRequired)
		return
	}

	text, err := s.extractor(r.Context(), req.URL)
	if err != nil {
		log.Printf("[EXTRACT] Error extracting job description from %s: %v", req.URL, err)
		var fetchErr *ingestion.FetchError
		if errors.As(err, &fetchErr) {
			s.errorResponse(w, http.StatusBadRequest, msgFetchFailed)
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, msgExtractFailed)
		return
	}

	log.Printf("[EXTRACT] Extracted %d chars from %s", len(text), req.URL)
	s.jsonResponse(w, http.StatusOK, types.ExtractJobResponse{JobDescription: text})
}

// handleTailorCV tailors an uploaded CV to a job description and returns the document.
func (s *Server) handleTailorCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorDetailsResponse(w, http.StatusRequestEntityTooLarge, msgUploadTooLarge,
				fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
			return
		}
		s.errorDetailsResponse(w, http.StatusBadRequest, msgInvalidForm, err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	jobDescription := r.FormValue(FieldJobDescription)
	cv, filename, err := readUpload(r, FieldCVFile)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		s.errorDetailsResponse(w, http.StatusBadRequest, msgInvalidForm, err.Error())
		return
	}

	log.Printf("[TAILOR] Received job description: %s", yesNo(jobDescription != ""))
	log.Printf("[TAILOR] Received CV file: %s", orNo(filename))

	if strings.TrimSpace(jobDescription) == "" || len(cv) == 0 {
		s.errorDetailsResponse(w, http.StatusBadRequest, msgMissingFields,
			fmt.Sprintf("hasJob=%t hasFile=%t", jobDescription != "", len(cv) > 0))
		return
	}

	format, err := convert.ParseFormat(r.FormValue(FieldFormat))
	if err != nil {
		s.errorDetailsResponse(w, http.StatusBadRequest, msgUnsupportedFormat, err.Error())
		return
	}

	if s.pipeline == nil {
		err := &ErrNotConfigured{Message: missingKeyMessage(s.cfg)}
		s.errorResponse(w, HTTPStatus(err), err.Message)
		return
	}

	result, err := s.pipeline.Tailor(r.Context(), pipeline.TailorRequest{
		CV:             cv,
		JobDescription: jobDescription,
		Format:         format,
	})
	if err != nil {
		log.Printf("[TAILOR] Error tailoring CV: %v", err)
		s.errorDetailsResponse(w, HTTPStatus(err), msgTailorFailed, err.Error())
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Request-ID", result.RequestID)
	if result.ConversionFallback {
		w.Header().Set("X-Conversion-Fallback", "true")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		log.Printf("[TAILOR] %s: failed to write response: %v", result.RequestID, err)
	}
}

// readUpload returns the content and name of the uploaded file in field.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, header.Filename, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orNo(name string) string {
	if name == "" {
		return "No"
	}
	return name
}
