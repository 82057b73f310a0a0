package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/models"
	"github.com/bobmcallan/sectorlens/internal/portfolio"
)

const maxUploadBytes = 1 << 20 // 1MB portfolio CSV limit

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   common.GetFullVersion(),
		"uptime":    time.Since(s.app.StartupTime).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleAnalyze accepts a portfolio CSV (multipart field "portfolio", or the
// raw request body) and runs the full analysis pipeline.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	csvReader, err := portfolioCSV(r)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "input_format")
		return
	}

	p, parseIssues, err := portfolio.LoadCSV(csvReader)
	if err != nil {
		var formatErr *models.InputFormatError
		if errors.As(err, &formatErr) {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "input_format")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts, err := analyzeOptions(r)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "input_format")
		return
	}

	report, err := s.app.Analyzer.Analyze(r.Context(), p, opts)
	if err != nil {
		var insufficientErr *models.InsufficientDataError
		switch {
		case errors.As(err, &insufficientErr):
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
		default:
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis error: %v", err))
		}
		return
	}

	// Surface rows rejected during CSV parsing alongside run-time issues.
	if len(parseIssues) > 0 {
		report.Issues = append(parseIssues, report.Issues...)
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleSectors returns the benchmark performance ranking on its own, for
// rendering the sector table before a portfolio is uploaded.
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts, err := analyzeOptions(r)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "input_format")
		return
	}

	benchmarks, err := s.app.Analyzer.SectorPerformance(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Benchmark error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"benchmarks": benchmarks,
	})
}

// portfolioCSV extracts the uploaded CSV: the "portfolio" multipart field
// when present, otherwise the raw request body.
func portfolioCSV(r *http.Request) (io.Reader, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, &models.InputFormatError{Msg: "invalid multipart form: " + err.Error()}
		}
		file, _, err := r.FormFile("portfolio")
		if err != nil {
			return nil, &models.InputFormatError{Msg: "missing portfolio file field"}
		}
		return file, nil
	}

	if r.Body == nil {
		return nil, &models.InputFormatError{Msg: "empty request body"}
	}
	return io.LimitReader(r.Body, maxUploadBytes), nil
}

// analyzeOptions reads the optional from/to window from query parameters.
func analyzeOptions(r *http.Request) (interfaces.AnalyzeOptions, error) {
	var opts interfaces.AnalyzeOptions

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return opts, &models.InputFormatError{Msg: "invalid from date: " + from}
		}
		opts.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return opts, &models.InputFormatError{Msg: "invalid to date: " + to}
		}
		opts.To = t
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && !opts.From.Before(opts.To) {
		return opts, &models.InputFormatError{Msg: "from date must precede to date"}
	}

	return opts, nil
}
