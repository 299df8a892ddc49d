package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/extract"
	"spendlog/internal/llm"
	"spendlog/internal/report"
	"spendlog/internal/storage"
)

const maxBodyBytes = 64 * 1024

type textRequest struct {
	Text string `json:"text"`
}

type summaryRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type expenseResponse struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	RawText   string `json:"raw_text,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type categoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type summaryResponse struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Count      int                     `json:"count"`
	Total      string                  `json:"total"`
	Currency   string                  `json:"currency,omitempty"`
	Categories []categoryTotalResponse `json:"categories"`
	Narrative  string                  `json:"narrative,omitempty"`
	Rendered   string                  `json:"rendered"`
}

func toExpenseResponse(r core.ExpenseRecord) expenseResponse {
	resp := expenseResponse{
		ID:       r.ID,
		Date:     r.Date,
		Category: r.Category,
		Amount:   r.Amount.Format(""),
		Currency: r.Currency,
		RawText:  r.RawText,
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func toSummaryResponse(s report.MonthlySummary) summaryResponse {
	resp := summaryResponse{
		Year:       s.Year,
		Month:      s.Month,
		Count:      s.RecordCount,
		Total:      s.Total.Format(""),
		Currency:   s.Currency,
		Categories: make([]categoryTotalResponse, 0, len(s.Categories)),
		Narrative:  s.Narrative,
		Rendered:   s.Render(),
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, categoryTotalResponse{
			Category: c.Category,
			Total:    c.Total.Format(""),
		})
	}
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
		return
	}

	record, err := s.expenses.CreateFromText(r.Context(), text)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toExpenseResponse(record))
}

const maxUploadBytes = 10 << 20

// readUpload pulls the named multipart file out of the request. It writes the
// error response itself and reports ok=false when the upload is unusable.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (data []byte, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "multipart field '"+field+"' is required")
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read uploaded file")
		return nil, "", false
	}
	return data, header.Header.Get("Content-Type"), true
}

func (s *Server) handleCreateExpenseAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if s.transcriber == nil {
		respondError(w, http.StatusNotImplemented, "not_configured", "audio ingestion is not configured")
		return
	}

	audio, contentType, ok := readUpload(w, r, "audio")
	if !ok {
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio, contentType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transcription failed", "error", err)
		respondError(w, http.StatusBadGateway, "transcription_failed", "failed to transcribe audio")
		return
	}

	record, err := s.expenses.CreateFromText(r.Context(), text)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toExpenseResponse(record))
}

func (s *Server) handleCreateExpenseImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if s.textReader == nil {
		respondError(w, http.StatusNotImplemented, "not_configured", "image ingestion is not configured")
		return
	}

	image, contentType, ok := readUpload(w, r, "image")
	if !ok {
		return
	}

	text, err := s.textReader.ReadText(r.Context(), image, contentType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Text extraction from image failed", "error", err)
		respondError(w, http.StatusBadGateway, "text_extraction_failed", "failed to read text from image")
		return
	}

	record, err := s.expenses.CreateFromText(r.Context(), text)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toExpenseResponse(record))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var (
		records []core.ExpenseRecord
		err     error
	)

	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	if yearStr != "" || monthStr != "" {
		year, yerr := strconv.Atoi(yearStr)
		month, merr := strconv.Atoi(monthStr)
		if yerr != nil || merr != nil || month < 1 || month > 12 {
			respondError(w, http.StatusBadRequest, "invalid_request", "year and month query parameters must both be valid numbers")
			return
		}
		records, err = s.expenses.ListByMonth(r.Context(), year, month)
	} else {
		records, err = s.expenses.List(r.Context())
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toExpenseResponse(rec))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/expenses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid_request", "expense id must be a positive integer")
		return
	}

	record, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Get expense failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load expense")
		return
	}

	respondJSON(w, http.StatusOK, toExpenseResponse(record))
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
		return
	}

	summary, err := s.reports.ResolveAndSummarize(r.Context(), text, s.expenses.ListByMonth)
	if err != nil {
		if errors.Is(err, report.ErrNotAReport) {
			respondError(w, http.StatusUnprocessableEntity, "not_a_report", "text is not a report request")
			return
		}
		s.respondPipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}

	var req summaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Year < 2000 || req.Year > 2100 || req.Month < 1 || req.Month > 12 {
		respondError(w, http.StatusBadRequest, "invalid_request", "year must be in [2000, 2100] and month in [1, 12]")
		return
	}

	summary, err := s.reports.Summarize(r.Context(), req.Year, req.Month, s.expenses.ListByMonth)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// respondPipelineError maps pipeline failures to HTTP statuses: backend
// timeouts to 504, other backend failures to 502, validation failures to 422.
func (s *Server) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, llm.ErrBackendTimeout):
		slog.ErrorContext(ctx, "Model backend timeout", "error", err)
		respondError(w, http.StatusGatewayTimeout, "backend_timeout", "model backend did not respond in time")

	case errors.Is(err, llm.ErrBackendUnavailable), errors.Is(err, llm.ErrBackendProtocol):
		slog.ErrorContext(ctx, "Model backend failure", "error", err)
		respondError(w, http.StatusBadGateway, "backend_error", "model backend request failed")

	case errors.Is(err, extract.ErrNoJSON), errors.Is(err, extract.ErrMalformedJSON), errors.Is(err, extract.ErrMissingField):
		slog.WarnContext(ctx, "Extraction validation failed", "error", err)
		var parseErr *extract.ParseError
		if errors.As(err, &parseErr) {
			respondErrorRaw(w, http.StatusUnprocessableEntity, "extraction_failed", parseErr.Detail, parseErr.Raw)
			return
		}
		respondError(w, http.StatusUnprocessableEntity, "extraction_failed", err.Error())

	default:
		slog.ErrorContext(ctx, "Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "request failed")
	}
}
