package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/ingest"
	"spendlog/internal/report"
)

// ExpenseService is the slice of the expense orchestration layer the HTTP
// handlers need.
type ExpenseService interface {
	CreateFromText(ctx context.Context, rawText string) (core.ExpenseRecord, error)
	Get(ctx context.Context, id int64) (core.ExpenseRecord, error)
	List(ctx context.Context) ([]core.ExpenseRecord, error)
	ListByMonth(ctx context.Context, year, month int) ([]core.ExpenseRecord, error)
}

// ReportService resolves report requests and builds monthly summaries.
type ReportService interface {
	ResolveAndSummarize(ctx context.Context, text string, fetch report.FetchRecords) (report.MonthlySummary, error)
	Summarize(ctx context.Context, year, month int, fetch report.FetchRecords) (report.MonthlySummary, error)
}

// ReadyCheck reports whether a dependency is ready to serve.
type ReadyCheck func(ctx context.Context) error

// Options carries the optional collaborators of the server. Zero values mean
// the corresponding endpoint answers 501 (ingest adapters), the readiness
// check always passes, and the default POST rate limit applies.
type Options struct {
	Transcriber   ingest.Transcriber
	TextReader    ingest.TextReader
	ReadyCheck    ReadyCheck
	PostRateLimit int // mutating requests per client IP per minute
}

type Server struct {
	http.Server
	expenses    ExpenseService
	reports     ReportService
	transcriber ingest.Transcriber
	textReader  ingest.TextReader
	readyCheck  ReadyCheck
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, expenses ExpenseService, reports ReportService, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		expenses:    expenses,
		reports:     reports,
		transcriber: opts.Transcriber,
		textReader:  opts.TextReader,
		readyCheck:  opts.ReadyCheck,
		rateLimiter: newRateLimiter(opts.PostRateLimit),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/expenses", s.withMiddleware(s.handleExpenses))
	mux.HandleFunc("/expenses/audio", s.withMiddleware(s.handleCreateExpenseAudio))
	mux.HandleFunc("/expenses/image", s.withMiddleware(s.handleCreateExpenseImage))
	mux.HandleFunc("/expenses/", s.withMiddleware(s.handleGetExpense))
	mux.HandleFunc("/reports", s.withMiddleware(s.handleCreateReport))
	mux.HandleFunc("/summary", s.withMiddleware(s.handleSummary))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stopCleanup()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, request IDs, and
// request logging to responses.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID, "client_ip", clientIP, "url", r.URL.Path)
		}

		// Rate limit mutating requests; they reach the model backend.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		if err := s.readyCheck(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
