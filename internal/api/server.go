// Package api exposes the scan service over a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/insec/internal/api/middleware"
	"github.com/khanhnv2901/insec/internal/checker"
	"github.com/khanhnv2901/insec/internal/domain/scan"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

const maxRequestBodyBytes = 64 << 10

// Scanner runs one scan for a raw user-supplied URL or hostname.
type Scanner interface {
	Scan(ctx context.Context, rawInput string) (scan.Report, error)
}

// CacheInvalidator drops cached reports.
type CacheInvalidator interface {
	Enabled() bool
	Invalidate(host string) bool
}

// ScanRequest is the body of POST /api/v1/scan.
type ScanRequest struct {
	URL string `json:"url"`
}

type Config struct {
	Scanner     Scanner
	Cache       CacheInvalidator
	Logger      *zap.Logger
	CORSOrigins []string      // Allowed CORS origins (empty = allow all)
	RateLimit   int           // Requests per second per IP (0 = disabled)
	RateBurst   int           // Burst size for rate limiter
	TrustProxy  bool          // Key the rate limit on X-Forwarded-For (only behind a trusted proxy)
	ScanTimeout time.Duration // Upper bound for one scan request (0 = none)
}

type Server struct {
	cfg     Config
	mux     *http.ServeMux
	limiter *middleware.RateLimiter
	handler http.Handler
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	srv := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.TrustProxy),
	}
	srv.routes()

	// RequestID -> Logging -> RateLimit -> CORS -> Handler
	srv.handler = middleware.RequestID(
		srv.withLogging(
			srv.limiter.Middleware(srv.rejectRateLimited,
				middleware.CORS(cfg.CORSOrigins, srv.mux))))
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/scan", s.handleScan)
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/cache/", s.handleCache)

	// Unversioned alias kept for the browser front-end.
	s.mux.HandleFunc("/api/scan", s.handleScan)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Scanner == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("scanner not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ctx := r.Context()
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	report, err := s.cfg.Scanner.Scan(ctx, req.URL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, sharedErrors.ErrInvalidHost):
		s.writeError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// The client went away; nobody is left to read a response.
		s.requestLogger(r).Info("scan_aborted", zap.String("input", req.URL))
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, r, http.StatusGatewayTimeout, err)
	default:
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Cache == nil || !s.cfg.Cache.Enabled() {
		s.writeError(w, r, http.StatusNotFound, sharedErrors.ErrCacheDisabled)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/cache/")
	target, err := checker.NormalizeHost(raw)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if !s.cfg.Cache.Invalidate(target.Host()) {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("no cached report for %s", target.Host()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request, clientIP string) {
	s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
	s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		s.cfg.Logger.Info("http_request",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", lrw.bytesWritten),
		)
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	// Sanitize error messages to prevent information disclosure
	msg := err.Error()

	// For 5xx errors, return generic message and log details server-side
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error",
			zap.Error(err),
			zap.Int("status", status),
		)
		msg = http.StatusText(status)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger creates a logger with request context (request ID, method, path)
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	logger := s.cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}
