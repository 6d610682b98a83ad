package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/websearch/internal/model"
	"github.com/nao1215/websearch/internal/report"
	"github.com/nao1215/websearch/internal/search"
)

//go:embed templates/search.html
var templateFS embed.FS

var searchTemplate = template.Must(template.ParseFS(templateFS, "templates/search.html"))

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Searcher answers queries. *search.Scorer implements it.
type Searcher interface {
	Search(query string, opts search.Options) ([]model.Result, error)
	DocumentCount() int
}

// Server is the HTTP front end of a loaded index.
type Server struct {
	searcher Searcher
	defaults search.Options
	limiter  *rate.Limiter
	logger   *slog.Logger
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaults sets the search options used for absent parameters.
func WithDefaults(opts search.Options) Option {
	return func(s *Server) {
		s.defaults = opts
	}
}

// WithRateLimit limits all routes to rps requests per second with the
// given burst. A zero rps disables limiting. A burst below 1 is raised to
// ceil(rps), and at least 1.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = max(1, int(math.Ceil(rps)))
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a Server answering queries with searcher.
func New(searcher Searcher, opts ...Option) *Server {
	s := &Server{
		searcher: searcher,
		defaults: search.DefaultOptions(),
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/search", s.handleAPISearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.handler = s.logRequests(s.limit(mux))

	return s
}

// Handler returns the root handler with rate limiting and request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving", "address", ln.Addr().String(), "documents", s.searcher.DocumentCount())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pageData is the template input of the search page.
type pageData struct {
	Query     string
	W1, W2    float64
	Normalize bool
	Limit     int
	MaxLimit  int
	Results   []model.Result
	Error     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query(), s.defaults)
	data := pageData{
		Query:     req.Query,
		W1:        req.W1,
		W2:        req.W2,
		Normalize: req.Opts.NormalizePageRank,
		Limit:     req.Opts.Limit,
		MaxLimit:  MaxResultLimit,
	}

	status := http.StatusOK
	switch {
	case err != nil:
		status = http.StatusBadRequest
		data.Error = err.Error()
	case req.Query != "":
		data.Results, err = s.searcher.Search(req.Query, req.Opts)
		if err != nil {
			s.logger.Error("search failed", "error", err)
			status = http.StatusInternalServerError
			data.Error = "search failed"
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := searchTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query(), s.defaults)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var results []model.Result
	if req.Query != "" {
		results, err = s.searcher.Search(req.Query, req.Opts)
		if err != nil {
			s.logger.Error("search failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	}

	s.writeJSON(w, http.StatusOK, report.NewSearchResponse(req.Query, results))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.searcher.DocumentCount(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// limit rejects requests once the shared token bucket is empty.
func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
