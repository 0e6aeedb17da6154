package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type Config struct {
	Addr string

	// RequestTimeout bounds one research request, batch included.
	RequestTimeout time.Duration

	// JSONLogs switches the request log to JSON lines.
	JSONLogs bool
}

type Server struct {
	cfg      Config
	pipeline input.ResearchPipeline
	metrics  http.Handler
	logger   output.LoggerPort
	router   chi.Router
}

func New(cfg Config, pipeline input.ResearchPipeline, metrics http.Handler, logger output.LoggerPort) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger.WithField("component", "http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	requestLog := httplog.NewLogger("research-agent", requestLogOptions(s.cfg))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(requestLog, []string{"/healthz", "/metrics"}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1/research", func(r chi.Router) {
		r.Post("/", s.handleResearch)
		r.Post("/batch", s.handleBatch)
	})

	return r
}

// requestLogOptions configures httplog, which is backed by zerolog.
func requestLogOptions(cfg Config) httplog.Options {
	return httplog.Options{
		JSON:     cfg.JSONLogs,
		Concise:  true,
		LogLevel: "info",
	}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type researchRequest struct {
	Query string `json:"query"`
}

type researchResponse struct {
	Query  string        `json:"query"`
	Report entity.Report `json:"report"`
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

type batchResponse struct {
	Reports map[string]entity.Report `json:"reports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	report, err := s.pipeline.Run(ctx, query)
	if err != nil {
		s.logger.Warn("Research request failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, researchResponse{Query: query, Report: report})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	queries := make([]string, 0, len(req.Queries))
	for _, q := range req.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("queries must contain at least one non-empty query"))
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	writeJSON(w, http.StatusOK, batchResponse{Reports: s.pipeline.RunBatch(ctx, queries)})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
