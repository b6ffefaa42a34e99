// Package server exposes a schema over HTTP: request bodies are validated on
// POST /validate, the JSON Schema projection is served on GET /schema and
// validation metrics on GET /metrics.
package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/middleware"
	"github.com/dcdncp/lightschema/source"
)

// Server holds the schema and its collaborators.
type Server struct {
	schema     lightschema.Schema
	logger     *slog.Logger
	registry   *prometheus.Registry
	sourceOpts []source.Option

	validations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry registers the metrics on reg and serves it on /metrics. The
// default is a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithSourceOptions overrides the request body decoding limits.
func WithSourceOptions(opts ...source.Option) Option {
	return func(s *Server) { s.sourceOpts = opts }
}

// New returns the HTTP handler serving schema.
func New(schema lightschema.Schema, opts ...Option) http.Handler {
	return NewServer(schema, opts...).Routes()
}

// NewServer builds a Server and registers its metrics.
func NewServer(schema lightschema.Schema, opts ...Option) *Server {
	s := &Server{
		schema:     schema,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry:   prometheus.NewRegistry(),
		sourceOpts: middleware.DefaultSourceOptions(),
	}
	for _, o := range opts {
		o(s)
	}
	s.validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lightschema_validations_total",
			Help: "Validated request bodies by outcome",
		},
		[]string{"outcome"},
	)
	s.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lightschema_validation_duration_seconds",
		Help:    "Time spent decoding and validating request bodies",
		Buckets: prometheus.DefBuckets,
	})
	s.registry.MustRegister(s.validations, s.duration)
	return s
}

// Routes wires the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	validate := middleware.Validate(s.schema,
		middleware.WithSourceOptions(s.sourceOpts...),
		middleware.WithObserver(s.observe),
	)
	r.With(validate).Post("/validate", s.handleValidate)
	r.Get("/schema", s.handleSchema)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	return r
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	v, _ := middleware.ValueFromContext(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"value": v})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	doc, err := lightschema.JSONSchema(s.schema)
	if err != nil {
		s.logger.Error("JSON Schema export failed", "error", err)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) observe(r *http.Request, o middleware.Outcome, d time.Duration) {
	s.validations.WithLabelValues(string(o)).Inc()
	s.duration.Observe(d.Seconds())
	s.logger.Debug("validate", "outcome", string(o), "content_type", r.Header.Get("Content-Type"), "duration", d)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
