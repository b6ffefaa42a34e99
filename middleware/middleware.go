// Package middleware validates HTTP request bodies against a schema before
// they reach a handler.
package middleware

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/source"
)

// Outcome classifies a validated request.
type Outcome string

const (
	OutcomeValid   Outcome = "valid"
	OutcomeInvalid Outcome = "invalid"
	OutcomeError   Outcome = "error"
)

// ctxKeyValue is the context key for the parsed body.
type ctxKeyValue struct{}

// ContextWithValue attaches a parsed body to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, boxed{v})
}

// ValueFromContext retrieves the parsed body stored by Validate.
func ValueFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyValue{})
	if v == nil {
		return nil, false
	}
	return v.(boxed).v, true
}

// boxed keeps a nil parse result distinguishable from a missing value.
type boxed struct{ v any }

// DefaultSourceOptions returns the decoding limits used for request bodies:
// duplicate keys are errors, nesting is capped at 64 and bodies at 1 MiB.
func DefaultSourceOptions() []source.Option {
	return []source.Option{
		source.DisallowDuplicateKeys(),
		source.MaxDepth(64),
		source.MaxBytes(1 << 20),
	}
}

// ErrorPayload shapes a failure payload for JSON responses.
func ErrorPayload(errs lightschema.Errors) map[string]any {
	if errs == nil {
		errs = lightschema.Messages{}
	}
	return map[string]any{"errors": errs, "issues": errs.Issues()}
}

// ErrUnsupportedMediaType is returned by SourceFor for unknown body types.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// SourceFor picks a decoder from the request Content-Type. An empty type is
// treated as JSON.
func SourceFor(r *http.Request, opts ...source.Option) (lightschema.Source, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return source.JSONReader(r.Body, opts...), nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, ErrUnsupportedMediaType
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return source.JSONReader(r.Body, opts...), nil
	case strings.HasSuffix(mt, "yaml"):
		return source.YAMLReader(r.Body, opts...), nil
	case strings.HasSuffix(mt, "msgpack"):
		return source.MsgPackReader(r.Body, opts...), nil
	}
	return nil, ErrUnsupportedMediaType
}

type config struct {
	sourceOpts []source.Option
	observe    func(r *http.Request, o Outcome, d time.Duration)
}

// Option configures Validate.
type Option func(*config)

// WithSourceOptions replaces DefaultSourceOptions.
func WithSourceOptions(opts ...source.Option) Option {
	return func(c *config) { c.sourceOpts = opts }
}

// WithObserver registers fn to be called once per request with its outcome.
func WithObserver(fn func(r *http.Request, o Outcome, d time.Duration)) Option {
	return func(c *config) { c.observe = fn }
}

// Validate decodes the request body, parses it against s and stores the
// parsed value in the request context. Undecodable bodies get 400 (415 for
// unknown media types) and validation failures 422 with ErrorPayload.
func Validate(s lightschema.Schema, opts ...Option) func(http.Handler) http.Handler {
	cfg := config{sourceOpts: DefaultSourceOptions()}
	for _, o := range opts {
		o(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			outcome := OutcomeError
			if cfg.observe != nil {
				defer func() { cfg.observe(r, outcome, time.Since(start)) }()
			}
			src, err := SourceFor(r, cfg.sourceOpts...)
			if err != nil {
				WriteJSON(w, http.StatusUnsupportedMediaType, map[string]any{"error": err.Error()})
				return
			}
			res, err := lightschema.ParseFrom(r.Context(), s, src)
			if err != nil {
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			v, valid := res.Get()
			if !valid {
				outcome = OutcomeInvalid
				WriteJSON(w, http.StatusUnprocessableEntity, ErrorPayload(res.ExpectFailure()))
				return
			}
			outcome = OutcomeValid
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}

// WriteJSON encodes body as the JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
