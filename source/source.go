// Package source decodes encoded documents (JSON, YAML, MessagePack) into
// the in-memory values lightschema.Parse checks. Every constructor returns a
// lightschema.Source; use lightschema.ParseFrom or call Decode directly.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dcdncp/lightschema"
)

// Sentinel errors for enforcement failures. Errors returned by Decode wrap
// them together with the JSON Pointer of the offending location.
var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrMaxDepth     = errors.New("max depth exceeded")
	ErrMaxBytes     = errors.New("max bytes exceeded")
	ErrTrailingData = errors.New("trailing data after document")
)

// Format names.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgPack = "msgpack"
)

type options struct {
	maxDepth     int
	maxBytes     int64
	rejectDupKey bool
}

// Option configures decoding limits.
type Option func(*options)

// MaxDepth limits container nesting; 0 disables the check.
func MaxDepth(n int) Option { return func(o *options) { o.maxDepth = n } }

// MaxBytes limits the encoded document size; 0 disables the check.
func MaxBytes(n int64) Option { return func(o *options) { o.maxBytes = n } }

// DisallowDuplicateKeys makes repeated object keys a decoding error. By
// default the last occurrence wins (JSON, MessagePack) as with
// encoding/json.
func DisallowDuplicateKeys() Option { return func(o *options) { o.rejectDupKey = true } }

func newOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type decodeFunc func(ctx context.Context, r io.Reader, o options) (any, error)

type readerSource struct {
	format string
	r      io.Reader
	opt    options
	decode decodeFunc
}

func (s *readerSource) Format() string { return s.format }

func (s *readerSource) Decode(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := s.r
	if s.opt.maxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, s.opt.maxBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > s.opt.maxBytes {
			return nil, ErrMaxBytes
		}
		r = bytes.NewReader(data)
	}
	return s.decode(ctx, r, s.opt)
}

func newSource(format string, r io.Reader, decode decodeFunc, opts []Option) lightschema.Source {
	return &readerSource{format: format, r: r, opt: newOptions(opts), decode: decode}
}

// ForFormat returns a Source for the named format ("json", "yaml",
// "msgpack").
func ForFormat(format string, r io.Reader, opts ...Option) (lightschema.Source, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSONReader(r, opts...), nil
	case FormatYAML, "yml":
		return YAMLReader(r, opts...), nil
	case FormatMsgPack, "mpk":
		return MsgPackReader(r, opts...), nil
	}
	return nil, fmt.Errorf("source: unsupported format %q", format)
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mpk":
		return FormatMsgPack, nil
	}
	return "", fmt.Errorf("source: cannot infer format of %q", path)
}

// File reads path and returns a Source for its format.
func File(path string, opts ...Option) (lightschema.Source, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ForFormat(format, bytes.NewReader(data), opts...)
}

// pathError attaches a JSON Pointer to an enforcement error.
type pathError struct {
	Path string
	Err  error
}

func (e *pathError) Error() string { return e.Err.Error() + " at " + e.Path }
func (e *pathError) Unwrap() error { return e.Err }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func rootPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
