package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dcdncp/lightschema"
)

// DuplicateKeyError reports a duplicate YAML mapping key with both the first
// and the repeated position. It wraps ErrDuplicateKey.
type DuplicateKeyError struct {
	Path      string
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// YAMLBytes returns a Source decoding the first YAML document in b.
func YAMLBytes(b []byte, opts ...Option) lightschema.Source {
	return YAMLReader(bytes.NewReader(b), opts...)
}

// YAMLReader returns a Source decoding the first YAML document from r.
// Scalars become string, bool, int64, float64 or nil; mappings become
// map[string]any and sequences []any.
func YAMLReader(r io.Reader, opts ...Option) lightschema.Source {
	return newSource(FormatYAML, r, decodeYAML, opts)
}

// YAMLDocuments decodes every document of a multi-document YAML stream.
func YAMLDocuments(ctx context.Context, r io.Reader, opts ...Option) ([]any, error) {
	o := newOptions(opts)
	dec := yaml.NewDecoder(r)
	var out []any
	for {
		v, err := nextYAML(ctx, dec, o)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

func decodeYAML(ctx context.Context, r io.Reader, o options) (any, error) {
	v, err := nextYAML(ctx, yaml.NewDecoder(r), o)
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return v, err
}

func nextYAML(ctx context.Context, dec *yaml.Decoder, o options) (any, error) {
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	c := yamlConverter{ctx: ctx, opt: o}
	return c.node(&root, "", 0)
}

type yamlConverter struct {
	ctx context.Context
	opt options
}

func (c yamlConverter) node(n *yaml.Node, path string, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.node(n.Content[0], path, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return c.node(n.Alias, path, depth)
	case yaml.MappingNode:
		if err := c.enter(path, depth+1); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			kpath := joinPointer(path, key)
			if pos, dup := first[key]; dup && c.opt.rejectDupKey {
				return nil, &DuplicateKeyError{Path: kpath, Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := c.node(v, kpath, depth+1)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		if err := c.enter(path, depth+1); err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(n.Content))
		for i, el := range n.Content {
			v, err := c.node(el, joinPointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return nil, nil
}

func (c yamlConverter) enter(path string, depth int) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	if c.opt.maxDepth > 0 && depth > c.opt.maxDepth {
		return &pathError{Path: rootPath(path), Err: ErrMaxDepth}
	}
	return nil
}

func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64); err == nil {
			return i
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return math.Inf(1)
		case "-.inf":
			return math.Inf(-1)
		case ".nan":
			return math.NaN()
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64); err == nil {
			return f
		}
	}
	return n.Value
}
