package source

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/dcdncp/lightschema"
)

// JSONBytes returns a Source decoding b as JSON. Numbers are kept as
// encoding/json.Number so integer precision survives until Parse.
func JSONBytes(b []byte, opts ...Option) lightschema.Source {
	return JSONReader(bytes.NewReader(b), opts...)
}

// JSONReader returns a Source decoding a single JSON document from r.
func JSONReader(r io.Reader, opts ...Option) lightschema.Source {
	return newSource(FormatJSON, r, decodeJSON, opts)
}

type jsonDecoder struct {
	ctx context.Context
	dec *json.Decoder
	opt options
}

func decodeJSON(ctx context.Context, r io.Reader, o options) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	d := &jsonDecoder{ctx: ctx, dec: dec, opt: o}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrTrailingData
		}
		return nil, err
	}
	return v, nil
}

func (d *jsonDecoder) value(tok any, path string, depth int) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object(path, depth+1)
		case '[':
			return d.array(path, depth+1)
		}
		return nil, fmt.Errorf("unexpected %q at %s", rune(t), rootPath(path))
	case json.Number:
		return stdjson.Number(t), nil
	case float64:
		return t, nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected token %T at %s", tok, rootPath(path))
}

func (d *jsonDecoder) enter(path string, depth int) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}
	if d.opt.maxDepth > 0 && depth > d.opt.maxDepth {
		return &pathError{Path: rootPath(path), Err: ErrMaxDepth}
	}
	return nil
}

func (d *jsonDecoder) object(path string, depth int) (any, error) {
	if err := d.enter(path, depth); err != nil {
		return nil, err
	}
	m := make(map[string]any)
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s", rootPath(path))
		}
		kpath := joinPointer(path, key)
		if _, dup := m[key]; dup && d.opt.rejectDupKey {
			return nil, &pathError{Path: kpath, Err: ErrDuplicateKey}
		}
		vt, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt, kpath, depth)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *jsonDecoder) array(path string, depth int) (any, error) {
	if err := d.enter(path, depth); err != nil {
		return nil, err
	}
	arr := make([]any, 0)
	for i := 0; ; i++ {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, joinPointer(path, fmt.Sprint(i)), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
