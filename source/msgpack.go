package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dcdncp/lightschema"
)

// MsgPackBytes returns a Source decoding a MessagePack document from b.
func MsgPackBytes(b []byte, opts ...Option) lightschema.Source {
	return MsgPackReader(bytes.NewReader(b), opts...)
}

// MsgPackReader returns a Source decoding a MessagePack document from r.
// Integers decode as int64 or uint64, floats as float64, maps as
// map[string]any (non-string keys are rendered with fmt). Repeated keys
// follow DisallowDuplicateKeys like the JSON source.
func MsgPackReader(r io.Reader, opts ...Option) lightschema.Source {
	return newSource(FormatMsgPack, r, decodeMsgPack, opts)
}

func decodeMsgPack(ctx context.Context, r io.Reader, o options) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	dec.SetMapDecoder(decodeMsgPackMap)
	raw, err := dec.DecodeInterface()
	if err != nil {
		return nil, err
	}
	return normalizeMsgPack(ctx, raw, "", 0, o)
}

// msgpackMap keeps map entries in wire order, repeated keys included, so
// duplicates can be reported with their pointer during normalisation.
type msgpackMap struct {
	keys []string
	vals []any
}

func decodeMsgPackMap(d *msgpack.Decoder) (any, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	m := msgpackMap{keys: make([]string, 0, min(n, 64)), vals: make([]any, 0, min(n, 64))}
	for i := 0; i < n; i++ {
		k, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		v, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		m.keys = append(m.keys, msgpackKey(k))
		m.vals = append(m.vals, v)
	}
	return m, nil
}

func msgpackKey(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return fmt.Sprint(k)
}

func normalizeMsgPack(ctx context.Context, v any, path string, depth int, o options) (any, error) {
	switch t := v.(type) {
	case msgpackMap:
		if err := enterMsgPack(ctx, path, depth+1, o); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(t.keys))
		for i, k := range t.keys {
			kpath := joinPointer(path, k)
			if _, dup := out[k]; dup && o.rejectDupKey {
				return nil, &pathError{Path: kpath, Err: ErrDuplicateKey}
			}
			nv, err := normalizeMsgPack(ctx, t.vals[i], kpath, depth+1, o)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		if err := enterMsgPack(ctx, path, depth+1, o); err != nil {
			return nil, err
		}
		out := make([]any, len(t))
		for i, el := range t {
			nv, err := normalizeMsgPack(ctx, el, joinPointer(path, strconv.Itoa(i)), depth+1, o)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case []byte:
		return string(t), nil
	}
	return v, nil
}

func enterMsgPack(ctx context.Context, path string, depth int, o options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.maxDepth > 0 && depth > o.maxDepth {
		return &pathError{Path: rootPath(path), Err: ErrMaxDepth}
	}
	return nil
}
