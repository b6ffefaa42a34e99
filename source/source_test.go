package source_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/source"
)

func decode(t *testing.T, src lightschema.Source) any {
	t.Helper()
	v, err := src.Decode(context.Background())
	if err != nil {
		t.Fatalf("decode %s: %v", src.Format(), err)
	}
	return v
}

func TestJSONBytes_DecodesNumbersAsJSONNumber(t *testing.T) {
	v := decode(t, source.JSONBytes([]byte(`{"a":12345678901234567,"b":[1.5,true,null,"x"]}`)))
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("want map, got %T", v)
	}
	if n, ok := m["a"].(json.Number); !ok || n.String() != "12345678901234567" {
		t.Fatalf("a: got %#v", m["a"])
	}
	arr, ok := m["b"].([]any)
	if !ok || len(arr) != 4 {
		t.Fatalf("b: got %#v", m["b"])
	}
	if arr[1] != true || arr[2] != nil || arr[3] != "x" {
		t.Fatalf("b: got %#v", arr)
	}
}

func TestJSONBytes_DuplicateKeys(t *testing.T) {
	doc := []byte(`{"a":1,"a":2}`)
	v := decode(t, source.JSONBytes(doc))
	if got := v.(map[string]any)["a"].(json.Number).String(); got != "2" {
		t.Fatalf("last key should win, got %s", got)
	}
	_, err := source.JSONBytes(doc, source.DisallowDuplicateKeys()).Decode(context.Background())
	if !errors.Is(err, source.ErrDuplicateKey) {
		t.Fatalf("want ErrDuplicateKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "/a") {
		t.Fatalf("error should name the pointer: %v", err)
	}
}

func TestJSONBytes_Limits(t *testing.T) {
	ctx := context.Background()
	if _, err := source.JSONBytes([]byte(`[[[1]]]`), source.MaxDepth(2)).Decode(ctx); !errors.Is(err, source.ErrMaxDepth) {
		t.Fatalf("want ErrMaxDepth, got %v", err)
	}
	if _, err := source.JSONBytes([]byte(`[[1]]`), source.MaxDepth(2)).Decode(ctx); err != nil {
		t.Fatalf("depth 2 should pass: %v", err)
	}
	if _, err := source.JSONBytes([]byte(`"abcdef"`), source.MaxBytes(4)).Decode(ctx); !errors.Is(err, source.ErrMaxBytes) {
		t.Fatalf("want ErrMaxBytes, got %v", err)
	}
}

func TestJSONBytes_TrailingAndEmpty(t *testing.T) {
	ctx := context.Background()
	if _, err := source.JSONBytes([]byte(`1 2`)).Decode(ctx); err == nil {
		t.Fatalf("expected trailing data error")
	}
	if _, err := source.JSONBytes(nil).Decode(ctx); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestJSONBytes_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.JSONBytes([]byte(`{}`)).Decode(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestYAMLBytes_Scalars(t *testing.T) {
	doc := "name: ann\nage: 42\nratio: 0.5\nok: true\nnick: ~\ntags: [a, b]\n"
	v := decode(t, source.YAMLBytes([]byte(doc)))
	m := v.(map[string]any)
	if m["name"] != "ann" || m["age"] != int64(42) || m["ratio"] != 0.5 || m["ok"] != true || m["nick"] != nil {
		t.Fatalf("unexpected scalars: %#v", m)
	}
	if tags, ok := m["tags"].([]any); !ok || len(tags) != 2 || tags[0] != "a" {
		t.Fatalf("tags: %#v", m["tags"])
	}
}

func TestYAMLBytes_DuplicateKeyPositions(t *testing.T) {
	doc := "a: 1\nb: 2\na: 3\n"
	_, err := source.YAMLBytes([]byte(doc), source.DisallowDuplicateKeys()).Decode(context.Background())
	var dup *source.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("want DuplicateKeyError, got %v", err)
	}
	if dup.Key != "a" || dup.FirstLine != 1 || dup.Line != 3 || dup.Path != "/a" {
		t.Fatalf("unexpected positions: %+v", dup)
	}
	if !errors.Is(err, source.ErrDuplicateKey) {
		t.Fatalf("should wrap ErrDuplicateKey")
	}
}

func TestYAMLDocuments(t *testing.T) {
	docs, err := source.YAMLDocuments(context.Background(), strings.NewReader("a: 1\n---\n- x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 documents, got %d", len(docs))
	}
	if _, ok := docs[1].([]any); !ok {
		t.Fatalf("second document should be a sequence: %#v", docs[1])
	}
}

func TestMsgPackBytes(t *testing.T) {
	b, err := msgpack.Marshal(map[string]any{"n": 7, "s": "hi", "l": []any{1.5, nil}})
	if err != nil {
		t.Fatal(err)
	}
	v := decode(t, source.MsgPackBytes(b))
	m := v.(map[string]any)
	if !lightschema.IsNumber(m["n"]) || m["s"] != "hi" {
		t.Fatalf("unexpected map: %#v", m)
	}
	l, ok := m["l"].([]any)
	if !ok || len(l) != 2 || l[0] != 1.5 || l[1] != nil {
		t.Fatalf("l: %#v", m["l"])
	}
}

func TestMsgPackBytes_DuplicateKeys(t *testing.T) {
	// {"o": {"a": 1, "a": 2}} written by hand; encoders never repeat keys.
	doc := []byte{0x81, 0xa1, 'o', 0x82, 0xa1, 'a', 0x01, 0xa1, 'a', 0x02}

	v := decode(t, source.MsgPackBytes(doc))
	inner, ok := v.(map[string]any)["o"].(map[string]any)
	if !ok || len(inner) != 1 {
		t.Fatalf("unexpected value: %#v", v)
	}
	if n, _ := lightschema.ToFloat(inner["a"]); n != 2 {
		t.Fatalf("last key should win, got %#v", inner["a"])
	}

	_, err := source.MsgPackBytes(doc, source.DisallowDuplicateKeys()).Decode(context.Background())
	if !errors.Is(err, source.ErrDuplicateKey) {
		t.Fatalf("want ErrDuplicateKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "/o/a") {
		t.Fatalf("error should name the pointer: %v", err)
	}
}

func TestForFormatAndFile(t *testing.T) {
	if _, err := source.ForFormat("toml", strings.NewReader("")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	for path, want := range map[string]string{"a.json": "json", "a.YML": "yaml", "a.mpk": "msgpack"} {
		got, err := source.FormatForPath(path)
		if err != nil || got != want {
			t.Fatalf("%s: got %q, %v", path, got, err)
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte("x: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	src, err := source.File(path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Format() != source.FormatYAML {
		t.Fatalf("format: %s", src.Format())
	}
	if m := decode(t, src).(map[string]any); m["x"] != int64(1) {
		t.Fatalf("x: %#v", m["x"])
	}
}

func TestParseFrom_WithSource(t *testing.T) {
	s := lightschema.Object(lightschema.Props{"age": lightschema.Int()})
	r, err := lightschema.ParseFrom(context.Background(), s, source.JSONBytes([]byte(`{"age":30}`)))
	if err != nil {
		t.Fatal(err)
	}
	got := r.ExpectSuccess().(map[string]any)
	if got["age"] != int64(30) {
		t.Fatalf("age: %#v", got["age"])
	}

	_, err = lightschema.ParseFrom(context.Background(), s, source.JSONBytes([]byte(`{`)))
	if err == nil || !strings.HasPrefix(err.Error(), "decode json:") {
		t.Fatalf("want wrapped decode error, got %v", err)
	}
}
