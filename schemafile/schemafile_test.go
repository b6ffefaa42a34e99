package schemafile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/schemafile"
	"github.com/dcdncp/lightschema/source"
)

const personYAML = `
type: object
props:
  name: {type: string, min: 1}
  age:  {type: int, min: 0}
  tags: {type: array, item: {type: string}, max: 2}
  nick: {type: nullable, item: {type: string}}
  id:   {type: string, to: int}
  role: {type: union, items: [{type: literal, value: admin}, {type: literal, value: user}]}
`

func load(t *testing.T, doc string) lightschema.Schema {
	t.Helper()
	s, err := schemafile.Load(context.Background(), source.YAMLBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLoad_BuildsWorkingSchema(t *testing.T) {
	s := load(t, personYAML)
	r := lightschema.Parse(s, map[string]any{
		"name": "ann", "age": 3, "tags": []any{"a"}, "id": "42", "role": "user",
	})
	got := r.ExpectSuccess().(map[string]any)
	want := map[string]any{
		"name": "ann", "age": int64(3), "tags": []any{"a"}, "id": int64(42), "role": "user",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}
}

func TestLoad_RefinementsReportPerField(t *testing.T) {
	s := load(t, personYAML)
	r := lightschema.Parse(s, map[string]any{
		"name": "", "age": -1, "tags": []any{"a", "b", "c"}, "id": "x", "role": "root",
	})
	iss := r.ExpectFailure().Issues()
	paths := map[string]bool{}
	for _, it := range iss {
		paths[it.Path] = true
	}
	for _, p := range []string{"/name", "/age", "/tags", "/id", "/role"} {
		if !paths[p] {
			t.Fatalf("missing issue at %s: %v", p, iss)
		}
	}
}

func TestLoad_ExprAndMessage(t *testing.T) {
	s := load(t, `{"type":"int","expr":"value % 2 == 0","exprMessage":"must be even"}`)
	if !lightschema.Is(s, 4) {
		t.Fatalf("4 should pass")
	}
	msgs := lightschema.Parse(s, 3).ExpectFailure()
	if !reflect.DeepEqual(msgs, lightschema.Messages{"must be even"}) {
		t.Fatalf("got %#v", msgs)
	}
}

func TestBuild_ErrorsNamePointer(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{"unknown type", `{type: object, props: {a: {type: date}}}`, "/props/a"},
		{"missing item", `{type: array}`, "/item"},
		{"nested tuple", `{type: tuple, items: [{type: int}, {type: ""}]}`, "/items/1"},
		{"bad transform", `{type: string, to: bytes}`, "/"},
		{"bad expr", `{type: int, expr: "value +"}`, "/"},
		{"literal without value", `{type: literal}`, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schemafile.Load(context.Background(), source.YAMLBytes([]byte(tc.doc)))
			var se *schemafile.Error
			if !errors.As(err, &se) {
				t.Fatalf("want *schemafile.Error, got %v", err)
			}
			if se.Path != tc.path {
				t.Fatalf("path: got %q want %q", se.Path, tc.path)
			}
		})
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := schemafile.Decode(map[string]any{"type": "int", "minimum": 1})
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestBuild_UnknownTypeSentinel(t *testing.T) {
	_, err := schemafile.Build(&schemafile.Definition{Type: "date"})
	if !errors.Is(err, schemafile.ErrUnknownType) {
		t.Fatalf("want ErrUnknownType, got %v", err)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	doc := `{"type":"object","props":{"age":{"type":"int","min":0,"max":150}}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := schemafile.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	r := lightschema.Parse(s, map[string]any{"age": 200})
	f, ok := r.ExpectFailure().(lightschema.Fields)
	if !ok {
		t.Fatalf("want Fields payload")
	}
	want := lightschema.Messages{"Number must be less than or equal to 150"}
	if !reflect.DeepEqual(f["age"], want) {
		t.Fatalf("got %#v", f["age"])
	}
}
