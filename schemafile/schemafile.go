// Package schemafile loads schema trees from declarative YAML or JSON
// definitions, so schemas can live next to the documents they check.
//
//	type: object
//	props:
//	  name: {type: string, min: 1}
//	  age:  {type: int, min: 0}
//	  tags: {type: array, item: {type: string}, max: 5}
//	  nick: {type: nullable, item: {type: string}}
//	  id:   {type: string, to: int}
package schemafile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/source"
	"github.com/dcdncp/lightschema/transform"
	"github.com/dcdncp/lightschema/validate"
)

// Definition is the declarative form of a schema node.
type Definition struct {
	Type    string                 `mapstructure:"type"`
	Message string                 `mapstructure:"message"`
	Value   any                    `mapstructure:"value"`
	Item    *Definition            `mapstructure:"item"`
	Items   []*Definition          `mapstructure:"items"`
	Props   map[string]*Definition `mapstructure:"props"`

	Min         *float64 `mapstructure:"min"`
	Max         *float64 `mapstructure:"max"`
	Expr        string   `mapstructure:"expr"`
	ExprMessage string   `mapstructure:"exprMessage"`
	To          string   `mapstructure:"to"`
}

// Error reports an invalid definition together with its JSON Pointer.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("schemafile: %s: %v", e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ErrUnknownType is wrapped when a definition names an unsupported type.
var ErrUnknownType = errors.New("unknown type")

// LoadFile reads a definition file (format by extension) and builds it.
func LoadFile(ctx context.Context, path string) (lightschema.Schema, error) {
	src, err := source.File(path, source.DisallowDuplicateKeys())
	if err != nil {
		return nil, err
	}
	return Load(ctx, src)
}

// Load decodes a definition from src and builds it.
func Load(ctx context.Context, src lightschema.Source) (lightschema.Schema, error) {
	raw, err := src.Decode(ctx)
	if err != nil {
		return nil, fmt.Errorf("schemafile: decode %s: %w", src.Format(), err)
	}
	def, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Build(def)
}

// Decode converts a decoded document into a Definition.
func Decode(raw any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &Error{Path: "/", Err: err}
	}
	return &def, nil
}

// Build turns a Definition into a schema tree. Refinements are applied in the
// order min, max, expr, to.
func Build(def *Definition) (lightschema.Schema, error) { return build(def, "") }

func build(def *Definition, path string) (lightschema.Schema, error) {
	if def == nil {
		return nil, &Error{Path: at(path), Err: errors.New("missing definition")}
	}
	s, err := buildBase(def, path)
	if err != nil {
		return nil, err
	}
	if def.Min != nil {
		s = validate.Min(s, *def.Min, def.Message)
	}
	if def.Max != nil {
		s = validate.Max(s, *def.Max, def.Message)
	}
	if def.Expr != "" {
		if s, err = validate.Expr(s, def.Expr, def.ExprMessage); err != nil {
			return nil, &Error{Path: at(path), Err: err}
		}
	}
	switch strings.ToLower(def.To) {
	case "":
	case "int":
		s = transform.ToInt(s, def.Message)
	case "string":
		s = transform.ToString(s, def.Message)
	default:
		return nil, &Error{Path: at(path), Err: fmt.Errorf("unknown transform %q", def.To)}
	}
	return s, nil
}

func buildBase(def *Definition, path string) (lightschema.Schema, error) {
	msg := def.Message
	switch strings.ToLower(def.Type) {
	case "literal":
		if def.Value == nil {
			return nil, &Error{Path: at(path), Err: errors.New("literal requires value")}
		}
		if !isPrimitive(def.Value) {
			return nil, &Error{Path: at(path), Err: fmt.Errorf("literal value must be a string, number or bool, got %T", def.Value)}
		}
		return lightschema.Literal(def.Value, msg), nil
	case "none", "null":
		return lightschema.None(msg), nil
	case "int", "integer":
		return lightschema.Int(msg), nil
	case "float", "number":
		return lightschema.Float(msg), nil
	case "string":
		return lightschema.String(msg), nil
	case "boolean", "bool":
		return lightschema.Boolean(msg), nil
	case "array":
		item, err := build(def.Item, path+"/item")
		if err != nil {
			return nil, err
		}
		return lightschema.Array(item, msg), nil
	case "nullable":
		item, err := build(def.Item, path+"/item")
		if err != nil {
			return nil, err
		}
		return lightschema.Nullable(item, msg), nil
	case "union", "tuple":
		items := make([]lightschema.Schema, 0, len(def.Items))
		for i, d := range def.Items {
			it, err := build(d, path+"/items/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		if strings.EqualFold(def.Type, "union") {
			return lightschema.Union(items, msg), nil
		}
		return lightschema.Tuple(items, msg), nil
	case "object":
		props := make(lightschema.Props, len(def.Props))
		for _, k := range slices.Sorted(maps.Keys(def.Props)) {
			p, err := build(def.Props[k], path+"/props/"+escape(k))
			if err != nil {
				return nil, err
			}
			props[k] = p
		}
		return lightschema.Object(props, msg), nil
	case "":
		return nil, &Error{Path: at(path), Err: errors.New("missing type")}
	}
	return nil, &Error{Path: at(path), Err: fmt.Errorf("%w %q", ErrUnknownType, def.Type)}
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	return lightschema.IsNumber(v)
}

func at(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(s string) string { return escaper.Replace(s) }
