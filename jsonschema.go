package lightschema

import (
	"fmt"
	"math"

	js "github.com/dcdncp/lightschema/jsonschema"
)

// JSONSchema projects s into a JSON Schema document describing the values
// Parse accepts. Refinements contribute only what their Rule declares;
// transforms are described by their source schema.
func JSONSchema(s Schema) (*js.Schema, error) {
	out, err := toJSONSchema(s)
	if err != nil {
		return nil, err
	}
	out = out.Clone()
	out.SchemaURI = js.Draft
	return out, nil
}

func toJSONSchema(s Schema) (*js.Schema, error) {
	switch s := s.(type) {
	case *LiteralSchema:
		return &js.Schema{Const: s.value}, nil
	case *NoneSchema:
		return &js.Schema{Type: "null"}, nil
	case *IntSchema:
		return &js.Schema{Type: "integer"}, nil
	case *FloatSchema:
		return &js.Schema{Type: "number"}, nil
	case *StringSchema:
		return &js.Schema{Type: "string"}, nil
	case *BooleanSchema:
		return &js.Schema{Type: "boolean"}, nil
	case *ArraySchema:
		item, err := toJSONSchema(s.item)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: item}, nil
	case *TupleSchema:
		out := &js.Schema{Type: "array", PrefixItems: make([]*js.Schema, 0, len(s.items))}
		for _, it := range s.items {
			is, err := toJSONSchema(it)
			if err != nil {
				return nil, err
			}
			out.PrefixItems = append(out.PrefixItems, is)
		}
		n := len(s.items)
		out.MinItems, out.MaxItems = &n, &n
		return out, nil
	case *UnionSchema:
		out := &js.Schema{AnyOf: make([]*js.Schema, 0, len(s.items))}
		for _, it := range s.items {
			is, err := toJSONSchema(it)
			if err != nil {
				return nil, err
			}
			out.AnyOf = append(out.AnyOf, is)
		}
		return out, nil
	case *ObjectSchema:
		out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(s.keys))}
		for _, k := range s.keys {
			ps, err := toJSONSchema(s.props[k])
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", k, err)
			}
			out.Properties[k] = ps
			if !s.Optional(k) {
				out.Required = append(out.Required, k)
			}
		}
		return out, nil
	case *NullableSchema:
		item, err := toJSONSchema(s.item)
		if err != nil {
			return nil, err
		}
		return &js.Schema{AnyOf: []*js.Schema{item, {Type: "null"}}}, nil
	case *ValidationSchema:
		item, err := toJSONSchema(s.item)
		if err != nil {
			return nil, err
		}
		if s.rule == nil {
			return item, nil
		}
		out := item.Clone()
		applyRule(out, *s.rule)
		return out, nil
	case *TransformSchema:
		return toJSONSchema(s.from)
	}
	return nil, fmt.Errorf("lightschema: unsupported schema type %T", s)
}

// applyRule maps the built-in min/max/expr rules onto keywords matching the
// type already present on out.
func applyRule(out *js.Schema, r Rule) {
	switch r.Name {
	case "min", "max":
		n, ok := ToFloat(r.Params["n"])
		if !ok {
			return
		}
		isMin := r.Name == "min"
		switch out.Type {
		case "integer", "number":
			if isMin {
				out.Minimum = &n
			} else {
				out.Maximum = &n
			}
		case "string":
			l := lengthBound(n, isMin)
			if isMin {
				out.MinLength = &l
			} else {
				out.MaxLength = &l
			}
		case "array":
			l := lengthBound(n, isMin)
			if isMin {
				out.MinItems = &l
			} else {
				out.MaxItems = &l
			}
		}
	case "expr":
		if e, ok := r.Params["expr"].(string); ok {
			out.Description = "must satisfy: " + e
		}
	}
}

// lengthBound converts a numeric bound to the tightest integer length bound.
func lengthBound(n float64, isMin bool) int {
	if isMin {
		return int(math.Ceil(n))
	}
	return int(math.Floor(n))
}
