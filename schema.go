package lightschema

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Kind identifies a schema variant.
type Kind int

const (
	KindLiteral Kind = iota
	KindNone
	KindInt
	KindFloat
	KindString
	KindBoolean
	KindArray
	KindUnion
	KindTuple
	KindObject
	KindNullable
	KindValidation
	KindTransform
)

var kindNames = [...]string{
	KindLiteral:    "literal",
	KindNone:       "none",
	KindInt:        "int",
	KindFloat:      "float",
	KindString:     "string",
	KindBoolean:    "boolean",
	KindArray:      "array",
	KindUnion:      "union",
	KindTuple:      "tuple",
	KindObject:     "object",
	KindNullable:   "nullable",
	KindValidation: "validation",
	KindTransform:  "transform",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Schema is an immutable description of an expected value shape. The set of
// implementations is closed; build schemas with the constructors in this
// package and in validate/ and transform/.
type Schema interface {
	Kind() Kind
	// Message returns the custom failure message, or "" for the default.
	Message() string
	schema()
}

// Validator refines an already type-checked value. It may return a
// different value (normalization) or fail with its own payload.
type Validator func(value any) Result[any, Errors]

// Transformer maps a value accepted by a transform's source schema to the
// shape of its target schema.
type Transformer func(value any) Result[any, Errors]

// Props declares the properties of an object schema.
type Props map[string]Schema

type base struct{ message string }

func (b base) Message() string { return b.message }
func (base) schema()           {}

func newBase(msg []string) base { return base{message: firstMessage(msg, "")} }

// LiteralSchema matches a single primitive value.
type LiteralSchema struct {
	base
	value any
}

func (*LiteralSchema) Kind() Kind { return KindLiteral }

// Value returns the literal.
func (s *LiteralSchema) Value() any { return s.value }

// NoneSchema matches absence.
type NoneSchema struct{ base }

func (*NoneSchema) Kind() Kind { return KindNone }

// IntSchema matches whole numbers.
type IntSchema struct{ base }

func (*IntSchema) Kind() Kind { return KindInt }

// FloatSchema matches any number.
type FloatSchema struct{ base }

func (*FloatSchema) Kind() Kind { return KindFloat }

// StringSchema matches strings.
type StringSchema struct{ base }

func (*StringSchema) Kind() Kind { return KindString }

// BooleanSchema matches booleans.
type BooleanSchema struct{ base }

func (*BooleanSchema) Kind() Kind { return KindBoolean }

// ArraySchema matches sequences whose elements all match Item.
type ArraySchema struct {
	base
	item Schema
}

func (*ArraySchema) Kind() Kind { return KindArray }

// Item returns the element schema.
func (s *ArraySchema) Item() Schema { return s.item }

// UnionSchema matches when any alternative matches; the first match wins.
type UnionSchema struct {
	base
	items []Schema
}

func (*UnionSchema) Kind() Kind { return KindUnion }

// Items returns a copy of the alternatives in declaration order.
func (s *UnionSchema) Items() []Schema { return slices.Clone(s.items) }

// TupleSchema matches fixed-length sequences element by element.
type TupleSchema struct {
	base
	items []Schema
}

func (*TupleSchema) Kind() Kind { return KindTuple }

// Items returns a copy of the positional schemas.
func (s *TupleSchema) Items() []Schema { return slices.Clone(s.items) }

// ObjectSchema matches keyed structures property by property.
type ObjectSchema struct {
	base
	props Props
	keys  []string
}

func (*ObjectSchema) Kind() Kind { return KindObject }

// Keys returns the declared property names in evaluation (sorted) order.
func (s *ObjectSchema) Keys() []string { return slices.Clone(s.keys) }

// Prop returns the schema declared for name.
func (s *ObjectSchema) Prop(name string) (Schema, bool) {
	p, ok := s.props[name]
	return p, ok
}

// Optional reports whether the property may be omitted, which is the case
// exactly when its schema is Nullable.
func (s *ObjectSchema) Optional(name string) bool {
	_, ok := s.props[name].(*NullableSchema)
	return ok
}

// NullableSchema accepts absence or a value matching Item.
type NullableSchema struct {
	base
	item Schema
}

func (*NullableSchema) Kind() Kind { return KindNullable }

// Item returns the wrapped schema.
func (s *NullableSchema) Item() Schema { return s.item }

// Rule describes a named refinement for introspection (JSON Schema export,
// diagnostics). It never influences parsing.
type Rule struct {
	Name   string
	Params map[string]any
}

// ValidationSchema runs a Validator after Item succeeds.
type ValidationSchema struct {
	base
	item      Schema
	validator Validator
	rule      *Rule
}

func (*ValidationSchema) Kind() Kind { return KindValidation }

// Item returns the base schema.
func (s *ValidationSchema) Item() Schema { return s.item }

// Rule returns the descriptive rule attached with WithRule, if any.
func (s *ValidationSchema) Rule() (Rule, bool) {
	if s.rule == nil {
		return Rule{}, false
	}
	return Rule{Name: s.rule.Name, Params: maps.Clone(s.rule.Params)}, true
}

// TransformSchema maps a value accepted by From through a Transformer. To
// documents the output shape; it is not re-validated at parse time.
type TransformSchema struct {
	base
	from        Schema
	to          Schema
	transformer Transformer
}

func (*TransformSchema) Kind() Kind { return KindTransform }

// From returns the source schema.
func (s *TransformSchema) From() Schema { return s.from }

// To returns the target schema.
func (s *TransformSchema) To() Schema { return s.to }

// Literal returns a schema matching exactly v, which must be a string, a
// bool or a number.
func Literal(v any, msg ...string) *LiteralSchema {
	switch v.(type) {
	case string, bool:
	default:
		if _, ok := toFloat(v); !ok {
			panic(fmt.Sprintf("lightschema: unsupported literal type %T", v))
		}
	}
	return &LiteralSchema{base: newBase(msg), value: v}
}

// None returns a schema matching only null-equivalent values.
func None(msg ...string) *NoneSchema { return &NoneSchema{base: newBase(msg)} }

// Int returns a schema matching whole numbers.
func Int(msg ...string) *IntSchema { return &IntSchema{base: newBase(msg)} }

// Float returns a schema matching any number.
func Float(msg ...string) *FloatSchema { return &FloatSchema{base: newBase(msg)} }

// String returns a schema matching strings.
func String(msg ...string) *StringSchema { return &StringSchema{base: newBase(msg)} }

// Boolean returns a schema matching booleans.
func Boolean(msg ...string) *BooleanSchema { return &BooleanSchema{base: newBase(msg)} }

// Array returns a schema matching sequences of item.
func Array(item Schema, msg ...string) *ArraySchema {
	mustSchema(item, "array item")
	return &ArraySchema{base: newBase(msg), item: item}
}

// Union returns a schema matching any of items, tried in order.
func Union(items []Schema, msg ...string) *UnionSchema {
	for i, it := range items {
		mustSchema(it, fmt.Sprintf("union item %d", i))
	}
	return &UnionSchema{base: newBase(msg), items: slices.Clone(items)}
}

// Tuple returns a schema matching sequences of exactly len(items) elements.
func Tuple(items []Schema, msg ...string) *TupleSchema {
	for i, it := range items {
		mustSchema(it, fmt.Sprintf("tuple item %d", i))
	}
	return &TupleSchema{base: newBase(msg), items: slices.Clone(items)}
}

// Object returns a schema matching keyed structures with the given props.
func Object(props Props, msg ...string) *ObjectSchema {
	for k, p := range props {
		mustSchema(p, "property "+k)
	}
	cp := maps.Clone(props)
	if cp == nil {
		cp = Props{}
	}
	return &ObjectSchema{base: newBase(msg), props: cp, keys: slices.Sorted(maps.Keys(cp))}
}

// Nullable returns a schema accepting absence or a value matching item.
func Nullable(item Schema, msg ...string) *NullableSchema {
	mustSchema(item, "nullable item")
	return &NullableSchema{base: newBase(msg), item: item}
}

// RefineOption configures a ValidationSchema.
type RefineOption func(*ValidationSchema)

// WithRule attaches a descriptive rule to a validation schema.
func WithRule(name string, params map[string]any) RefineOption {
	return func(s *ValidationSchema) {
		s.rule = &Rule{Name: name, Params: maps.Clone(params)}
	}
}

// Validation returns a schema that runs fn on values accepted by item.
func Validation(item Schema, fn Validator, opts ...RefineOption) *ValidationSchema {
	mustSchema(item, "validation item")
	if fn == nil {
		panic("lightschema: nil validator")
	}
	s := &ValidationSchema{item: item, validator: fn}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Transform returns a schema that maps values accepted by from through fn.
func Transform(from, to Schema, fn Transformer) *TransformSchema {
	mustSchema(from, "transform source")
	mustSchema(to, "transform target")
	if fn == nil {
		panic("lightschema: nil transformer")
	}
	return &TransformSchema{from: from, to: to, transformer: fn}
}

func mustSchema(s Schema, what string) {
	if s == nil {
		panic("lightschema: nil schema for " + what)
	}
	if v := reflect.ValueOf(s); v.Kind() == reflect.Pointer && v.IsNil() {
		panic("lightschema: nil schema for " + what)
	}
}
