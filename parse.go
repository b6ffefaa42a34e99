package lightschema

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dcdncp/lightschema/i18n"
)

// Parse checks v against s. It returns the parsed value on success, or a
// failure payload mirroring the schema's shape. Parse never returns
// validation problems any other way; it panics only on contract violations
// (a nil or foreign Schema implementation).
//
// Parse keeps no state of its own and a schema may be shared across
// goroutines. Default messages are read from the process-wide i18n
// translator, so i18n.SetLanguage changes the text of later failures.
func Parse(s Schema, v any) Result[any, Errors] {
	switch s := s.(type) {
	case *LiteralSchema:
		if !literalEqual(s.value, indirect(v)) {
			return fail(s, i18n.ExpectedLiteral, "literal", FormatValue(s.value))
		}
		return ok(s.value)
	case *NoneSchema:
		if !IsNull(v) {
			return fail(s, i18n.ExpectedNone)
		}
		return ok(nil)
	case *IntSchema:
		n, isInt := toInt(indirect(v))
		if !isInt {
			return fail(s, i18n.ExpectedInt)
		}
		return ok(n)
	case *FloatSchema:
		f, isNum := toFloat(indirect(v))
		if !isNum {
			return fail(s, i18n.ExpectedFloat)
		}
		return ok(f)
	case *StringSchema:
		str, isStr := indirect(v).(string)
		if !isStr {
			return fail(s, i18n.ExpectedString)
		}
		return ok(str)
	case *BooleanSchema:
		b, isBool := indirect(v).(bool)
		if !isBool {
			return fail(s, i18n.ExpectedBoolean)
		}
		return ok(b)
	case *ArraySchema:
		return parseArray(s, v)
	case *TupleSchema:
		return parseTuple(s, v)
	case *UnionSchema:
		return parseUnion(s, v)
	case *ObjectSchema:
		return parseObject(s, v)
	case *NullableSchema:
		if IsNull(v) {
			return ok(nil)
		}
		return Parse(s.item, v)
	case *ValidationSchema:
		r := Parse(s.item, v)
		if r.IsFailure() {
			return r
		}
		return nonNilFailure(s.validator(r.value))
	case *TransformSchema:
		r := Parse(s.from, v)
		if r.IsFailure() {
			return r
		}
		return nonNilFailure(s.transformer(r.value))
	}
	panic(fmt.Sprintf("lightschema: unsupported schema type %T", s))
}

func parseArray(s *ArraySchema, v any) Result[any, Errors] {
	seq, isSeq := asSequence(indirect(v))
	if !isSeq {
		return fail(s, i18n.ExpectedArray)
	}
	out := make([]any, 0, len(seq))
	var failures []Errors
	for _, el := range seq {
		r := Parse(s.item, el)
		if r.IsFailure() {
			failures = append(failures, r.err)
			continue
		}
		out = append(out, r.value)
	}
	if len(failures) > 0 {
		return Failure[any, Errors](flatten(failures))
	}
	return ok(out)
}

func parseTuple(s *TupleSchema, v any) Result[any, Errors] {
	seq, isSeq := asSequence(indirect(v))
	if !isSeq {
		return fail(s, i18n.ExpectedTuple)
	}
	if len(seq) != len(s.items) {
		return fail(s, i18n.ExpectedTupleLength, "length", strconv.Itoa(len(s.items)))
	}
	out := make([]any, 0, len(seq))
	var failures []Errors
	for i, el := range seq {
		r := Parse(s.items[i], el)
		if r.IsFailure() {
			failures = append(failures, r.err)
			continue
		}
		out = append(out, r.value)
	}
	if len(failures) > 0 {
		return Failure[any, Errors](flatten(failures))
	}
	return ok(out)
}

func parseUnion(s *UnionSchema, v any) Result[any, Errors] {
	failures := make([]Errors, 0, len(s.items))
	for _, item := range s.items {
		r := Parse(item, v)
		if r.IsSuccess() {
			return r
		}
		failures = append(failures, r.err)
	}
	msgs := flatten(failures)
	if msgs == nil {
		msgs = Messages{}
	}
	return Failure[any, Errors](msgs)
}

func parseObject(s *ObjectSchema, v any) Result[any, Errors] {
	m, isMap := asKeyed(indirect(v))
	if !isMap {
		return fail(s, i18n.ExpectedObject)
	}
	out := make(map[string]any, len(s.keys))
	var failures Fields
	// every property is evaluated so the payload is complete
	for _, k := range s.keys {
		r := Parse(s.props[k], m[k])
		if r.IsFailure() {
			if failures == nil {
				failures = Fields{}
			}
			failures[k] = r.err
			continue
		}
		out[k] = r.value
	}
	if len(failures) > 0 {
		return Failure[any, Errors](failures)
	}
	return ok(out)
}

func ok(v any) Result[any, Errors] { return Success[any, Errors](v) }

// nonNilFailure gives a failure from user code a non-nil payload.
func nonNilFailure(r Result[any, Errors]) Result[any, Errors] {
	if r.IsFailure() && r.err == nil {
		return Failure[any, Errors](Messages{})
	}
	return r
}

// fail builds a single-message failure using the schema's message or the
// translated default for code. kv lists placeholder name/value pairs.
func fail(s Schema, code string, kv ...string) Result[any, Errors] {
	if msg := s.Message(); msg != "" {
		return Failure[any, Errors](Messages{msg})
	}
	var data map[string]string
	if len(kv) > 0 {
		data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			data[kv[i]] = kv[i+1]
		}
	}
	return Failure[any, Errors](Messages{i18n.T(code, data)})
}

// Is reports whether v conforms to s.
func Is(s Schema, v any) bool { return Parse(s, v).IsSuccess() }

// Source produces an in-memory value from an encoded document.
// Implementations live in the source package.
type Source interface {
	Decode(ctx context.Context) (any, error)
	Format() string
}

// ParseFrom decodes src and parses the resulting value. Decoding problems
// (I/O, syntax, limits) are returned as error; validation problems are
// reported through the Result.
func ParseFrom(ctx context.Context, s Schema, src Source) (Result[any, Errors], error) {
	if src == nil {
		return Result[any, Errors]{}, fmt.Errorf("lightschema: nil source")
	}
	if err := ctx.Err(); err != nil {
		return Result[any, Errors]{}, err
	}
	v, err := src.Decode(ctx)
	if err != nil {
		return Result[any, Errors]{}, fmt.Errorf("decode %s: %w", src.Format(), err)
	}
	return Parse(s, v), nil
}
