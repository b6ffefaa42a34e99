// Package transform provides schemas that map a value accepted by a source
// schema into the shape of a target schema.
package transform

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/i18n"
)

// Transformer wraps from with fn. The result is documented by to but not
// re-validated against it.
func Transformer(from, to lightschema.Schema, fn lightschema.Transformer) *lightschema.TransformSchema {
	return lightschema.Transform(from, to, fn)
}

// ToString converts any value accepted by from into its string form. Null
// becomes "". It never fails.
func ToString(from lightschema.Schema, msg ...string) *lightschema.TransformSchema {
	return lightschema.Transform(from, lightschema.String(msg...), func(v any) lightschema.Result[any, lightschema.Errors] {
		return lightschema.Success[any, lightschema.Errors](Stringify(v))
	})
}

// Stringify renders v: strings as-is, numbers in their shortest form,
// sequences as comma-joined elements and keyed values as JSON.
func Stringify(v any) string {
	if lightschema.IsNull(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if lightschema.IsNumber(v) {
		return lightschema.FormatValue(v)
	}
	if seq, ok := lightschema.AsSequence(v); ok {
		parts := make([]string, len(seq))
		for i, el := range seq {
			parts[i] = Stringify(el)
		}
		return strings.Join(parts, ",")
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return lightschema.FormatValue(v)
}

// ToInt converts numbers (floored) and numeric strings (base-10 integer
// prefix) to int64. Anything else fails with msg or "Expected integer".
func ToInt(from lightschema.Schema, msg ...string) *lightschema.TransformSchema {
	fail := func() lightschema.Result[any, lightschema.Errors] {
		for _, m := range msg {
			if m != "" {
				return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{m})
			}
		}
		return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{i18n.T(i18n.ExpectedInt, nil)})
	}
	return lightschema.Transform(from, lightschema.Int(msg...), func(v any) lightschema.Result[any, lightschema.Errors] {
		if lightschema.IsNull(v) {
			return fail()
		}
		if f, ok := lightschema.ToFloat(v); ok {
			f = math.Floor(f)
			if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
				return fail()
			}
			return lightschema.Success[any, lightschema.Errors](int64(f))
		}
		if s, ok := v.(string); ok {
			if n, ok := parseIntPrefix(s); ok {
				return lightschema.Success[any, lightschema.Errors](n)
			}
		}
		return fail()
	})
}

// parseIntPrefix reads an optionally signed run of decimal digits after
// leading whitespace and ignores whatever follows it.
func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
