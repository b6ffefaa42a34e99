// Package validate provides refinements layered on a base schema. A
// refinement runs only after the base schema accepted the value and receives
// the parsed value.
package validate

import (
	"strconv"
	"unicode/utf8"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/i18n"
)

// Validator wraps item with fn.
func Validator(item lightschema.Schema, fn lightschema.Validator, opts ...lightschema.RefineOption) *lightschema.ValidationSchema {
	return lightschema.Validation(item, fn, opts...)
}

// Min requires numbers to be >= n, strings to have at least n characters and
// sequences at least n elements. Values of other kinds pass unchanged.
func Min(item lightschema.Schema, n float64, msg ...string) *lightschema.ValidationSchema {
	return bound(item, n, true, msg)
}

// Max requires numbers to be <= n, strings to have at most n characters and
// sequences at most n elements.
func Max(item lightschema.Schema, n float64, msg ...string) *lightschema.ValidationSchema {
	return bound(item, n, false, msg)
}

func bound(item lightschema.Schema, n float64, isMin bool, msg []string) *lightschema.ValidationSchema {
	name, key := "max", "max"
	numCode, strCode, arrCode := i18n.NumberMax, i18n.StringMax, i18n.ArrayMax
	if isMin {
		name, key = "min", "min"
		numCode, strCode, arrCode = i18n.NumberMin, i18n.StringMin, i18n.ArrayMin
	}
	violates := func(got float64) bool {
		if isMin {
			return got < n
		}
		return got > n
	}
	data := map[string]string{key: strconv.FormatFloat(n, 'g', -1, 64)}
	failWith := func(code string) lightschema.Result[any, lightschema.Errors] {
		if m := first(msg); m != "" {
			return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{m})
		}
		return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{i18n.T(code, data)})
	}
	fn := func(v any) lightschema.Result[any, lightschema.Errors] {
		if f, ok := lightschema.ToFloat(v); ok {
			if violates(f) {
				return failWith(numCode)
			}
		} else if s, ok := v.(string); ok {
			if violates(float64(utf8.RuneCountInString(s))) {
				return failWith(strCode)
			}
		} else if seq, ok := lightschema.AsSequence(v); ok {
			if violates(float64(len(seq))) {
				return failWith(arrCode)
			}
		}
		return lightschema.Success[any, lightschema.Errors](v)
	}
	return lightschema.Validation(item, fn, lightschema.WithRule(name, map[string]any{"n": n}))
}

func first(msg []string) string {
	for _, m := range msg {
		if m != "" {
			return m
		}
	}
	return ""
}
