package validate_test

import (
	"reflect"
	"testing"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/validate"
)

func messages(t *testing.T, s lightschema.Schema, v any) lightschema.Errors {
	t.Helper()
	r := lightschema.Parse(s, v)
	if r.IsSuccess() {
		t.Fatalf("expected failure for %#v", v)
	}
	return r.ExpectFailure()
}

func TestMinMax_CrossKind(t *testing.T) {
	cases := []struct {
		name string
		s    lightschema.Schema
		ok   []any
		bad  []any
		msg  string
	}{
		{"min string", validate.Min(lightschema.String(), 3), []any{"abc", "äöü"}, []any{"ab"}, "String must be at least 3 characters long"},
		{"max string", validate.Max(lightschema.String(), 2), []any{"ab", ""}, []any{"abc"}, "String must be at most 2 characters long"},
		{"min array", validate.Min(lightschema.Array(lightschema.Int()), 2), []any{[]any{1, 2}}, []any{[]any{1}}, "Array must have at least 2 elements"},
		{"max array", validate.Max(lightschema.Array(lightschema.Int()), 1), []any{[]any{}}, []any{[]any{1, 2}}, "Array must have at most 1 elements"},
		{"min number", validate.Min(lightschema.Float(), 0.5), []any{0.5, 1}, []any{0.4}, "Number must be greater than or equal to 0.5"},
		{"max number", validate.Max(lightschema.Int(), 10), []any{10, -3}, []any{11}, "Number must be less than or equal to 10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.ok {
				if r := lightschema.Parse(tc.s, v); r.IsFailure() {
					t.Fatalf("%#v: %v", v, r.ExpectFailure())
				}
			}
			for _, v := range tc.bad {
				if got := messages(t, tc.s, v); !reflect.DeepEqual(got, lightschema.Messages{tc.msg}) {
					t.Fatalf("%#v: got %#v", v, got)
				}
			}
		})
	}
}

func TestMin_OtherKindsPass(t *testing.T) {
	s := validate.Min(lightschema.Boolean(), 5)
	if r := lightschema.Parse(s, true); r.IsFailure() {
		t.Fatalf("booleans are not bounded: %v", r.ExpectFailure())
	}
}

func TestMin_CustomMessage(t *testing.T) {
	s := validate.Min(lightschema.Int(), 18, "must be an adult")
	if got := messages(t, s, 17); !reflect.DeepEqual(got, lightschema.Messages{"must be an adult"}) {
		t.Fatalf("got %#v", got)
	}
}

func TestMin_RunsAfterItem(t *testing.T) {
	s := validate.Min(lightschema.Int(), 0)
	if got := messages(t, s, "x"); !reflect.DeepEqual(got, lightschema.Messages{"Expected integer"}) {
		t.Fatalf("got %#v", got)
	}
}

func TestValidator_CanNormalize(t *testing.T) {
	s := validate.Validator(lightschema.String(), func(v any) lightschema.Result[any, lightschema.Errors] {
		return lightschema.Success[any, lightschema.Errors](v.(string) + "!")
	})
	if got := lightschema.Parse(s, "hi").ExpectSuccess(); got != "hi!" {
		t.Fatalf("got %#v", got)
	}
}
