package rules_test

import (
	"reflect"
	"testing"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/rules"
)

func orderSchema() lightschema.Schema {
	item := lightschema.Object(lightschema.Props{
		"sku": lightschema.String(),
		"qty": lightschema.Int(),
	})
	return lightschema.Object(lightschema.Props{
		"status":   lightschema.String(),
		"tracking": lightschema.Nullable(lightschema.String()),
		"total":    lightschema.Float(),
		"items":    lightschema.Array(item),
	})
}

func item(sku string) map[string]any { return map[string]any{"sku": sku, "qty": 1} }

func TestCheck_ConditionalRequired(t *testing.T) {
	s := rules.Check(orderSchema(),
		rules.If("/status", rules.Eq, "shipped").Then(rules.Required("/tracking")),
	)
	if !lightschema.Is(s, map[string]any{"status": "new", "total": 1, "items": []any{}}) {
		t.Fatalf("condition not met, rule must not run")
	}
	r := lightschema.Parse(s, map[string]any{"status": "shipped", "total": 1, "items": []any{}})
	want := lightschema.Fields{"tracking": lightschema.Messages{"Value is required"}}
	if got := r.ExpectFailure(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestCheck_RunsOnlyAfterSchema(t *testing.T) {
	s := rules.Check(orderSchema(), rules.AtLeastOne("/items"))
	r := lightschema.Parse(s, map[string]any{"status": 1})
	f, ok := r.ExpectFailure().(lightschema.Fields)
	if !ok || f["status"] == nil {
		t.Fatalf("schema failures come first: %#v", r.ExpectFailure())
	}
	if !reflect.DeepEqual(f["items"], lightschema.Messages{"Expected array"}) {
		t.Fatalf("rules must not run on invalid input: %#v", f["items"])
	}
}

func TestAtLeastOneAndUniqueBy(t *testing.T) {
	s := rules.Check(orderSchema(),
		rules.AtLeastOne("items"),
		rules.UniqueBy("/items", "sku"),
	)
	r := lightschema.Parse(s, map[string]any{"status": "new", "total": 1, "items": []any{}})
	if got := r.ExpectFailure().Issues(); len(got) != 1 || got[0].Path != "/items" {
		t.Fatalf("got %v", got)
	}

	r = lightschema.Parse(s, map[string]any{"status": "new", "total": 1, "items": []any{item("a"), item("b"), item("a")}})
	iss := r.ExpectFailure().Issues()
	if len(iss) != 1 || iss[0].Path != "/items/2/sku" || iss[0].Message != "Duplicate value a (first at index 0)" {
		t.Fatalf("got %v", iss)
	}
}

func TestConditionals(t *testing.T) {
	v := map[string]any{"status": "paid", "total": 150.0, "items": []any{item("a")}}
	flag := rules.Func("/", "flagged", func(any) bool { return false })

	cases := []struct {
		name  string
		cond  rules.Conditional
		fires bool
	}{
		{"gt", rules.If("/total", rules.Gt, 100), true},
		{"le", rules.If("/total", rules.Le, 100), false},
		{"ne", rules.If("/status", rules.Ne, "new"), true},
		{"string order", rules.If("/status", rules.Lt, "shipped"), true},
		{"missing path", rules.If("/nope", rules.Eq, nil), false},
		{"index path", rules.If("/items/0/sku", rules.Eq, "a"), true},
		{"and", rules.If("/total", rules.Ge, 100).And(rules.If("/status", rules.Eq, "new")), false},
		{"or", rules.If("/total", rules.Ge, 1000).Or(rules.If("/status", rules.Eq, "paid")), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := len(tc.cond.Then(flag)(v)) > 0
			if got != tc.fires {
				t.Fatalf("fired=%v want %v", got, tc.fires)
			}
		})
	}
}

func TestOr_ReturnsSmallestFailure(t *testing.T) {
	one := rules.Required("/a")
	two := rules.And(rules.Required("/b"), rules.Required("/c"))
	if iss := rules.Or(two, one)(map[string]any{}); len(iss) != 1 || iss[0].Path != "/a" {
		t.Fatalf("got %v", iss)
	}
	if iss := rules.Or(one, two)(map[string]any{"a": 1}); iss != nil {
		t.Fatalf("any success should pass, got %v", iss)
	}
}

func TestCheck_RootIssues(t *testing.T) {
	s := rules.Check(lightschema.Int(), rules.Func("", "must be even", func(v any) bool { return v.(int64)%2 == 0 }))
	iss := lightschema.Parse(s, 3).ExpectFailure().Issues()
	if len(iss) != 1 || iss[0].Path != "/" || iss[0].Message != "must be even" {
		t.Fatalf("got %v", iss)
	}
}

func TestRequired_CustomMessage(t *testing.T) {
	iss := rules.Required("/x", "x please")(map[string]any{"x": nil})
	if len(iss) != 1 || iss[0].Message != "x please" {
		t.Fatalf("got %v", iss)
	}
}
