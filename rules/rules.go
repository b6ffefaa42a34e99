// Package rules provides cross-field checks over parsed values. Rules address
// locations with JSON Pointers and are attached to a schema with Check:
//
//	order := rules.Check(orderSchema,
//		rules.If("/status", rules.Eq, "shipped").Then(rules.Required("/tracking")),
//		rules.AtLeastOne("/items"),
//		rules.UniqueBy("/items", "sku"),
//	)
package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/i18n"
)

// Rule inspects a parsed value and reports path-addressed issues.
type Rule func(v any) lightschema.Issues

// Check wraps item so that rules run on its parsed value. Issues are
// reported as a Fields payload nested along their pointers.
func Check(item lightschema.Schema, rules ...Rule) *lightschema.ValidationSchema {
	all := And(rules...)
	return lightschema.Validation(item, func(v any) lightschema.Result[any, lightschema.Errors] {
		if iss := all(v); len(iss) > 0 {
			return lightschema.Failure[any, lightschema.Errors](payload(iss))
		}
		return lightschema.Success[any, lightschema.Errors](v)
	}, lightschema.WithRule("rules", map[string]any{"count": len(rules)}))
}

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates the value at path against want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	all := And(rules...)
	return func(v any) lightschema.Issues {
		if !c.eval(v) {
			return nil
		}
		return all(v)
	}
}

func (c Conditional) eval(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(v) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAt(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Required reports a missing or null value at path.
func Required(path string, msg ...string) Rule {
	p := normalizePath(path)
	return func(v any) lightschema.Issues {
		cur, ok := valueAt(v, p)
		if ok && !lightschema.IsNull(cur) {
			return nil
		}
		return lightschema.Issues{{Path: p, Message: message(msg, i18n.Required, nil)}}
	}
}

// AtLeastOne ensures the collection at collectionPath has at least 1 element.
// Missing values and non-collections are left to the schema.
func AtLeastOne(collectionPath string, msg ...string) Rule {
	p := normalizePath(collectionPath)
	return func(v any) lightschema.Issues {
		cur, ok := valueAt(v, p)
		if !ok {
			return nil
		}
		if seq, isSeq := lightschema.AsSequence(cur); isSeq && len(seq) == 0 {
			return lightschema.Issues{{Path: p, Message: message(msg, i18n.AtLeastOne, nil)}}
		}
		return nil
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// keyPath is relative to each element ("sku" or "/sku"); elements without
// the key are skipped. Keys are compared by their rendered form, so keep the
// key a single type.
func UniqueBy(collectionPath, keyPath string, msg ...string) Rule {
	cp := normalizePath(collectionPath)
	kp := normalizePath(keyPath)
	return func(v any) lightschema.Issues {
		cur, ok := valueAt(v, cp)
		if !ok {
			return nil
		}
		seq, ok := lightschema.AsSequence(cur)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var out lightschema.Issues
		for i, elem := range seq {
			kv, ok := valueAt(elem, kp)
			if !ok {
				continue
			}
			key := lightschema.FormatValue(kv)
			if j, dup := seen[key]; dup {
				path := join(cp, strconv.Itoa(i)) + strings.TrimSuffix(kp, "/")
				out = append(out, lightschema.Issue{
					Path:    path,
					Message: message(msg, i18n.Duplicate, map[string]string{"key": key, "first": strconv.Itoa(j)}),
				})
				continue
			}
			seen[key] = i
		}
		return out
	}
}

// And executes all rules and concatenates their issues.
func And(rules ...Rule) Rule {
	return func(v any) lightschema.Issues {
		var out lightschema.Issues
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, r(v)...)
		}
		return out
	}
}

// Or succeeds if any rule returns no issues. When all fail, the branch with
// the fewest issues is returned.
func Or(rules ...Rule) Rule {
	return func(v any) lightschema.Issues {
		var best lightschema.Issues
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			iss := r(v)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best, bestSet = iss, true
			}
		}
		return best
	}
}

// Func adapts a plain predicate into a Rule reporting msg at path.
func Func(path, msg string, ok func(v any) bool) Rule {
	p := normalizePath(path)
	return func(v any) lightschema.Issues {
		if ok(v) {
			return nil
		}
		return lightschema.Issues{{Path: p, Message: msg}}
	}
}

// ------- helpers -------

func message(msg []string, code string, data map[string]string) string {
	for _, m := range msg {
		if m != "" {
			return m
		}
	}
	return i18n.T(code, data)
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")
var unescaper = strings.NewReplacer("~1", "/", "~0", "~")

func join(base, seg string) string {
	return strings.TrimSuffix(base, "/") + "/" + escaper.Replace(seg)
}

func segments(pointer string) []string {
	rel := strings.TrimPrefix(pointer, "/")
	if rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = unescaper.Replace(p)
	}
	return parts
}

// valueAt navigates keyed values and sequences by JSON Pointer.
func valueAt(v any, pointer string) (any, bool) {
	cur := v
	for _, seg := range segments(pointer) {
		if m, ok := lightschema.AsKeyed(cur); ok {
			next, present := m[seg]
			if !present {
				return nil, false
			}
			cur = next
			continue
		}
		if seq, ok := lightschema.AsSequence(cur); ok {
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(seq) {
				return nil, false
			}
			cur = seq[idx]
			continue
		}
		return nil, false
	}
	return cur, true
}

func compare(cur any, op Op, want any) bool {
	a, aNum := lightschema.ToFloat(cur)
	b, bNum := lightschema.ToFloat(want)
	switch op {
	case Eq:
		if aNum && bNum {
			return a == b
		}
		return reflect.DeepEqual(cur, want)
	case Ne:
		if aNum && bNum {
			return a != b
		}
		return !reflect.DeepEqual(cur, want)
	}
	if aNum && bNum {
		return ordered(a, b, op)
	}
	as, aStr := cur.(string)
	bs, bStr := want.(string)
	if aStr && bStr {
		return ordered(as, bs, op)
	}
	return false
}

func ordered[T int | float64 | string](a, b T, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

// payload nests issues into Fields along their pointers. Issues at the root
// (or at a location that already holds nested fields) use the "" key.
func payload(iss lightschema.Issues) lightschema.Errors {
	root := lightschema.Fields{}
	for _, it := range iss {
		segs := segments(it.Path)
		if len(segs) == 0 {
			segs = []string{""}
		}
		cur := root
		for _, seg := range segs[:len(segs)-1] {
			switch e := cur[seg].(type) {
			case lightschema.Fields:
				cur = e
			case lightschema.Messages:
				next := lightschema.Fields{"": e}
				cur[seg] = next
				cur = next
			default:
				next := lightschema.Fields{}
				cur[seg] = next
				cur = next
			}
		}
		last := segs[len(segs)-1]
		switch e := cur[last].(type) {
		case lightschema.Messages:
			cur[last] = append(e, it.Message)
		case lightschema.Fields:
			msgs, _ := e[""].(lightschema.Messages)
			e[""] = append(msgs, it.Message)
		default:
			cur[last] = lightschema.Messages{it.Message}
		}
	}
	return root
}

// String renders an operator for diagnostics.
func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return fmt.Sprintf("op(%d)", int(o))
}
