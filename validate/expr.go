package validate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dcdncp/lightschema"
	"github.com/dcdncp/lightschema/i18n"
)

// Expr requires the parsed value to satisfy a boolean expr-lang expression.
// The value is bound to the variable `value`, for example
// `value % 2 == 0` or `len(value) <= 3`. The expression is compiled once;
// compilation errors are returned here rather than at parse time.
func Expr(item lightschema.Schema, expression string, msg ...string) (*lightschema.ValidationSchema, error) {
	program, err := expr.Compile(expression, expr.Env(map[string]any{"value": nil}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("validate: compile %q: %w", expression, err)
	}
	fn := func(v any) lightschema.Result[any, lightschema.Errors] {
		return runExpr(program, expression, v, first(msg))
	}
	return lightschema.Validation(item, fn, lightschema.WithRule("expr", map[string]any{"expr": expression})), nil
}

// MustExpr is like Expr but panics when the expression does not compile.
func MustExpr(item lightschema.Schema, expression string, msg ...string) *lightschema.ValidationSchema {
	s, err := Expr(item, expression, msg...)
	if err != nil {
		panic(err)
	}
	return s
}

func runExpr(program *vm.Program, expression string, v any, msg string) lightschema.Result[any, lightschema.Errors] {
	out, err := expr.Run(program, map[string]any{"value": v})
	if err != nil {
		return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{err.Error()})
	}
	if okv, _ := out.(bool); okv {
		return lightschema.Success[any, lightschema.Errors](v)
	}
	if msg == "" {
		msg = i18n.T(i18n.ExprFailed, map[string]string{"expr": expression})
	}
	return lightschema.Failure[any, lightschema.Errors](lightschema.Messages{msg})
}
