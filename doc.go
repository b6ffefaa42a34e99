// Package lightschema provides:
//
// - Declarative schemas built from a closed set of nodes (Literal, None, Int,
// Float, String, Boolean, Array, Union, Tuple, Object, Nullable, Validation,
// Transform)
// - A single interpreter, Parse, returning a Result that is either the parsed
// value or an error payload mirroring the schema's shape
// - Path-addressed Issues (JSON Pointer, message) flattened from that payload
// - JSON Schema export and typed decoding via ParseInto
//
// Refinements live in validate/ (Min, Max, Expr, Validator) and transforms in
// transform/ (ToString, ToInt, Transformer). Decoders for JSON, YAML and
// MessagePack live in source/, declarative schema files in schemafile/ and the
// CLI under cmd/lightschema.
//
// Typical usage:
//
//	s := lightschema.Object(lightschema.Props{
//		"name": lightschema.String(),
//		"age":  validate.Min(lightschema.Int(), 0),
//	})
//	r := lightschema.Parse(s, map[string]any{"name": "Al", "age": -1})
//	// r.ExpectFailure() == Fields{"age": Messages{"Number must be greater than or equal to 0"}}
//
//	r, err := lightschema.ParseFrom(ctx, s, source.JSONBytes(data))
package lightschema
