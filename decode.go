package lightschema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ParseInto parses v against s and decodes the success value into out, which
// must be a non-nil pointer. Struct fields are matched through `json` tags.
// A validation failure is returned as the Errors payload (use AsIssues to
// flatten it); a decoding mismatch between the schema's output and out is
// returned as a plain error.
func ParseInto(s Schema, v any, out any) error {
	r := Parse(s, v)
	if r.IsFailure() {
		if r.err == nil {
			return Messages{}
		}
		return r.err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		ZeroFields:       true,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return fmt.Errorf("lightschema: decoder: %w", err)
	}
	if err := dec.Decode(r.value); err != nil {
		return fmt.Errorf("lightschema: decode result: %w", err)
	}
	return nil
}
