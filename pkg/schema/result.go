package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Result is the typed output of a successful Parse: text as string,
// numbers as int (integer types) or float64, booleans as bool.
type Result map[string]any

// Decode copies the result into out, a pointer to a struct.
// Struct fields are matched by their `form` tag, falling back to the field name.
func (r Result) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}
