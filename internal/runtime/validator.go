package runtime

import (
	"fmt"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
)

// Outcome is the result of validating a form state.
// Exactly one of Result, Issues (with Errors/FormErrors) or Err is set.
type Outcome struct {
	// Result is the typed output when the state is valid.
	Result schema.Result
	// Issues is the structured failure when the state is invalid.
	Issues schema.Issues
	// Errors maps each failing field to its last message.
	Errors map[string]string
	// FormErrors holds messages that apply to the form as a whole.
	FormErrors []string
	// Err is set when validation itself broke; it wraps domain.ErrValidationFailed.
	Err error
}

// Valid reports whether the state satisfied the schema.
func (o Outcome) Valid() bool { return o.Err == nil && o.Result != nil }

// Flatten turns a form state into the plain map the schema parses.
// Unanswered fields are absent and invalid numbers are NaN.
func Flatten(state domain.FormState) map[string]any {
	out := make(map[string]any, state.Len())
	for name, f := range state.All() {
		if v, ok := f.Value.Interface(); ok {
			out[name] = v
		}
	}
	return out
}

// Validate checks state against s.
// Fields the schema does not declare are ignored.
func Validate(s *schema.Schema, state domain.FormState) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Outcome{Err: fmt.Errorf("%w: %v", domain.ErrValidationFailed, rec)}
		}
	}()

	if s == nil {
		return Outcome{Err: fmt.Errorf("%w: no schema", domain.ErrValidationFailed)}
	}

	result, err := s.Parse(Flatten(state))
	if err == nil {
		return Outcome{Result: result}
	}

	issues, ok := schema.AsIssues(err)
	if !ok {
		return Outcome{Err: fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)}
	}
	return Outcome{
		Issues:     issues,
		Errors:     issues.FieldErrors(),
		FormErrors: issues.FormErrors(),
	}
}
