/*
Package domain contains the core domain models of the form state engine.

It defines the values a form holds, the ordered state of a whole form, the
actions that mutate it and the snapshot shape used for persistence. This
package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Value: Tagged field content (Unanswered, Text, Number or Bool).
  - FieldState: Value, presentation config and current error of one field.
  - FormState: Ordered, immutable mapping of field names to FieldState.
  - Action: UpdateField, Validate, ResetForm and Resume reducer messages.
  - Snapshot: The persisted form of a FormState, keyed by a storage key.
*/
package domain
