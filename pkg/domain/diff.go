package domain

// StateDiff represents the changes between two form states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// Fields contains only changed or added fields.
	// Clients should merge these updates into their local state.
	Fields map[string]FieldState `json:"fields,omitempty"`

	// Removed lists fields present before and absent now.
	Removed []string `json:"removed,omitempty"`

	// Order is set when field order changed (or on initial load).
	Order []string `json:"order,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState *FormState, newState FormState) *StateDiff {
	diff := &StateDiff{}

	if oldState == nil {
		diff.Fields = make(map[string]FieldState, newState.Len())
		for name, f := range newState.All() {
			diff.Fields[name] = f
		}
		diff.Order = newState.Names()
		return diff
	}

	// Added or modified
	delta := make(map[string]FieldState)
	for name, f := range newState.All() {
		prev, exists := oldState.Get(name)
		if !exists || !prev.Equal(f) {
			delta[name] = f
		}
	}
	if len(delta) > 0 {
		diff.Fields = delta
	}

	// Deletions
	for name := range oldState.All() {
		if !newState.Has(name) {
			diff.Removed = append(diff.Removed, name)
		}
	}

	if !sameOrder(oldState.names, newState.names) {
		diff.Order = newState.Names()
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Fields) == 0 && len(d.Removed) == 0 && len(d.Order) == 0
}
