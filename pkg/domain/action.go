package domain

// ActionType names a reducer action.
type ActionType string

// Standard Action Types
const (
	// ActionUpdateField overwrites one field's value and clears its error.
	ActionUpdateField ActionType = "UPDATE_FIELD"

	// ActionValidate merges validation errors into the state.
	ActionValidate ActionType = "VALIDATE"

	// ActionResetForm replaces the whole state.
	ActionResetForm ActionType = "RESET_FORM"

	// ActionResume replaces the state with a stored snapshot, if one exists.
	ActionResume ActionType = "RESUME"
)

// Action is a message to the form reducer.
// Actions of a type the reducer does not know leave the state unchanged.
type Action interface {
	Type() ActionType
}

// UpdateField sets Field to Value and clears its error.
// Text arriving for a numeric or checkbox field is coerced by the reducer.
type UpdateField struct {
	Field string
	Value Value
}

func (UpdateField) Type() ActionType { return ActionUpdateField }

// Validate merges Errors into the state.
// Fields missing from Errors keep their current error unless listed in Clear.
type Validate struct {
	Errors map[string]string
	Clear  []string
}

func (Validate) Type() ActionType { return ActionValidate }

// ResetForm replaces the state with InitialState.
type ResetForm struct {
	InitialState FormState
}

func (ResetForm) Type() ActionType { return ActionResetForm }

// Resume loads the snapshot stored under Key.
type Resume struct {
	Key string
}

func (Resume) Type() ActionType { return ActionResume }
