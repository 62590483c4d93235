package domain

import "time"

// Snapshot is the persisted form of a FormState.
// Sealed is set instead of Fields when a storage middleware encrypted the payload.
type Snapshot struct {
	Key     string    `json:"key"`
	Fields  FormState `json:"fields"`
	SavedAt time.Time `json:"saved_at"`
	Sealed  string    `json:"sealed,omitempty"`
}

// NewSnapshot captures state under key.
func NewSnapshot(key string, state FormState) *Snapshot {
	return &Snapshot{
		Key:     key,
		Fields:  state,
		SavedAt: time.Now().UTC(),
	}
}
