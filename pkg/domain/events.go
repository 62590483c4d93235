package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFieldChanged      EventType = "field_changed"
	EventValidated         EventType = "validated"
	EventReset             EventType = "reset"
	EventResumed           EventType = "resumed"
	EventSnapshotSaved     EventType = "snapshot_saved"
	EventSnapshotDiscarded EventType = "snapshot_discarded"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	FormKey   string    `json:"form_key,omitempty"`
}

// NewEventBase stamps an event of type t for the form stored under key.
func NewEventBase(t EventType, key string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, FormKey: key}
}

// FieldEvent represents a field update.
type FieldEvent struct {
	EventBase
	Field string    `json:"field"`
	Kind  ValueKind `json:"kind"`
	Valid bool      `json:"valid"`
}

// ValidationEvent represents a validation pass.
type ValidationEvent struct {
	EventBase
	Fields     int    `json:"fields"`
	Errors     int    `json:"errors"`
	FormErrors int    `json:"form_errors,omitempty"`
	Failure    string `json:"failure,omitempty"`
}

// Valid reports whether the pass accepted the data.
func (e *ValidationEvent) Valid() bool {
	return e.Errors == 0 && e.FormErrors == 0 && e.Failure == ""
}

// PersistenceEvent represents a snapshot being resumed, saved or discarded.
type PersistenceEvent struct {
	EventBase
	Found bool  `json:"found"`
	Err   error `json:"-"`
}

// LifecycleHooks defines callbacks for form observability.
type LifecycleHooks struct {
	OnFieldChange func(context.Context, *FieldEvent)
	OnValidate    func(context.Context, *ValidationEvent)
	OnReset       func(context.Context, *EventBase)
	OnPersist     func(context.Context, *PersistenceEvent)
}

// Combine returns hooks that call every non-nil callback of each argument in order.
func Combine(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnFieldChange: func(ctx context.Context, e *FieldEvent) {
			for _, h := range hooks {
				if h.OnFieldChange != nil {
					h.OnFieldChange(ctx, e)
				}
			}
		},
		OnValidate: func(ctx context.Context, e *ValidationEvent) {
			for _, h := range hooks {
				if h.OnValidate != nil {
					h.OnValidate(ctx, e)
				}
			}
		},
		OnReset: func(ctx context.Context, e *EventBase) {
			for _, h := range hooks {
				if h.OnReset != nil {
					h.OnReset(ctx, e)
				}
			}
		},
		OnPersist: func(ctx context.Context, e *PersistenceEvent) {
			for _, h := range hooks {
				if h.OnPersist != nil {
					h.OnPersist(ctx, e)
				}
			}
		},
	}
}
