package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
)

// Reducer applies actions to form states.
// It never mutates its input and never panics on unknown actions.
type Reducer struct {
	store  ports.SnapshotStore
	logger *slog.Logger
}

// ReducerOption configures a Reducer.
type ReducerOption func(*Reducer)

// WithReducerLogger configures a logger for the Reducer.
func WithReducerLogger(logger *slog.Logger) ReducerOption {
	return func(r *Reducer) {
		r.logger = logger
	}
}

// NewReducer creates a reducer that resumes snapshots from store.
// A nil store makes Resume a no-op.
func NewReducer(store ports.SnapshotStore, opts ...ReducerOption) *Reducer {
	r := &Reducer{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce returns the state that results from applying action to state.
// The returned state is always usable: on error it is the input state.
func (r *Reducer) Reduce(ctx context.Context, state domain.FormState, action domain.Action) (domain.FormState, error) {
	switch a := action.(type) {
	case domain.UpdateField:
		return r.updateField(state, a), nil
	case *domain.UpdateField:
		return r.updateField(state, *a), nil
	case domain.Validate:
		return r.validate(state, a), nil
	case *domain.Validate:
		return r.validate(state, *a), nil
	case domain.ResetForm:
		return a.InitialState, nil
	case *domain.ResetForm:
		return a.InitialState, nil
	case domain.Resume:
		return r.resume(ctx, state, a.Key)
	case *domain.Resume:
		return r.resume(ctx, state, a.Key)
	default:
		if action != nil {
			r.logger.Debug("ignoring unknown action", "type", action.Type())
		}
		return state, nil
	}
}

func (r *Reducer) updateField(state domain.FormState, a domain.UpdateField) domain.FormState {
	current, ok := state.Get(a.Field)
	if !ok {
		r.logger.Debug("ignoring update of unknown field", "field", a.Field)
		return state
	}

	value := a.Value
	if raw, isText := value.AsText(); isText {
		value = CoerceInput(current.Config.Type, raw)
	}

	return state.With(a.Field, domain.FieldState{
		Value:  value,
		Config: current.Config,
	})
}

func (r *Reducer) validate(state domain.FormState, a domain.Validate) domain.FormState {
	next := state
	for _, name := range a.Clear {
		f, ok := next.Get(name)
		if !ok || f.Error == "" {
			continue
		}
		if _, replaced := a.Errors[name]; replaced {
			continue
		}
		f.Error = ""
		next = next.With(name, f)
	}
	// Errors are applied in state order so the result does not depend on map iteration.
	for name, f := range state.All() {
		msg, ok := a.Errors[name]
		if !ok {
			continue
		}
		f, _ = next.Get(name)
		f.Error = msg
		next = next.With(name, f)
	}
	return next
}

func (r *Reducer) resume(ctx context.Context, state domain.FormState, key string) (domain.FormState, error) {
	if r.store == nil || key == "" {
		return state, nil
	}

	snapshot, err := r.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return state, nil
		}
		return state, fmt.Errorf("failed to resume %q: %w", key, err)
	}
	if snapshot == nil {
		return state, fmt.Errorf("failed to resume %q: %w: empty snapshot", key, domain.ErrMalformedSnapshot)
	}
	if snapshot.Sealed != "" {
		return state, fmt.Errorf("failed to resume %q: %w: snapshot is sealed", key, domain.ErrMalformedSnapshot)
	}
	if !snapshot.Fields.SameFields(state) {
		return state, fmt.Errorf("failed to resume %q: %w: stored fields %v do not match form fields %v",
			key, domain.ErrMalformedSnapshot, snapshot.Fields.Names(), state.Names())
	}

	// Keep the live declaration order.
	fields := make([]domain.NamedField, 0, state.Len())
	for name := range state.All() {
		f, _ := snapshot.Fields.Get(name)
		fields = append(fields, domain.NamedField{Name: name, FieldState: f})
	}
	return domain.NewFormState(fields...), nil
}
