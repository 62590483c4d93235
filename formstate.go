package formstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/internal/runtime"
	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/schema"
)

// Outcome is the result of a validation pass.
// Exactly one of Result, Errors/FormErrors or Err is meaningful.
type Outcome = runtime.Outcome

// Sanitizer cleans raw text input before it is stored.
type Sanitizer interface {
	Sanitize(input string) (string, error)
}

// ChangeEvent is a change notification from an input control.
type ChangeEvent struct {
	// Name is the field name.
	Name string
	// Value is the raw input text.
	Value string
	// Type is the control's presentation type. "number" inputs are read as
	// integers and "checkbox" inputs as booleans; empty means the field's own type.
	Type domain.PresentationType
	// Literal, when set, is stored as-is instead of Value.
	Literal *domain.Value
}

// Form is the controller a UI binds to.
// It owns one FormState, derived from a schema, and is safe for concurrent use.
type Form struct {
	mu         sync.Mutex
	schema     *schema.Schema
	state      domain.FormState
	formErrors []string
	revision   uint64

	reducer   *runtime.Reducer
	store     ports.SnapshotStore
	key       string
	hooks     domain.LifecycleHooks
	sanitizer Sanitizer
	logger    *slog.Logger
}

// Option defines a functional option for configuring a Form.
type Option func(*Form)

// WithStore sets the snapshot store (default: a store that keeps nothing).
func WithStore(store ports.SnapshotStore) Option {
	return func(f *Form) {
		f.store = store
	}
}

// WithKey sets the storage key used by Resume, Snapshot and Discard.
func WithKey(key string) Option {
	return func(f *Form) {
		f.key = key
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Form) {
		f.hooks = hooks
	}
}

// WithSanitizer cleans every text change before it reaches the state.
func WithSanitizer(s Sanitizer) Option {
	return func(f *Form) {
		f.sanitizer = s
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// New creates a form whose initial state is introspected from s.
// It does not touch storage; use Open to resume a stored snapshot as well.
func New(s *schema.Schema, opts ...Option) (*Form, error) {
	if s == nil || s.Len() == 0 {
		return nil, errors.New("schema has no fields")
	}

	f := &Form{schema: s}
	for _, opt := range opts {
		opt(f)
	}
	if f.store == nil {
		f.store = memory.NewDiscard()
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}
	if f.key != "" {
		f.logger = f.logger.With("form", f.key)
	}

	f.reducer = runtime.NewReducer(f.store, runtime.WithReducerLogger(f.logger))
	f.state = runtime.Introspect(s)
	return f, nil
}

// Open creates a form and resumes the snapshot stored under its key, if any.
// A malformed snapshot is logged and ignored; store failures are returned.
func Open(ctx context.Context, s *schema.Schema, opts ...Option) (*Form, error) {
	f, err := New(s, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.Resume(ctx); err != nil && !errors.Is(err, domain.ErrMalformedSnapshot) {
		return nil, err
	}
	return f, nil
}

// Schema returns the schema the form was built from.
func (f *Form) Schema() *schema.Schema { return f.schema }

// Key returns the storage key (empty when the form is not persisted).
func (f *Form) Key() string { return f.key }

// State returns the current state.
func (f *Form) State() domain.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// FormErrors returns the form-wide messages of the last validation.
func (f *Form) FormErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.formErrors...)
}

// Dispatch applies an action to the state.
func (f *Form) Dispatch(ctx context.Context, action domain.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dispatchLocked(ctx, action)
}

func (f *Form) dispatchLocked(ctx context.Context, action domain.Action) error {
	next, err := f.reducer.Reduce(ctx, f.state, action)
	f.state = next
	f.revision++
	return err
}

// OnChange applies a change event from an input control.
func (f *Form) OnChange(ctx context.Context, ev ChangeEvent) error {
	_, err := f.Change(ctx, ev)
	return err
}

// Change applies a change event and returns what it changed. The diff is taken
// under the update's lock and holds only this change.
func (f *Form) Change(ctx context.Context, ev ChangeEvent) (*domain.StateDiff, error) {
	var value domain.Value
	switch {
	case ev.Literal != nil:
		value = *ev.Literal
	default:
		raw := ev.Value
		if f.sanitizer != nil {
			clean, err := f.sanitizer.Sanitize(raw)
			if err != nil {
				f.logger.Warn("rejected field input", "field", ev.Name, "err", err)
				return nil, fmt.Errorf("field %s: %w", ev.Name, err)
			}
			raw = clean
		}
		if ev.Type == domain.TypeNumber || ev.Type == domain.TypeCheckbox {
			value = runtime.CoerceInput(ev.Type, raw)
		} else {
			value = domain.Text(raw)
		}
	}
	return f.apply(ctx, ev.Name, value)
}

// Set overwrites a field with value. Text is still coerced for numeric and checkbox fields.
func (f *Form) Set(ctx context.Context, field string, value domain.Value) error {
	_, err := f.apply(ctx, field, value)
	return err
}

func (f *Form) apply(ctx context.Context, field string, value domain.Value) (*domain.StateDiff, error) {
	f.mu.Lock()
	if !f.state.Has(field) {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	before := f.state
	err := f.dispatchLocked(ctx, domain.UpdateField{Field: field, Value: value})
	diff := domain.Diff(&before, f.state)
	stored, _ := f.state.Get(field)
	f.mu.Unlock()

	if f.hooks.OnFieldChange != nil {
		f.hooks.OnFieldChange(ctx, &domain.FieldEvent{
			EventBase: domain.NewEventBase(domain.EventFieldChanged, f.key),
			Field:     field,
			Kind:      stored.Value.Kind(),
			Valid:     stored.Value.Valid(),
		})
	}
	return diff, err
}

// Validate checks the whole form and records per-field errors.
func (f *Form) Validate(ctx context.Context) Outcome {
	return f.ValidateWith(ctx, f.schema)
}

// ValidateWith checks the form against sub, typically a Pick of the form's
// schema for one step. Only sub's fields receive or lose errors.
func (f *Form) ValidateWith(ctx context.Context, sub *schema.Schema) Outcome {
	f.mu.Lock()
	outcome := runtime.Validate(sub, f.state)
	if outcome.Err == nil {
		_ = f.dispatchLocked(ctx, domain.Validate{Errors: outcome.Errors, Clear: sub.Names()})
		f.formErrors = outcome.FormErrors
	}
	fields := sub.Len()
	f.mu.Unlock()

	event := &domain.ValidationEvent{
		EventBase:  domain.NewEventBase(domain.EventValidated, f.key),
		Fields:     fields,
		Errors:     len(outcome.Errors),
		FormErrors: len(outcome.FormErrors),
	}
	if outcome.Err != nil {
		event.Failure = outcome.Err.Error()
		f.logger.Error("validation failed", "err", outcome.Err)
	} else if !outcome.Valid() {
		f.logger.Debug("form is invalid", "errors", len(outcome.Errors), "form_errors", len(outcome.FormErrors))
	}
	if f.hooks.OnValidate != nil {
		f.hooks.OnValidate(ctx, event)
	}
	return outcome
}

// Reset restores the freshly introspected state.
func (f *Form) Reset(ctx context.Context) {
	f.mu.Lock()
	_ = f.dispatchLocked(ctx, domain.ResetForm{InitialState: runtime.Introspect(f.schema)})
	f.formErrors = nil
	f.mu.Unlock()

	if f.hooks.OnReset != nil {
		base := domain.NewEventBase(domain.EventReset, f.key)
		f.hooks.OnReset(ctx, &base)
	}
}

// Resume loads the snapshot stored under the form's key.
// A missing snapshot is not an error. If the state changed while the
// snapshot was loading, the newer state wins and the snapshot is dropped.
func (f *Form) Resume(ctx context.Context) error {
	if f.key == "" {
		return nil
	}

	f.mu.Lock()
	rev := f.revision
	current := f.state
	f.mu.Unlock()

	next, err := f.reducer.Reduce(ctx, current, domain.Resume{Key: f.key})

	event := &domain.PersistenceEvent{
		EventBase: domain.NewEventBase(domain.EventResumed, f.key),
		Err:       err,
	}
	defer func() {
		if f.hooks.OnPersist != nil {
			f.hooks.OnPersist(ctx, event)
		}
	}()

	if err != nil {
		f.logger.Error("failed to resume form", "err", err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revision != rev {
		f.logger.Debug("discarding resumed snapshot, form changed meanwhile")
		return nil
	}
	event.Found = !next.Equal(current)
	f.state = next
	f.revision++
	return nil
}

// Snapshot saves the current state under the form's key.
func (f *Form) Snapshot(ctx context.Context) error {
	if f.key == "" {
		return domain.ErrMissingKey
	}
	err := f.store.Save(ctx, f.key, domain.NewSnapshot(f.key, f.State()))
	if err != nil {
		err = fmt.Errorf("failed to save snapshot: %w", err)
		f.logger.Error("snapshot failed", "err", err)
	}
	if f.hooks.OnPersist != nil {
		f.hooks.OnPersist(ctx, &domain.PersistenceEvent{
			EventBase: domain.NewEventBase(domain.EventSnapshotSaved, f.key),
			Found:     true,
			Err:       err,
		})
	}
	return err
}

// Discard removes the stored snapshot.
func (f *Form) Discard(ctx context.Context) error {
	if f.key == "" {
		return domain.ErrMissingKey
	}
	err := f.store.Delete(ctx, f.key)
	if err != nil {
		err = fmt.Errorf("failed to discard snapshot: %w", err)
	}
	if f.hooks.OnPersist != nil {
		f.hooks.OnPersist(ctx, &domain.PersistenceEvent{
			EventBase: domain.NewEventBase(domain.EventSnapshotDiscarded, f.key),
			Err:       err,
		})
	}
	return err
}

// InvalidError is returned by Submit when the form does not validate.
type InvalidError struct {
	Errors     map[string]string
	FormErrors []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s: %d field error(s), %d form error(s)", domain.ErrInvalid, len(e.Errors), len(e.FormErrors))
}

func (e *InvalidError) Unwrap() error { return domain.ErrInvalid }

// Submit validates the form and, when valid, hands the typed result to fn.
// An invalid form yields an *InvalidError; a broken validation yields its error.
func (f *Form) Submit(ctx context.Context, fn func(context.Context, schema.Result) error) error {
	outcome := f.Validate(ctx)
	if outcome.Err != nil {
		return outcome.Err
	}
	if !outcome.Valid() {
		return &InvalidError{Errors: outcome.Errors, FormErrors: outcome.FormErrors}
	}
	return fn(ctx, outcome.Result)
}
