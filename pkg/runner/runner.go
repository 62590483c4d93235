package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
)

// Runner fills a form by prompting for each field through a PromptDriver.
// Invalid fields are asked again, with their message as help, until the
// form (or the current step) validates.
type Runner struct {
	driver PromptDriver
	logger *slog.Logger

	steps           [][]string
	autosave        bool
	maxAttempts     int
	signals         bool
	discardOnSubmit bool
}

// NewRunner creates a Runner that asks through driver.
func NewRunner(driver PromptDriver, opts ...Option) *Runner {
	r := &Runner{
		driver:   driver,
		logger:   logging.NewNop(),
		autosave: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fill prompts until the form validates and returns the typed result.
// Answers already present in the form (e.g. resumed from a snapshot) are
// offered as defaults.
func (r *Runner) Fill(ctx context.Context, form *formstate.Form) (schema.Result, error) {
	if r.signals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	steps, err := r.resolveSteps(form.Schema())
	if err != nil {
		return nil, err
	}

	for i, step := range steps {
		sub := form.Schema()
		if len(steps) > 1 || len(step) != sub.Len() {
			sub = sub.Pick(step...)
		}
		r.logger.Debug("filling step", "step", i+1, "fields", step)

		if err := r.fillStep(ctx, form, sub, step); err != nil {
			return nil, r.abort(ctx, form, err)
		}
		r.save(ctx, form)
	}

	var result schema.Result
	err = form.Submit(ctx, func(_ context.Context, res schema.Result) error {
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if r.discardOnSubmit && form.Key() != "" {
		if err := form.Discard(ctx); err != nil {
			r.logger.Warn("failed to discard snapshot after submit", "err", err)
		}
	}
	return result, nil
}

func (r *Runner) resolveSteps(s *schema.Schema) ([][]string, error) {
	if len(r.steps) == 0 {
		return [][]string{s.Names()}, nil
	}
	for _, step := range r.steps {
		for _, name := range step {
			if _, ok := s.Lookup(name); !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
			}
		}
	}
	return r.steps, nil
}

func (r *Runner) fillStep(ctx context.Context, form *formstate.Form, sub *schema.Schema, step []string) error {
	pending := step
	for attempt := 1; ; attempt++ {
		for _, name := range pending {
			if err := r.ask(ctx, form, name); err != nil {
				return err
			}
		}

		outcome := form.ValidateWith(ctx, sub)
		if outcome.Err != nil {
			return outcome.Err
		}
		if outcome.Valid() {
			return nil
		}

		for _, msg := range outcome.FormErrors {
			_ = r.driver.Info(ctx, msg)
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return &formstate.InvalidError{Errors: outcome.Errors, FormErrors: outcome.FormErrors}
		}

		pending = pending[:0:0]
		for _, name := range step {
			if _, failed := outcome.Errors[name]; failed {
				pending = append(pending, name)
			}
		}
		if len(pending) == 0 {
			pending = step
		}
		r.logger.Debug("asking again", "fields", pending, "attempt", attempt+1)
	}
}

// ask prompts for one field until the form accepts the answer.
func (r *Runner) ask(ctx context.Context, form *formstate.Form, name string) error {
	t, _ := form.Schema().Lookup(name)
	for {
		field, _ := form.State().Get(name)
		message := name
		if desc := schema.DescriptionOf(t); desc != "" && desc != string(field.Config.Type) {
			message = fmt.Sprintf("%s (%s)", name, desc)
		}

		var err error
		switch {
		case t.Kind() == schema.KindBoolean:
			current, _ := field.Value.AsBool()
			var answer bool
			answer, err = r.driver.Confirm(ctx, ConfirmConfig{Field: name, Message: message, Default: current, Help: field.Error})
			if err != nil {
				return err
			}
			err = form.Set(ctx, name, domain.Bool(answer))

		case field.Config.Type == domain.TypePassword:
			var answer string
			answer, err = r.driver.Password(ctx, InputConfig{Field: name, Message: message, Help: field.Error})
			if err != nil {
				return err
			}
			err = form.OnChange(ctx, formstate.ChangeEvent{Name: name, Value: answer, Type: inputType(t)})

		default:
			var answer string
			answer, err = r.driver.Input(ctx, InputConfig{Field: name, Message: message, Default: field.Value.String(), Help: field.Error})
			if err != nil {
				return err
			}
			err = form.OnChange(ctx, formstate.ChangeEvent{Name: name, Value: answer, Type: inputType(t)})
		}

		if err == nil {
			return nil
		}
		// Rejected input (sanitizer); ask again.
		r.logger.Debug("answer rejected", "field", name, "err", err)
		if infoErr := r.driver.Info(ctx, err.Error()); infoErr != nil {
			return infoErr
		}
	}
}

// inputType picks the coercion for typed answers from the field kind, so a
// described numeric field still reads its answer as a number.
func inputType(t schema.Type) domain.PresentationType {
	if t.Kind() == schema.KindNumber {
		return domain.TypeNumber
	}
	return ""
}

func (r *Runner) save(ctx context.Context, form *formstate.Form) {
	if !r.autosave || form.Key() == "" {
		return
	}
	if err := form.Snapshot(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("autosave failed", "err", err)
	}
}

// abort snapshots progress and normalizes the ways a user can stop.
func (r *Runner) abort(ctx context.Context, form *formstate.Form, err error) error {
	r.save(ctx, form)
	switch {
	case errors.Is(err, ErrAborted):
		return err
	case errors.Is(err, io.EOF), ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return err
}
