package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formstate/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Field values are never logged.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFieldChange: func(ctx context.Context, e *domain.FieldEvent) {
			logger.DebugContext(ctx, "field_changed",
				"form", e.FormKey,
				"field", e.Field,
				"kind", e.Kind,
				"valid", e.Valid,
			)
		},
		OnValidate: func(ctx context.Context, e *domain.ValidationEvent) {
			if e.Failure != "" {
				logger.ErrorContext(ctx, "validation_failed", "form", e.FormKey, "failure", e.Failure)
				return
			}
			logger.InfoContext(ctx, "validated",
				"form", e.FormKey,
				"fields", e.Fields,
				"errors", e.Errors,
				"form_errors", e.FormErrors,
			)
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			logger.InfoContext(ctx, "reset", "form", e.FormKey)
		},
		OnPersist: func(ctx context.Context, e *domain.PersistenceEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, string(e.Type), "form", e.FormKey, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, string(e.Type), "form", e.FormKey, "found", e.Found)
		},
	}
}
