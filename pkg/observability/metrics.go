package observability

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for form activity.
// Field names are bounded by the schema, so they are safe as label values;
// form keys are not and never become labels.
type Metrics struct {
	fieldChanges *prometheus.CounterVec
	validations  *prometheus.CounterVec
	issues       prometheus.Histogram
	resets       prometheus.Counter
	persistence  *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace (default "formstate").
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "formstate"
	}
	return &Metrics{
		fieldChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_changes_total",
				Help:      "Total number of field updates",
			},
			[]string{"field", "valid"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validation passes by outcome",
			},
			[]string{"outcome"},
		),
		issues: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_issues",
				Help:      "Number of field and form errors reported per validation pass",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		resets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resets_total",
				Help:      "Total number of form resets",
			},
		),
		persistence: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_operations_total",
				Help:      "Total number of snapshot operations by type and result",
			},
			[]string{"operation", "result"},
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.fieldChanges, m.validations, m.issues, m.resets, m.persistence} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFieldChange: func(ctx context.Context, e *domain.FieldEvent) {
			m.fieldChanges.WithLabelValues(e.Field, strconv.FormatBool(e.Valid)).Inc()
		},
		OnValidate: func(ctx context.Context, e *domain.ValidationEvent) {
			m.validations.WithLabelValues(validationOutcome(e)).Inc()
			if e.Failure == "" {
				m.issues.Observe(float64(e.Errors + e.FormErrors))
			}
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			m.resets.Inc()
		},
		OnPersist: func(ctx context.Context, e *domain.PersistenceEvent) {
			m.persistence.WithLabelValues(string(e.Type), persistenceResult(e)).Inc()
		},
	}
}

func validationOutcome(e *domain.ValidationEvent) string {
	switch {
	case e.Failure != "":
		return "failed"
	case e.Valid():
		return "valid"
	default:
		return "invalid"
	}
}

func persistenceResult(e *domain.PersistenceEvent) string {
	switch {
	case errors.Is(e.Err, domain.ErrMalformedSnapshot):
		return "malformed"
	case e.Err != nil:
		return "error"
	case e.Type == domain.EventResumed && !e.Found:
		return "miss"
	default:
		return "ok"
	}
}
