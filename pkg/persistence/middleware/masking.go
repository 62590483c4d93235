package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
)

type maskingMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that never persists secret values.
// A field is secret when its presentation type is "password" or its name
// matches one of the patterns. Secret fields are saved blank, keeping their kind,
// so a resumed form asks for them again.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error {
	// FormState.With copies, so the caller's state is left intact.
	masked := *snapshot
	for name, f := range snapshot.Fields.All() {
		if m.secret(name, f.Config) {
			f.Value = blank(f.Value)
			masked.Fields = masked.Fields.With(name, f)
		}
	}
	return m.next.Save(ctx, key, &masked)
}

func (m *maskingMiddleware) secret(name string, config domain.FieldConfig) bool {
	if config.Type == domain.TypePassword {
		return true
	}
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func blank(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.ValueText:
		return domain.Text("")
	case domain.ValueNumber:
		return domain.Number(0)
	default:
		return domain.Unanswered()
	}
}

func (m *maskingMiddleware) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, key)
}

func (m *maskingMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *maskingMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
