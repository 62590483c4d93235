package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// wordWrap <= 0 keeps glamour's default width.
func NewRenderer(wordWrap int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wordWrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wordWrap))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// StateTable renders a form state as a markdown table, one row per field in
// schema order. Password values are masked.
func StateTable(title string, state domain.FormState) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "## %s\n\n", title)
	}
	b.WriteString("| Field | Type | Value | Error |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for name, f := range state.All() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(name), cell(string(f.Config.Type)), cell(displayValue(f)), cell(f.Error))
	}
	return b.String()
}

func displayValue(f domain.FieldState) string {
	v := f.Value
	switch {
	case v.IsUnanswered():
		return "_unanswered_"
	case f.Config.Type == domain.TypePassword && v.String() != "":
		return "******"
	case !v.Valid():
		return fmt.Sprintf("%q (not a number)", v.Raw())
	case v.Kind() == domain.ValueText:
		return fmt.Sprintf("%q", v.String())
	default:
		return v.String()
	}
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
