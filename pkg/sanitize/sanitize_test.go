package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize_SizeLimit(t *testing.T) {
	limit := 4096

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Input(input)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("Input() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else if err != nil {
				t.Errorf("Input() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	if _, err := Input("bad \xff byte"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestSanitize_HTML(t *testing.T) {
	s := New(WithHTMLStripping())

	got, err := s.Sanitize(`Ada <script>alert(1)</script><b>Lovelace</b>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<") || !strings.Contains(got, "Lovelace") {
		t.Errorf("markup should be stripped, got %q", got)
	}

	got, _ = s.Sanitize("Tom & Jerry")
	if got != "Tom & Jerry" {
		t.Errorf("entities should stay plain text, got %q", got)
	}

	plain, _ := New().Sanitize("<b>kept</b>")
	if plain != "<b>kept</b>" {
		t.Errorf("markup is kept without WithHTMLStripping, got %q", plain)
	}
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv("FORMSTATE_MAX_INPUT_SIZE", "10")

	if _, err := Input("12345678901"); err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}
	if _, err := Input("12345"); err != nil {
		t.Error("Unexpected error for valid input")
	}

	if _, err := New(WithMaxSize(3)).Sanitize("1234"); err == nil {
		t.Error("WithMaxSize should take precedence over the environment")
	}
}
