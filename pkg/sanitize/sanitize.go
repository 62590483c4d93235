// Package sanitize cleans raw field input before it reaches a form.
package sanitize

import (
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "FORMSTATE_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8, strips control
// characters and, optionally, strips HTML markup.
type Sanitizer struct {
	maxSize   int
	stripHTML bool
	policy    *bluemonday.Policy
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithMaxSize overrides the size limit (in bytes).
func WithMaxSize(n int) Option {
	return func(s *Sanitizer) {
		s.maxSize = n
	}
}

// WithHTMLStripping removes every HTML tag from input, keeping the text.
func WithHTMLStripping() Option {
	return func(s *Sanitizer) {
		s.stripHTML = true
	}
}

// New creates a Sanitizer. The size limit defaults to FORMSTATE_MAX_INPUT_SIZE or 4KB.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		maxSize: maxInputSize(),
		policy:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns the cleaned input or an error if it must be rejected.
func (s *Sanitizer) Sanitize(input string) (string, error) {
	// We explicitly reject rather than truncate to ensure deterministic state.
	if len(input) > s.maxSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), s.maxSize)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	out := stripControl(input)
	if s.stripHTML && strings.ContainsAny(out, "<>&") {
		// The strict policy escapes entities; forms store plain text.
		out = html.UnescapeString(s.policy.Sanitize(out))
	}
	return out, nil
}

// Input sanitizes with the default settings.
func Input(input string) (string, error) {
	return New().Sanitize(input)
}

// stripControl removes control characters except newline, tab and carriage return.
// This prevents log poisoning and terminal corruption.
func stripControl(input string) string {
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
