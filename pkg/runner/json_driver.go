package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Prompt is the JSON line a JSONDriver emits for every question.
type Prompt struct {
	Type    string `json:"type"` // "input", "password", "confirm" or "info"
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Default any    `json:"default,omitempty"`
	Help    string `json:"help,omitempty"`
}

// JSONDriver speaks JSON Lines: it writes one Prompt per question and reads
// one JSON value per answer. Plain unquoted text is accepted as well.
type JSONDriver struct {
	reader  *bufio.Reader
	encoder *json.Encoder
}

// NewJSONDriver creates a driver for JSON IO.
func NewJSONDriver(r io.Reader, w io.Writer) *JSONDriver {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONDriver{
		reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

func (d *JSONDriver) ask(ctx context.Context, p Prompt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.encoder.Encode(p); err != nil {
		return nil, err
	}
	text, err := d.reader.ReadString('\n')
	text = strings.TrimSpace(text)
	if err != nil && (err != io.EOF || text == "") {
		if err == io.EOF {
			return nil, ErrAborted
		}
		return nil, err
	}

	var val any
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	return text, nil
}

func (d *JSONDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	val, err := d.ask(ctx, Prompt{Type: "input", Field: cfg.Field, Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
	if err != nil {
		return "", err
	}
	return answerText(val), nil
}

func (d *JSONDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	val, err := d.ask(ctx, Prompt{Type: "password", Field: cfg.Field, Message: cfg.Message, Help: cfg.Help})
	if err != nil {
		return "", err
	}
	return answerText(val), nil
}

func (d *JSONDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	val, err := d.ask(ctx, Prompt{Type: "confirm", Field: cfg.Field, Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
	if err != nil {
		return false, err
	}
	switch v := val.(type) {
	case bool:
		return v, nil
	case nil:
		return cfg.Default, nil
	case string:
		if v == "" {
			return cfg.Default, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("field %s: expected a boolean answer, got %q", cfg.Field, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("field %s: expected a boolean answer, got %v", cfg.Field, v)
	}
}

func (d *JSONDriver) Info(ctx context.Context, msg string) error {
	return d.encoder.Encode(Prompt{Type: "info", Message: msg})
}

func answerText(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
