package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an Issue.
type Code string

const (
	CodeInvalidType   Code = "invalid_type"
	CodeTooSmall      Code = "too_small"
	CodeTooBig        Code = "too_big"
	CodeInvalidString Code = "invalid_string"
	CodeCustom        Code = "custom"
)

// Issue represents a single validation failure.
// Path is empty for failures that concern the whole object.
type Issue struct {
	Path    []string `json:"path"`
	Code    Code     `json:"code"`
	Message string   `json:"message"`
}

func (i Issue) Error() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(i.Path, "."), i.Message)
}

// Issues is the structured error returned by Parse when data does not conform.
type Issues []Issue

func (e Issues) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e))
	for i, issue := range e {
		msg += fmt.Sprintf("  %d. %s\n", i+1, issue.Error())
	}
	return msg
}

// FieldErrors maps each field to a message; with several issues per field
// the last one wins.
func (e Issues) FieldErrors() map[string]string {
	out := make(map[string]string)
	for _, issue := range e {
		if len(issue.Path) == 0 {
			continue
		}
		out[issue.Path[0]] = issue.Message
	}
	return out
}

// FormErrors returns the messages of issues that have no field path.
func (e Issues) FormErrors() []string {
	var out []string
	for _, issue := range e {
		if len(issue.Path) == 0 {
			out = append(out, issue.Message)
		}
	}
	return out
}

// prefixed returns a copy of e with name prepended to every path.
func (e Issues) prefixed(name string) Issues {
	out := make(Issues, len(e))
	for i, issue := range e {
		issue.Path = append([]string{name}, issue.Path...)
		out[i] = issue
	}
	return out
}

// AsIssues extracts structured issues from err.
func AsIssues(err error) (Issues, bool) {
	var issues Issues
	if errors.As(err, &issues) {
		return issues, true
	}
	return nil, false
}

func issue(code Code, message string) Issues {
	return Issues{{Code: code, Message: message}}
}
