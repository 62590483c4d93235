package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user stops filling the form
// (Ctrl+C, end of input or an "exit" answer).
var ErrAborted = errors.New("form filling aborted")

// InputConfig configures a text prompt.
type InputConfig struct {
	Field   string
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Field   string
	Message string
	Default bool
	Help    string
}

// PromptDriver abstracts how answers are collected, so the fill loop can run
// against a terminal, a line-based stream or a JSON peer.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	// Info presents a meta-message (validation feedback, status).
	Info(ctx context.Context, msg string) error
}

// SurveyDriver prompts on an interactive terminal.
type SurveyDriver struct {
	stdio terminal.Stdio
}

// NewSurveyDriver creates a driver bound to the process terminal.
func NewSurveyDriver() *SurveyDriver {
	return &SurveyDriver{stdio: terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}}
}

// NewSurveyDriverWithStdio creates a driver bound to the given streams.
func NewSurveyDriverWithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyDriver {
	return &SurveyDriver{stdio: terminal.Stdio{In: in, Out: out, Err: errOut}}
}

func (d *SurveyDriver) opts() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err)}
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}
	if err := survey.AskOne(prompt, &out, d.opts()...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Password{Message: cfg.Message, Help: cfg.Help}
	if err := survey.AskOne(prompt, &out, d.opts()...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}
	if err := survey.AskOne(prompt, &out, d.opts()...); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) Info(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(d.stdio.Out, msg)
	return err
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}
