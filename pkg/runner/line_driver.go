package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// LineDriver reads one answer per line. It is used when stdin is not a
// terminal (pipes, scripts) and in tests.
type LineDriver struct {
	reader *bufio.Reader
	writer io.Writer

	lines     chan lineResult
	startOnce sync.Once
}

type lineResult struct {
	text string
	err  error
}

// NewLineDriver creates a driver reading from r and prompting on w.
func NewLineDriver(r io.Reader, w io.Writer) *LineDriver {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &LineDriver{reader: bufio.NewReader(r), writer: w}
}

func (d *LineDriver) initPump() {
	d.startOnce.Do(func() {
		d.lines = make(chan lineResult)
		go d.pump()
	})
}

// pump reads lines in the background so a blocked read never outlives a
// cancelled context on the caller side.
func (d *LineDriver) pump() {
	for {
		text, err := d.reader.ReadString('\n')
		if text != "" {
			d.lines <- lineResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				d.lines <- lineResult{err: err}
			}
			close(d.lines)
			return
		}
	}
}

func (d *LineDriver) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.initPump()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-d.lines:
		if !ok {
			return "", ErrAborted
		}
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		if text == "exit" || text == "quit" {
			return "", ErrAborted
		}
		return text, nil
	}
}

func (d *LineDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	d.prompt(cfg.Message, cfg.Help, cfg.Default)
	text, err := d.readLine(ctx)
	if err != nil {
		return "", err
	}
	if text == "" {
		return cfg.Default, nil
	}
	return text, nil
}

func (d *LineDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	d.prompt(cfg.Message, cfg.Help, "")
	return d.readLine(ctx)
}

func (d *LineDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	hint := "y/N"
	if cfg.Default {
		hint = "Y/n"
	}
	for {
		d.prompt(cfg.Message, cfg.Help, hint)
		text, err := d.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(text) {
		case "":
			return cfg.Default, nil
		case "y", "yes", "on":
			return true, nil
		case "n", "no", "off":
			return false, nil
		}
		if b, err := strconv.ParseBool(text); err == nil {
			return b, nil
		}
		fmt.Fprintf(d.writer, "Please answer yes or no.\n")
	}
}

func (d *LineDriver) Info(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(d.writer, msg)
	return err
}

func (d *LineDriver) prompt(message, help, def string) {
	if help != "" {
		fmt.Fprintf(d.writer, "  (%s)\n", help)
	}
	if def != "" {
		fmt.Fprintf(d.writer, "%s [%s]: ", message, def)
		return
	}
	fmt.Fprintf(d.writer, "%s: ", message)
}
