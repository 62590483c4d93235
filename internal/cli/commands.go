package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/presentation/tui"
	httpadapter "github.com/aretw0/formstate/pkg/adapters/http"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/observability"
	"github.com/aretw0/formstate/pkg/runner"
	"github.com/aretw0/formstate/pkg/sanitize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SchemaRef points at a schema file and, for OpenAPI documents, a component.
type SchemaRef struct {
	Path      string
	Component string
}

// Inspect prints the initial state of a schema, or the stored state when key is set.
func Inspect(ctx context.Context, opts Options, ref SchemaRef, key string, asJSON bool, stdio IO) error {
	logger := createLogger(opts, stdio.Err)
	s, err := LoadSchema(ctx, ref.Path, ref.Component)
	if err != nil {
		return err
	}

	var form *formstate.Form
	if key != "" {
		sessions, closeFn, err := OpenSessions(ctx, opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		if form, err = sessions.Open(ctx, key, s); err != nil {
			return err
		}
	} else if form, err = formstate.New(s, formstate.WithLogger(logger)); err != nil {
		return err
	}

	if asJSON {
		return writeJSON(stdio.Out, form.State())
	}
	title := s.Name()
	if key != "" {
		title = fmt.Sprintf("%s (%s)", title, key)
	}
	return printMarkdown(stdio, tui.StateTable(title, form.State()))
}

// Validate checks a values file against a schema and prints a report.
// An invalid file yields an error wrapping domain.ErrInvalid.
func Validate(ctx context.Context, opts Options, ref SchemaRef, valuesPath string, stdio IO) error {
	logger := createLogger(opts, stdio.Err)
	s, err := LoadSchema(ctx, ref.Path, ref.Component)
	if err != nil {
		return err
	}
	values, err := LoadValues(valuesPath)
	if err != nil {
		return err
	}

	form, err := formstate.New(s, formstate.WithLogger(logger))
	if err != nil {
		return err
	}
	for name, v := range values {
		if _, ok := s.Lookup(name); !ok {
			logger.Warn("ignoring unknown field", "field", name)
			continue
		}
		if err := form.Set(ctx, name, domain.ValueOf(v)); err != nil {
			return err
		}
	}

	outcome := form.Validate(ctx)
	if outcome.Err != nil {
		return outcome.Err
	}
	tui.Report(stdio.Out, tui.Profile(stdio.Out, stdio.Interactive), s.Names(), outcome.Errors, outcome.FormErrors)
	if !outcome.Valid() {
		return &formstate.InvalidError{Errors: outcome.Errors, FormErrors: outcome.FormErrors}
	}
	return nil
}

// FillOptions configures the fill command.
type FillOptions struct {
	Key         string
	JSON        bool
	Fresh       bool
	Steps       []string // comma separated field lists
	MaxAttempts int
	Discard     bool
	StripHTML   bool
}

// Fill prompts for a schema's fields and prints the validated result as JSON.
// With a key, progress is resumed from and saved to the store.
func Fill(ctx context.Context, opts Options, ref SchemaRef, fo FillOptions, stdio IO) error {
	logger := createLogger(opts, stdio.Err)
	s, err := LoadSchema(ctx, ref.Path, ref.Component)
	if err != nil {
		return err
	}

	var sanitizerOpts []sanitize.Option
	if fo.StripHTML {
		sanitizerOpts = append(sanitizerOpts, sanitize.WithHTMLStripping())
	}
	formOpts := []formstate.Option{
		formstate.WithLogger(logger),
		formstate.WithSanitizer(sanitize.New(sanitizerOpts...)),
	}
	if opts.Debug {
		formOpts = append(formOpts, formstate.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	var form *formstate.Form
	if fo.Key != "" {
		sessions, closeFn, err := OpenSessions(ctx, opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		if fo.Fresh {
			if err := sessions.Delete(ctx, fo.Key); err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
				return err
			}
		}
		if form, err = sessions.Open(ctx, fo.Key, s, formOpts...); err != nil {
			return err
		}
	} else if form, err = formstate.New(s, formOpts...); err != nil {
		return err
	}

	if !fo.JSON && stdio.Interactive {
		tui.PrintBanner(stdio.Err, tui.Profile(stdio.Err, true))
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithSignals(true),
		runner.WithMaxAttempts(fo.MaxAttempts),
		runner.WithDiscardOnSubmit(fo.Discard),
	}
	if len(fo.Steps) > 0 {
		steps := make([][]string, 0, len(fo.Steps))
		for _, step := range fo.Steps {
			steps = append(steps, splitFields(step))
		}
		runnerOpts = append(runnerOpts, runner.WithSteps(steps...))
	}

	result, err := runner.NewRunner(pickDriver(fo, stdio), runnerOpts...).Fill(ctx, form)
	if errors.Is(err, runner.ErrAborted) {
		if form.Key() != "" {
			printSystemMessage(stdio.Err, "Interrupted, progress saved under '%s'.", form.Key())
		} else {
			printSystemMessage(stdio.Err, "Interrupted.")
		}
		return nil
	}
	if err != nil {
		return err
	}
	return writeJSON(stdio.Out, result)
}

func pickDriver(fo FillOptions, stdio IO) runner.PromptDriver {
	if fo.JSON {
		return runner.NewJSONDriver(stdio.In, stdio.Out)
	}
	in, isFile := stdio.In.(*os.File)
	out, outIsFile := stdio.Out.(*os.File)
	if stdio.Interactive && isFile && outIsFile {
		return runner.NewSurveyDriverWithStdio(in, out, stdio.Err)
	}
	return runner.NewLineDriver(stdio.In, stdio.Err)
}

func splitFields(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListSnapshots prints every stored key, sorted.
func ListSnapshots(ctx context.Context, opts Options, stdio IO) error {
	sessions, closeFn, err := OpenSessions(ctx, opts, createLogger(opts, stdio.Err))
	if err != nil {
		return err
	}
	defer closeFn()

	keys, err := sessions.List(ctx)
	if err != nil {
		return err
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintln(stdio.Out, key)
	}
	return nil
}

// ShowSnapshot prints a stored snapshot.
func ShowSnapshot(ctx context.Context, opts Options, key string, asJSON bool, stdio IO) error {
	sessions, closeFn, err := OpenSessions(ctx, opts, createLogger(opts, stdio.Err))
	if err != nil {
		return err
	}
	defer closeFn()

	snap, err := sessions.Load(ctx, key)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(stdio.Out, snap)
	}
	title := fmt.Sprintf("%s (saved %s)", key, snap.SavedAt.Format(time.RFC3339))
	return printMarkdown(stdio, tui.StateTable(title, snap.Fields))
}

// RemoveSnapshot deletes a stored snapshot.
func RemoveSnapshot(ctx context.Context, opts Options, key string, stdio IO) error {
	sessions, closeFn, err := OpenSessions(ctx, opts, createLogger(opts, stdio.Err))
	if err != nil {
		return err
	}
	defer closeFn()

	if err := sessions.Delete(ctx, key); err != nil {
		return err
	}
	printSystemMessage(stdio.Err, "Snapshot '%s' removed.", key)
	return nil
}

func printMarkdown(stdio IO, md string) error {
	if !stdio.Interactive {
		_, err := fmt.Fprint(stdio.Out, md)
		return err
	}
	render, err := tui.NewRenderer(0)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdio.Out, out)
	return err
}

// ServeOptions configures the HTTP host.
type ServeOptions struct {
	Addr      string
	SchemaDir string
	StripHTML bool
}

// NewServer assembles the HTTP host: schemas from a directory, snapshots in
// the configured store, Prometheus metrics and structured request logs.
// The returned func releases the store.
func NewServer(ctx context.Context, opts Options, so ServeOptions, stdio IO) (*http.Server, func() error, error) {
	logger := createLogger(opts, stdio.Err)

	loader, err := LoadDir(ctx, so.SchemaDir)
	if err != nil {
		return nil, nil, err
	}
	sessions, closeFn, err := OpenSessions(ctx, opts, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("")
	if err := metrics.Register(reg); err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var sanitizerOpts []sanitize.Option
	if so.StripHTML {
		sanitizerOpts = append(sanitizerOpts, sanitize.WithHTMLStripping())
	}

	handler := httpadapter.NewHandler(loader,
		httpadapter.WithSessions(sessions),
		httpadapter.WithSanitizer(sanitize.New(sanitizerOpts...)),
		httpadapter.WithLifecycleHooks(domain.Combine(metrics.Hooks(), observability.LoggingHooks(logger))),
		httpadapter.WithMetrics(reg),
		httpadapter.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:              so.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, closeFn, nil
}

// Serve runs the HTTP host until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts Options, so ServeOptions, stdio IO) error {
	srv, closeFn, err := NewServer(ctx, opts, so, stdio)
	if err != nil {
		return err
	}
	defer closeFn()

	printSystemMessage(stdio.Err, "Starting formstate server on %s", srv.Addr)
	printSystemMessage(stdio.Err, "Serving schemas from: %s", so.SchemaDir)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(stdio.Err, "Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		printSystemMessage(stdio.Err, "Server stopped gracefully")
		return nil
	}
}
