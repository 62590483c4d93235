package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/goccy/go-json"
)

// createLogger configures the application logger.
// Logs go to w (stderr) so they never mix with command output.
func createLogger(opts Options, w io.Writer) *slog.Logger {
	if !opts.Debug {
		return logging.NewNop()
	}
	return logging.NewWithWriter(w, slog.LevelDebug, opts.LogJSON)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// IsInvalid reports whether err means the values did not validate
// (the report was already printed).
func IsInvalid(err error) bool {
	return errors.Is(err, domain.ErrInvalid)
}
