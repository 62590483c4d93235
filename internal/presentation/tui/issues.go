package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Report writes a validation report. Field errors follow order; fields not
// in order are skipped. A report without errors prints a success line.
func Report(w io.Writer, p termenv.Profile, order []string, errs map[string]string, formErrors []string) {
	if len(errs) == 0 && len(formErrors) == 0 {
		fmt.Fprintln(w, p.String("✓ valid").Foreground(p.Color("#22c55e")).Bold())
		return
	}

	fail := p.String("✗").Foreground(p.Color("#ef4444")).Bold()
	for _, name := range order {
		msg, ok := errs[name]
		if !ok {
			continue
		}
		field := p.String(name).Foreground(p.Color("#f59e0b"))
		fmt.Fprintf(w, "%s %s: %s\n", fail, field, msg)
	}
	for _, msg := range formErrors {
		fmt.Fprintf(w, "%s %s\n", fail, msg)
	}
}

// Profile returns the color profile for w: colors only on terminals.
func Profile(w io.Writer, isTerminal bool) termenv.Profile {
	if !isTerminal {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).ColorProfile()
}
