package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the formstate banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{"   __                         _        _       ", "#818cf8"},
		{"  / _| ___  _ __ _ __ ___ ___| |_ __ _| |_ ___ ", "#a78bfa"},
		{" | |_ / _ \\| '__| '_ ` _ / __| __/ _` | __/ _ \\", "#c084fc"},
		{" |  _| (_) | |  | | | | | \\__ \\ || (_| | ||  __/", "#e879f9"},
		{" |_|  \\___/|_|  |_| |_| |_|___/\\__\\__,_|\\__\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
