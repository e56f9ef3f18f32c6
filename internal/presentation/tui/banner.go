package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sitepass banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	// Teal to green, one step per line
	lines := []struct {
		text  string
		color string
	}{
		{"      _ _                             ", "#2dd4bf"},
		{"  ___(_) |_ ___ _ __   __ _ ___ ___   ", "#34d399"},
		{" / __| | __/ _ \\ '_ \\ / _` / __/ __|  ", "#4ade80"},
		{" \\__ \\ | ||  __/ |_) | (_| \\__ \\__ \\  ", "#a3e635"},
		{" |___/_|\\__\\___| .__/ \\__,_|___/___/  ", "#facc15"},
		{"               |_|                    ", "#fbbf24"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
