package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/sitepass/internal/presentation/tui"
)

// Printer writes command results either as JSON or as rendered markdown.
type Printer struct {
	out    io.Writer
	json   bool
	render func(string) (string, error)
}

// NewPrinter creates a printer for w. Markdown is styled only when w is a terminal.
func NewPrinter(w io.Writer, jsonMode bool) *Printer {
	return &Printer{out: w, json: jsonMode, render: tui.NewRenderer(w)}
}

// JSON reports whether the printer emits machine output.
func (p *Printer) JSON() bool {
	return p.json
}

// Print writes v in JSON mode, otherwise the rendered markdown.
func (p *Printer) Print(markdown string, v any) error {
	if p.json {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	rendered, err := p.render(markdown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(p.out, rendered)
	return err
}

// Notice prints a system message unless in JSON mode.
func (p *Printer) Notice(format string, args ...any) {
	if !p.json {
		printSystemMessage(p.out, format, args...)
	}
}
