/*
Copyright 2024 Tim St. Pierre
Terminal output for the simulated panel
*/
package sim

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Terminal draws a Panel on stdout, redrawing in place when stdout is a
// terminal.
type Terminal struct {
	p     *Panel
	w     io.Writer
	ansi  bool
	drawn bool
	buf   bytes.Buffer
}

// NewTerminal returns a Terminal writing to stdout.
func NewTerminal(p *Panel) *Terminal {
	fd := os.Stdout.Fd()
	return &Terminal{
		p:    p,
		w:    colorable.NewColorableStdout(),
		ansi: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// Refresh draws the current panel content.
func (t *Terminal) Refresh() error {
	t.buf.Reset()
	if t.ansi && t.drawn {
		// Move back over the previous frame.
		fmt.Fprintf(&t.buf, "\033[%dA", t.p.rows+2)
	}
	if t.ansi {
		t.buf.WriteString("\033[30;42m")
	}
	if err := t.p.Render(&t.buf); err != nil {
		return err
	}
	if t.ansi {
		t.buf.WriteString("\033[0m")
	}
	t.drawn = true
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt resets the terminal colors.
func (t *Terminal) Halt() error {
	if !t.ansi {
		return nil
	}
	_, err := io.WriteString(t.w, "\033[0m")
	return err
}

func (t *Terminal) String() string {
	return "Terminal{" + t.p.String() + "}"
}
