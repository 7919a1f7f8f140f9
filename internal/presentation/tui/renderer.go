// Package tui renders engine side-effects on a terminal. The run command
// wires it as the dispatcher so authored dialog shows up as styled output
// instead of log lines.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer writes host requests to a terminal, with markdown styling when
// the output is an interactive TTY.
type Renderer struct {
	out      io.Writer
	markdown func(string) (string, error)
	profile  termenv.Profile
}

// New builds a renderer for out. Styling is enabled only when out is
// os.Stdout on a real terminal; piped output stays plain.
func New(out io.Writer) *Renderer {
	r := &Renderer{out: out, profile: termenv.Ascii}

	if out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
		r.profile = termenv.ColorProfile()
		if gr, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			r.markdown = gr.Render
		}
	}
	return r
}

// Say presents one line of speech.
func (r *Renderer) Say(speaker, line string) {
	if r.markdown != nil {
		md := line
		if speaker != "" {
			md = fmt.Sprintf("**%s:** %s", speaker, line)
		}
		if styled, err := r.markdown(md); err == nil {
			fmt.Fprint(r.out, styled)
			return
		}
	}
	if speaker != "" {
		fmt.Fprintf(r.out, "%s: %s\n", speaker, line)
		return
	}
	fmt.Fprintln(r.out, line)
}

// Move reports an object movement request.
func (r *Renderer) Move(object string, x, y, z float64, teleport bool) {
	verb := "moves to"
	if teleport {
		verb = "teleports to"
	}
	s := termenv.String(fmt.Sprintf("* %s %s (%.2f, %.2f, %.2f)", object, verb, x, y, z)).
		Foreground(r.profile.Color("#a78bfa")).
		Faint()
	fmt.Fprintln(r.out, s)
}

// System reports an engine meta-message.
func (r *Renderer) System(msg string) {
	s := termenv.String("# "+msg).Foreground(r.profile.Color("#818cf8")).Faint()
	fmt.Fprintln(r.out, s)
}
