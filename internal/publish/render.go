package publish

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Terminal reports whether w is a terminal that can show styled output, and
// whether its background is dark.
func Terminal(w io.Writer) (styled bool, dark bool) {
	f, ok := w.(*os.File)
	if !ok {
		return false, false
	}
	out := termenv.NewOutput(f)
	if out.Profile == termenv.Ascii {
		return false, false
	}
	return true, out.HasDarkBackground()
}

// Render styles md for a terminal of the given width. On any renderer error the
// markdown is returned unchanged.
func Render(md string, width int, dark bool) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
