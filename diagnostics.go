package bencode

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Explain renders err as a single human-readable line, colorized when
// stdout is a terminal. It understands *StructureError and *Error
// specifically; any other error is passed through via its Error()
// string. This is not the out-of-scope pretty-printer — it renders
// one error value, not a document tree.
func Explain(err error) string {
	if err == nil {
		return ""
	}

	kindColor := color.New(color.FgYellow, color.Bold)
	pathColor := color.New(color.FgCyan)
	if !isTerminal() {
		color.NoColor = true
	}

	switch e := err.(type) {
	case *StructureError:
		return kindColor.Sprint(e.Kind.String()) + ": " + e.Message
	case *Error:
		if path := e.Path(); path != "" {
			return pathColor.Sprint(path) + ": " + kindColor.Sprint(e.Kind.String()) + ": " + e.err.Error()
		}
		return kindColor.Sprint(e.Kind.String()) + ": " + e.err.Error()
	default:
		return err.Error()
	}
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
