package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
)

// Notices written to the diagnostic stream after generation.
const (
	CopySuccessNotice = "✅ Command copied to clipboard!"
	CopyFailureNotice = "⚠️ Failed to copy to clipboard"
)

// Presenter writes the status notices that surround the generated command.
// Everything it prints goes to the diagnostic stream so stdout carries only
// the streamed command.
type Presenter struct {
	out     io.Writer
	color   bool
	verbose bool
}

// NewPresenter creates a Presenter writing to out. Color is used only when
// out is a terminal.
func NewPresenter(out io.Writer, verbose bool) *Presenter {
	return &Presenter{
		out:     out,
		color:   IsTerminal(out),
		verbose: verbose,
	}
}

// IsTerminal reports whether w is an interactive terminal. NO_COLOR disables
// color even on a terminal.
func IsTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (p *Presenter) paint(style pterm.Color, text string) string {
	if !p.color {
		return text
	}
	return style.Sprint(text)
}

// CopyResult prints the clipboard notice.
func (p *Presenter) CopyResult(ok bool) {
	if ok {
		fmt.Fprintln(p.out, p.paint(pterm.FgGreen, CopySuccessNotice))
		return
	}
	fmt.Fprintln(p.out, p.paint(pterm.FgYellow, CopyFailureNotice))
}

// Diagnostic prints a clipboard failure. The summary line is always
// written; the underlying cause, code and context follow in verbose mode.
func (p *Presenter) Diagnostic(err error) {
	if err == nil {
		return
	}

	line := err.Error()
	appErr, ok := apperrors.GetAppError(err)
	if ok && !p.verbose {
		line = appErr.Message
	}
	if p.color {
		pterm.Warning.WithWriter(p.out).Println(line)
	} else {
		fmt.Fprintf(p.out, "WARNING: %s\n", line)
	}

	if ok && p.verbose {
		fmt.Fprintf(p.out, "  code=%s context=%v\n", appErr.Code, appErr.Context)
	}
}
