package errors

import (
	"fmt"
	"io"
	"os"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitCode maps an error to the process exit status. Every fatal error maps
// to 1; nil and non-fatal errors map to 0.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if appErr, ok := GetAppError(err); ok && !appErr.IsFatal() {
		return ExitSuccess
	}
	return ExitFailure
}

// ConsoleErrorHandler writes fatal errors as a single diagnostic line.
type ConsoleErrorHandler struct {
	out       io.Writer
	debugMode bool
}

// NewConsoleErrorHandler creates a handler writing to out (stderr when nil).
func NewConsoleErrorHandler(out io.Writer, debugMode bool) *ConsoleErrorHandler {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleErrorHandler{
		out:       out,
		debugMode: debugMode,
	}
}

// Handle prints err and returns the exit status to use.
func (h *ConsoleErrorHandler) Handle(err error) int {
	if err == nil {
		return ExitSuccess
	}

	appErr, ok := GetAppError(err)
	switch {
	case ok && appErr.Code == ErrInterrupted:
		// Interrupt gets its own notice rather than the ERROR prefix.
		fmt.Fprintf(h.out, "\n\n%s\n", appErr.Message)
	case ok:
		fmt.Fprintf(h.out, "ERROR: %s\n", appErr.Error())
		if h.debugMode {
			fmt.Fprintf(h.out, "  code=%s stack=%s context=%v\n", appErr.Code, appErr.Stack, appErr.Context)
		}
	default:
		fmt.Fprintf(h.out, "ERROR: %s\n", err.Error())
	}

	return ExitCode(err)
}
