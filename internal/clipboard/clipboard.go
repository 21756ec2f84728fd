// Package clipboard places text on the system clipboard by piping it to the
// platform's clipboard command.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/text/encoding/unicode"

	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
	"github.com/TonnyWong1052/shellgen/internal/logging"
	"github.com/TonnyWong1052/shellgen/internal/platform"
)

// Writer copies text to the clipboard. SetClipboard reports success and
// never returns an error; failures go to the Reporter.
type Writer interface {
	SetClipboard(ctx context.Context, text string) bool
	Name() string
}

// Runner executes name with args, feeding stdin to the process.
type Runner func(ctx context.Context, stdin []byte, name string, args ...string) error

// Reporter receives one diagnostic per failed mechanism whenever
// SetClipboard returns false.
type Reporter func(err error)

// Option configures a Writer built by New.
type Option func(*options)

type options struct {
	run    Runner
	report Reporter
	goos   string
}

// WithRunner replaces the process runner.
func WithRunner(run Runner) Option {
	return func(o *options) { o.run = run }
}

// WithGOOS names the operating system in diagnostics. It defaults to the
// family name.
func WithGOOS(goos string) Option {
	return func(o *options) { o.goos = goos }
}

// WithReporter replaces the default diagnostic reporter.
func WithReporter(report Reporter) Option {
	return func(o *options) { o.report = report }
}

// command is one clipboard program and how text is encoded for it.
type command struct {
	name   string
	args   []string
	encode func(string) ([]byte, error)
}

func (c command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

func utf8Bytes(text string) ([]byte, error) {
	return []byte(text), nil
}

// utf16Bytes encodes text as little-endian UTF-16 with a byte order mark,
// which is what clip.exe expects for non-ASCII input.
func utf16Bytes(text string) ([]byte, error) {
	return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
}

// commandWriter tries its commands in order and stops at the first success.
type commandWriter struct {
	name     string
	commands []command
	opts     options
	logger   *logging.Logger
}

// unsupportedWriter is used on OS families without a known mechanism.
type unsupportedWriter struct {
	family platform.Family
	opts   options
	logger *logging.Logger
}

// New resolves the clipboard mechanism for family once.
func New(family platform.Family, opts ...Option) Writer {
	o := options{run: runProcess, report: defaultReporter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.goos == "" {
		o.goos = string(family)
	}

	logger := logging.WithComponent("clipboard")
	switch family {
	case platform.Darwin:
		return &commandWriter{name: "pbcopy", opts: o, logger: logger, commands: []command{
			{name: "pbcopy", encode: utf8Bytes},
		}}
	case platform.Windows:
		return &commandWriter{name: "clip", opts: o, logger: logger, commands: []command{
			{name: "clip.exe", encode: utf16Bytes},
		}}
	case platform.Linux:
		return &commandWriter{name: "xclip/xsel", opts: o, logger: logger, commands: []command{
			{name: "xclip", args: []string{"-selection", "clipboard"}, encode: utf8Bytes},
			{name: "xsel", args: []string{"--clipboard", "--input"}, encode: utf8Bytes},
		}}
	default:
		return &unsupportedWriter{family: family, opts: o, logger: logger}
	}
}

func (w *commandWriter) Name() string {
	return w.name
}

// SetClipboard stops at the first mechanism that succeeds. Failures of
// earlier mechanisms are reported only when none succeeds.
func (w *commandWriter) SetClipboard(ctx context.Context, text string) bool {
	var failures []error
	for _, c := range w.commands {
		if err := w.try(ctx, c, text); err != nil {
			w.logger.WithError(err).WithField("mechanism", c.name).Warn("clipboard mechanism failed")
			failures = append(failures, apperrors.ErrClipboard(c.String(), err))
			continue
		}
		w.logger.WithField("mechanism", c.name).Debug("copied to clipboard")
		return true
	}
	for _, err := range failures {
		w.opts.report(err)
	}
	return false
}

// try runs a single mechanism. A panic from the runner counts as a failure.
func (w *commandWriter) try(ctx context.Context, c command, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard runner panic: %v", r)
		}
	}()

	data, err := c.encode(text)
	if err != nil {
		return err
	}
	return w.opts.run(ctx, data, c.name, c.args...)
}

func (w *unsupportedWriter) Name() string {
	return "unsupported"
}

func (w *unsupportedWriter) SetClipboard(ctx context.Context, text string) bool {
	w.logger.WithFields(map[string]interface{}{
		"family": w.family,
		"goos":   w.opts.goos,
	}).Warn("no clipboard mechanism for this platform")
	w.opts.report(apperrors.NewError(apperrors.ErrClipboardUnavailable,
		fmt.Sprintf("Unsupported platform: %s", w.opts.goos)).
		WithContext("family", string(w.family)).
		WithContext("goos", w.opts.goos))
	return false
}

func runProcess(ctx context.Context, stdin []byte, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func defaultReporter(err error) {
	if errors.Is(err, exec.ErrNotFound) {
		pterm.Debug.WithWriter(os.Stderr).Println(err.Error())
		return
	}
	pterm.Warning.WithWriter(os.Stderr).Println(err.Error())
}
