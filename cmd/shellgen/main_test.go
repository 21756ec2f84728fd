package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TonnyWong1052/shellgen/internal/clipboard"
	"github.com/TonnyWong1052/shellgen/internal/config"
	"github.com/TonnyWong1052/shellgen/internal/llm"
	"github.com/TonnyWong1052/shellgen/internal/platform"
)

type scriptedStream struct {
	fragments  []string
	err        error
	pos        int
	beforeRecv func(pos int)
}

func (s *scriptedStream) Recv() (string, error) {
	if s.beforeRecv != nil {
		s.beforeRecv(s.pos)
	}
	if s.pos < len(s.fragments) {
		s.pos++
		return s.fragments[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

type scriptedProvider struct {
	stream   *scriptedStream
	requests []llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (llm.Stream, error) {
	p.requests = append(p.requests, req)
	return p.stream, nil
}

type fakeClipboard struct {
	ok    bool
	texts []string
}

func (c *fakeClipboard) Name() string { return "fake" }

func (c *fakeClipboard) SetClipboard(ctx context.Context, text string) bool {
	c.texts = append(c.texts, text)
	return c.ok
}

type harness struct {
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	provider  *scriptedProvider
	clipboard *fakeClipboard
	families  []platform.Family
}

func newHarness(t *testing.T, fragments ...string) *harness {
	t.Helper()
	for _, key := range []string{
		config.EnvAPIKey, config.EnvBaseURL, config.EnvModel,
		config.EnvPlatformPolicy, config.EnvPlatformLabel, config.EnvShell,
		config.EnvHeaders, config.EnvPromptsFile,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvLogOutput,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvLogFile, filepath.Join(t.TempDir(), "shellgen.log"))

	return &harness{
		provider:  &scriptedProvider{stream: &scriptedStream{fragments: fragments}},
		clipboard: &fakeClipboard{ok: true},
	}
}

func setRequiredEnv(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv(config.EnvBaseURL, "https://api.example.com/v1")
	t.Setenv(config.EnvModel, "test-model")
}

func (h *harness) deps() deps {
	return deps{
		stdout: &h.stdout,
		stderr: &h.stderr,
		detector: &platform.Detector{
			GOOS:   "linux",
			GOARCH: "amd64",
			ReadFile: func(name string) ([]byte, error) {
				return []byte("NAME=\"Ubuntu\"\nVERSION_ID=\"22.04\"\n"), nil
			},
			Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return nil, errors.New("not available")
			},
			Getenv: func(key string) string {
				if key == "SHELL" {
					return "/bin/bash"
				}
				return ""
			},
		},
		searchPaths: []string{},
		newProvider: func(cfg *config.Config) (llm.Provider, error) {
			return h.provider, nil
		},
		newClipboard: func(info platform.Info, report clipboard.Reporter) clipboard.Writer {
			h.families = append(h.families, info.Family)
			return h.clipboard
		},
	}
}

func (h *harness) run(ctx context.Context, args ...string) int {
	return run(ctx, args, h.deps())
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"empty description", []string{""}},
		{"blank words", []string{" ", ""}},
	}

	want := "Usage: shellgen \"<command description>\"\n" +
		"Example: shellgen \"list all files larger than 1MB in current directory\"\n" +
		"Note: Use quotes around descriptions containing spaces\n"

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "ls")
			setRequiredEnv(t)

			if code := h.run(context.Background(), tc.args...); code != 1 {
				t.Errorf("Expected exit 1, got %d", code)
			}
			if h.stdout.String() != want {
				t.Errorf("Unexpected usage output:\n%s", h.stdout.String())
			}
			if len(h.provider.requests) != 0 {
				t.Error("No request should be sent")
			}
			if len(h.families) != 0 {
				t.Error("Clipboard must not be touched")
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	h := newHarness(t, "find ", ". -size +1M")
	setRequiredEnv(t)

	code := h.run(context.Background(), "list", "all", "files", "larger", "than", "1MB", "in", "current", "directory")
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d (stderr: %s)", code, h.stderr.String())
	}

	if got := h.stdout.String(); got != "Generating command:\n\nfind . -size +1M\n" {
		t.Errorf("Unexpected stdout: %q", got)
	}
	if !strings.Contains(h.stderr.String(), "✅ Command copied to clipboard!") {
		t.Errorf("Expected success notice, got %q", h.stderr.String())
	}
	if len(h.clipboard.texts) != 1 || h.clipboard.texts[0] != "find . -size +1M" {
		t.Errorf("Unexpected clipboard content: %v", h.clipboard.texts)
	}
	if len(h.families) != 1 || h.families[0] != platform.Linux {
		t.Errorf("Clipboard should be resolved for linux, got %v", h.families)
	}

	req := h.provider.requests[0]
	if req.User != "list all files larger than 1MB in current directory" {
		t.Errorf("Arguments should be joined with single spaces, got %q", req.User)
	}
	if req.Model != "test-model" {
		t.Errorf("Unexpected model: %s", req.Model)
	}
	if !strings.Contains(req.System, "bash commands for Linux/Ubuntu22.04") {
		t.Errorf("System prompt should use the detected platform: %s", req.System)
	}
}

func TestRunClipboardFailureStillSucceeds(t *testing.T) {
	h := newHarness(t, "uptime")
	h.clipboard.ok = false
	setRequiredEnv(t)

	if code := h.run(context.Background(), "show uptime"); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "⚠️ Failed to copy to clipboard") {
		t.Errorf("Expected failure notice, got %q", h.stderr.String())
	}
}

func TestRunUnsupportedPlatformReportsOS(t *testing.T) {
	testCases := []struct {
		name       string
		debug      bool
		wantDetail bool
	}{
		{"default", false, false},
		{"debug", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "sockstat -4 -l")
			setRequiredEnv(t)

			d := h.deps()
			d.detector.GOOS = "freebsd"
			d.newClipboard = newClipboard

			args := []string{"list listening sockets"}
			if tc.debug {
				args = append([]string{"--debug"}, args...)
			}
			if code := run(context.Background(), args, d); code != 0 {
				t.Fatalf("Expected exit 0, got %d (stderr: %s)", code, h.stderr.String())
			}

			stderr := h.stderr.String()
			if !strings.Contains(stderr, "WARNING: Unsupported platform: freebsd\n") {
				t.Errorf("Diagnostic should name the OS, got %q", stderr)
			}
			if !strings.Contains(stderr, "⚠️ Failed to copy to clipboard") {
				t.Errorf("Expected failure notice, got %q", stderr)
			}
			if got := strings.Contains(stderr, "code=CLIPBOARD_UNAVAILABLE"); got != tc.wantDetail {
				t.Errorf("Detail shown = %v, want %v: %q", got, tc.wantDetail, stderr)
			}
			if !strings.Contains(h.stdout.String(), "sockstat -4 -l") {
				t.Errorf("Command should still be printed, got %q", h.stdout.String())
			}
			if !strings.Contains(h.provider.requests[0].System, "freebsd/amd64") {
				t.Errorf("System prompt should use the generic label: %s", h.provider.requests[0].System)
			}
		})
	}
}

func TestRunModelErrorIsCopied(t *testing.T) {
	h := newHarness(t, "ERROR: ", "request is unclear")
	setRequiredEnv(t)

	if code := h.run(context.Background(), "do the thing"); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(h.stdout.String(), "ERROR: request is unclear") {
		t.Errorf("Model error should be printed, got %q", h.stdout.String())
	}
	if len(h.clipboard.texts) != 1 || h.clipboard.texts[0] != "ERROR: request is unclear" {
		t.Errorf("Model error should be copied verbatim, got %v", h.clipboard.texts)
	}
}

func TestRunMissingConfiguration(t *testing.T) {
	testCases := []struct {
		name    string
		set     map[string]string
		wantKey string
	}{
		{"no api key", map[string]string{config.EnvBaseURL: "https://api.example.com/v1", config.EnvModel: "m"}, config.EnvAPIKey},
		{"no base url", map[string]string{config.EnvAPIKey: "sk", config.EnvModel: "m"}, config.EnvBaseURL},
		{"no model", map[string]string{config.EnvAPIKey: "sk", config.EnvBaseURL: "https://api.example.com/v1"}, config.EnvModel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "ls")
			for k, v := range tc.set {
				t.Setenv(k, v)
			}

			if code := h.run(context.Background(), "list files"); code != 1 {
				t.Errorf("Expected exit 1, got %d", code)
			}
			want := "ERROR: " + tc.wantKey + " not found in environment or .env file\n"
			if h.stderr.String() != want {
				t.Errorf("Expected %q, got %q", want, h.stderr.String())
			}
			if len(h.provider.requests) != 0 {
				t.Error("No request should be sent without configuration")
			}
		})
	}
}

func TestRunInterrupted(t *testing.T) {
	h := newHarness(t, "rm ", "-rf ", "build")
	setRequiredEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.provider.stream.beforeRecv = func(pos int) {
		if pos == 1 {
			cancel()
		}
	}

	if code := h.run(ctx, "clean the build"); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "Generation interrupted by user") {
		t.Errorf("Expected interrupt notice, got %q", h.stderr.String())
	}
	if strings.Contains(h.stdout.String(), "-rf") {
		t.Errorf("Nothing should be printed after the interrupt, got %q", h.stdout.String())
	}
	if len(h.families) != 0 || len(h.clipboard.texts) != 0 {
		t.Error("Clipboard must not be touched after an interrupt")
	}
}

func TestRunGenerationFailure(t *testing.T) {
	h := newHarness(t, "git ")
	h.provider.stream.err = llm.NewLLMError(llm.NetworkError, "Server error (status: 502)", nil)
	setRequiredEnv(t)

	if code := h.run(context.Background(), "show status"); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(h.stderr.String(), "ERROR: command generation failed") {
		t.Errorf("Unexpected stderr: %q", h.stderr.String())
	}
	if len(h.clipboard.texts) != 0 {
		t.Error("Clipboard must not be touched after a failure")
	}
}

func TestRunNoCopy(t *testing.T) {
	h := newHarness(t, "pwd")
	setRequiredEnv(t)

	if code := h.run(context.Background(), "--no-copy", "where am I"); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if len(h.families) != 0 {
		t.Error("Clipboard should not be used with --no-copy")
	}
	if h.stderr.Len() != 0 {
		t.Errorf("Expected no notices, got %q", h.stderr.String())
	}
}

func TestRunFixedPolicy(t *testing.T) {
	h := newHarness(t, "ls")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv(config.EnvBaseURL, "https://api.example.com/v1")

	if code := h.run(context.Background(), "--policy", "fixed", "list files"); code != 0 {
		t.Fatalf("Expected exit 0, got %d (stderr: %s)", code, h.stderr.String())
	}

	req := h.provider.requests[0]
	if req.Model != config.FixedModel {
		t.Errorf("Expected %s, got %s", config.FixedModel, req.Model)
	}
	if !strings.Contains(req.System, "zsh commands for Darwin/MacOS 12.6") {
		t.Errorf("Fixed policy should use the fixed label: %s", req.System)
	}
	if h.families[0] != platform.Linux {
		t.Error("Clipboard should still follow the real OS family")
	}
}

func TestRunDescriptionKeepsDashWords(t *testing.T) {
	h := newHarness(t, "ls -S")
	setRequiredEnv(t)

	if code := h.run(context.Background(), "sort", "by", "size", "--no-copy"); code != 0 {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if h.provider.requests[0].User != "sort by size --no-copy" {
		t.Errorf("Flags after the description belong to it, got %q", h.provider.requests[0].User)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	h := newHarness(t)

	if code := h.run(context.Background(), "--bogus"); code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(h.stderr.String(), "ERROR: ") {
		t.Errorf("Unexpected stderr: %q", h.stderr.String())
	}
}

func TestRunHelp(t *testing.T) {
	h := newHarness(t)

	if code := h.run(context.Background(), "--help"); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(h.stdout.String(), config.AppDescription+".") {
		t.Errorf("Help should open with the description, got %q", h.stdout.String())
	}
	if len(h.provider.requests) != 0 {
		t.Error("No request should be sent for --help")
	}
}

func TestRunVersion(t *testing.T) {
	h := newHarness(t)

	if code := h.run(context.Background(), "--version"); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(h.stdout.String(), version) {
		t.Errorf("Expected version in output, got %q", h.stdout.String())
	}
}
