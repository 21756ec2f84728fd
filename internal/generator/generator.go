package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
	"github.com/TonnyWong1052/shellgen/internal/llm"
	"github.com/TonnyWong1052/shellgen/internal/logging"
	"github.com/TonnyWong1052/shellgen/internal/prompt"
)

// ErrorPrefix marks a model answer that declines the request.
const ErrorPrefix = "ERROR:"

// Header is written to the sink before the first fragment.
const Header = "Generating command:"

// Request is one command generation.
type Request struct {
	Description   string
	PlatformLabel string
	Shell         string
	Model         string
}

// Result is the final, trimmed command text.
type Result struct {
	Text    string
	IsError bool
}

// Generator streams a completion to a sink while collecting the answer.
type Generator struct {
	provider llm.Provider
	prompts  *prompt.Manager
	sink     io.Writer
	logger   *logging.Logger
}

// New creates a Generator. A nil logger uses the "generator" component.
func New(provider llm.Provider, prompts *prompt.Manager, sink io.Writer, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.WithComponent("generator")
	}
	return &Generator{
		provider: provider,
		prompts:  prompts,
		sink:     sink,
		logger:   logger,
	}
}

// Generate asks the provider for a command and echoes every fragment to the
// sink as it arrives. A model answer starting with ERROR: is returned as a
// normal Result with IsError set.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	system, err := g.prompts.Render(prompt.KeyGenerateCommand, prompt.GenerateCommandData{
		Platform: req.PlatformLabel,
		Shell:    req.Shell,
	})
	if err != nil {
		return Result{}, apperrors.WrapError(err, apperrors.ErrInvalidConfiguration, "failed to render system prompt")
	}

	start := time.Now()
	g.logger.WithFields(map[string]interface{}{
		"provider": g.provider.Name(),
		"model":    req.Model,
		"platform": req.PlatformLabel,
		"shell":    req.Shell,
	}).Info("starting generation")

	if _, err := fmt.Fprintf(g.sink, "%s\n\n", Header); err != nil {
		return Result{}, apperrors.WrapError(err, apperrors.ErrGenerationFailed, "failed to write output")
	}

	stream, err := g.provider.StreamCompletion(ctx, llm.CompletionRequest{
		Model:       req.Model,
		System:      system,
		User:        req.Description,
		Temperature: 0,
	})
	if err != nil {
		return Result{}, g.failure(ctx, err, 0)
	}
	defer stream.Close()

	var acc strings.Builder
	fragments := 0
	for {
		if ctx.Err() != nil {
			return Result{}, g.interrupted(fragments)
		}

		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, g.failure(ctx, err, fragments)
		}

		// a fragment that arrived alongside the cancellation is dropped
		if ctx.Err() != nil {
			return Result{}, g.interrupted(fragments)
		}
		if _, err := io.WriteString(g.sink, fragment); err != nil {
			return Result{}, apperrors.WrapError(err, apperrors.ErrGenerationFailed, "failed to write output")
		}
		acc.WriteString(fragment)
		fragments++
	}

	if _, err := io.WriteString(g.sink, "\n"); err != nil {
		return Result{}, apperrors.WrapError(err, apperrors.ErrGenerationFailed, "failed to write output")
	}

	text := strings.TrimSpace(acc.String())
	result := Result{Text: text, IsError: strings.HasPrefix(text, ErrorPrefix)}

	g.logger.WithFields(map[string]interface{}{
		"fragments":   fragments,
		"bytes":       len(text),
		"model_error": result.IsError,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("stream finished")

	return result, nil
}

func (g *Generator) interrupted(fragments int) error {
	g.logger.WithField("fragments", fragments).Warn("generation interrupted")
	return apperrors.ErrGenerationInterrupted(fragments)
}

// failure maps a provider error, treating errors caused by cancellation as an
// interrupt rather than a failed request.
func (g *Generator) failure(ctx context.Context, err error, fragments int) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return g.interrupted(fragments)
	}
	g.logger.WithError(err).WithField("fragments", fragments).Error("generation failed")
	return apperrors.ErrGeneration(g.provider.Name(), err)
}
