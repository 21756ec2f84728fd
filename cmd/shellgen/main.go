package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TonnyWong1052/shellgen/internal/clipboard"
	"github.com/TonnyWong1052/shellgen/internal/config"
	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
	"github.com/TonnyWong1052/shellgen/internal/generator"
	"github.com/TonnyWong1052/shellgen/internal/llm"
	_ "github.com/TonnyWong1052/shellgen/internal/llm/openai"
	"github.com/TonnyWong1052/shellgen/internal/logging"
	"github.com/TonnyWong1052/shellgen/internal/platform"
	"github.com/TonnyWong1052/shellgen/internal/prompt"
	"github.com/TonnyWong1052/shellgen/internal/security"
	"github.com/TonnyWong1052/shellgen/internal/ui"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const usageText = `Usage: shellgen "<command description>"
Example: shellgen "list all files larger than 1MB in current directory"
Note: Use quotes around descriptions containing spaces
`

// deps are the collaborators run needs; tests replace them.
type deps struct {
	stdout       io.Writer
	stderr       io.Writer
	detector     *platform.Detector
	searchPaths  []string
	newProvider  func(cfg *config.Config) (llm.Provider, error)
	newClipboard func(info platform.Info, report clipboard.Reporter) clipboard.Writer
}

func defaultDeps() deps {
	return deps{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		detector:    platform.NewDetector(),
		newProvider: newProvider,
		newClipboard: newClipboard,
	}
}

func newProvider(cfg *config.Config) (llm.Provider, error) {
	return llm.GetProvider(config.ProviderOpenAI, llm.ProviderConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Headers: cfg.Headers,
	})
}

func newClipboard(info platform.Info, report clipboard.Reporter) clipboard.Writer {
	return clipboard.New(info.Family, clipboard.WithGOOS(info.GOOS), clipboard.WithReporter(report))
}

type flags struct {
	envFile string
	policy  string
	noCopy  bool
	debug   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultDeps())
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit status.
func run(ctx context.Context, args []string, d deps) int {
	var f flags
	code := apperrors.ExitSuccess

	rootCmd := &cobra.Command{
		Use:   `shellgen "<command description>"`,
		Short: config.AppDescription,
		Long: config.AppDescription + `.

shellgen sends a description of what you want to do to an
OpenAI-compatible model and prints the single shell command it returns,
streaming it as it is generated and copying the result to the clipboard.

Configuration is read from API_KEY, BASE_URL and MODEL in the environment
or a .env file.`,
		Example:       `  shellgen "list all files larger than 1MB in current directory"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.Join(args, " ")
			if strings.TrimSpace(description) == "" {
				fmt.Fprint(d.stdout, usageText)
				code = apperrors.ExitFailure
				return nil
			}
			code = generate(ctx, description, f, d)
			return nil
		},
	}

	// Everything after the first word belongs to the description.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVar(&f.envFile, "env-file", "", "read settings from this .env file")
	rootCmd.Flags().StringVar(&f.policy, "policy", "", "platform policy: detect or fixed (overrides "+config.EnvPlatformPolicy+")")
	rootCmd.Flags().BoolVar(&f.noCopy, "no-copy", false, "do not copy the command to the clipboard")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "log to the console at debug level and show error details")

	rootCmd.SetArgs(args)
	rootCmd.SetOut(d.stdout)
	rootCmd.SetErr(d.stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(d.stderr, "ERROR: %s\n", err.Error())
		return apperrors.ExitFailure
	}
	return code
}

// generate runs the pipeline: config, platform, stream, clipboard.
func generate(ctx context.Context, description string, f flags, d deps) int {
	handler := apperrors.NewConsoleErrorHandler(d.stderr, f.debug)

	cfg, err := config.Load(config.LoadOptions{
		EnvFile:     f.envFile,
		Policy:      f.policy,
		SearchPaths: d.searchPaths,
	})
	if err != nil {
		return handler.Handle(err)
	}

	setupLogging(cfg, f.debug, d.stderr)
	defer logging.Close()
	logger := logging.WithComponent("cli")
	logger.WithFields(map[string]interface{}{
		"version":  version,
		"env_file": cfg.EnvFile,
		"policy":   cfg.Policy,
		"base_url": cfg.BaseURL,
		"api_key":  security.MaskSecret(cfg.APIKey),
	}).Info("starting shellgen")

	info := d.detector.Resolve(ctx, cfg)

	prompts := prompt.NewDefaultManager()
	if cfg.PromptsFile != "" {
		if prompts, err = prompt.NewManager(cfg.PromptsFile); err != nil {
			return handler.Handle(apperrors.WrapError(err, apperrors.ErrInvalidConfiguration,
				"invalid "+config.EnvPromptsFile))
		}
	}

	provider, err := d.newProvider(cfg)
	if err != nil {
		return handler.Handle(apperrors.WrapError(err, apperrors.ErrInvalidConfiguration, "cannot create provider"))
	}

	result, err := generator.New(provider, prompts, d.stdout, nil).Generate(ctx, generator.Request{
		Description:   description,
		PlatformLabel: info.Label,
		Shell:         info.Shell,
		Model:         cfg.Model,
	})
	if err != nil {
		return handler.Handle(err)
	}

	if f.noCopy {
		return apperrors.ExitSuccess
	}

	presenter := ui.NewPresenter(d.stderr, f.debug)
	ok := d.newClipboard(info, presenter.Diagnostic).SetClipboard(ctx, result.Text)
	presenter.CopyResult(ok)
	logger.WithFields(map[string]interface{}{
		"copied":      ok,
		"model_error": result.IsError,
	}).Info("done")
	return apperrors.ExitSuccess
}

// setupLogging initialises the logger from cfg. A logger that cannot be set
// up never stops the command; it only reports the problem in debug mode.
func setupLogging(cfg *config.Config, debug bool, stderr io.Writer) {
	logCfg := logging.Config{
		Level:      logging.LogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		LogFile:    cfg.Logging.LogFile,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		Secrets:    []string{cfg.APIKey},
	}
	for _, value := range cfg.Headers {
		logCfg.Secrets = append(logCfg.Secrets, value)
	}
	if debug {
		logCfg.Level = logging.DebugLevel
		if logCfg.Output == config.LogOutputFile {
			logCfg.Output = config.LogOutputBoth
		}
	}

	if err := logging.Init(logCfg); err != nil && debug {
		fmt.Fprintf(stderr, "WARNING: logging disabled: %v\n", err)
	}
	logging.NewRunID()
}
