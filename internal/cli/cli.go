package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dllforge/internal/app"
	"github.com/specialistvlad/dllforge/internal/hcl_adapter"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitPostBuild = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags are the options shared by every command.
type flags struct {
	configPath string
	logFormat  string
	logLevel   string
}

// Run parses args and executes the selected command. Reports go to outW,
// logs and usage errors to errW. Failures are returned as *ExitError.
func Run(ctx context.Context, args []string, outW, errW io.Writer, opts ...app.Option) error {
	slog.Debug("CLI parser started.")
	root := newRootCommand(outW, errW, opts)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

func newRootCommand(outW, errW io.Writer, opts []app.Option) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "dllforge",
		Short: "Compile, version and package a two-assembly plugin.",
		Long: `dllforge compiles a package's runtime sources into one library and its
editor sources into a second library referencing the first, stamps both with
an auto-incremented version, places them into the package's output tree and
optionally archives and publishes the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", app.DefaultConfigPath, "Path to the build configuration file.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	run := func(op func(ctx context.Context, a *app.App) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.appConfig()
			if err != nil {
				return err
			}
			a, err := app.NewApp(outW, errW, cfg, hcl_adapter.NewLoader(), hcl_adapter.NewVersionWriter(), opts...)
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return exitError(op(cmd.Context(), a))
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "build",
			Short: "Compile both passes, place the artifacts and package them when configured.",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *app.App) error {
				_, err := a.Build(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "package",
			Short: "Archive the export files without compiling.",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *app.App) error {
				_, _, err := a.Package(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "bump",
			Short: "Increment the persisted version without building.",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *app.App) error {
				_, err := a.Bump(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the build request derived from the configuration.",
			Args:  cobra.NoArgs,
			RunE: run(func(_ context.Context, a *app.App) error {
				return a.Show()
			}),
		},
	)
	return root
}

// appConfig validates the shared flags.
func (f *flags) appConfig() (*app.Config, error) {
	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		ConfigPath: f.configPath,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return cfg, nil
}

// exitError maps an operation's error to an exit code.
func exitError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrPackaging), errors.Is(err, pipeline.ErrPublishing):
		return &ExitError{Code: ExitPostBuild, Message: err.Error()}
	case errors.Is(err, app.ErrBuildFailed):
		return &ExitError{Code: ExitFailure, Message: err.Error()}
	default:
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("error: %v", err)}
	}
}
