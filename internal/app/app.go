package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/dllforge/internal/compiler"
	"github.com/specialistvlad/dllforge/internal/config"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/specialistvlad/dllforge/internal/publish"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	versions config.VersionWriter
	pipeline *pipeline.Pipeline
}

// Option customizes the collaborators an App is wired with.
type Option func(*options)

type options struct {
	compiler  compiler.Compiler
	publisher publish.Publisher
}

// WithCompiler replaces the configured command-line compiler.
func WithCompiler(c compiler.Compiler) Option {
	return func(o *options) { o.compiler = c }
}

// WithPublisher replaces the publisher built from the publish block.
func WithPublisher(p publish.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW. The configuration at appConfig.ConfigPath is loaded and
// every collaborator is built before NewApp returns.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, versions config.VersionWriter, opts ...Option) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "path", model.Path)

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	p, err := buildPipeline(ctx, model, o)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pipeline wired.", "package", model.Package.Name)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		model:    model,
		versions: versions,
		pipeline: p,
	}, nil
}

// Model returns the loaded configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
