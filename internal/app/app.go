package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/socgen/internal/ctxlog"
	"github.com/specialistvlad/socgen/internal/soc"
)

// Loader turns descriptor paths into a catalog of templates and variants.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*soc.Catalog, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader Loader
}

// NewApp is the constructor for the main application. Command output goes
// to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader Loader) *App {
	logger := newLogger(cfg, logW)
	logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat)
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Run method started.", "command", a.config.Command, "target", a.config.Target)

	var err error
	switch a.config.Command {
	case CommandSetup:
		var res *Result
		res, err = a.Setup(ctx)
		if err == nil {
			a.logger.Info("Build tree ready.", "core", res.Design.Name, "build_dir", res.BuildDir, "files", len(res.Files()))
		}
	case CommandShow:
		err = a.Show(ctx)
	case CommandList:
		err = a.List(ctx)
	case CommandWatch:
		err = a.Watch(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

// withLogger attaches the app's logger to ctx so that the exported commands
// log through it whether or not they are reached via Run.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// compose loads the descriptors and composes the configured target.
func (a *App) compose(ctx context.Context) (*soc.Design, error) {
	catalog, err := a.loader.Load(ctx, a.config.DescriptorPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptors: %w", err)
	}
	return catalog.Setup(ctx, a.config.Target, soc.Options{
		Strict: a.config.Strict,
		Args:   a.config.Args,
	})
}
