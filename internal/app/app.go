package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/specialistvlad/animath/internal/ctxlog"
	"github.com/specialistvlad/animath/internal/hclconfig"
	"github.com/specialistvlad/animath/internal/notify"
	"github.com/specialistvlad/animath/internal/render"
	"github.com/specialistvlad/animath/internal/script"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *hclconfig.Settings

	projectRoot string
	naming      script.Naming
	renderer    *render.Renderer
	notifier    notify.Notifier
}

// Option customizes an App; mostly used by tests.
type Option func(*options)

type options struct {
	executor render.Executor
	notifier notify.Notifier
}

// WithExecutor runs the toolchain through e instead of os/exec.
func WithExecutor(e render.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithNotifier uses n instead of the notifier described by the settings file.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// NewApp is the constructor for the main application. It configures the
// logger, loads the settings file and merges it with cfg: command-line values
// win over the file, the file wins over built-in defaults.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(cfg.WorkDir, hclconfig.DefaultFile)
	}
	settings, err := hclconfig.Load(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	projectRoot := cfg.ProjectRoot
	if projectRoot == "" {
		projectRoot = settings.ProjectRoot
	}
	if projectRoot == "" {
		projectRoot = cfg.WorkDir
	}
	projectRoot, err = filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	namingStr := cfg.Naming
	if namingStr == "" {
		namingStr = settings.Naming
	}
	naming, err := script.ParseNaming(namingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var renderOpts []render.Option
	if o.executor != nil {
		renderOpts = append(renderOpts, render.WithExecutor(o.executor))
	}
	renderer := render.New(settings.Toolchain, renderOpts...)
	tc := renderer.Toolchain()
	logger.Debug("Configuration resolved.",
		"project_root", projectRoot,
		"naming", naming,
		"latex", tc.Latex,
		"dvipng", tc.Dvipng,
		"dpi", tc.DPI,
		"settings", settings.Source,
	)

	return &App{
		outW:        outW,
		logger:      logger,
		config:      cfg,
		settings:    settings,
		projectRoot: projectRoot,
		naming:      naming,
		renderer:    renderer,
		notifier:    o.notifier,
	}, nil
}

// ProjectRoot returns the resolved project root.
func (a *App) ProjectRoot() string {
	return a.projectRoot
}

// Naming returns the resolved naming strategy.
func (a *App) Naming() script.Naming {
	return a.naming
}
