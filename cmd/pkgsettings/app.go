// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/locate"
	"github.com/pkgsettings/pkgsettings/internal/logging"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/internal/settings"
)

type (
	// App is the composition root of the CLI. Command handlers receive it and go
	// through its services instead of constructing their own.
	App struct {
		Config   config.Provider
		Settings SettingsFactory
		stdout   io.Writer
		stderr   io.Writer

		flags       rootFlags
		verbose     bool
		colorScheme config.ColorScheme
	}

	// Dependencies are the injection points of NewApp. Nil fields get production
	// defaults.
	Dependencies struct {
		Config   config.Provider
		Settings SettingsFactory
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// SettingsService is what the commands need from internal/settings.
	SettingsService interface {
		Evaluate(ctx context.Context, dir string, p resolve.Path) (settings.Evaluation, error)
		Generate(ctx context.Context, dir string) (settings.GenerateResult, error)
		Locator() *locate.Locator
	}

	// SettingsFactory builds a SettingsService for a loaded configuration.
	SettingsFactory func(cfg *config.Config, logger *log.Logger) (SettingsService, error)

	rootFlags struct {
		verbose    bool
		configPath string
	}

	// session is the per-command state derived from flags and configuration.
	session struct {
		loaded   config.Loaded
		logger   *log.Logger
		settings SettingsService
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Settings == nil {
		deps.Settings = func(cfg *config.Config, logger *log.Logger) (SettingsService, error) {
			return settings.New(cfg, logger)
		}
	}

	return &App{
		Config:   deps.Config,
		Settings: deps.Settings,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// loadConfig loads the configuration selected by the global flags and applies its
// UI settings to the app.
func (a *App) loadConfig(ctx context.Context) (config.Loaded, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return config.Loaded{}, err
	}
	a.verbose = a.flags.verbose || loaded.Config.UI.Verbose
	a.colorScheme = loaded.Config.UI.ColorScheme
	return loaded, nil
}

// open loads the configuration, lets tweak adjust it for this invocation, and builds
// the settings service.
func (a *App) open(ctx context.Context, tweak func(*config.Config) error) (*session, error) {
	loaded, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	if tweak != nil {
		if err := tweak(loaded.Config); err != nil {
			return nil, err
		}
	}

	logger := logging.New(a.stderr, "", a.verbose)
	if loaded.Path != "" {
		logger.Debug("loaded configuration", "file", loaded.Path)
	}

	svc, err := a.Settings(loaded.Config, logger)
	if err != nil {
		return nil, err
	}
	return &session{loaded: loaded, logger: logger, settings: svc}, nil
}
