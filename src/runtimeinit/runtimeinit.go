package runtimeinit

import (
	"fmt"

	"screenshots/src/clipboard"
	"screenshots/src/config"
	"screenshots/src/lang"
	"screenshots/src/logutil"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enableFile bool, level string)
	// InitClipboard defaults to clipboard.Init.
	InitClipboard func() error
}

// Runtime is what the entry points need after bootstrap.
type Runtime struct {
	Config *config.Config
	// Lang is nil when no locale or override file is configured.
	Lang *lang.Lang
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, cfg.LogLevel)
	}

	table, err := lang.Resolve(cfg.Language, cfg.LangFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load language table: %w", err)
	}

	initClipboard := opts.InitClipboard
	if initClipboard == nil {
		initClipboard = clipboard.Init
	}
	if err := initClipboard(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	logutil.WithComponent("runtimeinit").Info().
		Str("hotkey", cfg.Hotkey).
		Str("surface", cfg.SurfaceAddr).
		Str("language", cfg.Language).
		Bool("singleWindow", cfg.SingleWindow).
		Msg("runtime initialized")

	return &Runtime{Config: cfg, Lang: table}, nil
}
