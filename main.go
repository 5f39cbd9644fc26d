package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/drexxdk/tanstack-table/internal/config"
	"github.com/drexxdk/tanstack-table/internal/fetch"
	"github.com/drexxdk/tanstack-table/internal/logger"
	"github.com/drexxdk/tanstack-table/internal/tableview"
)

func main() {
	theme := flag.String("theme", "auto", "Markdown rendering theme: auto, light, or dark")
	apiRoot := flag.String("api", "", "API root serving table/ (overrides API_ROOT)")
	flag.Parse()
	setMarkdownTheme(markdownThemeFromString(*theme))

	if err := run(*apiRoot); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(apiRoot string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiRoot != "" {
		cfg.API.Root = apiRoot
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(resolveConfigDir(), "assignments-tui.log")
	}

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	activity := newActivityBuffer(activityLimit)
	log = teeActivity(log, activity)

	locale, err := tableview.NewLocale(cfg.Locale.Tag, cfg.Locale.TimeZone)
	if err != nil {
		return err
	}

	client := fetch.New(cfg.API.Root, nil, cfg.API.Timeout, log.Named("fetch"))
	log.Info("starting", zap.String("endpoint", client.Endpoint()), zap.String("locale", locale.Tag().String()))

	_, err = tea.NewProgram(
		initialModel(cfg, locale, client, log.Named("tui")).withActivity(activity),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "assignments-table")
}
