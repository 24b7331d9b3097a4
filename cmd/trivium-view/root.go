package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/triviuminteractive/trivium-view/internal/app"
	"github.com/triviuminteractive/trivium-view/internal/browser"
	"github.com/triviuminteractive/trivium-view/internal/config"
	"github.com/triviuminteractive/trivium-view/internal/frame"
	"github.com/triviuminteractive/trivium-view/internal/logging"
	"github.com/triviuminteractive/trivium-view/internal/theme"
	"go.uber.org/zap"
)

var (
	configFile string
	startURL   string
	themeName  string
	showURL    bool
	logFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "trivium-view",
	Short:   "Terminal shell for the Trivium Interactive site",
	Version: version,
	Long: `trivium-view opens the Trivium Interactive website in a single
terminal frame with a back button.

Examples:
  trivium-view                                   # open the home page
  trivium-view --url https://triviuminteractive.com/games
  trivium-view --theme midnight --show-url=false`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (default: <config dir>/trivium-view/config.toml)")
	rootCmd.Flags().StringVarP(&startURL, "url", "u", "", "start URL (default: "+config.DefaultHomeURL+")")
	rootCmd.Flags().StringVarP(&themeName, "theme", "t", "", "color theme ("+strings.Join(theme.List(), ", ")+")")
	rootCmd.Flags().BoolVar(&showURL, "show-url", true, "show the current URL in the navigation bar")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "log file (default: <state dir>/trivium-view/trivium-view.log)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate("trivium-view {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{File: configFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.HomeURL = startURL
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("show-url") {
		cfg.ShowURL = showURL
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	if !theme.Set(cfg.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(theme.List(), ", "))
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, logErr := logging.NewOrNop(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDev,
		Path:        logPath,
	})
	defer func() { _ = logger.Sync() }()

	policy, err := browser.NewPolicy(cfg.HomeURL, cfg.AllowedHosts)
	if err != nil {
		return err
	}

	host, err := frame.New(frame.Options{
		Fetcher: browser.NewFetcher(browser.FetcherOptions{
			Timeout:   cfg.Timeout.Std(),
			UserAgent: cfg.UserAgent,
		}),
		CacheSize: cfg.CacheSize,
		Style:     theme.Current.Glamour,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("home", cfg.HomeURL),
		zap.Strings("hosts", policy.Hosts()),
		zap.String("theme", theme.Current.Name),
	)

	m, err := app.New(app.Options{
		HomeURL: cfg.HomeURL,
		ShowURL: cfg.ShowURL,
		Host:    host,
		Policy:  policy,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	host.Stop()

	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", logErr)
	}
	if err != nil {
		logger.Error("program exited", zap.Error(err))
		return err
	}
	logger.Info("exited")
	return nil
}
