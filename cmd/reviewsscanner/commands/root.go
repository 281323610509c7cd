package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ReviewsScanner/internal/app"
	"ReviewsScanner/internal/config"
	"ReviewsScanner/internal/logging"
)

// Flags overrides configuration values from the command line.
type Flags struct {
	EnvFile     string
	ConfigPath  string
	URL         string
	MaxReviews  int
	DisplayPath string
	AuditPath   string
	LogLevel    string
}

// Apply copies every non-empty flag onto cfg.
func (f Flags) Apply(cfg config.Config) config.Config {
	if f.URL != "" {
		cfg.Source.URL = f.URL
	}
	if f.MaxReviews > 0 {
		cfg.Source.MaxReviews = f.MaxReviews
	}
	if f.DisplayPath != "" {
		cfg.Output.DisplayPath = f.DisplayPath
	}
	if f.AuditPath != "" {
		cfg.Output.AuditPath = f.AuditPath
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	return cfg
}

// loadConfig reads the env file, then the YAML/env configuration, then flags.
func (f Flags) loadConfig() (config.Config, error) {
	if f.EnvFile != "" {
		if err := godotenv.Load(f.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", f.EnvFile, err)
		}
	}
	if f.ConfigPath != "" {
		if err := os.Setenv("REVIEWS_SCANNER_CONFIG", f.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	return f.Apply(config.Load()), nil
}

// NewRootCommand builds the CLI; running it without a subcommand performs one run.
func NewRootCommand() *cobra.Command {
	flags := &Flags{}

	root := &cobra.Command{
		Use:           "reviewsscanner",
		Short:         "reviewsscanner scrapes public place reviews and writes the display and audit artifacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.EnvFile, "env-file", ".env", "dotenv file loaded before configuration")
	pf.StringVar(&flags.ConfigPath, "config", "", "YAML configuration file (overrides REVIEWS_SCANNER_CONFIG)")
	pf.StringVar(&flags.URL, "url", "", "reviews page to scrape (overrides GOOGLE_REVIEWS_URL)")
	pf.IntVar(&flags.MaxReviews, "max-reviews", 0, "upper bound on extracted candidates (overrides MAX_REVIEWS)")
	pf.StringVar(&flags.DisplayPath, "display-path", "", "display artifact path")
	pf.StringVar(&flags.AuditPath, "audit-path", "", "audit artifact path")
	pf.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newRunCommand(flags), newScheduleCommand(flags))
	return root
}

func newRunCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape, verify and write the artifacts once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), flags)
		},
	}
}

func newScheduleCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run on the configured cron expression until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := build(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Schedule(cmd.Context())
		},
	}
}

func runOnce(ctx context.Context, flags *Flags) error {
	application, err := build(ctx, flags)
	if err != nil {
		return err
	}
	defer application.Close()
	return application.Run(ctx)
}

func build(ctx context.Context, flags *Flags) (*app.Application, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger)
}

// ExecuteContext runs the CLI and exits with status 1 on any error.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "reviewsscanner:", err)
		os.Exit(1)
	}
}
