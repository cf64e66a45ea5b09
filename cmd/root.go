package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/config"
)

var (
	cfg      config.Config
	dbPath   string
	workers  int
	logLevel string
)

var (
	cError = color.New(color.FgRed, color.Bold)
	cWarn  = color.New(color.FgYellow)
	cOK    = color.New(color.FgGreen)
	cMuted = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:   "cricstats",
	Short: "Cricket ball-by-ball stats tool",
	Long: `Ingest ball-by-ball delivery logs and compute per-player batting, bowling,
all-rounder and match-outcome statistics.

Settings are read from the environment (and a .env file in the working
directory): CRICSTATS_DB, CRICSTATS_WORKERS, CRICSTATS_ALLROUNDER_MIN_WICKETS,
CRICSTATS_LOG_LEVEL. Flags override the environment.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cError.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default $CRICSTATS_DB or ~/.cricstats/stats.db)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "parallel match partitions during ingest (default $CRICSTATS_WORKERS or 4)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default $CRICSTATS_LOG_LEVEL or info)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(allroundersCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads the environment, lets explicitly set flags win, and installs
// the default slog logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(".env")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	dbPath = cfg.DBPath

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.Debug("config loaded", "db", cfg.DBPath, "workers", cfg.Workers, "level", level)
	return nil
}

func warnf(format string, a ...any) {
	cWarn.Fprintf(os.Stderr, format, a...)
}

func ensureDBDir() error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	return nil
}
