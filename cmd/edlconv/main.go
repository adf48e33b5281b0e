package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/southbay/edlconv/internal/config"
	"github.com/southbay/edlconv/internal/convert"
	"github.com/southbay/edlconv/internal/db"
	"github.com/southbay/edlconv/internal/history"
	"github.com/southbay/edlconv/internal/logging"
)

var (
	logLevel  string
	logFormat string
	noHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "edlconv",
	Short: "Convert CMX-style turnover EDLs into shot CSVs",
	Long: `edlconv reads an edit decision list, pulls out each shot's code,
source file, ASC CDL grade, saturation and cut range, and writes one CSV row
per shot for downstream VFX and grading work.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json or text)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tcCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs after config is loaded.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	database *db.DB
	repo     history.Repository
}

// newApp loads configuration, applies the global flag overrides and opens
// the run history store when enabled.
func newApp(withHistory bool) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, format := cfg.LogLevel(), cfg.LogFormat()
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	a := &app{cfg: cfg, logger: logging.NewLogger(level, format)}

	if !withHistory || noHistory || !cfg.HistoryEnabled() {
		return a, nil
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	database, err := db.New(cfg.DBPath(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.database = database
	a.repo = history.NewRepository(database.Conn())
	return a, nil
}

func (a *app) settings() convert.Settings {
	return convert.Settings{
		SourceLabel:   a.cfg.SourceLabel(),
		FrameRate:     a.cfg.FrameRate(),
		FrameStart:    a.cfg.FrameStart(),
		HandleSize:    a.cfg.HandleSize(),
		StartTimecode: a.cfg.StartTimecode(),
	}
}

func (a *app) service() *convert.Service {
	return convert.NewService(a.repo, a.logger)
}

func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
}
