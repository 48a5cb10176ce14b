package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"room-reservation/internal/config"
	"room-reservation/internal/storage"
)

var (
	cfgFile  string
	cfg      *config.Config
	provider storage.Provider
)

// Commands that manage the schema themselves open storage without migrating.
const skipMigrate = "skip-migrate"

var rootCmd = &cobra.Command{
	Use:   "room-reservation",
	Short: "Study room reservation service",
	Long:  `Serve the room reservation site and manage rooms, staff users and the access log.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		initLogger(cfg)

		if _, ok := cmd.Annotations[skipMigrate]; ok {
			provider, err = storage.Open(&cfg.Storage)
		} else {
			provider, err = storage.NewProvider(cmd.Context(), &cfg.Storage)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize storage provider: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if provider != nil {
			provider.Close()
		}
	},
	SilenceUsage: true,
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		fmt.Fprintln(os.Stderr, "Invalid log level in config, defaulting to INFO")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// quietLogger keeps CLI output readable by only logging errors, on stderr.
func quietLogger() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./instance/config.yaml)")
}
