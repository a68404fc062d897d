package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "facewire",
	Short: "facewire complication data delivery toolkit",
	Long:  `facewire serves watch-face complication data over the timeline delivery protocol.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger honoring --log-level.
func newLogger(app string) zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
}
