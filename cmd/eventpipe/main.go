// Command eventpipe runs the streaming workers: the agent processor, the
// action executor and the batch consumer, plus a provision helper that
// creates the canonical topics on the broker.
package main

import (
	"log/slog"
	"os"
	"time"

	// Load broker credentials and URLs from .env in development.
	_ "github.com/joho/godotenv/autoload"

	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

var configPath string

var rootCmd = &cobra.Command{
	Use:           "eventpipe",
	Short:         "Event streaming workers for the creator pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("EVENTPIPE_CONFIG"), "path to a TOML config file")

	rootCmd.AddCommand(agentProcessorCmd)
	rootCmd.AddCommand(actionExecutorCmd)
	rootCmd.AddCommand(batchConsumerCmd)
	rootCmd.AddCommand(provisionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("eventpipe exited")
		os.Exit(1)
	}
}

// levelFor maps the configured log level onto slog's scale.
func levelFor(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
