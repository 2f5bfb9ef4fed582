package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ScriptProducer/internal/app"
	"ScriptProducer/internal/config"
	"ScriptProducer/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "generatescript <topic>",
		Short:         "Research, write and publish short-form scripts about a topic",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cmd.Context(), cfg, app.ModeTopic, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.RunTopic(cmd.Context(), args[0]); err != nil {
				logger.Error("script generation failed", "error", err)
				return err
			}
			return nil
		},
	}
}
