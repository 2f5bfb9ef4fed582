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
		Use:           "newsproducer",
		Short:         "Turn the latest unpublished news into short-form scripts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cmd.Context(), cfg, app.ModeNews, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.RunNews(cmd.Context()); err != nil {
				logger.Error("news production failed", "error", err)
				return err
			}
			return nil
		},
	}
}
