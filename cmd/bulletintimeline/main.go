package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"BulletinTimeline/internal/app"
	"BulletinTimeline/internal/config"
	"BulletinTimeline/internal/logging"
	"BulletinTimeline/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		source  string
		variant string
		dataset string
	)

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	run := func(fn func(context.Context, *app.Application) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if source != "" {
				cfg.Source.Path = source
			}
			if variant != "" {
				cfg.Source.Variant = variant
			}
			if dataset != "" {
				cfg.Output.Dataset = dataset
			}

			shutdown, err := telemetry.Init(cfg.Telemetry.Stdout)
			if err != nil {
				logger.Error("telemetry init failed", "error", err)
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()

			application, err := app.New(cfg, logger)
			if err == nil {
				err = fn(cmd.Context(), application)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("application interrupted", "error", err)
				} else {
					logger.Error("application stopped", "error", err)
				}
			}
			return err
		}
	}

	root := &cobra.Command{
		Use:           "bulletintimeline",
		Short:         "Build a tagged timeline dataset from monthly bulletins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataset, "dataset", "", "dataset output path")

	build := &cobra.Command{
		Use:   "build",
		Short: "Segment, tag and filter the bulletin archive into the dataset",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app.Application) error {
			_, err := a.Build(ctx)
			return err
		}),
	}
	build.Flags().StringVar(&source, "source", "", "line stream file or document directory")
	build.Flags().StringVar(&variant, "variant", "", "lines or documents (detected when empty)")

	translateCmd := &cobra.Command{
		Use:   "translate",
		Short: "Add English titles to the dataset",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app.Application) error {
			_, err := a.Translate(ctx)
			return err
		}),
	}

	root.AddCommand(build, translateCmd)
	return root
}
