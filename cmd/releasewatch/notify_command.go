package main

import (
	"fmt"

	"releasewatch/internal/app"
	"releasewatch/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newNotifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Выполнить одну проверку новых релизов и отправить уведомление",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := newLogger(cfg, cmd)
			defer func() { _ = log.Sync() }()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			core, err := app.NewComponentFactory(cfg, log).CreateCore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := core.Close(); err != nil {
					log.Warn("Failed to close database connection", zap.Error(err))
				}
			}()

			report, err := core.Services.Scheduler.RunNow(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %s, artists %d, skipped %d, new releases %d\n",
				report.RunID, report.Outcome, report.Artists(), report.Failed(), len(report.Digest))
			return nil
		},
	}
}
