package main

import (
	"releasewatch/internal/app"
	"releasewatch/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить бота, расписание проверок и health check сервер",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			log := newLogger(cfg, cmd)
			defer func() { _ = log.Sync() }()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			bot, err := app.NewComponentFactory(cfg, log).CreateBot(ctx)
			if err != nil {
				log.Error("Failed to create bot", zap.Error(err))
				return err
			}

			startErr := bot.Start(ctx)
			cancel()

			if err := bot.Stop(); err != nil {
				log.Error("Bot stopped with error", zap.Error(err))
			}
			return startErr
		},
	}
}
