package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"releasewatch/internal/config"
	"releasewatch/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "releasewatch",
		Short:         "Уведомления о новых альбомах и синглах артистов Spotify",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newNotifyCommand())
	rootCmd.AddCommand(newArtistsCommand())

	return rootCmd
}

// newLogger создает логгер по конфигурации; вывод CLI-команд идет в stderr
func newLogger(cfg *config.Config, cmd *cobra.Command) *zap.Logger {
	path := cfg.LogPath
	if path == "" {
		path = logger.DefaultPath(cfg.GetAppDataDir())
	}
	return logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Path:   path,
		Output: cmd.ErrOrStderr(),
	})
}

// signalContext отменяется по SIGINT или SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
