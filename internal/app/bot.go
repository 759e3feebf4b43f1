// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"releasewatch/internal/handlers"
	"releasewatch/internal/health"
	"releasewatch/internal/middleware"

	"go.uber.org/zap"
)

// Bot представляет основную логику бота
type Bot struct {
	core       *Core
	health     *health.Server
	handlers   *handlers.Handlers
	middleware *middleware.Middleware
	router     *Router
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// Start запускает бота и блокируется до отмены контекста
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	if b.health != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.health.Start(); err != nil {
				b.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				b.middleware.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := b.core.Services.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	b.logger.Info("Bot started successfully")

	maxRestartAttempts := 10
	restartAttempts := 0
	restartDelay := 10 * time.Second

	for {
		err := b.core.Telegram.Start(ctx, b.router)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			b.logger.Info("Update loop stopped due to context cancellation")
			return nil
		}

		restartAttempts++
		b.logger.Error("Update loop error",
			zap.Error(err),
			zap.Int("restart_attempt", restartAttempts),
			zap.Int("max_attempts", maxRestartAttempts))

		if restartAttempts > maxRestartAttempts {
			return fmt.Errorf("max restart attempts reached: %w", err)
		}

		delay := time.Duration(restartAttempts) * restartDelay
		if delay > 5*time.Minute {
			delay = 5 * time.Minute
		}

		b.logger.Info("Waiting before restart", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Stop останавливает бота; контекст Start должен быть уже отменен
func (b *Bot) Stop() error {
	b.logger.Info("Stopping bot gracefully")

	b.core.Services.Scheduler.Stop()

	if b.health != nil {
		if err := b.health.Stop(); err != nil {
			b.logger.Error("Failed to stop health check server", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.handlers.Wait()
		b.wg.Wait()
	}()

	shutdownTimeout := 30 * time.Second
	select {
	case <-done:
		b.logger.Info("All goroutines stopped successfully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("Graceful shutdown timeout exceeded, forcing stop", zap.Duration("timeout", shutdownTimeout))
	}

	if err := b.core.Close(); err != nil {
		b.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	b.logger.Info("Bot stopped successfully")
	return nil
}
