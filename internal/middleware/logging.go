package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Logging логирует входящие команды и callback с длительностью обработки
func Logging(logger *zap.Logger) Func {
	return func(next Handler) Handler {
		return func(ctx context.Context, update tgbotapi.Update) error {
			start := time.Now()
			requestID := fmt.Sprintf("%d-%d", update.UpdateID, start.UnixNano())
			action := updateAction(update)

			logger.Info("Processing update",
				zap.String("request_id", requestID),
				zap.String("action", action),
				zap.Int64("chat_id", updateChatID(update)),
				zap.String("user", getUserIdentifier(updateUser(update))),
				zap.Int("update_id", update.UpdateID))

			err := next(ctx, update)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("action", action),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case err == nil:
				logger.Info("Update completed successfully", fields...)
			case errors.Is(err, ErrForbidden), errors.Is(err, ErrThrottled):
				logger.Warn("Update rejected", append(fields, zap.Error(err))...)
			default:
				logger.Error("Update completed with error", append(fields, zap.Error(err))...)
			}

			return err
		}
	}
}
