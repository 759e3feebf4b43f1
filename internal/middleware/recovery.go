package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Recovery превращает панику обработчика в ошибку
func Recovery(logger *zap.Logger) Func {
	return func(next Handler) Handler {
		return func(ctx context.Context, update tgbotapi.Update) (err error) {
			defer func() {
				if panicErr := recover(); panicErr != nil {
					logger.Error("Panic recovered in update handler",
						zap.String("action", updateAction(update)),
						zap.Int64("chat_id", updateChatID(update)),
						zap.String("user", getUserIdentifier(updateUser(update))),
						zap.Int("update_id", update.UpdateID),
						zap.Any("panic", panicErr),
						zap.String("stack", string(debug.Stack())))
					err = fmt.Errorf("panic in update handler: %v", panicErr)
				}
			}()
			return next(ctx, update)
		}
	}
}
