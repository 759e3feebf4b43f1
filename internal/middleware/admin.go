package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AdminOnly пропускает только обновления от администратора; остальным возвращает ErrForbidden
func AdminOnly(adminUsername string, logger *zap.Logger) Func {
	return func(next Handler) Handler {
		return func(ctx context.Context, update tgbotapi.Update) error {
			user := updateUser(update)
			if user == nil {
				logger.Warn("No user information in update", zap.Int("update_id", update.UpdateID))
				return ErrForbidden
			}

			if adminUsername == "" || user.UserName != adminUsername {
				logger.Warn("Unauthorized access attempt",
					zap.String("action", updateAction(update)),
					zap.String("user", getUserIdentifier(user)),
					zap.String("expected_admin", adminUsername))
				return ErrForbidden
			}

			return next(ctx, update)
		}
	}
}
