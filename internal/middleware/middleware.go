// Package middleware содержит middleware компоненты обработки обновлений Telegram.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrForbidden возвращается, если команду вызвал не администратор
var ErrForbidden = errors.New("command is available to the administrator only")

// ErrThrottled возвращается, если обновление отброшено ограничителем
var ErrThrottled = errors.New("update throttled")

// Handler обрабатывает одно обновление
type Handler func(ctx context.Context, update tgbotapi.Update) error

// Func оборачивает обработчик
type Func func(next Handler) Handler

// Chain применяет middleware так, что первый в списке выполняется первым
func Chain(h Handler, mws ...Func) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Options параметры middleware
type Options struct {
	AdminUsername  string
	RateLimit      int
	RateWindow     time.Duration
	DebounceWindow time.Duration
}

// DefaultOptions возвращает параметры по умолчанию: 10 запросов в минуту, дебаунс 1 секунда
func DefaultOptions(adminUsername string) Options {
	return Options{
		AdminUsername:  adminUsername,
		RateLimit:      10,
		RateWindow:     time.Minute,
		DebounceWindow: time.Second,
	}
}

// Middleware представляет набор middleware бота
type Middleware struct {
	rateLimiter   *RateLimiter
	debouncer     *Debouncer
	adminUsername string
	logger        *zap.Logger
}

// New создает новый middleware
func New(opts Options, logger *zap.Logger) *Middleware {
	return &Middleware{
		rateLimiter:   NewRateLimiter(opts.RateLimit, opts.RateWindow, logger),
		debouncer:     NewDebouncer(opts.DebounceWindow, logger),
		adminUsername: opts.AdminUsername,
		logger:        logger,
	}
}

// Wrap применяет общую цепочку: recovery, логирование, дебаунс, rate limit
func (m *Middleware) Wrap(h Handler) Handler {
	return Chain(h,
		Recovery(m.logger),
		Logging(m.logger),
		Debounce(m.debouncer, m.logger),
		RateLimit(m.rateLimiter),
	)
}

// AdminOnly ограничивает обработчик администратором
func (m *Middleware) AdminOnly(h Handler) Handler {
	return AdminOnly(m.adminUsername, m.logger)(h)
}

// Cleanup очищает устаревшие записи ограничителей
func (m *Middleware) Cleanup() {
	m.rateLimiter.Cleanup()
	m.debouncer.Cleanup()
}

// updateUser возвращает автора обновления
func updateUser(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	}
	return nil
}

// updateChatID возвращает чат обновления
func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// updateAction возвращает команду или данные callback
func updateAction(update tgbotapi.Update) string {
	switch {
	case update.Message != nil:
		return update.Message.Command()
	case update.CallbackQuery != nil:
		return update.CallbackQuery.Data
	}
	return ""
}

// getUserIdentifier возвращает идентификатор пользователя
func getUserIdentifier(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}

	if user.UserName != "" {
		return "@" + user.UserName
	}

	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}

	return fmt.Sprintf("user_%d", user.ID)
}
