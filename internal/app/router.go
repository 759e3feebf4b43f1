// Package app содержит маршрутизацию команд.
package app

import (
	"context"
	"errors"
	"strings"

	"releasewatch/internal/external/telegram"
	"releasewatch/internal/handlers"
	"releasewatch/internal/middleware"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Router обрабатывает маршрутизацию команд
type Router struct {
	handlers   *handlers.Handlers
	middleware *middleware.Middleware
	botAPI     telegram.BotAPI
	public     map[string]middleware.Handler
	admin      map[string]middleware.Handler
	callback   middleware.Handler
	logger     *zap.Logger
}

var _ telegram.RouterInterface = (*Router)(nil)

// NewRouter создает новый роутер
func NewRouter(h *handlers.Handlers, mw *middleware.Middleware, botAPI telegram.BotAPI, logger *zap.Logger) *Router {
	r := &Router{
		handlers:   h,
		middleware: mw,
		botAPI:     botAPI,
		logger:     logger,
	}

	r.public = map[string]middleware.Handler{
		"start": r.message(h.Start),
		"help":  r.message(h.Help),
	}
	r.admin = map[string]middleware.Handler{
		"artists": r.message(h.Artists),
		"add":     r.message(h.Add),
		"remove":  r.message(h.Remove),
		"refresh": r.message(h.Refresh),
		"check":   r.message(h.Check),
	}
	for command, handler := range r.admin {
		r.admin[command] = mw.AdminOnly(handler)
	}
	r.callback = mw.AdminOnly(func(ctx context.Context, update tgbotapi.Update) error {
		return h.CallbackQuery(ctx, update.CallbackQuery)
	})

	return r
}

// HandleUpdate обрабатывает обновление от Telegram
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	err := r.middleware.Wrap(r.route)(ctx, update)

	switch {
	case err == nil:
	case errors.Is(err, middleware.ErrForbidden):
		r.reject(update, "🔒 Эта команда доступна только администратору")
	case errors.Is(err, middleware.ErrThrottled):
		r.reject(update, "")
	}
}

// RegisterBotCommands регистрирует команды бота
func (r *Router) RegisterBotCommands() []tgbotapi.BotCommand {
	return r.handlers.RegisterBotCommands()
}

// route выбирает обработчик обновления
func (r *Router) route(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.callback(ctx, update)
	}

	if update.Message == nil || !update.Message.IsCommand() {
		return nil
	}

	command := strings.ToLower(update.Message.Command())
	if handler, ok := r.public[command]; ok {
		return handler(ctx, update)
	}
	if handler, ok := r.admin[command]; ok {
		return handler(ctx, update)
	}

	return r.handlers.Unknown(ctx, update.Message)
}

// message адаптирует обработчик сообщения к middleware.Handler
func (r *Router) message(fn func(context.Context, *tgbotapi.Message) error) middleware.Handler {
	return func(ctx context.Context, update tgbotapi.Update) error {
		return fn(ctx, update.Message)
	}
}

// reject сообщает пользователю об отказе; для callback закрывает индикатор загрузки
func (r *Router) reject(update tgbotapi.Update, text string) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = r.botAPI.AnswerCallbackQuery(update.CallbackQuery.ID, text)
	case update.Message != nil && text != "":
		err = r.botAPI.SendMessage(update.Message.Chat.ID, text)
	}
	if err != nil {
		r.logger.Warn("Failed to send rejection", zap.Error(err))
	}
}
