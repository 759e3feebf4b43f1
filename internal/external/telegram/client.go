// Package telegram содержит интеграцию с Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RouterInterface определяет интерфейс для роутера
type RouterInterface interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	RegisterBotCommands() []tgbotapi.BotCommand
}

// BotAPI определяет операции бота, которые используют обработчики и уведомления
type BotAPI interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	EditMessage(chatID int64, messageID int, text string) error
	AnswerCallbackQuery(callbackID string, text string) error
}

// Client представляет клиент Telegram Bot API
type Client struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

var _ BotAPI = (*Client)(nil)

// NewClient создает новый клиент Telegram
func NewClient(botToken string, logger *zap.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false
	logger.Info("Telegram bot created", zap.String("username", bot.Self.UserName))

	return &Client{
		bot:    bot,
		logger: logger,
	}, nil
}

// Start запускает обработку обновлений до отмены контекста или закрытия канала
func (c *Client) Start(ctx context.Context, router RouterInterface) error {
	c.logger.Info("Bot started", zap.String("username", c.bot.Self.UserName))

	// Удаляем webhook если есть
	_, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true})
	if err != nil {
		c.logger.Error("Failed to delete webhook", zap.Error(err))
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	// Настраиваем команды бота
	_, err = c.bot.Request(tgbotapi.NewSetMyCommands(router.RegisterBotCommands()...))
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	// Настраиваем long polling
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	c.logger.Info("Starting to fetch updates")
	updatesChan := c.bot.GetUpdatesChan(u)

	reconnectDelay := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Update loop cancelled by context")
			return ctx.Err()
		case update, ok := <-updatesChan:
			if !ok {
				c.logger.Warn("Update channel closed, will try to reconnect after delay")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
					return fmt.Errorf("update channel closed, reconnecting")
				}
			}

			c.processUpdate(ctx, update, router)
		}
	}
}

// processUpdate обрабатывает одно обновление
func (c *Client) processUpdate(ctx context.Context, update tgbotapi.Update, router RouterInterface) {
	c.logger.Debug("Processing update",
		zap.Int("update_id", update.UpdateID),
		zap.Int64("user_id", getUserID(update)),
		zap.String("command", extractCommand(update)),
		zap.String("update_type", getUpdateType(update)),
	)

	if update.Message == nil && update.CallbackQuery == nil {
		return
	}

	// Обрабатываем только команды
	if update.Message != nil && !update.Message.IsCommand() {
		return
	}

	router.HandleUpdate(ctx, update)
}

// SendMessage отправляет HTML сообщение; экранирование текста на стороне вызывающего
func (c *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// SendMessageWithKeyboard отправляет сообщение с клавиатурой
func (c *Client) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard

	_, err := c.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message with keyboard: %w", err)
	}

	return nil
}

// EditMessage заменяет текст сообщения и убирает клавиатуру
func (c *Client) EditMessage(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := c.bot.Send(edit)
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// AnswerCallbackQuery отвечает на callback query
func (c *Client) AnswerCallbackQuery(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := c.bot.Request(callback)
	if err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}

	return nil
}

// GetBotInfo возвращает информацию о боте
func (c *Client) GetBotInfo() *tgbotapi.User {
	return &c.bot.Self
}

// Helper функции для логирования

// getUserID извлекает ID пользователя из обновления
func getUserID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// extractCommand извлекает команду из обновления
func extractCommand(update tgbotapi.Update) string {
	if update.Message != nil && update.Message.IsCommand() {
		return update.Message.Command()
	}
	if update.CallbackQuery != nil {
		return "callback"
	}
	return ""
}

// getUpdateType определяет тип обновления
func getUpdateType(update tgbotapi.Update) string {
	if update.Message != nil {
		if update.Message.IsCommand() {
			return "command"
		}
		return "message"
	}
	if update.CallbackQuery != nil {
		return "callback"
	}
	return "unknown"
}
