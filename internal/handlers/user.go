package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Start обрабатывает команду /start
func (h *Handlers) Start(_ context.Context, message *tgbotapi.Message) error {
	h.sendMessage(message.Chat.ID, "Бот следит за новыми альбомами и синглами артистов в Spotify.\n\n"+helpText(h.adminUsername))
	return nil
}

// Help обрабатывает команду /help
func (h *Handlers) Help(_ context.Context, message *tgbotapi.Message) error {
	h.sendMessage(message.Chat.ID, helpText(h.adminUsername))
	return nil
}

// Unknown обрабатывает неизвестные команды
func (h *Handlers) Unknown(_ context.Context, message *tgbotapi.Message) error {
	h.sendMessage(message.Chat.ID, "Неизвестная команда. Используйте /help для получения справки.")
	return nil
}

// Artists показывает отслеживаемых артистов
func (h *Handlers) Artists(ctx context.Context, message *tgbotapi.Message) error {
	artists, err := h.artists.List(ctx)
	if err != nil {
		return h.replyError(message.Chat.ID, err)
	}

	if len(artists) == 0 {
		h.sendMessage(message.Chat.ID, "Список артистов пуст. Добавьте артиста командой /add имя")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Отслеживаемые артисты (%d)</b>\n\n", len(artists))
	for i, artist := range artists {
		fmt.Fprintf(&b, "%d. %s\n", i+1, html.EscapeString(artist.Name))
	}

	h.sendMessage(message.Chat.ID, strings.TrimRight(b.String(), "\n"))
	return nil
}

func helpText(adminUsername string) string {
	text := "Доступные команды:\n" +
		"\n/start - Начать работу с ботом\n" +
		"/help - Показать это сообщение\n" +
		"/artists - Показать отслеживаемых артистов\n" +
		"/add имя - Найти артиста и добавить его в список\n" +
		"/remove - Удалить артиста из списка\n" +
		"/refresh - Перечитать список из хранилища\n" +
		"/check - Проверить новые релизы сейчас"
	if adminUsername != "" {
		text += fmt.Sprintf("\n\nУправление списком доступно только @%s", html.EscapeString(adminUsername))
	}
	return text
}
