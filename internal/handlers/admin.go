package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"releasewatch/internal/keyboard"
	"releasewatch/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Add ищет артиста в каталоге и предлагает выбрать кандидата
func (h *Handlers) Add(ctx context.Context, message *tgbotapi.Message) error {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		h.sendMessage(message.Chat.ID, "Использование: /add имя_артиста\nПример: /add Radiohead")
		return nil
	}

	candidates, err := h.artists.Search(ctx, name)
	if err != nil {
		return h.replyError(message.Chat.ID, err)
	}

	h.setPending(message.Chat.ID, candidates)
	h.sendMessageWithKeyboard(message.Chat.ID,
		fmt.Sprintf("Найдено по запросу <b>%s</b>. Выберите артиста:", html.EscapeString(name)),
		keyboard.Candidates(candidates))
	return nil
}

// Remove предлагает выбрать артиста для удаления
func (h *Handlers) Remove(ctx context.Context, message *tgbotapi.Message) error {
	artists, err := h.artists.List(ctx)
	if err != nil {
		return h.replyError(message.Chat.ID, err)
	}

	if len(artists) == 0 {
		h.sendMessage(message.Chat.ID, "Список артистов пуст")
		return nil
	}

	h.sendMessageWithKeyboard(message.Chat.ID, "Выберите артиста для удаления:", keyboard.Remove(artists))
	return nil
}

// Refresh сбрасывает кеш списка артистов
func (h *Handlers) Refresh(ctx context.Context, message *tgbotapi.Message) error {
	h.artists.Refresh()

	artists, err := h.artists.List(ctx)
	if err != nil {
		return h.replyError(message.Chat.ID, err)
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf("🔄 Список перечитан из хранилища: %d артистов", len(artists)))
	return nil
}

// Check запускает проверку релизов в фоне и сообщает итог
func (h *Handlers) Check(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	h.sendMessage(chatID, "⏳ Проверяю новые релизы...")

	h.checks.Add(1)
	go func() {
		defer h.checks.Done()

		report, err := h.pipeline.RunNow(ctx)
		if err != nil {
			if replyErr := h.replyError(chatID, err); replyErr != nil {
				h.logger.Error("Manual pipeline run failed", zap.Error(replyErr))
			}
			return
		}

		h.sendMessage(chatID, formatReport(report))
	}()

	return nil
}

// CallbackQuery обрабатывает нажатия кнопок выбора и удаления
func (h *Handlers) CallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Message == nil {
		h.answerCallback(query.ID, "")
		return nil
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	action, artistID := keyboard.ParseCallback(query.Data)

	switch action {
	case keyboard.PrefixAdd:
		candidate, ok := h.takePending(chatID, artistID)
		if !ok {
			h.answerCallback(query.ID, "Список кандидатов устарел, повторите /add")
			return nil
		}
		h.answerCallback(query.ID, "")

		if err := h.artists.Add(ctx, candidate.Artist()); err != nil {
			h.editMessage(chatID, messageID, "Артист не добавлен")
			return h.replyError(chatID, err)
		}
		h.editMessage(chatID, messageID, fmt.Sprintf("✅ Добавлен артист: <b>%s</b>", html.EscapeString(candidate.Name)))

	case keyboard.PrefixRemove:
		h.answerCallback(query.ID, "")

		removed, err := h.artists.Remove(ctx, artistID)
		if err != nil {
			h.editMessage(chatID, messageID, "Артист не удален")
			return h.replyError(chatID, err)
		}
		h.editMessage(chatID, messageID, fmt.Sprintf("🗑 Удален артист: <b>%s</b>", html.EscapeString(removed.Name)))

	case keyboard.ActionCancel:
		h.clearPending(chatID)
		h.answerCallback(query.ID, "")
		h.editMessage(chatID, messageID, "Отменено")

	default:
		h.answerCallback(query.ID, "Неизвестное действие")
	}

	return nil
}

// formatReport возвращает краткий итог запуска для оператора
func formatReport(report *service.RunReport) string {
	var b strings.Builder
	b.WriteString("✅ Проверка завершена\n\n")
	fmt.Fprintf(&b, "Артистов: %d\n", report.Artists())
	fmt.Fprintf(&b, "Новых релизов: %d\n", len(report.Digest))
	if failed := report.Failed(); failed > 0 {
		fmt.Fprintf(&b, "Пропущено из-за ошибок: %d\n", failed)
	}
	fmt.Fprintf(&b, "Длительность: %s", report.Duration().Round(100*time.Millisecond))
	return b.String()
}
