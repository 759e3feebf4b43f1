// Package handlers содержит обработчики команд.
package handlers

import (
	"context"
	"errors"
	"html"
	"sync"

	"releasewatch/internal/external/telegram"
	"releasewatch/internal/model"
	"releasewatch/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ArtistManager управляет списком отслеживаемых артистов
type ArtistManager interface {
	List(ctx context.Context) ([]model.MonitoredArtist, error)
	Search(ctx context.Context, name string) ([]model.Candidate, error)
	Add(ctx context.Context, artist model.MonitoredArtist) error
	Remove(ctx context.Context, artistID string) (model.MonitoredArtist, error)
	Refresh()
}

// PipelineTrigger запускает проверку релизов вне расписания
type PipelineTrigger interface {
	RunNow(ctx context.Context) (*service.RunReport, error)
}

// Handlers содержит все обработчики команд
type Handlers struct {
	artists       ArtistManager
	pipeline      PipelineTrigger
	botAPI        telegram.BotAPI
	adminUsername string
	logger        *zap.Logger

	mu      sync.Mutex
	pending map[int64][]model.Candidate
	checks  sync.WaitGroup
}

// New создает новый экземпляр обработчиков
func New(artists ArtistManager, pipeline PipelineTrigger, botAPI telegram.BotAPI, adminUsername string, logger *zap.Logger) *Handlers {
	return &Handlers{
		artists:       artists,
		pipeline:      pipeline,
		botAPI:        botAPI,
		adminUsername: adminUsername,
		logger:        logger,
		pending:       make(map[int64][]model.Candidate),
	}
}

// Wait ожидает завершения запущенных проверок
func (h *Handlers) Wait() {
	h.checks.Wait()
}

// setPending запоминает кандидатов последнего поиска в чате
func (h *Handlers) setPending(chatID int64, candidates []model.Candidate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending[chatID] = candidates
}

// takePending извлекает кандидата по идентификатору и очищает поиск чата
func (h *Handlers) takePending(chatID int64, artistID string) (model.Candidate, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.pending[chatID] {
		if c.ID == artistID {
			delete(h.pending, chatID)
			return c, true
		}
	}
	return model.Candidate{}, false
}

func (h *Handlers) clearPending(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, chatID)
}

// userMessage переводит ошибку в текст для пользователя; ok=false для непредвиденных ошибок
func userMessage(err error) (string, bool) {
	var validationErr model.ValidationError
	var validationErrs model.ValidationErrors

	switch {
	case errors.Is(err, model.ErrArtistAlreadyMonitored):
		return "Этот артист уже отслеживается", true
	case errors.Is(err, model.ErrArtistNotFound):
		return "Артист не найден в списке отслеживаемых", true
	case errors.Is(err, model.ErrNoCandidates):
		return "По этому запросу ничего не найдено", true
	case errors.Is(err, service.ErrRunInProgress):
		return "Проверка уже выполняется, попробуйте позже", true
	case errors.Is(err, model.ErrAuthExpired):
		return "Не удалось авторизоваться в Spotify", false
	case errors.As(err, &validationErr), errors.As(err, &validationErrs):
		return "Некорректный ввод: " + err.Error(), true
	default:
		return "Произошла ошибка, попробуйте позже", false
	}
}

// replyError отправляет пользователю описание ошибки; непредвиденные ошибки возвращаются для логирования
func (h *Handlers) replyError(chatID int64, err error) error {
	text, expected := userMessage(err)
	h.sendMessage(chatID, "❌ "+html.EscapeString(text))
	if expected {
		return nil
	}
	return err
}

// sendMessage отправляет сообщение
func (h *Handlers) sendMessage(chatID int64, text string) {
	if err := h.botAPI.SendMessage(chatID, text); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendMessageWithKeyboard отправляет сообщение с клавиатурой
func (h *Handlers) sendMessageWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if err := h.botAPI.SendMessageWithKeyboard(chatID, text, markup); err != nil {
		h.logger.Error("Failed to send message with keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// editMessage заменяет текст сообщения и убирает клавиатуру
func (h *Handlers) editMessage(chatID int64, messageID int, text string) {
	if err := h.botAPI.EditMessage(chatID, messageID, text); err != nil {
		h.logger.Error("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// answerCallback подтверждает нажатие кнопки
func (h *Handlers) answerCallback(callbackID, text string) {
	if err := h.botAPI.AnswerCallbackQuery(callbackID, text); err != nil {
		h.logger.Warn("Failed to answer callback query", zap.String("callback_id", callbackID), zap.Error(err))
	}
}

// RegisterBotCommands возвращает команды бота для меню
func (h *Handlers) RegisterBotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "help", Description: "Показать справку"},
		{Command: "artists", Description: "Показать отслеживаемых артистов"},
		{Command: "add", Description: "Добавить артиста"},
		{Command: "remove", Description: "Удалить артиста"},
		{Command: "refresh", Description: "Перечитать список из хранилища"},
		{Command: "check", Description: "Проверить новые релизы сейчас"},
	}
}
