// Package keyboard строит inline-клавиатуры бота.
package keyboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"releasewatch/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Префиксы данных callback
const (
	PrefixAdd    = "add:"
	PrefixRemove = "rm:"
	ActionCancel = "cancel"
)

// maxButtonText ограничение длины подписи кнопки
const maxButtonText = 60

// Candidates строит клавиатуру выбора кандидата: по кнопке на строку и кнопка отмены
func Candidates(candidates []model.Candidate) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(candidates)+1)
	for _, c := range candidates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(CandidateLabel(c), PrefixAdd+c.ID),
		))
	}
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Remove строит клавиатуру удаления отслеживаемых артистов, по два в строке
func Remove(artists []model.MonitoredArtist) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(artists); i += 2 {
		var row []tgbotapi.InlineKeyboardButton
		for j := 0; j < 2 && i+j < len(artists); j++ {
			artist := artists[i+j]
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				truncate(artist.Name),
				PrefixRemove+artist.ID,
			))
		}
		rows = append(rows, row)
	}
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CandidateLabel возвращает подпись кандидата: имя и жанры
func CandidateLabel(c model.Candidate) string {
	if len(c.Genres) == 0 {
		return truncate(c.Name)
	}
	return truncate(fmt.Sprintf("%s (%s)", c.Name, strings.Join(c.Genres, ", ")))
}

// ParseCallback разбирает данные callback на действие и идентификатор
func ParseCallback(data string) (action, id string) {
	switch {
	case strings.HasPrefix(data, PrefixAdd):
		return PrefixAdd, strings.TrimPrefix(data, PrefixAdd)
	case strings.HasPrefix(data, PrefixRemove):
		return PrefixRemove, strings.TrimPrefix(data, PrefixRemove)
	default:
		return data, ""
	}
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Отмена", ActionCancel))
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxButtonText {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxButtonText-1]) + "…"
}
