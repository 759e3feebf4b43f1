package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// MessageSender отправляет текстовое сообщение в чат
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// ChannelPublisher публикует уведомления в один чат Telegram
type ChannelPublisher struct {
	sender MessageSender
	chatID int64
}

// NewChannelPublisher создает публикатор для чата уведомлений
func NewChannelPublisher(sender MessageSender, chatID int64) *ChannelPublisher {
	return &ChannelPublisher{
		sender: sender,
		chatID: chatID,
	}
}

// Publish отправляет тему жирным шрифтом и тело сообщения
func (p *ChannelPublisher) Publish(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := FormatNotification(subject, body)
	if err := p.sender.SendMessage(p.chatID, text); err != nil {
		return fmt.Errorf("publish to chat %d: %w", p.chatID, err)
	}

	return nil
}

// FormatNotification собирает HTML текст уведомления с экранированием
func FormatNotification(subject, body string) string {
	var sb strings.Builder
	sb.WriteString("<b>")
	sb.WriteString(html.EscapeString(subject))
	sb.WriteString("</b>")

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(html.EscapeString(body))
	}

	return sb.String()
}
