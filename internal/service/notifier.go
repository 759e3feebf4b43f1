package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"releasewatch/internal/metrics"
	"releasewatch/internal/model"

	"go.uber.org/zap"
)

// Типы уведомлений
const (
	NotificationNoArtists     = "no_artists"
	NotificationNoNewReleases = "no_new_releases"
	NotificationNewReleases   = "new_releases"
)

// Notifier формирует уведомления и публикует их в один канал
type Notifier struct {
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewNotifier создает новый Notifier
func NewNotifier(publisher Publisher, m *metrics.Metrics, logger *zap.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// NoArtistsFound сообщает, что список отслеживаемых артистов пуст
func (n *Notifier) NoArtistsFound(ctx context.Context) error {
	return n.publish(ctx, NotificationNoArtists,
		"Список артистов пуст",
		"Нет ни одного отслеживаемого артиста. Добавьте артистов командой /add.")
}

// NoNewReleases сообщает, что новых релизов нет
func (n *Notifier) NoNewReleases(ctx context.Context) error {
	return n.publish(ctx, NotificationNoNewReleases,
		"Новых релизов нет",
		"С прошлой проверки отслеживаемые артисты ничего не выпустили.")
}

// NewReleases публикует дайджест новых релизов
func (n *Notifier) NewReleases(ctx context.Context, digest []model.ChangeRecord) error {
	if len(digest) == 0 {
		return fmt.Errorf("digest is empty")
	}

	subject, body := ComposeDigest(digest)
	return n.publish(ctx, NotificationNewReleases, subject, body)
}

func (n *Notifier) publish(ctx context.Context, notificationType, subject, body string) error {
	err := n.publisher.Publish(ctx, subject, body)
	n.metrics.ObserveNotification(notificationType, err)

	if err != nil {
		n.logger.Error("Failed to publish notification",
			zap.String("type", notificationType),
			zap.Error(err))
		return fmt.Errorf("publish %s notification: %w", notificationType, err)
	}

	n.logger.Info("Notification published", zap.String("type", notificationType))
	return nil
}

// Лимит сообщения Telegram 4096 символов; тема и разметка занимают часть запаса
const (
	DigestBodyLimit  = 3500
	digestNamesLimit = 1000
	digestTailLimit  = 24
)

// ComposeDigest формирует тему и текст уведомления о новых релизах в порядке дайджеста.
// Текст не длиннее DigestBodyLimit символов: не поместившиеся строки заменяются строкой "…и ещё N".
func ComposeDigest(digest []model.ChangeRecord) (string, string) {
	names := distinctArtistNames(digest)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Новые релизы у %d %s: %s\n", len(names), pluralArtists(len(names)), joinLimited(names, digestNamesLimit))
	size := utf8.RuneCountInString(sb.String())

	for i, change := range digest {
		line := "\n" + formatChangeLine(i+1, change)
		lineSize := utf8.RuneCountInString(line)

		limit := DigestBodyLimit
		if i < len(digest)-1 {
			limit -= digestTailLimit
		}
		if size+lineSize > limit {
			fmt.Fprintf(&sb, "\n…и ещё %d", len(digest)-i)
			break
		}

		sb.WriteString(line)
		size += lineSize
	}

	subject := fmt.Sprintf("Новые релизы (%d)", len(digest))
	return subject, sb.String()
}

// joinLimited перечисляет имена через запятую, пока длина не превышает limit
func joinLimited(names []string, limit int) string {
	var sb strings.Builder
	size := 0

	for i, name := range names {
		part := name
		if i > 0 {
			part = ", " + name
		}
		partSize := utf8.RuneCountInString(part)
		if i > 0 && size+partSize > limit {
			fmt.Fprintf(&sb, " и ещё %d", len(names)-i)
			break
		}
		sb.WriteString(part)
		size += partSize
	}

	return sb.String()
}

// formatChangeLine форматирует строку одного изменения
func formatChangeLine(position int, change model.ChangeRecord) string {
	line := fmt.Sprintf("%d. %s: %s \"%s\"", position, change.ArtistName, kindLabel(change.Kind), change.Snapshot.Name)
	if change.Snapshot.ReleaseDate != "" {
		line += fmt.Sprintf(" (%s)", change.Snapshot.ReleaseDate)
	}

	var featuring []string
	for _, name := range change.Snapshot.Artists {
		if name != change.ArtistName {
			featuring = append(featuring, name)
		}
	}
	if len(featuring) > 0 {
		line += ", при участии " + strings.Join(featuring, ", ")
	}

	return line
}

func distinctArtistNames(digest []model.ChangeRecord) []string {
	seen := make(map[string]struct{}, len(digest))
	names := make([]string, 0, len(digest))

	for _, change := range digest {
		if _, ok := seen[change.ArtistID]; ok {
			continue
		}
		seen[change.ArtistID] = struct{}{}
		names = append(names, change.ArtistName)
	}

	return names
}

func kindLabel(kind model.ReleaseKind) string {
	switch kind {
	case model.ReleaseKindAlbum:
		return "альбом"
	case model.ReleaseKindSingle:
		return "сингл"
	default:
		return kind.String()
	}
}

// pluralArtists выбирает форму слова "артист" для числа
func pluralArtists(n int) string {
	mod100 := n % 100
	mod10 := n % 10

	switch {
	case mod100 >= 11 && mod100 <= 14:
		return "артистов"
	case mod10 == 1:
		return "артиста"
	default:
		return "артистов"
	}
}
