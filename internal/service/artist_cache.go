package service

import (
	"context"
	"fmt"

	"releasewatch/internal/metrics"
	"releasewatch/internal/model"

	"go.uber.org/zap"
)

// CacheState состояние локальной копии списка артистов
type CacheState int

const (
	CacheUnknown CacheState = iota
	CachePopulated
	CacheConfirmedEmpty
)

// String возвращает строковое представление состояния
func (s CacheState) String() string {
	switch s {
	case CacheUnknown:
		return "unknown"
	case CachePopulated:
		return "populated"
	case CacheConfirmedEmpty:
		return "confirmed_empty"
	default:
		return "invalid"
	}
}

// ArtistCache зеркалирует список артистов хранилища в рамках одной операторской сессии.
// Методы не потокобезопасны: вызывающий сериализует доступ.
type ArtistCache struct {
	repo    model.ArtistRepository
	metrics *metrics.Metrics
	logger  *zap.Logger

	state   CacheState
	artists []model.MonitoredArtist
}

// NewArtistCache создает кеш в состоянии CacheUnknown
func NewArtistCache(repo model.ArtistRepository, m *metrics.Metrics, logger *zap.Logger) *ArtistCache {
	return &ArtistCache{
		repo:    repo,
		metrics: m,
		logger:  logger,
		state:   CacheUnknown,
	}
}

// State возвращает текущее состояние кеша
func (c *ArtistCache) State() CacheState {
	return c.state
}

// List возвращает список артистов; хранилище читается только в состоянии CacheUnknown
func (c *ArtistCache) List(ctx context.Context) ([]model.MonitoredArtist, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	out := make([]model.MonitoredArtist, len(c.artists))
	copy(out, c.artists)
	return out, nil
}

// Find возвращает артиста по ID из загруженного списка
func (c *ArtistCache) Find(ctx context.Context, artistID string) (model.MonitoredArtist, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return model.MonitoredArtist{}, err
	}

	if i := c.indexOf(artistID); i >= 0 {
		return c.artists[i], nil
	}
	return model.MonitoredArtist{}, model.ErrArtistNotFound
}

// Add сохраняет артиста в хранилище и затем добавляет его в конец списка
func (c *ArtistCache) Add(ctx context.Context, artist model.MonitoredArtist) error {
	if err := artist.Validate(); err != nil {
		return err
	}

	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	if c.indexOf(artist.ID) >= 0 {
		return fmt.Errorf("add %s: %w", artist.Name, model.ErrArtistAlreadyMonitored)
	}

	if err := c.repo.Put(ctx, artist); err != nil {
		return fmt.Errorf("failed to store artist %s: %w", artist.ID, err)
	}

	c.artists = append(c.artists, artist)
	c.state = CachePopulated

	c.logger.Info("Artist added to monitored list",
		zap.String("artist_id", artist.ID),
		zap.String("artist_name", artist.Name),
		zap.Int("total", len(c.artists)))

	return nil
}

// Remove удаляет артиста из хранилища и затем из списка
func (c *ArtistCache) Remove(ctx context.Context, artistID string) (model.MonitoredArtist, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return model.MonitoredArtist{}, err
	}

	i := c.indexOf(artistID)
	if i < 0 {
		return model.MonitoredArtist{}, fmt.Errorf("remove %s: %w", artistID, model.ErrArtistNotFound)
	}

	if err := c.repo.Delete(ctx, artistID); err != nil {
		return model.MonitoredArtist{}, fmt.Errorf("failed to delete artist %s: %w", artistID, err)
	}

	removed := c.artists[i]
	c.artists = append(c.artists[:i:i], c.artists[i+1:]...)
	if len(c.artists) == 0 {
		c.artists = nil
		c.state = CacheConfirmedEmpty
	}

	c.logger.Info("Artist removed from monitored list",
		zap.String("artist_id", removed.ID),
		zap.String("artist_name", removed.Name),
		zap.Int("total", len(c.artists)))

	return removed, nil
}

// Reset сбрасывает кеш в CacheUnknown; следующее чтение обратится к хранилищу
func (c *ArtistCache) Reset() {
	c.state = CacheUnknown
	c.artists = nil
	c.logger.Debug("Artist cache reset")
}

// ensureLoaded читает список из хранилища, если состояние неизвестно
func (c *ArtistCache) ensureLoaded(ctx context.Context) error {
	if c.state != CacheUnknown {
		return nil
	}

	c.metrics.IncCacheRemoteRead()

	records, err := c.repo.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load monitored artists: %w", err)
	}

	artists := make([]model.MonitoredArtist, 0, len(records))
	for _, record := range records {
		artists = append(artists, record.Artist())
	}

	if len(artists) == 0 {
		c.artists = nil
		c.state = CacheConfirmedEmpty
	} else {
		c.artists = artists
		c.state = CachePopulated
	}

	c.logger.Debug("Artist cache loaded",
		zap.String("state", c.state.String()),
		zap.Int("artists", len(c.artists)))

	return nil
}

func (c *ArtistCache) indexOf(artistID string) int {
	for i, artist := range c.artists {
		if artist.ID == artistID {
			return i
		}
	}
	return -1
}
