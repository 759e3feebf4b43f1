// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"releasewatch/internal/model"

	"go.uber.org/zap"
)

// ArtistService управляет списком отслеживаемых артистов операторской сессии
type ArtistService struct {
	cache       *ArtistCache
	credentials CredentialProvider
	catalog     CatalogClient
	repo        model.ArtistRepository
	seedOnAdd   bool
	logger      *zap.Logger
	mu          sync.Mutex
}

// NewArtistService создает новый сервис артистов
func NewArtistService(cache *ArtistCache, credentials CredentialProvider, catalog CatalogClient, repo model.ArtistRepository, seedOnAdd bool, logger *zap.Logger) *ArtistService {
	return &ArtistService{
		cache:       cache,
		credentials: credentials,
		catalog:     catalog,
		repo:        repo,
		seedOnAdd:   seedOnAdd,
		logger:      logger,
	}
}

// List возвращает отслеживаемых артистов
func (s *ArtistService) List(ctx context.Context) ([]model.MonitoredArtist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.List(ctx)
}

// Search ищет кандидатов в каталоге; пустой результат дает ErrNoCandidates
func (s *ArtistService) Search(ctx context.Context, name string) ([]model.Candidate, error) {
	name = strings.TrimSpace(name)
	if err := model.ValidateRequired("name", name); err != nil {
		return nil, err
	}

	cred, err := s.credentials.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog credential: %w", err)
	}

	candidates, err := s.catalog.SearchArtists(ctx, name, cred)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("search %q: %w", name, model.ErrNoCandidates)
	}

	return candidates, nil
}

// Add добавляет артиста и, если включено, сразу сохраняет его последние релизы
func (s *ArtistService) Add(ctx context.Context, artist model.MonitoredArtist) error {
	s.mu.Lock()
	err := s.cache.Add(ctx, artist)
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if s.seedOnAdd {
		if _, err := s.Seed(ctx, artist); err != nil {
			s.logger.Warn("Failed to seed latest releases for new artist",
				zap.String("artist_id", artist.ID),
				zap.String("artist_name", artist.Name),
				zap.Error(err))
		}
	}

	return nil
}

// Seed сохраняет текущие релизы артиста, чтобы первый запуск не сообщал о старом каталоге
func (s *ArtistService) Seed(ctx context.Context, artist model.MonitoredArtist) (model.SnapshotPair, error) {
	cred, err := s.credentials.Acquire(ctx)
	if err != nil {
		return model.SnapshotPair{}, fmt.Errorf("acquire catalog credential: %w", err)
	}

	current := model.EmptySnapshotPair()
	for _, kind := range model.ReleaseKinds() {
		snapshot, err := s.catalog.LatestRelease(ctx, artist.ID, kind, cred)
		if err != nil {
			return model.SnapshotPair{}, err
		}
		if kind == model.ReleaseKindAlbum {
			current.Album = snapshot
		} else {
			current.Single = snapshot
		}
	}

	if _, err := s.repo.UpdateSnapshots(ctx, artist.ID, current); err != nil {
		return model.SnapshotPair{}, err
	}

	s.logger.Info("Seeded latest releases",
		zap.String("artist_id", artist.ID),
		zap.String("album", current.Album.String()),
		zap.String("single", current.Single.String()))

	return current, nil
}

// Remove удаляет артиста из отслеживаемых
func (s *ArtistService) Remove(ctx context.Context, artistID string) (model.MonitoredArtist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Remove(ctx, artistID)
}

// Refresh сбрасывает кеш списка; следующее чтение обратится к хранилищу
func (s *ArtistService) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Reset()
}

// CacheState возвращает состояние кеша списка
func (s *ArtistService) CacheState() CacheState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.State()
}
