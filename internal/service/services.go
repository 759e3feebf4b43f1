// Package service содержит бизнес-логику приложения.
package service

import (
	"fmt"
	"time"

	"releasewatch/internal/metrics"
	"releasewatch/internal/model"

	"go.uber.org/zap"
)

// Dependencies внешние зависимости сервисов
type Dependencies struct {
	Repository  model.ArtistRepository
	Credentials CredentialProvider
	Catalog     CatalogClient
	Publisher   Publisher
	Metrics     *metrics.Metrics
}

// Options параметры сервисов
type Options struct {
	Workers   int
	Schedule  string
	Location  *time.Location
	LockPath  string
	Timeout   time.Duration
	SeedOnAdd bool
}

// Services содержит все сервисы приложения
type Services struct {
	Artist    *ArtistService
	Notifier  *Notifier
	Pipeline  *Pipeline
	Scheduler *Scheduler
}

// NewServices создает все сервисы
func NewServices(deps Dependencies, opts Options, logger *zap.Logger) (*Services, error) {
	notifier := NewNotifier(deps.Publisher, deps.Metrics, logger)
	pipeline := NewPipeline(deps.Credentials, deps.Catalog, deps.Repository, notifier, deps.Metrics, opts.Workers, logger)

	scheduler, err := NewScheduler(pipeline, SchedulerConfig{
		Schedule: opts.Schedule,
		Location: opts.Location,
		LockPath: opts.LockPath,
		Timeout:  opts.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	cache := NewArtistCache(deps.Repository, deps.Metrics, logger)

	return &Services{
		Artist:    NewArtistService(cache, deps.Credentials, deps.Catalog, deps.Repository, opts.SeedOnAdd, logger),
		Notifier:  notifier,
		Pipeline:  pipeline,
		Scheduler: scheduler,
	}, nil
}
