// Package app содержит фабрику компонентов приложения.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"releasewatch/internal/config"
	"releasewatch/internal/external/spotify"
	"releasewatch/internal/external/telegram"
	"releasewatch/internal/handlers"
	"releasewatch/internal/health"
	"releasewatch/internal/metrics"
	"releasewatch/internal/middleware"
	"releasewatch/internal/service"
	"releasewatch/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Core содержит компоненты, общие для бота и одноразового запуска
type Core struct {
	DB       *storage.Database
	Telegram *telegram.Client
	Services *service.Services
	Registry *prometheus.Registry
}

// Close освобождает ресурсы
func (c *Core) Close() error {
	return c.DB.Close()
}

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if logger == nil {
		panic("Logger cannot be nil")
	}
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateDatabase создает подключение к хранилищу и схему
func (f *ComponentFactory) CreateDatabase(ctx context.Context) (*storage.Database, error) {
	if f.config.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := storage.Open(f.config.DatabaseURL, storage.DefaultOptions(), f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}

	f.logger.Info("Database connection created successfully")
	return db, nil
}

// CreateRegistry создает реестр метрик с метриками процесса
func (f *ComponentFactory) CreateRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// CreateTelegramClient создает клиент Telegram
func (f *ComponentFactory) CreateTelegramClient() (*telegram.Client, error) {
	if f.config.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	client, err := telegram.NewClient(f.config.BotToken, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	f.logger.Info("Telegram client created successfully")
	return client, nil
}

// CreateSpotifyClients создает клиент каталога и источник токенов
func (f *ComponentFactory) CreateSpotifyClients() (*spotify.Client, *spotify.CredentialSource, error) {
	credentials, err := spotify.NewCredentialSource(
		f.config.SpotifyClientID,
		f.config.SpotifyClientSecret,
		spotify.DefaultTokenURL,
		f.config.CatalogTimeout,
		f.logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create spotify credential source: %w", err)
	}

	catalog := spotify.NewClient(spotify.Options{
		Market:      f.config.SpotifyMarket,
		SearchLimit: f.config.SpotifySearchLimit,
		Timeout:     f.config.CatalogTimeout,
	}, f.logger)

	f.logger.Info("Spotify client created successfully", zap.String("market", f.config.SpotifyMarket))
	return catalog, credentials, nil
}

// CreateServices создает все сервисы
func (f *ComponentFactory) CreateServices(db *storage.Database, tg *telegram.Client, registry *prometheus.Registry) (*service.Services, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	catalog, credentials, err := f.CreateSpotifyClients()
	if err != nil {
		return nil, err
	}

	location, err := f.config.Location()
	if err != nil {
		return nil, err
	}

	services, err := service.NewServices(service.Dependencies{
		Repository:  db.GetArtistRepository(),
		Credentials: credentials,
		Catalog:     catalog,
		Publisher:   telegram.NewChannelPublisher(tg, f.config.NotifyChatID),
		Metrics:     metrics.New(registry),
	}, service.Options{
		Workers:   f.config.PipelineConfig.Workers,
		Schedule:  f.config.PipelineConfig.Schedule,
		Location:  location,
		LockPath:  f.config.LockPath(),
		Timeout:   f.config.PipelineConfig.Timeout,
		SeedOnAdd: f.config.PipelineConfig.SeedOnAdd,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	f.logger.Info("Services created successfully")
	return services, nil
}

// CreateHealthServer создает сервер health check и метрик
func (f *ComponentFactory) CreateHealthServer(db *storage.Database, scheduler *service.Scheduler, registry *prometheus.Registry) (*health.Server, error) {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil, nil
	}

	if f.config.HealthPort == "" {
		return nil, fmt.Errorf("health port is required when health check is enabled")
	}

	server := health.NewServer(f.config.HealthPort, db, scheduler, registry, f.logger)
	f.logger.Info("Health check server created", zap.String("port", f.config.HealthPort))
	return server, nil
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.GetAppDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Info("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateCore создает хранилище, клиенты и сервисы
func (f *ComponentFactory) CreateCore(ctx context.Context) (*Core, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	db, err := f.CreateDatabase(ctx)
	if err != nil {
		return nil, err
	}

	tgClient, err := f.CreateTelegramClient()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := f.CreateRegistry()

	services, err := f.CreateServices(db, tgClient, registry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Core{
		DB:       db,
		Telegram: tgClient,
		Services: services,
		Registry: registry,
	}, nil
}

// CreateBot создает полный экземпляр бота со всеми зависимостями
func (f *ComponentFactory) CreateBot(ctx context.Context) (*Bot, error) {
	core, err := f.CreateCore(ctx)
	if err != nil {
		return nil, err
	}

	healthServer, err := f.CreateHealthServer(core.DB, core.Services.Scheduler, core.Registry)
	if err != nil {
		_ = core.Close()
		return nil, fmt.Errorf("failed to create health server: %w", err)
	}

	mw := middleware.New(middleware.DefaultOptions(f.config.AdminUsername), f.logger)
	h := handlers.New(core.Services.Artist, core.Services.Scheduler, core.Telegram, f.config.AdminUsername, f.logger)

	bot := &Bot{
		core:       core,
		health:     healthServer,
		handlers:   h,
		middleware: mw,
		router:     NewRouter(h, mw, core.Telegram, f.logger),
		logger:     f.logger,
	}

	listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if artists, err := core.Services.Artist.List(listCtx); err != nil {
		f.logger.Warn("Failed to load monitored artists on startup", zap.Error(err))
	} else if len(artists) == 0 {
		f.logger.Warn("No monitored artists; add artists using /add")
	} else {
		f.logger.Info("Monitored artists loaded", zap.Int("count", len(artists)))
	}

	f.logger.Info("Bot created successfully with all dependencies")
	return bot, nil
}
