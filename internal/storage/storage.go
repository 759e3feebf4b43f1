// Package storage содержит работу с базой данных.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"releasewatch/internal/model"
	"releasewatch/internal/storage/repository"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	// SQLite драйвер для локального режима и тестов
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite:"

// Options задает параметры подключения
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions возвращает параметры подключения по умолчанию
func DefaultOptions() Options {
	return Options{
		MaxRetries: 10,
		RetryDelay: 5 * time.Second,
	}
}

// Database представляет подключение к хранилищу артистов
type Database struct {
	db     *bun.DB
	logger *zap.Logger
}

// Open создает подключение к PostgreSQL или SQLite (DSN с префиксом sqlite:) с retry логикой
func Open(dsn string, opts Options, logger *zap.Logger) (*Database, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		logger.Info("Attempting to connect to database",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", opts.MaxRetries))

		db, err := connect(dsn)
		if err != nil {
			return nil, err
		}

		// Добавляем отладку в режиме разработки
		if logger.Core().Enabled(zap.DebugLevel) {
			db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
				bundebug.FromEnv("BUNDEBUG"),
			))
		}

		// Проверяем подключение с таймаутом
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = db.PingContext(pingCtx)
		pingCancel()

		if lastErr == nil {
			logger.Info("Connected to database with Bun ORM",
				zap.String("dialect", db.Dialect().Name().String()),
				zap.Int("attempt", attempt))

			return &Database{
				db:     db,
				logger: logger,
			}, nil
		}

		logger.Warn("Failed to connect to database",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		// Закрываем неудачное подключение
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}

		if attempt < opts.MaxRetries {
			logger.Info("Retrying connection", zap.Duration("delay", opts.RetryDelay))
			time.Sleep(opts.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.MaxRetries, lastErr)
}

// connect создает bun.DB для выбранного диалекта
func connect(dsn string) (*bun.DB, error) {
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		sqldb, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite допускает одного писателя; :memory: живет в рамках одного соединения
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	// Настраиваем пул соединений
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(10)
	sqldb.SetConnMaxLifetime(5 * time.Minute)
	sqldb.SetConnMaxIdleTime(1 * time.Minute)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// EnsureSchema создает таблицы, если их еще нет
func (d *Database) EnsureSchema(ctx context.Context) error {
	_, err := d.db.NewCreateTable().
		Model((*model.ArtistRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create monitored_artists table: %w", err)
	}

	d.logger.Debug("Database schema is ready")
	return nil
}

// Ping проверяет доступность базы данных
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB возвращает подключение к базе данных
func (d *Database) GetDB() *bun.DB {
	return d.db
}

// GetArtistRepository возвращает репозиторий артистов
func (d *Database) GetArtistRepository() model.ArtistRepository {
	return repository.NewArtistRepository(d.db, d.logger)
}
