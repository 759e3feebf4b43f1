// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"releasewatch/internal/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/zap"
)

// ArtistRepository реализует model.ArtistRepository поверх bun
type ArtistRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewArtistRepository создает новый репозиторий артистов
func NewArtistRepository(db *bun.DB, logger *zap.Logger) *ArtistRepository {
	return &ArtistRepository{
		db:     db,
		logger: logger,
	}
}

// ScanAll возвращает все записи в порядке добавления
func (r *ArtistRepository) ScanAll(ctx context.Context) ([]model.ArtistRecord, error) {
	var records []model.ArtistRecord

	err := r.db.NewSelect().
		Model(&records).
		Order("created_at ASC", "artist_id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to scan monitored artists: %w", err)
	}

	return records, nil
}

// Put добавляет артиста; для существующего обновляется только имя
func (r *ArtistRepository) Put(ctx context.Context, artist model.MonitoredArtist) error {
	if err := artist.Validate(); err != nil {
		return err
	}

	record := model.NewArtistRecord(artist)

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (artist_id) DO UPDATE").
		Set("artist_name = EXCLUDED.artist_name").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to put artist %s: %w", artist.ID, err)
	}

	r.logger.Debug("Artist stored", zap.String("artist_id", artist.ID), zap.String("artist_name", record.ArtistName))
	return nil
}

// Delete удаляет артиста; удаление отсутствующего не является ошибкой
func (r *ArtistRepository) Delete(ctx context.Context, artistID string) error {
	_, err := r.db.NewDelete().
		Model((*model.ArtistRecord)(nil)).
		Where("artist_id = ?", artistID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete artist %s: %w", artistID, err)
	}

	return nil
}

// UpdateSnapshots записывает новые снимки и возвращает предыдущие в одной транзакции
func (r *ArtistRepository) UpdateSnapshots(ctx context.Context, artistID string, snapshots model.SnapshotPair) (model.SnapshotPair, error) {
	var previous model.SnapshotPair

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := new(model.ArtistRecord)

		q := tx.NewSelect().
			Model(record).
			Where("artist_id = ?", artistID)
		if tx.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}

		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrArtistNotFound
			}
			return err
		}

		previous = record.Snapshots()

		now := time.Now().UTC()
		record.LastAlbum = snapshots.Album
		record.LastSingle = snapshots.Single
		record.CheckedAt = &now

		_, err := tx.NewUpdate().
			Model(record).
			Column("last_album", "last_single", "checked_at").
			WherePK().
			Exec(ctx)
		return err
	})

	if err != nil {
		if errors.Is(err, model.ErrArtistNotFound) {
			return model.SnapshotPair{}, fmt.Errorf("update snapshots for %s: %w", artistID, err)
		}
		return model.SnapshotPair{}, fmt.Errorf("failed to update snapshots for %s: %w", artistID, err)
	}

	return previous, nil
}
