// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: MonitoredArtist, ArtistRecord, ArtistRepository
package model

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// MonitoredArtist представляет отслеживаемого артиста
type MonitoredArtist struct {
	ID   string `json:"artist_id"`
	Name string `json:"artist_name"`
}

// Validate проверяет валидность артиста
func (a MonitoredArtist) Validate() error {
	var errors ValidationErrors

	if err := ValidateRequired("artist_id", a.ID); err != nil {
		errors = append(errors, err.(ValidationError))
	}

	if err := ValidateRequired("artist_name", a.Name); err != nil {
		errors = append(errors, err.(ValidationError))
	} else if err := ValidateLength("artist_name", a.Name, 1, 200); err != nil {
		errors = append(errors, err.(ValidationError))
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// ArtistRecord представляет запись артиста в хранилище вместе с последними известными релизами
type ArtistRecord struct {
	bun.BaseModel `bun:"table:monitored_artists"`

	ArtistID   string          `bun:"artist_id,pk" json:"artist_id"`
	ArtistName string          `bun:"artist_name,notnull" json:"artist_name"`
	LastAlbum  ReleaseSnapshot `bun:"last_album,notnull" json:"last_album"`
	LastSingle ReleaseSnapshot `bun:"last_single,notnull" json:"last_single"`
	CheckedAt  *time.Time      `bun:"checked_at" json:"checked_at"`
	CreatedAt  time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// NewArtistRecord создает запись без известных релизов
func NewArtistRecord(artist MonitoredArtist) *ArtistRecord {
	return &ArtistRecord{
		ArtistID:   artist.ID,
		ArtistName: strings.TrimSpace(artist.Name),
		LastAlbum:  EmptySnapshot(ReleaseKindAlbum),
		LastSingle: EmptySnapshot(ReleaseKindSingle),
		CreatedAt:  time.Now().UTC(),
	}
}

// Artist возвращает артиста без снимков релизов
func (r ArtistRecord) Artist() MonitoredArtist {
	return MonitoredArtist{ID: r.ArtistID, Name: r.ArtistName}
}

// Snapshots возвращает сохраненную пару снимков
func (r ArtistRecord) Snapshots() SnapshotPair {
	return SnapshotPair{
		Album:  r.LastAlbum.withKind(ReleaseKindAlbum),
		Single: r.LastSingle.withKind(ReleaseKindSingle),
	}
}

// ArtistRepository определяет контракт хранилища отслеживаемых артистов
type ArtistRepository interface {
	// ScanAll возвращает все записи в стабильном порядке
	ScanAll(ctx context.Context) ([]ArtistRecord, error)
	// Put сохраняет артиста, не затрагивая уже сохраненные снимки
	Put(ctx context.Context, artist MonitoredArtist) error
	// Delete удаляет артиста по ID
	Delete(ctx context.Context, artistID string) error
	// UpdateSnapshots атомарно записывает новые снимки и возвращает предыдущие
	UpdateSnapshots(ctx context.Context, artistID string, snapshots SnapshotPair) (SnapshotPair, error)
}
