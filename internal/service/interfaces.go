package service

import (
	"context"

	"releasewatch/internal/model"
)

// CredentialProvider выдает токен каталога на один запуск
type CredentialProvider interface {
	Acquire(ctx context.Context) (model.Credential, error)
}

// CatalogClient определяет операции каталога релизов
type CatalogClient interface {
	// SearchArtists возвращает кандидатов в порядке ранжирования каталога
	SearchArtists(ctx context.Context, name string, cred model.Credential) ([]model.Candidate, error)
	// LatestRelease возвращает последний релиз типа kind или пустой снимок
	LatestRelease(ctx context.Context, artistID string, kind model.ReleaseKind, cred model.Credential) (model.ReleaseSnapshot, error)
}

// Publisher публикует уведомление в один канал
type Publisher interface {
	Publish(ctx context.Context, subject, body string) error
}

// PipelineRunner запускает конвейер уведомлений
type PipelineRunner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// SchedulerInterface определяет интерфейс для планировщика запусков
type SchedulerInterface interface {
	Start() error
	Stop()
	RunNow(ctx context.Context) (*RunReport, error)
}
