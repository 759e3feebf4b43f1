package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"releasewatch/internal/metrics"
	"releasewatch/internal/model"
	"releasewatch/internal/worker"

	"go.uber.org/zap"
)

// DefaultPipelineWorkers число параллельных запросов к каталогу по умолчанию
const DefaultPipelineWorkers = 4

// FetchStatus итог обработки одного артиста за запуск
type FetchStatus int

const (
	FetchOK FetchStatus = iota
	FetchFailed
	FetchAuthFailed
	FetchNotFound
	PersistFailed
)

// String возвращает строковое представление статуса
func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchFailed:
		return "fetch_failed"
	case FetchAuthFailed:
		return "auth_failed"
	case FetchNotFound:
		return "not_found"
	case PersistFailed:
		return "persist_failed"
	default:
		return "unknown"
	}
}

var errNotProcessed = errors.New("artist was not processed")

// EntityResult результат обработки одного артиста
type EntityResult struct {
	Artist  model.MonitoredArtist
	Status  FetchStatus
	Current model.SnapshotPair
	Changes []model.ChangeRecord
	Err     error
}

// RunReport описывает завершенный запуск конвейера
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Results    []EntityResult
	Digest     []model.ChangeRecord
}

// Artists возвращает число просканированных артистов
func (r *RunReport) Artists() int {
	return len(r.Results)
}

// Failed возвращает число пропущенных из-за ошибок артистов
func (r *RunReport) Failed() int {
	failed := 0
	for _, result := range r.Results {
		if result.Status != FetchOK {
			failed++
		}
	}
	return failed
}

// Duration возвращает длительность запуска
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Pipeline проверяет каталог на новые релизы всех отслеживаемых артистов
type Pipeline struct {
	credentials CredentialProvider
	catalog     CatalogClient
	repo        model.ArtistRepository
	differ      *ReleaseDiffer
	notifier    *Notifier
	metrics     *metrics.Metrics
	workers     int
	logger      *zap.Logger
}

// NewPipeline создает новый конвейер уведомлений
func NewPipeline(
	credentials CredentialProvider,
	catalog CatalogClient,
	repo model.ArtistRepository,
	notifier *Notifier,
	m *metrics.Metrics,
	workers int,
	logger *zap.Logger,
) *Pipeline {
	if workers <= 0 {
		workers = DefaultPipelineWorkers
	}

	return &Pipeline{
		credentials: credentials,
		catalog:     catalog,
		repo:        repo,
		differ:      NewReleaseDiffer(),
		notifier:    notifier,
		metrics:     m,
		workers:     workers,
		logger:      logger,
	}
}

// Run выполняет один запуск: токен, сканирование, проверка артистов, дайджест, уведомление
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		StartedAt: time.Now().UTC(),
	}
	report.RunID = report.StartedAt.Format("20060102T150405.000")
	logger := p.logger.With(zap.String("run_id", report.RunID))

	logger.Info("Pipeline run started")

	cred, err := p.credentials.Acquire(ctx)
	if err != nil {
		p.finish(report, metrics.OutcomeFailed)
		logger.Error("Pipeline run aborted: failed to acquire catalog credential", zap.Error(err))
		return report, fmt.Errorf("acquire catalog credential: %w", err)
	}

	records, err := p.repo.ScanAll(ctx)
	if err != nil {
		p.finish(report, metrics.OutcomeFailed)
		logger.Error("Pipeline run aborted: failed to scan monitored artists", zap.Error(err))
		return report, fmt.Errorf("scan monitored artists: %w", err)
	}

	p.metrics.SetMonitoredArtists(len(records))

	if len(records) == 0 {
		logger.Info("No monitored artists found")
		err := p.notifier.NoArtistsFound(ctx)
		p.finish(report, notifyOutcome(metrics.OutcomeNoArtists, err))
		return report, err
	}

	report.Results = p.processAll(ctx, cred, records, logger)

	for _, result := range report.Results {
		if result.Status != FetchOK {
			p.metrics.IncFetchFailure(result.Status.String())
			continue
		}
		for _, change := range result.Changes {
			p.metrics.IncReleaseChange(change.Kind.String())
		}
		report.Digest = append(report.Digest, result.Changes...)
	}

	logger.Info("Artists processed",
		zap.Int("artists", report.Artists()),
		zap.Int("failed", report.Failed()),
		zap.Int("changes", len(report.Digest)))

	if len(report.Digest) == 0 {
		err = p.notifier.NoNewReleases(ctx)
		p.finish(report, notifyOutcome(metrics.OutcomeNoNewRelease, err))
	} else {
		err = p.notifier.NewReleases(ctx, report.Digest)
		p.finish(report, notifyOutcome(metrics.OutcomeNewReleases, err))
	}

	logger.Info("Pipeline run finished",
		zap.String("outcome", report.Outcome),
		zap.Duration("duration", report.Duration()))

	return report, err
}

// processAll обрабатывает артистов пулом воркеров; результаты лежат по индексу сканирования
func (p *Pipeline) processAll(ctx context.Context, cred model.Credential, records []model.ArtistRecord, logger *zap.Logger) []EntityResult {
	results := make([]EntityResult, len(records))

	workers := p.workers
	if workers > len(records) {
		workers = len(records)
	}

	pool := worker.NewWorkerPool(ctx, workers, len(records), logger)
	pool.Start()

	for i := range records {
		record := records[i]
		index := i
		results[index] = EntityResult{
			Artist: record.Artist(),
			Status: FetchFailed,
			Err:    errNotProcessed,
		}

		job := worker.Job{
			Index:    index,
			ArtistID: record.ArtistID,
			Handler: func(ctx context.Context) error {
				results[index] = p.processArtist(ctx, cred, record, logger)
				return results[index].Err
			},
		}

		if err := pool.Submit(job); err != nil {
			results[index].Err = fmt.Errorf("submit artist job: %w", err)
		}
	}

	// Барьер перед сборкой дайджеста
	pool.Wait()

	return results
}

// processArtist получает текущие релизы, сравнивает и записывает их для одного артиста
func (p *Pipeline) processArtist(ctx context.Context, cred model.Credential, record model.ArtistRecord, logger *zap.Logger) EntityResult {
	artist := record.Artist()
	result := EntityResult{Artist: artist}
	previous := record.Snapshots()

	var current model.SnapshotPair
	for _, kind := range model.ReleaseKinds() {
		snapshot, err := p.catalog.LatestRelease(ctx, artist.ID, kind, cred)
		if err != nil {
			result.Status = classifyFetchError(err)
			result.Err = err
			p.logEntityFailure(logger, artist, result)
			return result
		}

		if kind == model.ReleaseKindAlbum {
			current.Album = snapshot
		} else {
			current.Single = snapshot
		}
	}
	result.Current = current

	changes := p.differ.Apply(artist, previous, current)

	stored, err := p.repo.UpdateSnapshots(ctx, artist.ID, current)
	if err != nil {
		if errors.Is(err, model.ErrArtistNotFound) {
			result.Status = FetchNotFound
		} else {
			result.Status = PersistFailed
		}
		result.Err = err
		p.logEntityFailure(logger, artist, result)
		return result
	}

	result.Status = FetchOK
	result.Changes = changes

	logger.Debug("Artist checked",
		zap.String("artist_id", artist.ID),
		zap.String("album", current.Album.String()),
		zap.String("single", current.Single.String()),
		zap.String("previous_album", stored.Album.String()),
		zap.String("previous_single", stored.Single.String()),
		zap.Int("changes", len(changes)))

	return result
}

func (p *Pipeline) logEntityFailure(logger *zap.Logger, artist model.MonitoredArtist, result EntityResult) {
	fields := []zap.Field{
		zap.String("artist_id", artist.ID),
		zap.String("artist_name", artist.Name),
		zap.String("status", result.Status.String()),
		zap.Error(result.Err),
	}

	if result.Status == FetchAuthFailed {
		logger.Error("Catalog rejected credential, artist skipped", fields...)
		return
	}
	logger.Warn("Artist skipped in this run", fields...)
}

func (p *Pipeline) finish(report *RunReport, outcome string) {
	report.FinishedAt = time.Now().UTC()
	report.Outcome = outcome
	p.metrics.ObserveRun(outcome, report.Duration())
}

// notifyOutcome заменяет исход запуска на notify_failed, если уведомление не отправлено
func notifyOutcome(outcome string, err error) string {
	if err != nil {
		return metrics.OutcomeNotifyFailed
	}
	return outcome
}

// classifyFetchError относит ошибку каталога к статусу артиста
func classifyFetchError(err error) FetchStatus {
	if errors.Is(err, model.ErrAuthExpired) {
		return FetchAuthFailed
	}

	var lookupErr *model.LookupFailedError
	if errors.As(err, &lookupErr) && lookupErr.Status == http.StatusNotFound {
		return FetchNotFound
	}

	return FetchFailed
}
