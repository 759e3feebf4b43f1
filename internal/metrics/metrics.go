// Package metrics содержит Prometheus метрики конвейера уведомлений.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы запуска конвейера
const (
	OutcomeNoArtists    = "no_artists"
	OutcomeNoNewRelease = "no_new_releases"
	OutcomeNewReleases  = "new_releases"
	OutcomeFailed       = "failed"
	OutcomeNotifyFailed = "notify_failed"
	OutcomeSkipped      = "skipped"
)

// Metrics набор метрик; nil-значение допустимо и ничего не записывает
type Metrics struct {
	pipelineRuns     *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	fetchFailures    *prometheus.CounterVec
	releaseChanges   *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	cacheRemoteReads prometheus.Counter
	monitoredArtists prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
}

// New регистрирует метрики в registerer; nil означает DefaultRegisterer
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		pipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatch_pipeline_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "releasewatch_pipeline_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"outcome"},
		),
		fetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatch_entity_fetch_failures_total",
				Help: "Total number of per-artist failures skipped by the pipeline",
			},
			[]string{"reason"},
		),
		releaseChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatch_release_changes_total",
				Help: "Total number of new releases detected",
			},
			[]string{"kind"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatch_notifications_total",
				Help: "Total number of published notifications",
			},
			[]string{"type", "status"},
		),
		cacheRemoteReads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "releasewatch_cache_remote_reads_total",
				Help: "Total number of artist list reads that reached the record store",
			},
		),
		monitoredArtists: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "releasewatch_monitored_artists",
				Help: "Number of artists scanned by the last pipeline run",
			},
		),
		lastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "releasewatch_pipeline_last_run_timestamp_seconds",
				Help: "Unix time of the last finished pipeline run",
			},
		),
	}
}

// ObserveRun записывает исход и длительность запуска
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.lastRunTimestamp.SetToCurrentTime()
}

// IncFetchFailure учитывает пропущенного из-за ошибки артиста
func (m *Metrics) IncFetchFailure(reason string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(reason).Inc()
}

// IncReleaseChange учитывает найденный новый релиз
func (m *Metrics) IncReleaseChange(kind string) {
	if m == nil {
		return
	}
	m.releaseChanges.WithLabelValues(kind).Inc()
}

// ObserveNotification учитывает попытку публикации уведомления
func (m *Metrics) ObserveNotification(notificationType string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.notifications.WithLabelValues(notificationType, status).Inc()
}

// IncCacheRemoteRead учитывает чтение списка из хранилища
func (m *Metrics) IncCacheRemoteRead() {
	if m == nil {
		return
	}
	m.cacheRemoteReads.Inc()
}

// SetMonitoredArtists задает число артистов в последнем запуске
func (m *Metrics) SetMonitoredArtists(count int) {
	if m == nil {
		return
	}
	m.monitoredArtists.Set(float64(count))
}
