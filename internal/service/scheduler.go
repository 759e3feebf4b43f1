// Package service содержит планировщик запусков конвейера.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule еженедельный запуск: воскресенье, 12:00
const DefaultSchedule = "0 12 * * SUN"

// ErrRunInProgress возвращается, если другой запуск уже держит блокировку
var ErrRunInProgress = errors.New("pipeline run already in progress")

// SchedulerConfig параметры планировщика
type SchedulerConfig struct {
	Schedule string
	Location *time.Location
	LockPath string
	Timeout  time.Duration
}

// Scheduler запускает конвейер по расписанию и по запросу, не допуская пересечения запусков
type Scheduler struct {
	runner  PipelineRunner
	config  SchedulerConfig
	cron    *cron.Cron
	entryID cron.EntryID
	logger  *zap.Logger
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ SchedulerInterface = (*Scheduler)(nil)

// NewScheduler создает новый планировщик
func NewScheduler(runner PipelineRunner, cfg SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockPath == "" {
		return nil, fmt.Errorf("pipeline lock path is required")
	}

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid pipeline schedule %q: %w", cfg.Schedule, err)
	}

	cronLogger := &cronZapLogger{logger: logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner: runner,
		config: cfg,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("failed to add pipeline to cron: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("location", s.config.Location.String()),
		zap.Time("next_run", s.cron.Entry(entryID).Next))

	return nil
}

// Stop останавливает планировщик и отменяет текущий запуск
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping scheduler")

	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false

	s.logger.Info("Scheduler stopped")
}

// RunNow выполняет запуск немедленно; при занятой блокировке возвращает ErrRunInProgress
func (s *Scheduler) RunNow(ctx context.Context) (*RunReport, error) {
	if err := os.MkdirAll(filepath.Dir(s.config.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(s.config.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire pipeline lock: %w", err)
	}
	if !locked {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("Failed to release pipeline lock", zap.Error(err))
		}
	}()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	return s.runner.Run(ctx)
}

// runScheduled выполняет запуск по расписанию; ошибки только логируются
func (s *Scheduler) runScheduled() {
	s.logger.Info("Executing scheduled pipeline run")

	report, err := s.RunNow(s.ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Warn("Scheduled run skipped: another run holds the lock")
	case err != nil:
		s.logger.Error("Scheduled pipeline run failed", zap.Error(err))
	case report != nil:
		s.logger.Info("Scheduled pipeline run completed",
			zap.String("run_id", report.RunID),
			zap.String("outcome", report.Outcome),
			zap.Int("changes", len(report.Digest)))
	}
}

// NextRun возвращает время следующего запуска по расписанию
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetStatus возвращает статус планировщика
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.config.Schedule,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}

// cronZapLogger адаптирует zap к cron.Logger
type cronZapLogger struct {
	logger *zap.SugaredLogger
}

func (l *cronZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *cronZapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
