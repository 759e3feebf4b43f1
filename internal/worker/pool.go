// Package worker реализует ограниченный пул воркеров для независимых задач по артистам.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pool пул воркеров; каждая задача изолирована от ошибок и паник остальных
type Pool struct {
	workers  int
	jobQueue chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.Logger
	metrics  *Metrics
	stopOnce sync.Once
	stopped  bool
	mu       sync.Mutex
}

// Job представляет задачу для обработки
type Job struct {
	Index    int
	ArtistID string
	Handler  func(ctx context.Context) error
}

// Metrics метрики воркер пула
type Metrics struct {
	ProcessedJobs  int64
	FailedJobs     int64
	PanickedJobs   int64
	ProcessingTime time.Duration
}

// NewWorkerPool создает новый пул воркеров; задачи получают контекст пула
func NewWorkerPool(ctx context.Context, workers int, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		ctx:      poolCtx,
		cancel:   cancel,
		logger:   logger,
		metrics:  &Metrics{},
	}
}

// Start запускает пул воркеров
func (wp *Pool) Start() {
	wp.logger.Debug("Starting worker pool", zap.Int("workers", wp.workers))

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit добавляет задачу в очередь без блокировки
func (wp *Pool) Submit(job Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		return ErrPoolStopped
	}

	select {
	case wp.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait закрывает очередь и ждет выполнения всех принятых задач
func (wp *Pool) Wait() {
	wp.stopOnce.Do(func() {
		wp.mu.Lock()
		wp.stopped = true
		wp.mu.Unlock()
		close(wp.jobQueue)
	})

	wp.wg.Wait()
	wp.cancel()
}

// Stop отменяет контекст задач и ждет завершения воркеров
func (wp *Pool) Stop() {
	wp.logger.Debug("Stopping worker pool")
	wp.cancel()
	wp.Wait()
}

// worker основной цикл воркера; выходит после закрытия очереди
func (wp *Pool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.processJob(job, id)
	}
}

// processJob обрабатывает задачу
func (wp *Pool) processJob(job Job, workerID int) {
	startTime := time.Now()

	err := wp.runJob(job)
	duration := time.Since(startTime)

	wp.mu.Lock()
	defer wp.mu.Unlock()

	if err != nil {
		wp.logger.Debug("Job processing failed",
			zap.Int("worker_id", workerID),
			zap.String("artist_id", job.ArtistID),
			zap.Error(err))

		wp.metrics.FailedJobs++
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			wp.metrics.PanickedJobs++
		}
		return
	}

	wp.metrics.ProcessedJobs++
	wp.metrics.ProcessingTime += duration
}

// runJob выполняет обработчик и превращает панику в ошибку
func (wp *Pool) runJob(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("Panic recovered in worker job",
				zap.String("artist_id", job.ArtistID),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			err = &PanicError{Value: r}
		}
	}()

	return job.Handler(wp.ctx)
}

// GetMetrics возвращает текущие метрики
func (wp *Pool) GetMetrics() Metrics {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	return *wp.metrics
}

// Ошибки
var (
	ErrQueueFull   = &Error{msg: "job queue is full"}
	ErrPoolStopped = &Error{msg: "worker pool is stopped"}
)

// Error ошибка воркера
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// PanicError описывает панику внутри задачи
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}
