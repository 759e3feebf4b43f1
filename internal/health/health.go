// Package health содержит health check сервер.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusProvider отдает статус компонента для /health
type StatusProvider interface {
	GetStatus() map[string]interface{}
}

// Server представляет health check сервер
type Server struct {
	server    *http.Server
	db        Pinger
	scheduler StatusProvider
	logger    *zap.Logger
}

// NewServer создает новый health check сервер; gatherer может быть nil
func NewServer(port string, db Pinger, scheduler StatusProvider, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	healthServer := &Server{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		db:        db,
		scheduler: scheduler,
		logger:    logger,
	}

	mux.HandleFunc("/health", healthServer.healthHandler)
	mux.HandleFunc("/ready", healthServer.readyHandler)
	mux.HandleFunc("/live", healthServer.liveHandler)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return healthServer
}

// Handler возвращает HTTP обработчик сервера
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start запускает health check сервер
func (s *Server) Start() error {
	s.logger.Info("Starting health check server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает health check сервер
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping health check server")
	return s.server.Shutdown(ctx)
}

// healthHandler обрабатывает запросы /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "healthy"}
	code := http.StatusOK

	if err := s.checkDatabase(r.Context()); err != nil {
		body["status"] = "unhealthy"
		body["error"] = err.Error()
		code = http.StatusServiceUnavailable
		s.logger.Error("Health check failed", zap.Error(err))
	}

	if s.scheduler != nil {
		body["scheduler"] = s.scheduler.GetStatus()
	}

	s.writeJSON(w, code, body)
}

// readyHandler обрабатывает запросы /ready
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK

	if err := s.checkDatabase(r.Context()); err != nil {
		status = "not ready"
		code = http.StatusServiceUnavailable
		s.logger.Error("Readiness check failed", zap.Error(err))
	}

	s.writeJSON(w, code, map[string]interface{}{"status": status})
}

// liveHandler обрабатывает запросы /live
func (s *Server) liveHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "alive"})
}

// checkDatabase проверяет подключение к базе данных
func (s *Server) checkDatabase(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body map[string]interface{}) {
	body["timestamp"] = time.Now().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("Failed to write health response", zap.Error(err))
	}
}
