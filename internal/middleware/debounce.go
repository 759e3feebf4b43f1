package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Действия с особыми таймаутами дебаунса
var actionDebounceTimeouts = map[string]time.Duration{
	"check": 10 * time.Second,
}

// Debouncer отбрасывает повторные одинаковые запросы, например двойные нажатия кнопок
type Debouncer struct {
	requests map[string]time.Time
	mu       sync.Mutex
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewDebouncer создает новый debouncer
func NewDebouncer(timeout time.Duration, logger *zap.Logger) *Debouncer {
	return &Debouncer{
		requests: make(map[string]time.Time),
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// CanProcess проверяет, можно ли обработать запрос с данным ключом
func (d *Debouncer) CanProcess(key string, timeout time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, exists := d.requests[key]; exists && now.Sub(last) <= timeout {
		return false
	}

	d.requests[key] = now
	return true
}

// Cleanup очищает устаревшие записи
func (d *Debouncer) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for key, last := range d.requests {
		if now.Sub(last) > d.maxTimeout() {
			delete(d.requests, key)
		}
	}
}

func (d *Debouncer) maxTimeout() time.Duration {
	longest := d.timeout
	for _, timeout := range actionDebounceTimeouts {
		if timeout > longest {
			longest = timeout
		}
	}
	return longest
}

// Debounce отбрасывает повтор того же действия от того же пользователя в пределах таймаута
func Debounce(debouncer *Debouncer, logger *zap.Logger) Func {
	return func(next Handler) Handler {
		return func(ctx context.Context, update tgbotapi.Update) error {
			user := updateUser(update)
			action := updateAction(update)
			if user == nil || action == "" {
				return next(ctx, update)
			}

			timeout := debouncer.timeout
			if custom, ok := actionDebounceTimeouts[action]; ok {
				timeout = custom
			}

			key := fmt.Sprintf("%d:%s", user.ID, action)
			if !debouncer.CanProcess(key, timeout) {
				logger.Debug("Update debounced",
					zap.Int64("user_id", user.ID),
					zap.String("action", action))
				return ErrThrottled
			}

			return next(ctx, update)
		}
	}
}
