package middleware

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RateLimiter ограничивает количество запросов пользователя в скользящем окне
type RateLimiter struct {
	requests map[int64][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewRateLimiter создает новый rate limiter; limit <= 0 отключает ограничение
func NewRateLimiter(limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

// Allow проверяет, разрешен ли запрос
func (rl *RateLimiter) Allow(userID int64) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.validSince(rl.requests[userID], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.logger.Warn("Rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int("requests", len(valid)),
			zap.Int("limit", rl.limit))
		rl.requests[userID] = valid
		return false
	}

	rl.requests[userID] = append(valid, now)
	return true
}

// Cleanup очищает старые записи
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.window)
	for userID, requests := range rl.requests {
		valid := rl.validSince(requests, windowStart)
		if len(valid) == 0 {
			delete(rl.requests, userID)
		} else {
			rl.requests[userID] = valid
		}
	}
}

func (rl *RateLimiter) validSince(requests []time.Time, windowStart time.Time) []time.Time {
	valid := requests[:0]
	for _, reqTime := range requests {
		if reqTime.After(windowStart) {
			valid = append(valid, reqTime)
		}
	}
	return valid
}

// RateLimit отбрасывает обновления сверх лимита пользователя
func RateLimit(limiter *RateLimiter) Func {
	return func(next Handler) Handler {
		return func(ctx context.Context, update tgbotapi.Update) error {
			if user := updateUser(update); user != nil && !limiter.Allow(user.ID) {
				return ErrThrottled
			}
			return next(ctx, update)
		}
	}
}
