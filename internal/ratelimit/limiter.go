package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dreamnest/dreamnest/internal/config"
)

const (
	keyWebhook  = "rl:webhook:%s"
	keyCheckout = "rl:checkout:%s"
	keyTool     = "rl:tool:%s"

	toolLockKey = "rl:tool:lock:%s"
	toolLockTTL = 2 * time.Minute
)

// Limiter throttles the abuse-prone endpoints. When the feature is off or
// redis is unreachable it fails open; throttling is protection, not
// correctness.
type Limiter struct {
	enabled bool
	log     *zap.Logger

	bucket *TokenBucket
	locker *Locker

	webhookRate   float64
	webhookBurst  int
	checkoutRate  float64
	checkoutBurst int
	toolRate      float64
	toolBurst     int
}

func NewLimiter(cfg config.Config, log *zap.Logger) (*Limiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &Limiter{
		enabled:       true,
		log:           log.Named("ratelimit"),
		bucket:        NewTokenBucket(client),
		locker:        NewLocker(client),
		webhookRate:   limitCfg.WebhookRate,
		webhookBurst:  limitCfg.WebhookBurst,
		checkoutRate:  limitCfg.CheckoutRate,
		checkoutBurst: limitCfg.CheckoutBurst,
		toolRate:      limitCfg.ToolRate,
		toolBurst:     limitCfg.ToolBurst,
	}, nil
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *Limiter) AllowWebhook(ctx context.Context, remoteIP string) bool {
	return l.allow(ctx, fmt.Sprintf(keyWebhook, remoteIP), l.webhookRate, l.webhookBurst)
}

func (l *Limiter) AllowCheckout(ctx context.Context, email string) bool {
	return l.allow(ctx, fmt.Sprintf(keyCheckout, email), l.checkoutRate, l.checkoutBurst)
}

func (l *Limiter) AllowTool(ctx context.Context, email string) bool {
	return l.allow(ctx, fmt.Sprintf(keyTool, email), l.toolRate, l.toolBurst)
}

// TryLockTool serializes generations per user so one browser cannot run
// several paid model calls at once.
func (l *Limiter) TryLockTool(ctx context.Context, email string) (string, bool) {
	if !l.Enabled() {
		return "", true
	}
	token, ok, err := l.locker.Acquire(ctx, fmt.Sprintf(toolLockKey, email), toolLockTTL)
	if err != nil {
		l.log.Warn("tool lock unavailable, allowing", zap.Error(err))
		return "", true
	}
	return token, ok
}

func (l *Limiter) UnlockTool(ctx context.Context, email, token string) {
	if !l.Enabled() || token == "" {
		return
	}
	if err := l.locker.Release(ctx, fmt.Sprintf(toolLockKey, email), token); err != nil {
		l.log.Warn("tool lock release failed", zap.Error(err))
	}
}

func (l *Limiter) allow(ctx context.Context, key string, rate float64, burst int) bool {
	if !l.Enabled() {
		return true
	}
	allowed, err := l.bucket.Allow(ctx, key, rate, burst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing", zap.Error(err))
		return true
	}
	return allowed
}
