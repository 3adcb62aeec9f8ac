// Package ratelimit throttles generation traffic per user with a Redis
// token bucket. The limiter is optional: without a Redis address it is nil
// and every check passes.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell-hq/inkwell/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyGenerationUser = "generation:rate:user:%s"
	keyGenerationLock = "generation:lock:user:%s"

	generationLockTTL = 2 * time.Minute
)

type GenerationLimiter struct {
	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewGenerationLimiter(cfg config.Config) *GenerationLimiter {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	rate := cfg.RateLimitRate
	if rate <= 0 {
		rate = 0.5
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}

	return &GenerationLimiter{
		bucket: NewTokenBucket(client),
		locker: NewLocker(client),
		rate:   rate,
		burst:  burst,
	}
}

func (l *GenerationLimiter) Enabled() bool {
	return l != nil
}

func (l *GenerationLimiter) AllowUser(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyGenerationUser, strings.TrimSpace(userID)), l.rate, l.burst)
}

// TryLockUser serializes generations for one user so two in-flight requests
// cannot both pass the free-tier quota check on the same stale counter.
func (l *GenerationLimiter) TryLockUser(ctx context.Context, userID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyGenerationLock, strings.TrimSpace(userID)), generationLockTTL)
}

func (l *GenerationLimiter) ReleaseUser(ctx context.Context, userID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyGenerationLock, strings.TrimSpace(userID)), token)
}
