package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyAPIClient = "api:req:%s"

// APILimiter throttles billing API requests per client address. A nil
// limiter means rate limiting is disabled and every request is allowed.
type APILimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAPILimiter(cfg config.Config) (*APILimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.APIRate <= 0 || cfg.APIBurst <= 0 {
		return nil, errors.New("api rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &APILimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.APIRate,
		burst:   cfg.APIBurst,
	}, nil
}

func (l *APILimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *APILimiter) Allow(ctx context.Context, clientAddr string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAPIClient, strings.TrimSpace(clientAddr)), l.rate, l.burst)
}
