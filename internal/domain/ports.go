package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// MarketClient fetches raw card and feedback payloads from the marketplace.
// Payloads stay untyped maps; shape normalization happens in the app layer.
type MarketClient interface {
	GetProduct(ctx context.Context, article int64) (map[string]any, error)
	GetFeedbacks(ctx context.Context, rootID int64, limit int) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RateLimiter is a fixed-window counter keyed by caller.
type RateLimiter interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (bool, error)
}

type PriceRepository interface {
	AddSnapshot(ctx context.Context, article int64, basicU, productU *int64) error
	History(ctx context.Context, article int64, limit int) ([]PricePoint, error)
	LogMiss(ctx context.Context, article int64, status int, reason string) error
}
