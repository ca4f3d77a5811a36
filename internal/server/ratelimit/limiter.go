// Package ratelimit throttles auth attempts with fixed-window counters.
// Each action class uses its own key prefix, so abuse of one action cannot
// exhaust the budget of another.
package ratelimit

import (
	"context"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/logging"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/counters"
)

// expirySlack keeps stale buckets around slightly past their window so an
// in-flight increment never races the purge.
const expirySlack = 5 * time.Second

// Limiter counts attempts per (key, window) bucket in a shared counter store.
type Limiter struct {
	counters counters.Repository
	logger   logging.Logger
	now      func() time.Time
}

// NewLimiter builds a Limiter over the given counter repository.
func NewLimiter(c counters.Repository, logger logging.Logger) *Limiter {
	return &Limiter{
		counters: c,
		logger:   logger.With("module", "ratelimit"),
		now:      time.Now,
	}
}

// TooMany records one attempt under key and reports whether the fixed window
// now holds more than limit attempts. If the counter store is unavailable
// the limiter fails open: authentication availability must not depend on it.
func (l *Limiter) TooMany(ctx context.Context, key string, limit int64, window time.Duration) bool {
	bucket := l.now().Unix() / int64(window.Seconds())

	count, err := l.counters.Increment(ctx, key, bucket, window+expirySlack)
	if err != nil {
		l.logger.Warn(ctx, "counter store unavailable, failing open", "key", key, "error", err)
		return false
	}

	return count > limit
}
