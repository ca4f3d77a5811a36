// Package counters stores the rate-limit counters: one integer per
// (key, time-bucket) pair, self-cleaning via an expiry column.
package counters

import (
	"context"
	"time"
)

// Repository increments and expires rate-limit counters.
type Repository interface {
	// Increment atomically bumps the counter for (key, bucket) and returns
	// the new value. The row expires ttl after creation.
	Increment(ctx context.Context, key string, bucket int64, ttl time.Duration) (int64, error)

	// Purge deletes expired counter rows and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}
