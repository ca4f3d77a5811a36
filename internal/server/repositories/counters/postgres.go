package counters

import (
	"context"
	"fmt"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/dbx"
)

// PostgresRepository implements counter storage over dbx.DBTX. The increment
// is a single upsert, so concurrent requests never lose updates.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Increment(ctx context.Context, key string, bucket int64, ttl time.Duration) (int64, error) {
	query := `
		INSERT INTO auth_rate_counters (counter_key, bucket, count, expires_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (counter_key, bucket) DO UPDATE
		SET count = auth_rate_counters.count + 1
		RETURNING count
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, key, bucket, time.Now().Add(ttl)).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) Purge(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM auth_rate_counters
		WHERE expires_at < now()
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
