package sessions

import (
	"context"
	"fmt"

	"github.com/iammonth1997/tdlao-hr-web/internal/dbx"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// PostgresRepository implements session audit writes over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO login_sessions (emp_id, device_id_hash, token_hash, expires_at)
		VALUES ($1, NULLIF($2, ''), $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query,
		session.EmpID, session.DeviceHash, session.TokenHash, session.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
