package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"github.com/iammonth1997/tdlao-hr-web/internal/dbx"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// PostgresRepository implements credential storage over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, empID string) (*models.Credential, error) {
	query := `
		SELECT emp_id, pin_hash, device_id_hash
		FROM login_users
		WHERE emp_id = $1
	`

	cred := &models.Credential{}
	var deviceHash sql.NullString
	if err := r.db.QueryRowContext(ctx, query, empID).Scan(&cred.EmpID, &cred.PINHash, &deviceHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	cred.DeviceHash = deviceHash.String

	return cred, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO login_users (emp_id, pin_hash, device_id_hash)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (emp_id) DO UPDATE
		SET pin_hash = EXCLUDED.pin_hash,
		    device_id_hash = EXCLUDED.device_id_hash,
		    updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, cred.EmpID, cred.PINHash, cred.DeviceHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
