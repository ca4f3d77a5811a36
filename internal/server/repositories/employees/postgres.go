package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"github.com/iammonth1997/tdlao-hr-web/internal/dbx"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// PostgresRepository implements read-only directory lookups over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, empID string) (*models.Employee, error) {
	query := `
		SELECT emp_id, status, dob
		FROM employees
		WHERE emp_id = $1
	`

	emp := &models.Employee{}
	var dob sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, empID).Scan(&emp.EmpID, &emp.Status, &dob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if dob.Valid {
		emp.DOB = &dob.Time
	}

	return emp, nil
}
