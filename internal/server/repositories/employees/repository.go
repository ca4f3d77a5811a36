// Package employees reads the employee directory. The directory is owned by
// external HR tooling; this service never writes to it.
package employees

import (
	"context"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// Repository looks up employee directory records.
type Repository interface {
	// Get returns the employee record, or common.ErrorNotFound.
	Get(ctx context.Context, empID string) (*models.Employee, error)
}
