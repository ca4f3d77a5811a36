// Package credentials stores the login-credential records owned by this
// service.
package credentials

import (
	"context"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// Repository reads and writes credential records.
type Repository interface {
	// Get returns the credential row, or common.ErrorNotFound.
	Get(ctx context.Context, empID string) (*models.Credential, error)

	// Upsert creates or replaces the credential row for its employee id.
	// Concurrent writers race benignly: the store resolves the conflict
	// and the last writer wins, so no duplicate rows can exist.
	Upsert(ctx context.Context, cred *models.Credential) error
}
