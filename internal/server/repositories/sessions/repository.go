// Package sessions writes optional session audit records. Writes are
// best-effort: callers log failures and never propagate them.
package sessions

import (
	"context"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
)

// Repository appends session audit rows.
type Repository interface {
	Create(ctx context.Context, session *models.Session) error
}
