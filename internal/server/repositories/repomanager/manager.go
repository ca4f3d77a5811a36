// Package repomanager bundles the service's repositories behind one
// interface, so services depend on a single injectable seam.
package repomanager

import (
	"database/sql"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/counters"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/credentials"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/employees"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/sessions"
)

// RepositoryManager exposes the repositories backed by one shared store.
type RepositoryManager interface {
	Employees() employees.Repository
	Credentials() credentials.Repository
	Sessions() sessions.Repository
	Counters() counters.Repository

	// Conn returns the underlying handle, for health checks.
	Conn() *sql.DB

	Close() error
}
