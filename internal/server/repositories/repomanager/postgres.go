package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/migrations"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/counters"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/credentials"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/employees"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/sessions"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager owns the pgx connection pool and the repositories
// built on it.
type PostgresRepositoryManager struct {
	db          *sql.DB
	employees   employees.Repository
	credentials credentials.Repository
	sessions    sessions.Repository
	counters    counters.Repository
}

func (m *PostgresRepositoryManager) Employees() employees.Repository     { return m.employees }
func (m *PostgresRepositoryManager) Credentials() credentials.Repository { return m.credentials }
func (m *PostgresRepositoryManager) Sessions() sessions.Repository       { return m.sessions }
func (m *PostgresRepositoryManager) Counters() counters.Repository       { return m.counters }
func (m *PostgresRepositoryManager) Conn() *sql.DB                       { return m.db }
func (m *PostgresRepositoryManager) Close() error                        { return m.db.Close() }

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// NewPostgresRepositoryManager opens the database and applies migrations.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:          db,
		employees:   employees.NewPostgresRepository(db),
		credentials: credentials.NewPostgresRepository(db),
		sessions:    sessions.NewPostgresRepository(db),
		counters:    counters.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
